package lark

import (
	"context"
	"time"
)

// DefaultEndpoint is the open platform base URL used when Config.Endpoint is
// empty.
const DefaultEndpoint = "https://open.feishu.cn"

// IMClient lists messages, chats and chat members.
type IMClient interface {
	ListMessages(ctx context.Context, req *ListMessagesRequest) (*ListPage[MessageList], error)
	ListMessagesWithIterator(ctx context.Context, req *ListMessagesRequest) (*Iterator[MessageList], error)
	ListChats(ctx context.Context, req *ListChatsRequest) (*ListPage[ChatList], error)
	ListChatsWithIterator(ctx context.Context, req *ListChatsRequest) (*Iterator[ChatList], error)
	ListChatMembers(ctx context.Context, req *ListChatMembersRequest) (*ListPage[ChatMemberList], error)
	ListChatMembersWithIterator(ctx context.Context, req *ListChatMembersRequest) (*Iterator[ChatMemberList], error)
}

// MailClient lists the members of a mail group.
type MailClient interface {
	ListMailGroupMembers(ctx context.Context, req *ListMailGroupMembersRequest) (*ListPage[MailGroupMemberList], error)
	ListMailGroupMembersWithIterator(ctx context.Context, req *ListMailGroupMembersRequest) (*Iterator[MailGroupMemberList], error)
}

// DocxClient lists the blocks of a document.
type DocxClient interface {
	ListBlocks(ctx context.Context, req *ListDocxBlocksRequest) (*ListPage[DocxBlockList], error)
	ListBlocksWithIterator(ctx context.Context, req *ListDocxBlocksRequest) (*Iterator[DocxBlockList], error)
}

// LingoClient lists glossary entities.
type LingoClient interface {
	ListEntities(ctx context.Context, req *ListLingoEntitiesRequest) (*ListPage[LingoEntityList], error)
	ListEntitiesWithIterator(ctx context.Context, req *ListLingoEntitiesRequest) (*Iterator[LingoEntityList], error)
}

// EventClient lists the addresses events are pushed from.
type EventClient interface {
	ListOutboundIPs(ctx context.Context, req *ListOutboundIPsRequest) (*ListPage[OutboundIPList], error)
	ListOutboundIPsWithIterator(ctx context.Context, req *ListOutboundIPsRequest) (*Iterator[OutboundIPList], error)
}

// MDMClient manages user to master data bindings.
type MDMClient interface {
	ListUserAuthDataRelations(ctx context.Context, req *ListUserAuthDataRelationsRequest) (*ListPage[UserAuthDataRelationList], error)
	ListUserAuthDataRelationsWithIterator(ctx context.Context, req *ListUserAuthDataRelationsRequest) (*Iterator[UserAuthDataRelationList], error)
	Bind(ctx context.Context, req *BindUserAuthDataRequest) error
	Unbind(ctx context.Context, req *BindUserAuthDataRequest) error
}

// Client provides access to every endpoint group.
type Client interface {
	IM() IMClient
	Mail() MailClient
	Docx() DocxClient
	Lingo() LingoClient
	Event() EventClient
	MDM() MDMClient
}

// Config represents client configuration for building a lark.Client.
//
// The client never obtains or refreshes tokens. AccessToken is sent as a
// static Bearer token; AppID and AppSecret are only used by the long
// connection to discover its endpoint.
//
// # Timeouts and retries
//
// Per-request timeouts should be controlled via the context passed to client
// methods. The transport is single-shot unless RetryMax is set.
type Config struct {
	// Endpoint: base URL of the open platform. larkclient.New trims a
	// trailing slash and adds "https://" when no scheme is present.
	Endpoint string
	// AccessToken: tenant or user access token sent as "Authorization: Bearer".
	AccessToken string
	// AppID and AppSecret identify the application for the long connection.
	AppID     string
	AppSecret string

	HTTPTimeout time.Duration
	// RetryMax: number of retries for transient failures. 0 disables retries.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Debug: log every request and response at debug level.
	Debug  bool
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// RateLimit: maximum requests per second, 0 for no limit.
	RateLimit float64
	RateBurst int
	// CircuitBreakerThreshold: consecutive failures that open the breaker.
	// 0 disables the breaker.
	CircuitBreakerThreshold uint32
	CircuitBreakerTimeout   time.Duration
}
