package lark

import (
	"encoding/json"
)

// ID type values accepted by the user_id_type and member_id_type parameters.
const (
	UserIDTypeOpenID  = "open_id"
	UserIDTypeUnionID = "union_id"
	UserIDTypeUserID  = "user_id"
)

// Message represents an IM message.
type Message struct {
	MessageID      string       `json:"message_id"                 yaml:"message_id"`
	RootID         string       `json:"root_id,omitempty"          yaml:"root_id,omitempty"`
	ParentID       string       `json:"parent_id,omitempty"        yaml:"parent_id,omitempty"`
	ThreadID       string       `json:"thread_id,omitempty"        yaml:"thread_id,omitempty"`
	MsgType        string       `json:"msg_type"                   yaml:"msg_type"`
	CreateTime     string       `json:"create_time"                yaml:"create_time"`
	UpdateTime     string       `json:"update_time"                yaml:"update_time"`
	Deleted        bool         `json:"deleted"                    yaml:"deleted"`
	Updated        bool         `json:"updated"                    yaml:"updated"`
	ChatID         string       `json:"chat_id"                    yaml:"chat_id"`
	Sender         *Sender      `json:"sender,omitempty"           yaml:"sender,omitempty"`
	Body           *MessageBody `json:"body,omitempty"             yaml:"body,omitempty"`
	Mentions       []Mention    `json:"mentions,omitempty"         yaml:"mentions,omitempty"`
	UpperMessageID string       `json:"upper_message_id,omitempty" yaml:"upper_message_id,omitempty"`
}

// Sender identifies who sent a message.
type Sender struct {
	ID         string `json:"id"          yaml:"id"`
	IDType     string `json:"id_type"     yaml:"id_type"`
	SenderType string `json:"sender_type" yaml:"sender_type"`
	TenantKey  string `json:"tenant_key"  yaml:"tenant_key"`
}

// MessageBody holds the JSON encoded content of a message.
type MessageBody struct {
	Content string `json:"content" yaml:"content"`
}

// Mention is an @ mention inside a message.
type Mention struct {
	Key       string `json:"key"        yaml:"key"`
	ID        string `json:"id"         yaml:"id"`
	IDType    string `json:"id_type"    yaml:"id_type"`
	Name      string `json:"name"       yaml:"name"`
	TenantKey string `json:"tenant_key" yaml:"tenant_key"`
}

// MessageList is the body of a message list page.
type MessageList struct {
	Items []Message `json:"items" yaml:"items"`
}

// ListMessagesRequest selects the messages of a chat or thread.
type ListMessagesRequest struct {
	ContainerIDType string // "chat" or "thread"
	ContainerID     string
	StartTime       string
	EndTime         string
	SortType        string // ByCreateTimeAsc or ByCreateTimeDesc
	PageSize        int
}

// Chat represents a group chat visible to the caller.
type Chat struct {
	ChatID      string `json:"chat_id"                 yaml:"chat_id"`
	Avatar      string `json:"avatar,omitempty"        yaml:"avatar,omitempty"`
	Name        string `json:"name"                    yaml:"name"`
	Description string `json:"description,omitempty"   yaml:"description,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"      yaml:"owner_id,omitempty"`
	OwnerIDType string `json:"owner_id_type,omitempty" yaml:"owner_id_type,omitempty"`
	External    bool   `json:"external"                yaml:"external"`
	TenantKey   string `json:"tenant_key"              yaml:"tenant_key"`
	ChatStatus  string `json:"chat_status"             yaml:"chat_status"`
}

// ChatList is the body of a chat list page.
type ChatList struct {
	Items []Chat `json:"items" yaml:"items"`
}

// ListChatsRequest lists the chats the caller belongs to.
type ListChatsRequest struct {
	UserIDType string
	SortType   string
	PageSize   int
}

// ChatMember represents one member of a chat.
type ChatMember struct {
	MemberIDType string `json:"member_id_type" yaml:"member_id_type"`
	MemberID     string `json:"member_id"      yaml:"member_id"`
	Name         string `json:"name"           yaml:"name"`
	TenantKey    string `json:"tenant_key"     yaml:"tenant_key"`
}

// ChatMemberList is the body of a chat member page. MemberTotal is the size
// of the whole chat, not of the page.
type ChatMemberList struct {
	Items       []ChatMember `json:"items"        yaml:"items"`
	MemberTotal int          `json:"member_total" yaml:"member_total"`
}

// ListChatMembersRequest lists the members of ChatID.
type ListChatMembersRequest struct {
	ChatID       string
	MemberIDType string
	PageSize     int
}

// MailGroupMember is a member of a mail group.
type MailGroupMember struct {
	MemberID     string `json:"member_id"               yaml:"member_id"`
	Email        string `json:"email,omitempty"         yaml:"email,omitempty"`
	UserID       string `json:"user_id,omitempty"       yaml:"user_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty" yaml:"department_id,omitempty"`
	Type         string `json:"type"                    yaml:"type"`
}

// MailGroupMemberList is the body of a mail group member page.
type MailGroupMemberList struct {
	Items []MailGroupMember `json:"items" yaml:"items"`
}

// ListMailGroupMembersRequest lists the members of MailGroupID.
type ListMailGroupMembersRequest struct {
	MailGroupID      string
	UserIDType       string
	DepartmentIDType string
	PageSize         int
}

// DocxBlock is one block of a document. Type specific content is kept raw.
type DocxBlock struct {
	BlockID   string          `json:"block_id"           yaml:"block_id"`
	ParentID  string          `json:"parent_id"          yaml:"parent_id"`
	Children  []string        `json:"children,omitempty" yaml:"children,omitempty"`
	BlockType int             `json:"block_type"         yaml:"block_type"`
	Page      json.RawMessage `json:"page,omitempty"     yaml:"-"`
	Text      json.RawMessage `json:"text,omitempty"     yaml:"-"`
}

// DocxBlockList is the body of a document block page.
type DocxBlockList struct {
	Items []DocxBlock `json:"items" yaml:"items"`
}

// ListDocxBlocksRequest lists the blocks of DocumentID at a revision. A
// DocumentRevisionID of 0 selects the latest revision.
type ListDocxBlocksRequest struct {
	DocumentID         string
	DocumentRevisionID int
	UserIDType         string
	PageSize           int
}

// LingoTerm is a key or alias of a glossary entity.
type LingoTerm struct {
	Key           string              `json:"key"                      yaml:"key"`
	DisplayStatus *LingoDisplayStatus `json:"display_status,omitempty" yaml:"display_status,omitempty"`
}

// LingoDisplayStatus controls where a term is highlighted.
type LingoDisplayStatus struct {
	AllowHighlight bool `json:"allow_highlight" yaml:"allow_highlight"`
	AllowSearch    bool `json:"allow_search"    yaml:"allow_search"`
}

// LingoEntity is a glossary entry.
type LingoEntity struct {
	ID          string          `json:"id"                     yaml:"id"`
	MainKeys    []LingoTerm     `json:"main_keys"              yaml:"main_keys"`
	Aliases     []LingoTerm     `json:"aliases,omitempty"      yaml:"aliases,omitempty"`
	Description string          `json:"description,omitempty"  yaml:"description,omitempty"`
	CreateTime  string          `json:"create_time,omitempty"  yaml:"create_time,omitempty"`
	UpdateTime  string          `json:"update_time,omitempty"  yaml:"update_time,omitempty"`
	RelatedMeta json.RawMessage `json:"related_meta,omitempty" yaml:"-"`
	RichText    string          `json:"rich_text,omitempty"    yaml:"rich_text,omitempty"`
}

// LingoEntityList is the body of an entity page.
type LingoEntityList struct {
	Entities []LingoEntity `json:"entities" yaml:"entities"`
}

// ListLingoEntitiesRequest lists the entities of a glossary repository. An
// empty RepoID selects the tenant glossary.
type ListLingoEntitiesRequest struct {
	RepoID     string
	Provider   string
	UserIDType string
	PageSize   int
}

// OutboundIPList is the body of an outbound IP page.
type OutboundIPList struct {
	IPList []string `json:"ip_list" yaml:"ip_list"`
}

// ListOutboundIPsRequest lists the addresses the platform pushes events from.
type ListOutboundIPsRequest struct {
	PageSize int
}

// UserAuthDataRelation binds a user to master data within a dimension.
type UserAuthDataRelation struct {
	RootDimensionType string   `json:"root_dimension_type"          yaml:"root_dimension_type"`
	SubDimensionTypes []string `json:"sub_dimension_types"          yaml:"sub_dimension_types"`
	AuthorizedUserIDs []string `json:"authorized_user_ids"          yaml:"authorized_user_ids"`
	UamsAppID         string   `json:"uams_app_id"                  yaml:"uams_app_id"`
	DimensionValue    string   `json:"dimension_value,omitempty"    yaml:"dimension_value,omitempty"`
}

// UserAuthDataRelationList is the body of a relation page.
type UserAuthDataRelationList struct {
	Items []UserAuthDataRelation `json:"items" yaml:"items"`
}

// ListUserAuthDataRelationsRequest lists bindings matching Filter. The filter
// travels in the request body; only the page token changes between pages.
type ListUserAuthDataRelationsRequest struct {
	UserIDType string
	PageSize   int
	Filter     UserAuthDataRelation
}

// BindUserAuthDataRequest binds or unbinds a relation.
type BindUserAuthDataRequest struct {
	UserIDType string
	Relation   UserAuthDataRelation
}
