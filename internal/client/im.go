package client

import (
	"context"
	"net/http"

	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/pkg/lark"
)

const (
	pathMessages    = "/open-apis/im/v1/messages"
	pathChats       = "/open-apis/im/v1/chats"
	pathChatMembers = "/open-apis/im/v1/chats/:chat_id/members"
)

// IMClient implements lark.IMClient.
type IMClient struct {
	base
}

func messagesRequest(req *lark.ListMessagesRequest) (*lark.Request, error) {
	if req == nil {
		return nil, lark.ErrRequestRequired
	}

	if req.ContainerID == "" {
		return nil, constants.ErrContainerIDRequired
	}

	containerIDType := req.ContainerIDType
	if containerIDType == "" {
		containerIDType = "chat"
	}

	values, err := query{
		"container_id_type": containerIDType,
		"container_id":      req.ContainerID,
		"start_time":        req.StartTime,
		"end_time":          req.EndTime,
		"sort_type":         req.SortType,
	}.values(req.PageSize)
	if err != nil {
		return nil, err
	}

	return &lark.Request{Method: http.MethodGet, Path: pathMessages, Query: values}, nil
}

// ListMessages implements lark.IMClient.ListMessages.
func (c *IMClient) ListMessages(ctx context.Context, req *lark.ListMessagesRequest) (*lark.ListPage[lark.MessageList], error) {
	r, err := messagesRequest(req)
	if err != nil {
		return nil, err
	}

	return listOnce[lark.MessageList](ctx, c.base, r)
}

// ListMessagesWithIterator implements lark.IMClient.ListMessagesWithIterator.
func (c *IMClient) ListMessagesWithIterator(ctx context.Context, req *lark.ListMessagesRequest) (*lark.Iterator[lark.MessageList], error) {
	r, err := messagesRequest(req)
	if err != nil {
		return nil, err
	}

	return listIterator[lark.MessageList](c.base, r), nil
}

func chatsRequest(req *lark.ListChatsRequest) (*lark.Request, error) {
	if req == nil {
		req = &lark.ListChatsRequest{}
	}

	values, err := query{
		"user_id_type": req.UserIDType,
		"sort_type":    req.SortType,
	}.values(req.PageSize)
	if err != nil {
		return nil, err
	}

	return &lark.Request{Method: http.MethodGet, Path: pathChats, Query: values}, nil
}

// ListChats implements lark.IMClient.ListChats.
func (c *IMClient) ListChats(ctx context.Context, req *lark.ListChatsRequest) (*lark.ListPage[lark.ChatList], error) {
	r, err := chatsRequest(req)
	if err != nil {
		return nil, err
	}

	return listOnce[lark.ChatList](ctx, c.base, r)
}

// ListChatsWithIterator implements lark.IMClient.ListChatsWithIterator.
func (c *IMClient) ListChatsWithIterator(ctx context.Context, req *lark.ListChatsRequest) (*lark.Iterator[lark.ChatList], error) {
	r, err := chatsRequest(req)
	if err != nil {
		return nil, err
	}

	return listIterator[lark.ChatList](c.base, r), nil
}

func chatMembersRequest(req *lark.ListChatMembersRequest) (*lark.Request, error) {
	if req == nil {
		return nil, lark.ErrRequestRequired
	}

	values, err := query{"member_id_type": req.MemberIDType}.values(req.PageSize)
	if err != nil {
		return nil, err
	}

	return &lark.Request{
		Method:     http.MethodGet,
		Path:       pathChatMembers,
		PathParams: map[string]string{"chat_id": req.ChatID},
		Query:      values,
	}, nil
}

// ListChatMembers implements lark.IMClient.ListChatMembers.
func (c *IMClient) ListChatMembers(ctx context.Context, req *lark.ListChatMembersRequest) (*lark.ListPage[lark.ChatMemberList], error) {
	r, err := chatMembersRequest(req)
	if err != nil {
		return nil, err
	}

	return listOnce[lark.ChatMemberList](ctx, c.base, r)
}

// ListChatMembersWithIterator implements lark.IMClient.ListChatMembersWithIterator.
func (c *IMClient) ListChatMembersWithIterator(ctx context.Context, req *lark.ListChatMembersRequest) (*lark.Iterator[lark.ChatMemberList], error) {
	r, err := chatMembersRequest(req)
	if err != nil {
		return nil, err
	}

	return listIterator[lark.ChatMemberList](c.base, r), nil
}
