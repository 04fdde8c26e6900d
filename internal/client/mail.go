package client

import (
	"context"
	"net/http"

	"github.com/larksuite/oapi-client/pkg/lark"
)

const pathMailGroupMembers = "/open-apis/mail/v1/mailgroups/:mailgroup_id/members"

// MailClient implements lark.MailClient.
type MailClient struct {
	base
}

func mailGroupMembersRequest(req *lark.ListMailGroupMembersRequest) (*lark.Request, error) {
	if req == nil {
		return nil, lark.ErrRequestRequired
	}

	values, err := query{
		"user_id_type":       req.UserIDType,
		"department_id_type": req.DepartmentIDType,
	}.values(req.PageSize)
	if err != nil {
		return nil, err
	}

	return &lark.Request{
		Method:     http.MethodGet,
		Path:       pathMailGroupMembers,
		PathParams: map[string]string{"mailgroup_id": req.MailGroupID},
		Query:      values,
	}, nil
}

// ListMailGroupMembers implements lark.MailClient.ListMailGroupMembers.
func (c *MailClient) ListMailGroupMembers(ctx context.Context, req *lark.ListMailGroupMembersRequest) (*lark.ListPage[lark.MailGroupMemberList], error) {
	r, err := mailGroupMembersRequest(req)
	if err != nil {
		return nil, err
	}

	return listOnce[lark.MailGroupMemberList](ctx, c.base, r)
}

// ListMailGroupMembersWithIterator implements
// lark.MailClient.ListMailGroupMembersWithIterator.
func (c *MailClient) ListMailGroupMembersWithIterator(ctx context.Context, req *lark.ListMailGroupMembersRequest) (*lark.Iterator[lark.MailGroupMemberList], error) {
	r, err := mailGroupMembersRequest(req)
	if err != nil {
		return nil, err
	}

	return listIterator[lark.MailGroupMemberList](c.base, r), nil
}
