package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/larksuite/oapi-client/pkg/lark"
)

const (
	pathUserAuthDataRelations = "/open-apis/mdm/v1/user_auth_data_relations/list"
	pathUserAuthDataBind      = "/open-apis/mdm/v1/user_auth_data_relations/bind"
	pathUserAuthDataUnbind    = "/open-apis/mdm/v1/user_auth_data_relations/unbind"
)

// MDMClient implements lark.MDMClient.
type MDMClient struct {
	base
}

// The filter is sent as the body of every page; only page_token changes.
func userAuthDataRelationsRequest(req *lark.ListUserAuthDataRelationsRequest) (*lark.Request, error) {
	if req == nil {
		return nil, lark.ErrRequestRequired
	}

	values, err := query{"user_id_type": req.UserIDType}.values(req.PageSize)
	if err != nil {
		return nil, err
	}

	return &lark.Request{
		Method: http.MethodPost,
		Path:   pathUserAuthDataRelations,
		Query:  values,
		Body:   req.Filter,
	}, nil
}

// ListUserAuthDataRelations implements lark.MDMClient.ListUserAuthDataRelations.
func (c *MDMClient) ListUserAuthDataRelations(ctx context.Context, req *lark.ListUserAuthDataRelationsRequest) (*lark.ListPage[lark.UserAuthDataRelationList], error) {
	r, err := userAuthDataRelationsRequest(req)
	if err != nil {
		return nil, err
	}

	return listOnce[lark.UserAuthDataRelationList](ctx, c.base, r)
}

// ListUserAuthDataRelationsWithIterator implements
// lark.MDMClient.ListUserAuthDataRelationsWithIterator.
func (c *MDMClient) ListUserAuthDataRelationsWithIterator(ctx context.Context, req *lark.ListUserAuthDataRelationsRequest) (*lark.Iterator[lark.UserAuthDataRelationList], error) {
	r, err := userAuthDataRelationsRequest(req)
	if err != nil {
		return nil, err
	}

	return listIterator[lark.UserAuthDataRelationList](c.base, r), nil
}

// Bind implements lark.MDMClient.Bind.
func (c *MDMClient) Bind(ctx context.Context, req *lark.BindUserAuthDataRequest) error {
	return c.post(ctx, pathUserAuthDataBind, "binding user auth data", req)
}

// Unbind implements lark.MDMClient.Unbind.
func (c *MDMClient) Unbind(ctx context.Context, req *lark.BindUserAuthDataRequest) error {
	return c.post(ctx, pathUserAuthDataUnbind, "unbinding user auth data", req)
}

func (c *MDMClient) post(ctx context.Context, path, action string, req *lark.BindUserAuthDataRequest) error {
	if req == nil {
		return lark.ErrRequestRequired
	}

	values, err := query{"user_id_type": req.UserIDType}.values(0)
	if err != nil {
		return err
	}

	_, err = c.httpClient.Do(ctx, &lark.Request{
		Method: http.MethodPost,
		Path:   path,
		Query:  values,
		Body:   map[string]lark.UserAuthDataRelation{"user_auth_data_relation": req.Relation},
	})
	if err != nil {
		c.logger.Error("MDM request failed", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})

		return fmt.Errorf("%s: %w", action, err)
	}

	return nil
}
