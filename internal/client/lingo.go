package client

import (
	"context"
	"net/http"

	"github.com/larksuite/oapi-client/pkg/lark"
)

const pathLingoEntities = "/open-apis/lingo/v1/entities"

// LingoClient implements lark.LingoClient.
type LingoClient struct {
	base
}

func lingoEntitiesRequest(req *lark.ListLingoEntitiesRequest) (*lark.Request, error) {
	if req == nil {
		req = &lark.ListLingoEntitiesRequest{}
	}

	values, err := query{
		"repo_id":      req.RepoID,
		"provider":     req.Provider,
		"user_id_type": req.UserIDType,
	}.values(req.PageSize)
	if err != nil {
		return nil, err
	}

	return &lark.Request{Method: http.MethodGet, Path: pathLingoEntities, Query: values}, nil
}

// ListEntities implements lark.LingoClient.ListEntities.
func (c *LingoClient) ListEntities(ctx context.Context, req *lark.ListLingoEntitiesRequest) (*lark.ListPage[lark.LingoEntityList], error) {
	r, err := lingoEntitiesRequest(req)
	if err != nil {
		return nil, err
	}

	return listOnce[lark.LingoEntityList](ctx, c.base, r)
}

// ListEntitiesWithIterator implements lark.LingoClient.ListEntitiesWithIterator.
func (c *LingoClient) ListEntitiesWithIterator(ctx context.Context, req *lark.ListLingoEntitiesRequest) (*lark.Iterator[lark.LingoEntityList], error) {
	r, err := lingoEntitiesRequest(req)
	if err != nil {
		return nil, err
	}

	return listIterator[lark.LingoEntityList](c.base, r), nil
}
