package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/larksuite/oapi-client/pkg/lark"
)

const pathDocxBlocks = "/open-apis/docx/v1/documents/:document_id/blocks"

// latestRevision selects the newest revision of a document.
const latestRevision = -1

// DocxClient implements lark.DocxClient.
type DocxClient struct {
	base
}

func docxBlocksRequest(req *lark.ListDocxBlocksRequest) (*lark.Request, error) {
	if req == nil {
		return nil, lark.ErrRequestRequired
	}

	revision := req.DocumentRevisionID
	if revision == 0 {
		revision = latestRevision
	}

	values, err := query{
		"document_revision_id": strconv.Itoa(revision),
		"user_id_type":         req.UserIDType,
	}.values(req.PageSize)
	if err != nil {
		return nil, err
	}

	return &lark.Request{
		Method:     http.MethodGet,
		Path:       pathDocxBlocks,
		PathParams: map[string]string{"document_id": req.DocumentID},
		Query:      values,
	}, nil
}

// ListBlocks implements lark.DocxClient.ListBlocks.
func (c *DocxClient) ListBlocks(ctx context.Context, req *lark.ListDocxBlocksRequest) (*lark.ListPage[lark.DocxBlockList], error) {
	r, err := docxBlocksRequest(req)
	if err != nil {
		return nil, err
	}

	return listOnce[lark.DocxBlockList](ctx, c.base, r)
}

// ListBlocksWithIterator implements lark.DocxClient.ListBlocksWithIterator.
func (c *DocxClient) ListBlocksWithIterator(ctx context.Context, req *lark.ListDocxBlocksRequest) (*lark.Iterator[lark.DocxBlockList], error) {
	r, err := docxBlocksRequest(req)
	if err != nil {
		return nil, err
	}

	return listIterator[lark.DocxBlockList](c.base, r), nil
}
