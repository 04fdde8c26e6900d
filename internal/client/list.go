package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/internal/http"
	"github.com/larksuite/oapi-client/pkg/lark"
)

// base is shared by every endpoint group.
type base struct {
	httpClient *http.Client
	logger     lark.Logger
}

// fetchPage returns a PageFetcher that executes one request and decodes the
// data member of the envelope as a list page.
func fetchPage[R any](httpClient *http.Client) lark.PageFetcher[R] {
	return func(ctx context.Context, req *lark.Request) (*lark.ListPage[R], error) {
		resp, err := httpClient.Do(ctx, req)
		if err != nil {
			return nil, err
		}

		page, err := lark.DecodeListPage[R](resp.Data)
		if err != nil {
			return nil, fmt.Errorf("parsing list page: %w", err)
		}

		return page, nil
	}
}

// listOnce performs a single list call. Failures are logged and returned.
func listOnce[R any](ctx context.Context, b base, req *lark.Request) (*lark.ListPage[R], error) {
	page, err := fetchPage[R](b.httpClient)(ctx, req)
	if err != nil {
		b.logger.Error("List request failed", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
			"error":  err.Error(),
		})

		return nil, fmt.Errorf("listing %s: %w", req.Path, err)
	}

	return page, nil
}

// listIterator creates an iterator over every page of req.
func listIterator[R any](b base, req *lark.Request) *lark.Iterator[R] {
	return lark.NewIterator(fetchPage[R](b.httpClient), req, b.logger)
}

// query collects non-empty query parameters.
type query map[string]string

func (q query) values(pageSize int) (url.Values, error) {
	if pageSize < 0 {
		return nil, fmt.Errorf("%w: %d", constants.ErrInvalidPageSize, pageSize)
	}

	values := make(url.Values, len(q)+1)

	for key, value := range q {
		if value != "" {
			values[key] = []string{value}
		}
	}

	if pageSize > 0 {
		values[lark.QueryPageSize] = []string{strconv.Itoa(pageSize)}
	}

	return values, nil
}
