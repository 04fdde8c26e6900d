package lark

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
)

// Pagination query parameter names.
const (
	QueryPageToken = "page_token"
	QueryPageSize  = "page_size"
)

// Request describes one call to the open platform. Path may contain :name
// placeholders that are filled from PathParams by the transport.
type Request struct {
	Method     string
	Path       string
	PathParams map[string]string
	Query      url.Values
	Headers    map[string]string
	Body       interface{}
}

// Clone returns a copy of the request with its own query, header and path
// parameter maps. The body is shared.
func (r *Request) Clone() *Request {
	c := *r
	c.PathParams = maps.Clone(r.PathParams)
	c.Headers = maps.Clone(r.Headers)

	c.Query = make(url.Values, len(r.Query))
	for k, v := range r.Query {
		c.Query[k] = append([]string(nil), v...)
	}

	return &c
}

// WithPageToken returns a copy of the request whose page_token query
// parameter is token, or is removed when token is nil.
func (r *Request) WithPageToken(token *string) *Request {
	c := r.Clone()
	if token == nil {
		c.Query.Del(QueryPageToken)
	} else {
		c.Query.Set(QueryPageToken, *token)
	}

	return c
}

// PageControl holds the pagination fields returned by list endpoints.
// Depending on the API version the cursor is named page_token or
// next_page_token.
type PageControl struct {
	HasMore       bool    `json:"has_more"                  yaml:"has_more"`
	PageToken     *string `json:"page_token,omitempty"      yaml:"page_token,omitempty"`
	NextPageToken *string `json:"next_page_token,omitempty" yaml:"next_page_token,omitempty"`
}

// Cursor returns page_token, falling back to next_page_token.
func (p PageControl) Cursor() *string {
	if p.PageToken != nil {
		return p.PageToken
	}

	return p.NextPageToken
}

// ListPage is one decoded page of a list endpoint. Rest holds every field of
// the response except the pagination controls; its type enumerates the
// endpoint's fields explicitly.
type ListPage[R any] struct {
	PageControl

	Rest R
}

// UnmarshalJSON decodes the control fields and the remainder from the same
// object.
func (p *ListPage[R]) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &p.PageControl); err != nil {
		return fmt.Errorf("decoding page controls: %w", err)
	}

	if err := json.Unmarshal(data, &p.Rest); err != nil {
		return fmt.Errorf("decoding page body: %w", err)
	}

	return nil
}

// DecodeListPage decodes the data member of a list response. Empty data
// yields an empty last page.
func DecodeListPage[R any](data json.RawMessage) (*ListPage[R], error) {
	page := &ListPage[R]{}
	if len(data) == 0 || string(data) == "null" {
		return page, nil
	}

	if err := json.Unmarshal(data, page); err != nil {
		return nil, err
	}

	return page, nil
}
