package lark_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestPage struct {
	Items []string `json:"items"`
}

var errFetch = errors.New("connection reset")

// mockFetcher serves a fixed sequence of pages and records every request.
type mockFetcher struct {
	pages    []*lark.ListPage[TestPage]
	failAt   int // 1-based call number that fails, 0 for never
	requests []*lark.Request
}

func (m *mockFetcher) fetch(ctx context.Context, req *lark.Request) (*lark.ListPage[TestPage], error) {
	m.requests = append(m.requests, req)

	call := len(m.requests)
	if call == m.failAt {
		return nil, errFetch
	}

	if call > len(m.pages) {
		return nil, fmt.Errorf("unexpected call %d", call)
	}

	return m.pages[call-1], nil
}

func token(s string) *string {
	return &s
}

// threePages has has_more set on the first two pages; the second page uses
// the legacy next_page_token name.
func threePages() []*lark.ListPage[TestPage] {
	return []*lark.ListPage[TestPage]{
		{
			PageControl: lark.PageControl{HasMore: true, PageToken: token("t1")},
			Rest:        TestPage{Items: []string{"a", "b"}},
		},
		{
			PageControl: lark.PageControl{HasMore: true, NextPageToken: token("t2")},
			Rest:        TestPage{Items: []string{"c"}},
		},
		{
			PageControl: lark.PageControl{HasMore: false},
			Rest:        TestPage{Items: []string{"d"}},
		},
	}
}

func newRequest() *lark.Request {
	return &lark.Request{
		Method:     "GET",
		Path:       "/open-apis/im/v1/chats/:chat_id/members",
		PathParams: map[string]string{"chat_id": "oc_1"},
		Query:      map[string][]string{"member_id_type": {"open_id"}},
		Headers:    map[string]string{"X-Test": "1"},
	}
}

func TestIterator_Termination(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages()}
	it := lark.NewIterator(m.fetch, newRequest(), nil)

	var got [][]string
	for page := range it.All(context.Background()) {
		require.NotNil(t, page)
		got = append(got, page.Items)
	}

	assert.Equal(t, [][]string{{"a", "b"}, {"c"}, {"d"}}, got)
	require.Len(t, m.requests, 3)
	require.NoError(t, it.Err())
	assert.Equal(t, 3, it.Pages())

	assert.False(t, m.requests[0].Query.Has(lark.QueryPageToken))
	assert.Equal(t, "t1", m.requests[1].Query.Get(lark.QueryPageToken))
	assert.Equal(t, "t2", m.requests[2].Query.Get(lark.QueryPageToken))

	for _, req := range m.requests {
		assert.Equal(t, "/open-apis/im/v1/chats/:chat_id/members", req.Path)
		assert.Equal(t, "oc_1", req.PathParams["chat_id"])
		assert.Equal(t, "open_id", req.Query.Get("member_id_type"))
		assert.Equal(t, "1", req.Headers["X-Test"])
	}

	v, ok := it.Next(context.Background())
	assert.Nil(t, v)
	assert.False(t, ok)
	assert.Len(t, m.requests, 3)
}

func TestIterator_NPlusOnePages(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			t.Parallel()

			var pages []*lark.ListPage[TestPage]
			for i := range n {
				pages = append(pages, &lark.ListPage[TestPage]{
					PageControl: lark.PageControl{HasMore: true, PageToken: token(fmt.Sprintf("p%d", i))},
				})
			}

			pages = append(pages, &lark.ListPage[TestPage]{})

			m := &mockFetcher{pages: pages}
			it := lark.NewIterator(m.fetch, newRequest(), nil)

			count := 0
			for range it.All(context.Background()) {
				count++
			}

			assert.Equal(t, n+1, count)
			assert.Len(t, m.requests, n+1)

			for k := 1; k <= n; k++ {
				assert.Equal(t, fmt.Sprintf("p%d", k-1), m.requests[k].Query.Get(lark.QueryPageToken))
			}
		})
	}
}

func TestIterator_FaultContainment(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages(), failAt: 2}
	logger := &recordingLogger{}
	it := lark.NewIterator(m.fetch, newRequest(), logger)

	var got []*TestPage
	for page := range it.All(context.Background()) {
		got = append(got, page)
	}

	require.Len(t, got, 2)
	assert.Equal(t, []string{"a", "b"}, got[0].Items)
	assert.Nil(t, got[1])
	assert.Len(t, m.requests, 2)
	require.ErrorIs(t, it.Err(), errFetch)
	assert.Equal(t, []string{"Failed to fetch list page"}, logger.errors)

	v, ok := it.Next(context.Background())
	assert.Nil(t, v)
	assert.False(t, ok)
	assert.Len(t, m.requests, 2)
}

func TestIterator_Step(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages(), failAt: 2}
	it := lark.NewIterator(m.fetch, newRequest(), nil)
	ctx := context.Background()

	first := it.Step(ctx)
	assert.Equal(t, lark.ResultItem, first.Kind)
	assert.Equal(t, []string{"a", "b"}, first.Value.Items)

	second := it.Step(ctx)
	assert.Equal(t, lark.ResultFault, second.Kind)
	require.ErrorIs(t, second.Err, errFetch)
	assert.Nil(t, second.Value)

	third := it.Step(ctx)
	assert.Equal(t, lark.ResultEnd, third.Kind)
	assert.Equal(t, "end", third.Kind.String())
	assert.Len(t, m.requests, 2)
}

func TestIterator_Seq2(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages(), failAt: 3}
	it := lark.NewIterator(m.fetch, newRequest(), nil)

	var items []string

	var iterErr error

	for page, err := range it.Seq2(context.Background()) {
		if err != nil {
			iterErr = err

			break
		}

		items = append(items, page.Items...)
	}

	assert.Equal(t, []string{"a", "b", "c"}, items)
	require.ErrorIs(t, iterErr, errFetch)
}

func TestIterator_EarlyBreak(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages()}
	it := lark.NewIterator(m.fetch, newRequest(), nil)

	for range it.All(context.Background()) {
		break
	}

	assert.Len(t, m.requests, 1)
}

func TestIterator_NilPage(t *testing.T) {
	t.Parallel()

	fetch := func(context.Context, *lark.Request) (*lark.ListPage[TestPage], error) {
		return nil, nil
	}

	it := lark.NewIterator(fetch, nil, nil)
	res := it.Step(context.Background())
	assert.Equal(t, lark.ResultFault, res.Kind)
	require.ErrorIs(t, res.Err, lark.ErrEmptyPage)
}

func TestIterator_CanceledContext(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages()}
	it := lark.NewIterator(m.fetch, newRequest(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, ok := it.Next(ctx)
	assert.Nil(t, v)
	assert.True(t, ok)
	require.ErrorIs(t, it.Err(), context.Canceled)
	assert.Empty(t, m.requests)
}

func TestIterator_DoesNotMutateRequest(t *testing.T) {
	t.Parallel()

	req := newRequest()
	m := &mockFetcher{pages: threePages()}
	it := lark.NewIterator(m.fetch, req, nil)
	it.SetPageSize(20)

	for range it.All(context.Background()) {
	}

	assert.False(t, req.Query.Has(lark.QueryPageToken))
	assert.False(t, req.Query.Has(lark.QueryPageSize))
	assert.Equal(t, "20", m.requests[2].Query.Get(lark.QueryPageSize))
}

func TestCollectPages(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages()}
	pages, err := lark.CollectPages(context.Background(), lark.NewIterator(m.fetch, newRequest(), nil), nil)
	require.NoError(t, err)
	assert.Len(t, pages, 3)
}

func TestCollectPages_WithMaxPages(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages()}
	options := &lark.PaginationOptions{PageSize: 2, MaxPages: 2}

	pages, err := lark.CollectPages(context.Background(), lark.NewIterator(m.fetch, newRequest(), nil), options)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Len(t, m.requests, 2)
	assert.Equal(t, "2", m.requests[0].Query.Get(lark.QueryPageSize))
}

func TestIterator_HasMore(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages()}
	it := lark.NewIterator(m.fetch, newRequest(), nil)
	assert.True(t, it.HasMore())

	_, err := lark.CollectPages(context.Background(), it, &lark.PaginationOptions{MaxPages: 2})
	require.NoError(t, err)
	assert.True(t, it.HasMore())

	_, err = lark.CollectPages(context.Background(), it, &lark.PaginationOptions{MaxPages: 1})
	require.NoError(t, err)
	assert.False(t, it.HasMore(), "last page had has_more=false")
	assert.Len(t, m.requests, 3)
}

func TestCollectPages_PropagatesError(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages(), failAt: 2}

	pages, err := lark.CollectPages(context.Background(), lark.NewIterator(m.fetch, newRequest(), nil), nil)
	require.ErrorIs(t, err, errFetch)
	assert.Len(t, pages, 1)
}

func TestStreamPages(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages()}
	resultChan := lark.StreamPages(context.Background(), lark.NewIterator(m.fetch, newRequest(), nil), nil)

	var items []string

	pageCount := 0

	for result := range resultChan {
		require.NoError(t, result.Err)
		items = append(items, result.Page.Items...)
		pageCount++
	}

	assert.Equal(t, 3, pageCount)
	assert.Equal(t, []string{"a", "b", "c", "d"}, items)
}

func TestStreamPages_Error(t *testing.T) {
	t.Parallel()

	m := &mockFetcher{pages: threePages(), failAt: 1}

	var results []lark.PageResult[TestPage]
	for r := range lark.StreamPages(context.Background(), lark.NewIterator(m.fetch, newRequest(), nil), nil) {
		results = append(results, r)
	}

	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, errFetch)
	assert.Nil(t, results[0].Page)
}
