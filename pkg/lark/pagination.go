package lark

import (
	"context"
	"fmt"
	"iter"
	"strconv"
)

// PageFetcher performs a single list call.
type PageFetcher[R any] func(ctx context.Context, req *Request) (*ListPage[R], error)

// ResultKind tags the outcome of one iteration step.
type ResultKind int

const (
	// ResultItem carries the remainder of a fetched page.
	ResultItem ResultKind = iota
	// ResultEnd reports that the last page has been yielded.
	ResultEnd
	// ResultFault reports a fetch failure. Iteration stops after it.
	ResultFault
)

// String returns the name of the kind.
func (k ResultKind) String() string {
	switch k {
	case ResultItem:
		return "item"
	case ResultEnd:
		return "end"
	case ResultFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Result is one step of an Iterator.
type Result[R any] struct {
	Kind  ResultKind
	Value *R
	Err   error
}

// Iterator walks a cursor-paginated list endpoint page by page. It yields
// the remainder of every page, fetching the next page only when asked. An
// Iterator is single-pass and must not be used from several goroutines.
type Iterator[R any] struct {
	fetch  PageFetcher[R]
	req    *Request
	logger Logger

	pageToken *string
	hasMore   bool
	started   bool
	pages     int
	err       error
}

// NewIterator creates an iterator over the pages returned by fetch for req.
// The request is copied on every call; only its page_token parameter changes.
func NewIterator[R any](fetch PageFetcher[R], req *Request, logger Logger) *Iterator[R] {
	if req == nil {
		req = &Request{}
	}

	if logger == nil {
		logger = NopLogger{}
	}

	return &Iterator[R]{
		fetch:   fetch,
		req:     req.Clone(),
		logger:  logger,
		hasMore: true,
	}
}

// SetPageSize sets the page_size query parameter. It has no effect once the
// first page has been fetched.
func (it *Iterator[R]) SetPageSize(size int) {
	if it.started || size <= 0 {
		return
	}

	it.req.Query.Set(QueryPageSize, strconv.Itoa(size))
}

// Pages returns the number of pages fetched so far.
func (it *Iterator[R]) Pages() int {
	return it.pages
}

// HasMore reports whether another page remains to be fetched. It is true
// before the first fetch and false after a failure.
func (it *Iterator[R]) HasMore() bool {
	return it.hasMore
}

// Err returns the fetch failure that ended iteration, if any.
func (it *Iterator[R]) Err() error {
	return it.err
}

// Step fetches the next page and reports it as a tagged result. After
// ResultEnd or ResultFault every further call returns ResultEnd without
// fetching.
func (it *Iterator[R]) Step(ctx context.Context) Result[R] {
	if !it.hasMore {
		return Result[R]{Kind: ResultEnd}
	}

	it.started = true

	page, err := it.fetchPage(ctx)
	if err != nil {
		it.hasMore = false
		it.err = err

		it.logger.Error("Failed to fetch list page", map[string]interface{}{
			"method": it.req.Method,
			"path":   it.req.Path,
			"page":   it.pages + 1,
			"error":  err.Error(),
		})

		return Result[R]{Kind: ResultFault, Err: err}
	}

	it.pages++
	it.hasMore = page.HasMore
	it.pageToken = page.Cursor()

	return Result[R]{Kind: ResultItem, Value: &page.Rest}
}

func (it *Iterator[R]) fetchPage(ctx context.Context) (*ListPage[R], error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", it.req.Path, err)
	}

	page, err := it.fetch(ctx, it.req.WithPageToken(it.pageToken))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", it.req.Path, err)
	}

	if page == nil {
		return nil, fmt.Errorf("listing %s: %w", it.req.Path, ErrEmptyPage)
	}

	return page, nil
}

// Next returns the next page remainder. A fetch failure is logged and
// reported once as (nil, true); afterwards, and after the last page, Next
// returns (nil, false). Use Step or Err to tell a failure from a page.
func (it *Iterator[R]) Next(ctx context.Context) (*R, bool) {
	res := it.Step(ctx)

	switch res.Kind {
	case ResultItem:
		return res.Value, true
	case ResultFault:
		return nil, true
	default:
		return nil, false
	}
}

// All ranges over the page remainders with the same contract as Next: a
// failure yields a single nil and ends the sequence.
func (it *Iterator[R]) All(ctx context.Context) iter.Seq[*R] {
	return func(yield func(*R) bool) {
		for {
			v, ok := it.Next(ctx)
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Seq2 ranges over the page remainders and reports a fetch failure as the
// error of the final pair.
func (it *Iterator[R]) Seq2(ctx context.Context) iter.Seq2[*R, error] {
	return func(yield func(*R, error) bool) {
		for {
			res := it.Step(ctx)

			switch res.Kind {
			case ResultItem:
				if !yield(res.Value, nil) {
					return
				}
			case ResultFault:
				yield(nil, res.Err)

				return
			default:
				return
			}
		}
	}
}

// PaginationOptions limits CollectPages and StreamPages.
type PaginationOptions struct {
	PageSize int // page_size query parameter, 0 keeps the server default
	MaxPages int // 0 means no limit
}

// DefaultPaginationOptions returns options without limits.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{}
}

// CollectPages drains the iterator and returns every page remainder. Unlike
// Next it returns the fetch error together with the pages collected so far.
func CollectPages[R any](ctx context.Context, it *Iterator[R], opts *PaginationOptions) ([]*R, error) {
	if opts == nil {
		opts = DefaultPaginationOptions()
	}

	it.SetPageSize(opts.PageSize)

	var pages []*R

	for opts.MaxPages <= 0 || len(pages) < opts.MaxPages {
		res := it.Step(ctx)

		switch res.Kind {
		case ResultItem:
			pages = append(pages, res.Value)
		case ResultFault:
			return pages, res.Err
		default:
			return pages, nil
		}
	}

	return pages, nil
}

// PageResult is one element of the StreamPages channel.
type PageResult[R any] struct {
	Page *R
	Err  error
}

// StreamPages fetches pages in a goroutine and delivers them on the returned
// channel. The channel is closed when iteration ends or ctx is done.
func StreamPages[R any](ctx context.Context, it *Iterator[R], opts *PaginationOptions) <-chan PageResult[R] {
	if opts == nil {
		opts = DefaultPaginationOptions()
	}

	it.SetPageSize(opts.PageSize)

	out := make(chan PageResult[R])

	go func() {
		defer close(out)

		for sent := 0; opts.MaxPages <= 0 || sent < opts.MaxPages; sent++ {
			res := it.Step(ctx)
			if res.Kind == ResultEnd {
				return
			}

			select {
			case out <- PageResult[R]{Page: res.Value, Err: res.Err}:
			case <-ctx.Done():
				return
			}

			if res.Kind == ResultFault {
				return
			}
		}
	}()

	return out
}
