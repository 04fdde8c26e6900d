package lark_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	t.Parallel()

	chain := lark.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *lark.InterceptedRequest) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *lark.InterceptedRequest) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	req := &lark.InterceptedRequest{
		Method: http.MethodGet,
		Path:   "/open-apis/im/v1/chats",
	}

	err := chain.ExecuteRequestInterceptors(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
	assert.False(t, chain.Empty())
}

func TestInterceptorChain_RequestInterceptorError(t *testing.T) {
	t.Parallel()

	chain := lark.NewInterceptorChain()
	called := false
	boom := errors.New("boom")

	chain.AddRequestInterceptor(func(context.Context, *lark.InterceptedRequest) error { return boom })
	chain.AddRequestInterceptor(func(context.Context, *lark.InterceptedRequest) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &lark.InterceptedRequest{})
	require.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	t.Parallel()

	chain := lark.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddResponseInterceptor(func(ctx context.Context, req *lark.InterceptedRequest, resp *lark.InterceptedResponse) error {
		executionOrder = append(executionOrder, "first")

		return errors.New("first failed")
	})

	chain.AddResponseInterceptor(func(ctx context.Context, req *lark.InterceptedRequest, resp *lark.InterceptedResponse) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	err := chain.ExecuteResponseInterceptors(ctx, &lark.InterceptedRequest{}, &lark.InterceptedResponse{StatusCode: 200})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first failed")
	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := lark.HeaderInterceptor(map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Tt-Env":        "boe",
	})

	req := &lark.InterceptedRequest{Method: http.MethodGet}
	require.NoError(t, interceptor(context.Background(), req))

	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
	assert.Equal(t, "boe", req.Headers.Get("X-Tt-Env"))
}

func TestRateLimitInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := lark.RateLimitInterceptor(1, 1)
	req := &lark.InterceptedRequest{}

	require.NoError(t, interceptor(context.Background(), req))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := interceptor(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestMetricsInterceptors(t *testing.T) {
	t.Parallel()

	collector := lark.NewMetricsCollector()

	var changes int

	collector.SetOnChange(func(endpoint string, metrics lark.Metrics) {
		changes++
	})

	reqInterceptor := lark.MetricsRequestInterceptor(collector)
	respInterceptor := lark.MetricsResponseInterceptor(collector)
	ctx := context.Background()

	for _, status := range []int{200, 500} {
		req := &lark.InterceptedRequest{Method: http.MethodGet, Path: "/open-apis/lingo/v1/entities"}
		require.NoError(t, reqInterceptor(ctx, req))
		require.NoError(t, respInterceptor(ctx, req, &lark.InterceptedResponse{StatusCode: status}))
	}

	metrics, ok := collector.GetMetrics("GET /open-apis/lingo/v1/entities")
	require.True(t, ok)
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
	assert.Equal(t, 2, changes)
	assert.Equal(t, []string{"GET /open-apis/lingo/v1/entities"}, collector.Endpoints())

	_, ok = collector.GetMetrics("GET /missing")
	assert.False(t, ok)
}

func TestCircuitBreakerInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	breaker := lark.NewCircuitBreaker(&lark.CircuitBreakerConfig{
		Threshold: 2,
		Timeout:   time.Hour,
		Logger:    logger,
	})

	before := lark.CircuitBreakerRequestInterceptor(breaker)
	after := lark.CircuitBreakerResponseInterceptor(breaker)
	ctx := context.Background()

	call := func(resp *lark.InterceptedResponse) error {
		req := &lark.InterceptedRequest{}
		if err := before(ctx, req); err != nil {
			return err
		}

		return after(ctx, req, resp)
	}

	// API errors reported in the envelope do not count as failures.
	require.NoError(t, call(&lark.InterceptedResponse{StatusCode: 400, Error: &lark.APIError{StatusCode: 400}}))
	require.NoError(t, call(&lark.InterceptedResponse{StatusCode: 400, Error: &lark.APIError{StatusCode: 400}}))
	assert.Equal(t, gobreaker.StateClosed, breaker.State())

	require.NoError(t, call(&lark.InterceptedResponse{StatusCode: 503}))
	require.NoError(t, call(&lark.InterceptedResponse{Error: errors.New("dial tcp: refused")}))
	assert.Equal(t, gobreaker.StateOpen, breaker.State())

	err := call(&lark.InterceptedResponse{StatusCode: 200})
	require.ErrorIs(t, err, lark.ErrCircuitBreakerOpen)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, []string{"Circuit breaker state change"}, logger.warns)
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	t.Parallel()

	breaker := lark.NewCircuitBreaker(&lark.CircuitBreakerConfig{Threshold: 1, Timeout: time.Hour})

	before := lark.CircuitBreakerRequestInterceptor(breaker)
	after := lark.CircuitBreakerResponseInterceptor(breaker)
	ctx := context.Background()

	for _, cause := range []error{context.Canceled, context.DeadlineExceeded} {
		req := &lark.InterceptedRequest{}
		require.NoError(t, before(ctx, req))
		require.NoError(t, after(ctx, req, &lark.InterceptedResponse{Error: fmt.Errorf("executing GET /x: %w", cause)}))
	}

	assert.Equal(t, gobreaker.StateClosed, breaker.State())
}
