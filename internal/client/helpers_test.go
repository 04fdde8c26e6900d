package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/larksuite/oapi-client/internal/client"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/stretchr/testify/require"
)

// pagedServer serves a fixed sequence of list pages from one path, one page
// per call, and records every request.
type pagedServer struct {
	path   string
	method string
	pages  []map[string]interface{}

	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

func newPagedServer(t *testing.T, method, path string, pages ...map[string]interface{}) (*pagedServer, *httptest.Server) {
	t.Helper()

	ps := &pagedServer{path: path, method: method, pages: pages}
	server := httptest.NewServer(ps)
	t.Cleanup(server.Close)

	return ps, server
}

func (ps *pagedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ps.mu.Lock()
	ps.requests = append(ps.requests, r)
	ps.bodies = append(ps.bodies, body)
	call := len(ps.requests)
	ps.mu.Unlock()

	if r.URL.Path != ps.path || r.Method != ps.method || call > len(ps.pages) {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code": 0,
		"msg":  "success",
		"data": ps.pages[call-1],
	})
}

func (ps *pagedServer) calls() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	return len(ps.requests)
}

func (ps *pagedServer) request(i int) *http.Request {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	return ps.requests[i]
}

func (ps *pagedServer) body(i int) []byte {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	return ps.bodies[i]
}

// errorServer answers every request with the given envelope code.
func errorServer(t *testing.T, status, code int, msg string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": code, "msg": msg})
	}))
	t.Cleanup(server.Close)

	return server
}

// NewTestClient creates a client for baseURL with the given logger.
func NewTestClient(t *testing.T, baseURL string, logger lark.Logger) *client.Client {
	t.Helper()

	c, err := client.New(context.Background(), &lark.Config{
		Endpoint:    baseURL,
		AccessToken: "t-test",
		Logger:      logger,
	})
	require.NoError(t, err)

	return c
}

// recordingLogger keeps the messages logged at error level.
type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Debug(string, map[string]interface{}) {}
func (l *recordingLogger) Info(string, map[string]interface{})  {}
func (l *recordingLogger) Warn(string, map[string]interface{})  {}

func (l *recordingLogger) Error(msg string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.errors)
}
