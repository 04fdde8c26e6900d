package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/larksuite/oapi-client/pkg/pbbp2"
	"github.com/larksuite/oapi-client/pkg/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateway is a fake event gateway serving discovery and the websocket.
type gateway struct {
	t            *testing.T
	server       *httptest.Server
	upgrader     websocket.Upgrader
	conns        chan *websocket.Conn
	discoveries  atomic.Int32
	code         int
	clientConfig map[string]int
	rejectDial   bool
}

func newGateway(t *testing.T, configure func(*gateway)) *gateway {
	t.Helper()

	g := &gateway{t: t, conns: make(chan *websocket.Conn, 4)}
	if configure != nil {
		configure(g)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback/ws/endpoint", g.discover)
	mux.HandleFunc("/ws", g.accept)

	g.server = httptest.NewServer(mux)
	t.Cleanup(g.server.Close)

	return g
}

func (g *gateway) discover(w http.ResponseWriter, r *http.Request) {
	g.discoveries.Add(1)

	var body map[string]string

	_ = json.NewDecoder(r.Body).Decode(&body)
	assert.Equal(g.t, http.MethodPost, r.Method)
	assert.Equal(g.t, "cli_app", body["AppID"])
	assert.Equal(g.t, "secret", body["AppSecret"])

	data := map[string]interface{}{
		"URL": "ws" + strings.TrimPrefix(g.server.URL, "http") + "/ws?device_id=d1&service_id=42",
	}
	if g.clientConfig != nil {
		data["ClientConfig"] = g.clientConfig
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": g.code, "msg": "msg", "data": data})
}

func (g *gateway) accept(w http.ResponseWriter, r *http.Request) {
	if g.rejectDial {
		w.Header().Set("Handshake-Status", "403")
		w.Header().Set("Handshake-Msg", "forbidden")
		w.WriteHeader(http.StatusForbidden)

		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	g.conns <- conn
}

func (g *gateway) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()

	select {
	case conn := <-g.conns:
		t.Cleanup(func() { _ = conn.Close() })

		return conn
	case <-time.After(5 * time.Second):
		t.Fatal("client did not connect")

		return nil
	}
}

// readFrame returns the next frame that is not a ping.
func readFrame(t *testing.T, conn *websocket.Conn) *pbbp2.Frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	for {
		messageType, data, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.BinaryMessage, messageType)

		frame, err := pbbp2.UnmarshalFrame(data)
		require.NoError(t, err)

		if v, _ := frame.HeaderValue(ws.HeaderType); v == string(ws.MessageTypePing) {
			continue
		}

		return frame
	}
}

func writeFrame(t *testing.T, conn *websocket.Conn, frame *pbbp2.Frame) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, frame.Marshal()))
}

func dataFrame(messageID string, sum, seq int, payload string) *pbbp2.Frame {
	return &pbbp2.Frame{
		SeqID:   uint64(seq + 1),
		LogID:   99,
		Service: 42,
		Method:  int32(ws.FrameTypeData),
		Headers: []pbbp2.Header{
			{Key: ws.HeaderType, Value: string(ws.MessageTypeEvent)},
			{Key: ws.HeaderMessageID, Value: messageID},
			{Key: ws.HeaderSum, Value: strconv.Itoa(sum)},
			{Key: ws.HeaderSeq, Value: strconv.Itoa(seq)},
			{Key: ws.HeaderTraceID, Value: "trace-" + messageID},
		},
		Payload: []byte(payload),
	}
}

type startResult struct {
	err error
}

func start(t *testing.T, client *ws.Client) (context.CancelFunc, <-chan startResult) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan startResult, 1)

	go func() {
		done <- startResult{err: client.Start(ctx)}
	}()

	t.Cleanup(cancel)

	return cancel, done
}

func waitStart(t *testing.T, done <-chan startResult) error {
	t.Helper()

	select {
	case res := <-done:
		return res.err
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return")

		return nil
	}
}

func decodeResponse(t *testing.T, frame *pbbp2.Frame) map[string]interface{} {
	t.Helper()

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(frame.Payload, &resp))

	return resp
}

func TestClient_PingAndEvent(t *testing.T) {
	t.Parallel()

	g := newGateway(t, nil)
	events := make(chan *ws.Event, 1)

	client := ws.NewClient("cli_app", "secret", ws.HandlerFunc(func(ctx context.Context, event *ws.Event) ([]byte, error) {
		events <- event

		return []byte(`{"ok":true}`), nil
	}), ws.WithDomain(g.server.URL))

	cancel, done := start(t, client)
	conn := g.nextConn(t)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	ping, err := pbbp2.UnmarshalFrame(data)
	require.NoError(t, err)
	assert.Equal(t, int32(ws.FrameTypeControl), ping.Method)
	assert.Equal(t, int32(42), ping.Service)
	typ, _ := ping.HeaderValue(ws.HeaderType)
	assert.Equal(t, "ping", typ)
	assert.Equal(t, int32(42), client.ServiceID())
	assert.True(t, client.Connected())

	payload := `{"schema":"2.0","header":{"event_type":"im.message.receive_v1"},"event":{}}`
	writeFrame(t, conn, dataFrame("m1", 1, 0, payload))

	select {
	case event := <-events:
		assert.Equal(t, ws.MessageTypeEvent, event.Type)
		assert.Equal(t, "m1", event.MessageID)
		assert.Equal(t, "trace-m1", event.TraceID)
		assert.Equal(t, "im.message.receive_v1", event.EventType())
		assert.JSONEq(t, payload, string(event.Payload))
	case <-time.After(5 * time.Second):
		t.Fatal("event not dispatched")
	}

	reply := readFrame(t, conn)
	assert.Equal(t, uint64(99), reply.LogID)
	id, _ := reply.HeaderValue(ws.HeaderMessageID)
	assert.Equal(t, "m1", id)
	_, ok := reply.HeaderValue(ws.HeaderBizRt)
	assert.True(t, ok)

	resp := decodeResponse(t, reply)
	assert.InDelta(t, 200, resp["code"], 0)
	assert.Equal(t, "eyJvayI6dHJ1ZX0=", resp["data"]) // base64 of {"ok":true}

	cancel()
	require.ErrorIs(t, waitStart(t, done), context.Canceled)
}

func TestClient_ChunkedEvent(t *testing.T) {
	t.Parallel()

	g := newGateway(t, nil)
	events := make(chan *ws.Event, 2)

	client := ws.NewClient("cli_app", "secret", ws.HandlerFunc(func(ctx context.Context, event *ws.Event) ([]byte, error) {
		events <- event

		return nil, nil
	}), ws.WithDomain(g.server.URL))

	start(t, client)
	conn := g.nextConn(t)

	writeFrame(t, conn, dataFrame("m2", 2, 1, `"world"}`))
	writeFrame(t, conn, dataFrame("m2", 2, 0, `{"hello":`))

	select {
	case event := <-events:
		assert.JSONEq(t, `{"hello":"world"}`, string(event.Payload))
	case <-time.After(5 * time.Second):
		t.Fatal("event not dispatched")
	}

	reply := readFrame(t, conn)
	seq, _ := reply.HeaderValue(ws.HeaderSeq)
	assert.Equal(t, "0", seq)
	assert.InDelta(t, 200, decodeResponse(t, reply)["code"], 0)
	assert.Empty(t, events)
}

func TestClient_HandlerError(t *testing.T) {
	t.Parallel()

	g := newGateway(t, nil)

	client := ws.NewClient("cli_app", "secret", ws.HandlerFunc(func(context.Context, *ws.Event) ([]byte, error) {
		return nil, errors.New("boom")
	}), ws.WithDomain(g.server.URL))

	start(t, client)
	conn := g.nextConn(t)

	writeFrame(t, conn, dataFrame("m3", 1, 0, `{}`))

	reply := readFrame(t, conn)
	assert.InDelta(t, 500, decodeResponse(t, reply)["code"], 0)
}

func TestClient_ServerConfig(t *testing.T) {
	t.Parallel()

	g := newGateway(t, func(g *gateway) {
		g.clientConfig = map[string]int{"PingInterval": 90, "ReconnectCount": 3}
	})

	client := ws.NewClient("cli_app", "secret", nil, ws.WithDomain(g.server.URL))

	start(t, client)
	conn := g.nextConn(t)

	require.Eventually(t, func() bool { return client.PingInterval() == 90*time.Second }, 5*time.Second, 10*time.Millisecond)

	pong := &pbbp2.Frame{
		Method:  int32(ws.FrameTypeControl),
		Service: 42,
		Headers: []pbbp2.Header{{Key: ws.HeaderType, Value: string(ws.MessageTypePong)}},
		Payload: []byte(`{"PingInterval":7}`),
	}
	writeFrame(t, conn, pong)

	require.Eventually(t, func() bool { return client.PingInterval() == 7*time.Second }, 5*time.Second, 10*time.Millisecond)
}

func TestClient_Reconnect(t *testing.T) {
	t.Parallel()

	g := newGateway(t, nil)

	client := ws.NewClient("cli_app", "secret", nil,
		ws.WithDomain(g.server.URL),
		ws.WithReconnectPolicy(3, 10*time.Millisecond, 0),
	)

	cancel, done := start(t, client)

	first := g.nextConn(t)
	require.NoError(t, first.Close())

	g.nextConn(t)
	assert.Equal(t, int32(2), g.discoveries.Load())

	cancel()
	require.ErrorIs(t, waitStart(t, done), context.Canceled)
}

func TestClient_PartialServerConfigKeepsReconnecting(t *testing.T) {
	t.Parallel()

	g := newGateway(t, func(g *gateway) {
		g.clientConfig = map[string]int{"PingInterval": 90}
	})

	client := ws.NewClient("cli_app", "secret", nil,
		ws.WithDomain(g.server.URL),
		ws.WithReconnectPolicy(-1, 10*time.Millisecond, 0),
	)

	cancel, done := start(t, client)

	first := g.nextConn(t)
	require.Eventually(t, func() bool { return client.PingInterval() == 90*time.Second }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, first.Close())

	g.nextConn(t)
	assert.Equal(t, int32(2), g.discoveries.Load())

	cancel()
	require.ErrorIs(t, waitStart(t, done), context.Canceled)
}

func TestClient_NoReconnect(t *testing.T) {
	t.Parallel()

	g := newGateway(t, nil)

	client := ws.NewClient("cli_app", "secret", nil,
		ws.WithDomain(g.server.URL),
		ws.WithAutoReconnect(false),
	)

	_, done := start(t, client)

	conn := g.nextConn(t)
	require.NoError(t, conn.Close())

	require.ErrorIs(t, waitStart(t, done), ws.ErrConnectionClosed)
	assert.False(t, client.Connected())
}

func TestClient_StartErrors(t *testing.T) {
	t.Parallel()
	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()

		err := ws.NewClient("", "", nil).Start(context.Background())
		require.ErrorIs(t, err, lark.ErrAppCredentials)
	})

	t.Run("discovery error code", func(t *testing.T) {
		t.Parallel()

		g := newGateway(t, func(g *gateway) { g.code = 1000040343 })

		err := ws.NewClient("cli_app", "secret", nil, ws.WithDomain(g.server.URL)).Start(context.Background())
		require.ErrorIs(t, err, ws.ErrEndpointDiscovery)

		apiErr := &lark.APIError{}
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 1000040343, apiErr.Code)
	})

	t.Run("handshake rejected", func(t *testing.T) {
		t.Parallel()

		g := newGateway(t, func(g *gateway) { g.rejectDial = true })

		err := ws.NewClient("cli_app", "secret", nil, ws.WithDomain(g.server.URL)).Start(context.Background())
		require.ErrorIs(t, err, ws.ErrHandshakeFailed)
		assert.Contains(t, err.Error(), "forbidden")
	})
}
