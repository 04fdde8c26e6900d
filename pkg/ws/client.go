package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/larksuite/oapi-client/internal/constants"
	larkhttp "github.com/larksuite/oapi-client/internal/http"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/larksuite/oapi-client/pkg/pbbp2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/larksuite/oapi-client/pkg/ws"

// Option configures a Client.
type Option func(*Client)

// WithDomain sets the open platform base URL used for endpoint discovery.
func WithDomain(domain string) Option {
	return func(c *Client) {
		if domain != "" {
			c.domain = domain
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger lark.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDialer replaces the websocket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) {
		if dialer != nil {
			c.dialer = dialer
		}
	}
}

// WithAutoReconnect controls whether Start reconnects after the connection
// drops. It is on by default.
func WithAutoReconnect(enabled bool) Option {
	return func(c *Client) {
		c.autoReconnect = enabled
	}
}

// WithReconnectPolicy sets the number of reconnect attempts (-1 for no
// limit), the wait between attempts and the upper bound of the random delay
// before the first one. Values pushed by the server take precedence.
func WithReconnectPolicy(count int, interval, nonce time.Duration) Option {
	return func(c *Client) {
		c.reconnectCount = count
		c.reconnectInterval = interval
		c.reconnectNonce = nonce
	}
}

// WithPingInterval sets the ping interval used until the server pushes one.
func WithPingInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pingInterval = interval
		}
	}
}

// WithTracer sets the tracer used for event spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// Client keeps a long connection to the event gateway, answers pings and
// dispatches pushed events to a handler.
type Client struct {
	appID         string
	appSecret     string
	domain        string
	handler       EventHandler
	logger        lark.Logger
	dialer        *websocket.Dialer
	httpClient    *larkhttp.Client
	autoReconnect bool
	tracer        trace.Tracer
	chunks        *chunkBuffer

	mu                sync.Mutex
	conn              *websocket.Conn
	serviceID         int32
	pingInterval      time.Duration
	reconnectCount    int
	reconnectInterval time.Duration
	reconnectNonce    time.Duration

	writeMu sync.Mutex
}

// NewClient creates a long connection client for an application. A nil
// handler acknowledges every event without data.
func NewClient(appID, appSecret string, handler EventHandler, opts ...Option) *Client {
	if handler == nil {
		handler = HandlerFunc(func(context.Context, *Event) ([]byte, error) { return nil, nil })
	}

	c := &Client{
		appID:             appID,
		appSecret:         appSecret,
		domain:            lark.DefaultEndpoint,
		handler:           handler,
		logger:            lark.NopLogger{},
		dialer:            &websocket.Dialer{HandshakeTimeout: constants.HandshakeTimeout},
		autoReconnect:     true,
		chunks:            newChunkBuffer(constants.ChunkExpiry),
		pingInterval:      constants.DefaultPingInterval,
		reconnectCount:    -1,
		reconnectInterval: constants.DefaultReconnectInterval,
		reconnectNonce:    constants.DefaultReconnectNonce,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}

	c.httpClient = larkhttp.NewClient(c.domain, nil,
		larkhttp.WithLogger(c.logger),
		larkhttp.WithTimeout(constants.ShortHTTPTimeout),
	)

	return c
}

// Start connects and serves the connection until ctx is done. It returns
// the error of the first connection attempt, ctx.Err() after cancellation,
// or ErrConnectionClosed when the connection cannot be restored.
func (c *Client) Start(ctx context.Context) error {
	if c.appID == "" || c.appSecret == "" {
		return lark.ErrAppCredentials
	}

	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}

	for {
		err := c.serve(ctx, conn)

		c.closeConn(conn)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("Long connection lost", map[string]interface{}{"error": err.Error()})

		if !c.autoReconnect {
			return fmt.Errorf("%w: %w", ErrConnectionClosed, err)
		}

		conn, err = c.reconnect(ctx)
		if err != nil {
			return err
		}
	}
}

// PingInterval returns the interval between pings.
func (c *Client) PingInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pingInterval
}

// ServiceID returns the service id of the current connection.
func (c *Client) ServiceID() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.serviceID
}

// Connected reports whether a connection is open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *Client) discover(ctx context.Context) (*endpoint, error) {
	resp, err := c.httpClient.Do(ctx, &lark.Request{
		Method:  http.MethodPost,
		Path:    constants.EndpointDiscoveryPath,
		Headers: map[string]string{"locale": "zh"},
		Body:    endpointRequest{AppID: c.appID, AppSecret: c.appSecret},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEndpointDiscovery, err)
	}

	var ep endpoint
	if err := json.Unmarshal(resp.Data, &ep); err != nil {
		return nil, fmt.Errorf("%w: decoding endpoint: %w", ErrEndpointDiscovery, err)
	}

	if ep.URL == "" {
		return nil, ErrMissingURL
	}

	return &ep, nil
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	ep, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}

	connURL, err := url.Parse(ep.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %w", ErrEndpointDiscovery, ep.URL, err)
	}

	serviceID, _ := strconv.ParseInt(connURL.Query().Get(queryServiceID), 10, 32)

	conn, resp, err := c.dialer.DialContext(ctx, ep.URL, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()

			return nil, handshakeError(resp, err)
		}

		return nil, fmt.Errorf("dialing long connection: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.serviceID = int32(serviceID)
	c.mu.Unlock()

	if ep.ClientConfig != nil {
		c.applyConfig(ep.ClientConfig)
	}

	c.logger.Info("Long connection established", map[string]interface{}{
		"device_id":  connURL.Query().Get(queryDeviceID),
		"service_id": serviceID,
	})

	return conn, nil
}

func handshakeError(resp *http.Response, err error) error {
	status := resp.Header.Get(headerHandshakeStatus)
	if status == "" {
		status = strconv.Itoa(resp.StatusCode)
	}

	msg := resp.Header.Get(headerHandshakeMsg)
	if code := resp.Header.Get(headerHandshakeAuthErrCode); code != "" {
		msg += " (auth error " + code + ")"
	}

	return fmt.Errorf("%w: status %s: %s: %w", ErrHandshakeFailed, status, msg, err)
}

func (c *Client) reconnect(ctx context.Context) (*websocket.Conn, error) {
	c.mu.Lock()
	count, interval, nonce := c.reconnectCount, c.reconnectInterval, c.reconnectNonce
	c.mu.Unlock()

	if nonce > 0 {
		if err := sleep(ctx, rand.N(nonce)); err != nil {
			return nil, err
		}
	}

	for attempt := 0; count < 0 || attempt < count; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, interval); err != nil {
				return nil, err
			}
		}

		conn, err := c.connect(ctx)
		if err == nil {
			return conn, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.Warn("Reconnect failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	return nil, fmt.Errorf("%w: reconnect attempts exhausted", ErrConnectionClosed)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// serve runs the ping loop and reads frames until the connection fails or
// ctx is done.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.pingLoop(connCtx, conn)

	go func() {
		<-connCtx.Done()
		_ = conn.Close()
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		if messageType != websocket.BinaryMessage {
			c.logger.Warn("Ignoring non-binary message", map[string]interface{}{"type": messageType})

			continue
		}

		frame, err := pbbp2.UnmarshalFrame(data)
		if err != nil {
			c.logger.Error("Failed to decode frame", map[string]interface{}{"error": err.Error()})

			continue
		}

		c.handleFrame(ctx, conn, frame)
	}
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		c.mu.Lock()
		ping := &pbbp2.Frame{
			Method:  int32(FrameTypeControl),
			Service: c.serviceID,
			Headers: []pbbp2.Header{{Key: HeaderType, Value: string(MessageTypePing)}},
		}
		interval := c.pingInterval
		c.mu.Unlock()

		if err := c.writeFrame(conn, ping); err != nil {
			c.logger.Warn("Failed to send ping", map[string]interface{}{"error": err.Error()})

			return
		}

		if err := sleep(ctx, interval); err != nil {
			return
		}
	}
}

func (c *Client) handleFrame(ctx context.Context, conn *websocket.Conn, frame *pbbp2.Frame) {
	switch FrameType(frame.Method) {
	case FrameTypeControl:
		c.handleControl(frame)
	case FrameTypeData:
		c.handleData(ctx, conn, frame)
	default:
		c.logger.Warn("Ignoring frame with unknown method", map[string]interface{}{"method": frame.Method})
	}
}

func (c *Client) handleControl(frame *pbbp2.Frame) {
	msgType, _ := frame.HeaderValue(HeaderType)
	if MessageType(msgType) != MessageTypePong || len(frame.Payload) == 0 {
		return
	}

	var config ServerConfig
	if err := json.Unmarshal(frame.Payload, &config); err != nil {
		c.logger.Warn("Failed to decode pong payload", map[string]interface{}{"error": err.Error()})

		return
	}

	c.applyConfig(&config)
}

func (c *Client) applyConfig(config *ServerConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if config.ReconnectCount != nil {
		c.reconnectCount = *config.ReconnectCount
	}

	if config.ReconnectInterval > 0 {
		c.reconnectInterval = seconds(config.ReconnectInterval)
	}

	if config.ReconnectNonce > 0 {
		c.reconnectNonce = seconds(config.ReconnectNonce)
	}

	if config.PingInterval > 0 {
		c.pingInterval = seconds(config.PingInterval)
	}
}

func (c *Client) handleData(ctx context.Context, conn *websocket.Conn, frame *pbbp2.Frame) {
	msgType, _ := frame.HeaderValue(HeaderType)
	messageID, _ := frame.HeaderValue(HeaderMessageID)
	traceID, _ := frame.HeaderValue(HeaderTraceID)

	sum := headerInt(frame, HeaderSum, 1)
	seq := headerInt(frame, HeaderSeq, 0)

	payload, complete := c.chunks.add(messageID, sum, seq, frame.Payload, time.Now())
	if !complete {
		return
	}

	switch MessageType(msgType) {
	case MessageTypeEvent, MessageTypeCard:
	default:
		c.logger.Debug("Ignoring data frame", map[string]interface{}{"type": msgType})

		return
	}

	start := time.Now()
	resp := c.dispatch(ctx, &Event{
		Type:      MessageType(msgType),
		MessageID: messageID,
		TraceID:   traceID,
		Payload:   payload,
	})

	body, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("Failed to encode response", map[string]interface{}{"error": err.Error()})

		return
	}

	frame.SetHeader(HeaderBizRt, strconv.FormatInt(time.Since(start).Milliseconds(), 10))
	frame.Payload = body

	if err := c.writeFrame(conn, frame); err != nil {
		c.logger.Warn("Failed to send response", map[string]interface{}{
			"message_id": messageID,
			"error":      err.Error(),
		})
	}
}

func (c *Client) dispatch(ctx context.Context, event *Event) response {
	ctx, span := c.tracer.Start(ctx, "ws."+string(event.Type),
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("lark.message_id", event.MessageID),
			attribute.String("lark.trace_id", event.TraceID),
		),
	)
	defer span.End()

	data, err := c.handler.HandleEvent(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		c.logger.Error("Event handler failed", map[string]interface{}{
			"message_id": event.MessageID,
			"trace_id":   event.TraceID,
			"error":      err.Error(),
		})

		return response{Code: http.StatusInternalServerError}
	}

	return response{Code: http.StatusOK, Data: data}
}

func headerInt(frame *pbbp2.Frame, key string, fallback int) int {
	value, ok := frame.HeaderValue(key)
	if !ok {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return n
}

func (c *Client) writeFrame(conn *websocket.Conn, frame *pbbp2.Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return conn.WriteMessage(websocket.BinaryMessage, frame.Marshal())
}

func (c *Client) closeConn(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()

	_ = conn.Close()
}
