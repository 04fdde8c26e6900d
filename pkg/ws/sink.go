package ws

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/nats-io/nats.go"
)

// SinkType selects where received events are forwarded.
type SinkType string

const (
	// SinkTypeLog writes events to the logger.
	SinkTypeLog SinkType = "log"

	// SinkTypeNATS publishes events to a NATS subject.
	SinkTypeNATS SinkType = "nats"

	// SinkTypeNone drops events.
	SinkTypeNone SinkType = "none"
)

// Sink receives every event of a long connection.
type Sink interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// SinkConfig configures NewSinkFromConfig.
type SinkConfig struct {
	// Type is the sink backend type
	Type SinkType

	// NATS sink configuration
	NATS *NATSConfig

	// Logger used by the log sink
	Logger lark.Logger
}

// NATSConfig configures the NATS sink.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	// Name is reported to the server as the connection name.
	Name string
}

// DefaultSinkConfig returns a log sink configuration.
func DefaultSinkConfig() *SinkConfig {
	return &SinkConfig{Type: SinkTypeLog}
}

// NewSinkFromConfig creates a sink backend from configuration.
func NewSinkFromConfig(config *SinkConfig) (Sink, error) {
	if config == nil {
		config = DefaultSinkConfig()
	}

	switch config.Type {
	case SinkTypeLog, "":
		return NewLogSink(config.Logger), nil

	case SinkTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSSink(config.NATS)

	case SinkTypeNone:
		return NoOpSink{}, nil

	default:
		return nil, fmt.Errorf("%w: %s", lark.ErrUnsupportedSinkType, config.Type)
	}
}

// SinkHandler returns an EventHandler that forwards every event to sink and
// acknowledges it without data.
func SinkHandler(sink Sink) EventHandler {
	return HandlerFunc(func(ctx context.Context, event *Event) ([]byte, error) {
		if err := sink.Publish(ctx, event); err != nil {
			return nil, fmt.Errorf("publishing event %s: %w", event.MessageID, err)
		}

		return nil, nil
	})
}

// LogSink writes a line per event.
type LogSink struct {
	logger lark.Logger
}

// NewLogSink creates a log sink. A nil logger drops events.
func NewLogSink(logger lark.Logger) *LogSink {
	if logger == nil {
		logger = lark.NopLogger{}
	}

	return &LogSink{logger: logger}
}

// Publish logs the event.
func (s *LogSink) Publish(ctx context.Context, event *Event) error {
	s.logger.Info("Event received", map[string]interface{}{
		"type":       event.EventType(),
		"message_id": event.MessageID,
		"trace_id":   event.TraceID,
		"payload":    string(event.Payload),
	})

	return nil
}

// Close does nothing.
func (s *LogSink) Close() error {
	return nil
}

// NoOpSink drops every event.
type NoOpSink struct{}

// Publish does nothing.
func (NoOpSink) Publish(context.Context, *Event) error {
	return nil
}

// Close does nothing.
func (NoOpSink) Close() error {
	return nil
}

// natsPublisher is the part of *nats.Conn used by NATSSink.
type natsPublisher interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSSink publishes each event payload to <prefix>.<event type>. The message
// id and trace id travel as message headers.
type NATSSink struct {
	conn   natsPublisher
	prefix string

	closeOnce sync.Once
}

// NewNATSSink connects to the configured server.
func NewNATSSink(config *NATSConfig) (*NATSSink, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	url := config.URL
	if url == "" {
		url = constants.DefaultNATSURL
	}

	opts := []nats.Option{}
	if config.Name != "" {
		opts = append(opts, nats.Name(config.Name))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return newNATSSink(conn, config.SubjectPrefix), nil
}

func newNATSSink(conn natsPublisher, prefix string) *NATSSink {
	if prefix == "" {
		prefix = constants.DefaultNATSSubjectPrefix
	}

	return &NATSSink{conn: conn, prefix: strings.TrimSuffix(prefix, ".")}
}

// Subject returns the subject an event is published to.
func (s *NATSSink) Subject(event *Event) string {
	return s.prefix + "." + event.EventType()
}

// Publish sends the event and waits for the server to acknowledge the flush.
func (s *NATSSink) Publish(ctx context.Context, event *Event) error {
	msg := nats.NewMsg(s.Subject(event))
	msg.Data = event.Payload
	msg.Header.Set("Lark-Message-Id", event.MessageID)

	if event.TraceID != "" {
		msg.Header.Set("Lark-Trace-Id", event.TraceID)
	}

	if err := s.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publishing to %s: %w", msg.Subject, err)
	}

	// nats.go refuses to flush without a deadline.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, constants.NATSFlushTimeout)
		defer cancel()
	}

	if err := s.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing NATS connection: %w", err)
	}

	return nil
}

// Close drains the connection.
func (s *NATSSink) Close() error {
	var err error

	s.closeOnce.Do(func() {
		err = s.conn.Drain()
	})

	return err
}
