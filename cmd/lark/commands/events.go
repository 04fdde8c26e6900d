package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/larksuite/oapi-client/pkg/ws"
	"github.com/spf13/cobra"
)

// NewEventsCommand creates the events command group.
func NewEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "Event subscriptions",
		Long:    "Receive pushed events over the long connection",
	}

	ips := &cobra.Command{
		Use:   "ips",
		Short: "Outbound IP addresses",
	}
	ips.AddCommand(newEventsIPsListCommand())

	cmd.AddCommand(newEventsListenCommand())
	cmd.AddCommand(ips)

	return cmd
}

func newEventsIPsListCommand() *cobra.Command {
	var opts pageOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List outbound IPs",
		Long:  "List the addresses the platform pushes events from",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			req := &lark.ListOutboundIPsRequest{PageSize: opts.pageSize}

			fetcher := &PageFetcher[lark.OutboundIPList]{
				First: func(ctx context.Context) (*lark.ListPage[lark.OutboundIPList], error) {
					return client.Event().ListOutboundIPs(ctx, req)
				},
				Iterate: func(ctx context.Context) (*lark.Iterator[lark.OutboundIPList], error) {
					return client.Event().ListOutboundIPsWithIterator(ctx, req)
				},
			}

			return runList(cmd, &opts, fetcher,
				func(p *lark.OutboundIPList) []string { return p.IPList },
				&OutputRenderer[string]{
					Header: []string{"IP"},
					Row:    func(ip string) []string { return []string{ip} },
				})
		},
	}

	addPageFlags(cmd, &opts, constants.MaxPageSize)

	return cmd
}

// listenOptions holds the flags of events listen.
type listenOptions struct {
	sink          string
	natsURL       string
	subjectPrefix string
	noReconnect   bool
}

func newEventsListenCommand() *cobra.Command {
	var opts listenOptions

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive events over the long connection",
		Long: `Open the long connection with the configured app_id and app_secret and
forward every received event to a sink until interrupted.

Sinks:
  log    log each event to stderr
  nats   publish each event to <prefix>.<event type> on a NATS server
  none   acknowledge events without forwarding them`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListen(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.sink, "sink", string(ws.SinkTypeLog), "event sink (log, nats, none)")
	cmd.Flags().StringVar(&opts.natsURL, "nats-url", constants.DefaultNATSURL, "NATS server URL")
	cmd.Flags().StringVar(&opts.subjectPrefix, "nats-subject-prefix", constants.DefaultNATSSubjectPrefix, "subject prefix of published events")
	cmd.Flags().BoolVar(&opts.noReconnect, "no-reconnect", false, "exit when the connection drops")

	return cmd
}

func runListen(cmd *cobra.Command, opts *listenOptions) error {
	config := loadConfig()
	if config.AppID == "" || config.AppSecret == "" {
		return constants.ErrNoAppCredentials
	}

	logger := newLogger(cmd)

	sinkConfig := &ws.SinkConfig{
		Type:   ws.SinkType(opts.sink),
		Logger: lark.NewTextLogger(cmd.ErrOrStderr(), "info"),
	}
	if sinkConfig.Type == ws.SinkTypeNATS {
		sinkConfig.NATS = &ws.NATSConfig{
			URL:           opts.natsURL,
			SubjectPrefix: opts.subjectPrefix,
			Name:          "lark-cli " + config.AppID,
		}
	}

	sink, err := ws.NewSinkFromConfig(sinkConfig)
	if err != nil {
		return fmt.Errorf("creating %s sink: %w", opts.sink, err)
	}

	defer func() { _ = sink.Close() }()

	client := ws.NewClient(config.AppID, config.AppSecret, ws.SinkHandler(sink),
		ws.WithDomain(config.Endpoint),
		ws.WithLogger(logger),
		ws.WithAutoReconnect(!opts.noReconnect),
	)

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Listening for events of %s, press Ctrl-C to stop\n", config.AppID)

	err = client.Start(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
