package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/pkg/lark"
	"github.com/larksuite/oapi-client/pkg/larkclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	defaultJSONIndent = 2
	cliUserAgent      = "lark-cli"
)

// outputFormat returns the --output value, defaulting to table.
func outputFormat() (string, error) {
	return parseOutputFormat(viper.GetString(KeyOutput))
}

func parseOutputFormat(value string) (string, error) {
	format := strings.ToLower(value)

	switch format {
	case "":
		return constants.FormatTable, nil
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s (use table, json or yaml)", constants.ErrInvalidOutputFormat, format)
	}
}

// StandardJSONRenderer writes data as indented JSON.
func StandardJSONRenderer[T any](w io.Writer, data T) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes data as YAML.
func StandardYAMLRenderer[T any](w io.Writer, data T) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(defaultJSONIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

// renderTable writes rows under header.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}

	table.Header(cells...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// OutputRenderer renders a list of items in the selected output format.
type OutputRenderer[T any] struct {
	Header []string
	Row    func(T) []string
}

// Render writes items to w.
func (o *OutputRenderer[T]) Render(w io.Writer, items []T, format string) error {
	switch format {
	case constants.FormatJSON:
		return StandardJSONRenderer(w, items)
	case constants.FormatYAML:
		return StandardYAMLRenderer(w, items)
	default:
		if len(items) == 0 {
			_, _ = fmt.Fprintln(w, "No results found")

			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, item := range items {
			rows = append(rows, o.Row(item))
		}

		return renderTable(w, o.Header, rows)
	}
}

// pageOptions holds the pagination flags shared by list commands.
type pageOptions struct {
	pageSize int
	maxSize  int
	all      bool
	maxPages int
}

func addPageFlags(cmd *cobra.Command, opts *pageOptions, maxSize int) {
	opts.maxSize = maxSize

	cmd.Flags().IntVar(&opts.pageSize, "page-size", constants.DefaultPageSize, "results per page")
	cmd.Flags().BoolVar(&opts.all, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&opts.maxPages, "max-pages", 0, "stop after this many pages with --all (0 for no limit)")
}

func (o *pageOptions) validate() error {
	if o.pageSize < 1 || o.pageSize > o.maxSize {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", constants.ErrInvalidPageSize, o.pageSize, o.maxSize)
	}

	return nil
}

// PageFetcher fetches either the first page of a list or all of it.
type PageFetcher[R any] struct {
	First   func(ctx context.Context) (*lark.ListPage[R], error)
	Iterate func(ctx context.Context) (*lark.Iterator[R], error)
}

// Fetch returns the page bodies selected by opts and whether more pages
// remain on the server.
func (p *PageFetcher[R]) Fetch(ctx context.Context, opts *pageOptions) ([]*R, bool, error) {
	if !opts.all {
		page, err := p.First(ctx)
		if err != nil {
			return nil, false, err
		}

		return []*R{&page.Rest}, page.HasMore, nil
	}

	it, err := p.Iterate(ctx)
	if err != nil {
		return nil, false, err
	}

	pages, err := lark.CollectPages(ctx, it, &lark.PaginationOptions{MaxPages: opts.maxPages})
	if err != nil {
		return nil, false, err
	}

	return pages, it.HasMore(), nil
}

// runList fetches pages, flattens them with items and renders the result.
func runList[R, T any](cmd *cobra.Command, opts *pageOptions, fetcher *PageFetcher[R], items func(*R) []T, renderer *OutputRenderer[T]) error {
	if err := opts.validate(); err != nil {
		return err
	}

	format, err := outputFormat()
	if err != nil {
		return err
	}

	pages, more, err := fetcher.Fetch(cmd.Context(), opts)
	if err != nil {
		return err
	}

	var all []T
	for _, page := range pages {
		all = append(all, items(page)...)
	}

	if err := renderer.Render(cmd.OutOrStdout(), all, format); err != nil {
		return err
	}

	if more && format == constants.FormatTable {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "More results available, use --all to fetch every page")
	}

	return nil
}

// newLogger returns a logrus backed logger writing to the command's stderr.
func newLogger(cmd *cobra.Command) lark.Logger {
	level := "warn"
	if viper.GetBool("verbose") {
		level = "debug"
	}

	return lark.NewTextLogger(cmd.ErrOrStderr(), level)
}

// createClient builds an API client from the merged flag, env and file
// configuration.
func createClient(cmd *cobra.Command) (lark.Client, error) {
	config := loadConfig()
	if config.Token == "" {
		return nil, constants.ErrNoTokenConfigured
	}

	client, err := larkclient.New(cmd.Context(), &lark.Config{
		Endpoint:    config.Endpoint,
		AccessToken: config.Token,
		Debug:       viper.GetBool("verbose"),
		Logger:      newLogger(cmd),
		UserAgent:   cliUserAgent,
	})
	if err != nil {
		return nil, err
	}

	return client, nil
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func valueOrNA(s string) string {
	if s == "" {
		return constants.NotAvailable
	}

	return s
}
