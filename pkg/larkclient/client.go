package larkclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/larksuite/oapi-client/internal/client"
	"github.com/larksuite/oapi-client/pkg/lark"
)

// New creates a client from config. The config is not modified.
func New(ctx context.Context, config *lark.Config) (lark.Client, error) {
	if config == nil {
		return nil, lark.ErrConfigRequired
	}

	normalized := *config
	normalized.Endpoint = NormalizeEndpoint(config.Endpoint)

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NormalizeEndpoint trims trailing slashes and adds an https scheme when
// none is given. An empty endpoint yields lark.DefaultEndpoint.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return lark.DefaultEndpoint
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithEndpoint creates a client that sends unauthenticated requests.
func NewWithEndpoint(ctx context.Context, endpoint string) (lark.Client, error) {
	return New(ctx, &lark.Config{
		Endpoint: endpoint,
	})
}

// NewWithToken creates a client that sends token as a Bearer token.
func NewWithToken(ctx context.Context, endpoint, token string) (lark.Client, error) {
	return New(ctx, &lark.Config{
		Endpoint:    endpoint,
		AccessToken: token,
	})
}
