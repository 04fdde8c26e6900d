package client

import (
	"context"
	"fmt"

	"github.com/larksuite/oapi-client/internal/auth"
	"github.com/larksuite/oapi-client/internal/constants"
	"github.com/larksuite/oapi-client/internal/http"
	"github.com/larksuite/oapi-client/pkg/lark"
)

// Client implements the lark.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       lark.Logger

	// Endpoint groups
	im    *IMClient
	mail  *MailClient
	docx  *DocxClient
	lingo *LingoClient
	event *EventClient
	mdm   *MDMClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *lark.Config, logger lark.Logger) []http.Option {
	httpOpts := []http.Option{http.WithLogger(logger)}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if chain := createInterceptorChain(config, logger); !chain.Empty() {
		httpOpts = append(httpOpts, http.WithInterceptors(chain))
	}

	return httpOpts
}

// createInterceptorChain installs the rate limiter and circuit breaker
// requested by config.
func createInterceptorChain(config *lark.Config, logger lark.Logger) *lark.InterceptorChain {
	chain := lark.NewInterceptorChain()

	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst <= 0 {
			burst = 1
		}

		chain.AddRequestInterceptor(lark.RateLimitInterceptor(config.RateLimit, burst))
	}

	if config.CircuitBreakerThreshold > 0 {
		timeout := config.CircuitBreakerTimeout
		if timeout <= 0 {
			timeout = constants.CircuitBreakerTimeout
		}

		breaker := lark.NewCircuitBreaker(&lark.CircuitBreakerConfig{
			Threshold:        config.CircuitBreakerThreshold,
			Timeout:          timeout,
			SuccessThreshold: constants.CircuitBreakerSuccessThreshold,
			Logger:           logger,
		})

		chain.AddRequestInterceptor(lark.CircuitBreakerRequestInterceptor(breaker))
		chain.AddResponseInterceptor(lark.CircuitBreakerResponseInterceptor(breaker))
	}

	return chain
}

// New creates a client that sends config.AccessToken with every request.
func New(ctx context.Context, config *lark.Config) (*Client, error) {
	if config == nil {
		return nil, lark.ErrConfigRequired
	}

	var tokenManager auth.TokenManager
	if config.AccessToken != "" {
		tokenManager = auth.NewStaticTokenManager(config.AccessToken)
	}

	return NewWithTokenManager(config, tokenManager)
}

// NewWithTokenManager creates a client with a custom token manager. A nil
// token manager sends unauthenticated requests.
func NewWithTokenManager(config *lark.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, lark.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, lark.ErrEndpointRequired
	}

	logger := config.Logger
	if logger == nil {
		logger = lark.NopLogger{}
	}

	httpClient := http.NewClient(config.Endpoint, tokenManager, createHTTPClientOptions(config, logger)...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.Endpoint,
		logger:       logger,
	}

	client.initializeGroups()

	return client, nil
}

func (c *Client) initializeGroups() {
	b := base{httpClient: c.httpClient, logger: c.logger}

	c.im = &IMClient{base: b}
	c.mail = &MailClient{base: b}
	c.docx = &DocxClient{base: b}
	c.lingo = &LingoClient{base: b}
	c.event = &EventClient{base: b}
	c.mdm = &MDMClient{base: b}
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// BaseURL returns the endpoint requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes a raw request through the shared transport.
func (c *Client) Do(ctx context.Context, req *lark.Request) (*http.Response, error) {
	if req == nil {
		return nil, lark.ErrRequestRequired
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return resp, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	return resp, nil
}

// IM implements lark.Client.IM.
func (c *Client) IM() lark.IMClient {
	return c.im
}

// Mail implements lark.Client.Mail.
func (c *Client) Mail() lark.MailClient {
	return c.mail
}

// Docx implements lark.Client.Docx.
func (c *Client) Docx() lark.DocxClient {
	return c.docx
}

// Lingo implements lark.Client.Lingo.
func (c *Client) Lingo() lark.LingoClient {
	return c.lingo
}

// Event implements lark.Client.Event.
func (c *Client) Event() lark.EventClient {
	return c.event
}

// MDM implements lark.Client.MDM.
func (c *Client) MDM() lark.MDMClient {
	return c.mdm
}

var (
	_ lark.Client      = (*Client)(nil)
	_ lark.IMClient    = (*IMClient)(nil)
	_ lark.MailClient  = (*MailClient)(nil)
	_ lark.DocxClient  = (*DocxClient)(nil)
	_ lark.LingoClient = (*LingoClient)(nil)
	_ lark.EventClient = (*EventClient)(nil)
	_ lark.MDMClient   = (*MDMClient)(nil)
)
