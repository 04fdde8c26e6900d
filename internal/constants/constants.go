package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for endpoint discovery.
	ShortHTTPTimeout = 10 * time.Second

	// HandshakeTimeout bounds the websocket handshake.
	HandshakeTimeout = 10 * time.Second
)

// Retry settings. The transport does not retry unless configured to.
const (
	// DefaultRetryMax is the number of retries of the transport.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Circuit breaker defaults.
const (
	CircuitBreakerThreshold        = 5
	CircuitBreakerTimeout          = 30 * time.Second
	CircuitBreakerSuccessThreshold = 1
)

// HTTP header names.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderUserAgent     = "User-Agent"
	HeaderRequestID     = "X-Request-Id"
	HeaderLogID         = "X-Tt-Logid"

	ContentTypeJSON = "application/json; charset=utf-8"
)

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "oapi-client-go/1.0"

// Pagination limits.
const (
	// DefaultPageSize is used by the CLI when --page-size is not given.
	DefaultPageSize = 20

	// MaxPageSize is the largest page size accepted by list endpoints.
	MaxPageSize = 100

	// MaxDocxPageSize is the largest page size of document block lists.
	MaxDocxPageSize = 500
)

// Long connection settings.
const (
	// EndpointDiscoveryPath returns the websocket URL for an application.
	EndpointDiscoveryPath = "/callback/ws/endpoint"

	// DefaultPingInterval is used until the server sends a client config.
	DefaultPingInterval = 2 * time.Minute

	// DefaultReconnectInterval is the wait between reconnect attempts.
	DefaultReconnectInterval = 2 * time.Minute

	// DefaultReconnectNonce is the upper bound of the random delay before the
	// first reconnect attempt.
	DefaultReconnectNonce = 30 * time.Second

	// ChunkExpiry is how long incomplete multi-part messages are kept.
	ChunkExpiry = 5 * time.Second
)

// Event sink settings.
const (
	// DefaultNATSSubjectPrefix prefixes the subject of published events.
	DefaultNATSSubjectPrefix = "lark.events"

	// DefaultNATSURL is used when the sink has no URL configured.
	DefaultNATSURL = "nats://127.0.0.1:4222"

	// NATSFlushTimeout bounds a flush when the caller's context has no deadline.
	NATSFlushTimeout = 5 * time.Second
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// StringTruncationLimit is the number of characters kept when masking.
	StringTruncationLimit = 4
)
