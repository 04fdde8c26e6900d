package constants

import "errors"

// Configuration errors.
var (
	ErrNoEndpointConfigured = errors.New("no API endpoint configured, use --endpoint or LARK_ENDPOINT")
	ErrNoTokenConfigured    = errors.New("no access token configured, use --token or LARK_TOKEN")
	ErrNoAppCredentials     = errors.New("app_id and app_secret are required for the long connection")
	ErrUnknownConfigKey     = errors.New("unknown configuration key")
)

// Validation errors.
var (
	ErrContainerIDRequired = errors.New("container_id is required")
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrInvalidPageSize     = errors.New("invalid page size")
)

// Long connection errors.
var (
	ErrEndpointDiscovery = errors.New("long connection endpoint discovery failed")
	ErrConnectionClosed  = errors.New("long connection closed")
	ErrMissingURL        = errors.New("endpoint response carries no URL")
)
