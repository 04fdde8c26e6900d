package ws

import (
	"errors"

	"github.com/larksuite/oapi-client/internal/constants"
)

var (
	// ErrEndpointDiscovery is returned when the connection URL cannot be
	// obtained.
	ErrEndpointDiscovery = constants.ErrEndpointDiscovery
	// ErrMissingURL is returned when discovery succeeds without a URL.
	ErrMissingURL = constants.ErrMissingURL
	// ErrConnectionClosed is returned by Start when the connection is lost
	// and cannot be restored.
	ErrConnectionClosed = constants.ErrConnectionClosed
	// ErrHandshakeFailed is returned when the gateway rejects the upgrade.
	ErrHandshakeFailed = errors.New("long connection handshake failed")
	// ErrNATSConfigRequired is returned for a nats sink without settings.
	ErrNATSConfigRequired = errors.New("NATS configuration required for NATS sink")
)
