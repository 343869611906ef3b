// Package transport delivers visit payloads to the PKM ingestion host.
// Clients are plain constructed objects, not process-wide singletons, so
// tests can run independent instances side by side.
package transport

import "context"

// Client is one way of reaching the ingestion host.
type Client interface {
	// Send forwards data to endpoint. baseURL overrides the client's
	// configured destination when non-empty; clients that have no notion of
	// a base URL ignore it.
	Send(ctx context.Context, endpoint string, data any, baseURL string) error
	Close() error
}

// ConnState tracks a connection-oriented client's lifecycle.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}
