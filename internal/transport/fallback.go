package transport

import (
	"context"
	"fmt"
	"log/slog"
)

// FallbackSender tries the primary client once and the secondary once. Visit
// telemetry is fire and forget: when both fail the send is dropped and the
// error reported, never retried indefinitely.
type FallbackSender struct {
	primary   Client
	secondary Client
}

// NewFallbackSender wires the two clients. secondary may be nil.
func NewFallbackSender(primary, secondary Client) *FallbackSender {
	return &FallbackSender{primary: primary, secondary: secondary}
}

// Send implements the router's Sender contract.
func (f *FallbackSender) Send(ctx context.Context, endpoint string, data any, baseURL string) error {
	primaryErr := f.primary.Send(ctx, endpoint, data, baseURL)
	if primaryErr == nil {
		return nil
	}

	if f.secondary == nil {
		return primaryErr
	}

	slog.Warn("primary transport failed, trying fallback", "endpoint", endpoint, "error", primaryErr)
	if err := f.secondary.Send(ctx, endpoint, data, baseURL); err != nil {
		return fmt.Errorf("both transports failed: primary: %v; fallback: %w", primaryErr, err)
	}
	return nil
}

// Close closes both clients.
func (f *FallbackSender) Close() error {
	err := f.primary.Close()
	if f.secondary != nil {
		if cerr := f.secondary.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
