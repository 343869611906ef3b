package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/trail_agent/internal/nativemsg"
)

// Dialer opens the native-messaging channel to the bridge process. Injected
// so tests can hand the client an in-memory pipe.
type Dialer func(ctx context.Context) (io.ReadWriteCloser, error)

// ForwardRequest is the envelope the bridge expects for pass-through sends.
type ForwardRequest struct {
	Type     string `json:"type"`
	Endpoint string `json:"endpoint"`
	Data     any    `json:"data"`
	BaseURL  string `json:"api_base_url,omitempty"`
}

// ForwardResult is the bridge's reply.
type ForwardResult struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Status  int    `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NativeClient speaks Chrome native-messaging framing to a bridge process.
// Reconnect attempts and backoff are tunable policy, not load-bearing
// behavior.
type NativeClient struct {
	dial              Dialer
	reconnectAttempts int
	backoff           time.Duration

	mu    sync.Mutex
	conn  io.ReadWriteCloser
	state ConnState
}

// NewNativeClient builds a disconnected client. attempts <= 0 or backoff <= 0
// fall back to the defaults (3 attempts, 2s fixed backoff).
func NewNativeClient(dial Dialer, attempts int, backoff time.Duration) *NativeClient {
	if attempts <= 0 {
		attempts = 3
	}
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	return &NativeClient{
		dial:              dial,
		reconnectAttempts: attempts,
		backoff:           backoff,
		state:             StateDisconnected,
	}
}

// State returns the current connection state.
func (c *NativeClient) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// connectLocked establishes the channel, retrying with fixed backoff. Callers
// hold c.mu.
func (c *NativeClient) connectLocked(ctx context.Context) error {
	if c.state == StateConnected {
		return nil
	}

	c.state = StateConnecting
	var lastErr error
	for attempt := 1; attempt <= c.reconnectAttempts; attempt++ {
		conn, err := c.dial(ctx)
		if err == nil {
			c.conn = conn
			c.state = StateConnected
			slog.Debug("native transport connected", "attempt", attempt)
			return nil
		}
		lastErr = err
		slog.Warn("native transport dial failed", "attempt", attempt, "error", err)

		if attempt < c.reconnectAttempts {
			select {
			case <-ctx.Done():
				c.state = StateDisconnected
				return ctx.Err()
			case <-time.After(c.backoff):
			}
		}
	}

	c.state = StateDisconnected
	return fmt.Errorf("native transport: connect failed after %d attempts: %w", c.reconnectAttempts, lastErr)
}

// Send forwards data through the bridge and waits for its forward_result.
// The exchange is bounded by ctx: a bridge that accepts the frame but never
// replies costs this one send, not the whole outbound path. On expiry the
// channel is torn down, which also unblocks the in-flight read.
func (c *NativeClient) Send(ctx context.Context, endpoint string, data any, baseURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return err
	}

	req := ForwardRequest{Type: "forward", Endpoint: endpoint, Data: data, BaseURL: baseURL}

	type exchange struct {
		result ForwardResult
		err    error
	}
	conn := c.conn
	done := make(chan exchange, 1)
	go func() {
		var ex exchange
		if ex.err = nativemsg.WriteMessage(conn, req); ex.err == nil {
			ex.err = nativemsg.ReadMessage(conn, &ex.result)
		}
		done <- ex
	}()

	select {
	case <-ctx.Done():
		c.dropLocked()
		return fmt.Errorf("native transport: send aborted: %w", ctx.Err())
	case ex := <-done:
		if ex.err != nil {
			c.dropLocked()
			return fmt.Errorf("native transport: %w", ex.err)
		}
		if !ex.result.Success {
			return fmt.Errorf("native transport: bridge reported failure: %s", ex.result.Error)
		}
		return nil
	}
}

// dropLocked tears down a broken channel so the next Send reconnects.
func (c *NativeClient) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
}

// Close disconnects the channel.
func (c *NativeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked()
	return nil
}
