// Package bridge implements the native-messaging host that sits between the
// tracker and the PKM ingestion server: framed JSON on stdio in, HTTP out.
package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dgnsrekt/trail_agent/internal/nativemsg"
)

const (
	forwardTimeout = 5 * time.Second
	statusTimeout  = 2 * time.Second
)

// request is one inbound frame.
type request struct {
	Type     string          `json:"type"`
	Endpoint string          `json:"endpoint,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	BaseURL  string          `json:"api_base_url,omitempty"`
}

// Host serves the native-messaging protocol over a reader/writer pair.
type Host struct {
	portFile string
	client   *http.Client
}

// NewHost builds a host that discovers the ingestion server through portFile
// (empty means the default location). client may be nil.
func NewHost(portFile string, client *http.Client) *Host {
	if portFile == "" {
		portFile = nativemsg.DefaultPortFile()
	}
	if client == nil {
		client = &http.Client{Timeout: forwardTimeout}
	}
	return &Host{portFile: portFile, client: client}
}

// Serve handles frames until the peer closes the channel.
func (h *Host) Serve(r io.Reader, w io.Writer) error {
	slog.Info("bridge started", "port_file", h.portFile)

	for {
		var req request
		if err := nativemsg.ReadMessage(r, &req); err != nil {
			if errors.Is(err, io.EOF) {
				slog.Info("bridge channel closed")
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}

		if err := nativemsg.WriteMessage(w, h.handle(req)); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
}

func (h *Host) handle(req request) any {
	switch req.Type {
	case "ping":
		return map[string]any{"type": "pong", "echo": req.Data}

	case "get_port":
		return map[string]any{"type": "port", "port": nativemsg.ReadPort(h.portFile)}

	case "forward":
		result := h.forward(req)
		result["type"] = "forward_result"
		return result

	case "check_status":
		port := nativemsg.ReadPort(h.portFile)
		return map[string]any{
			"type":    "status",
			"running": h.serverUp(port),
			"port":    port,
		}

	default:
		slog.Warn("unknown message type", "type", req.Type)
		return map[string]any{"type": "error", "error": "unknown message type: " + req.Type}
	}
}

// forward posts the payload to the ingestion server. The base URL in the
// request wins over port-file discovery.
func (h *Host) forward(req request) map[string]any {
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = "/visit"
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	base := strings.TrimRight(req.BaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("http://localhost:%d", nativemsg.ReadPort(h.portFile))
	}
	url := base + endpoint

	body := req.Data
	if len(body) == 0 {
		body = json.RawMessage("{}")
	}

	slog.Info("forwarding to ingestion server", "url", url)
	resp, err := h.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Error("forward failed", "url", url, "error", err)
		return map[string]any{
			"success": false,
			"error":   "cannot reach ingestion server: " + err.Error(),
		}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return map[string]any{
			"success": false,
			"status":  resp.StatusCode,
			"error":   fmt.Sprintf("ingestion server returned status %d", resp.StatusCode),
		}
	}
	return map[string]any{"success": true, "status": resp.StatusCode}
}

func (h *Host) serverUp(port int) bool {
	client := &http.Client{Timeout: statusTimeout}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/status", port))
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
