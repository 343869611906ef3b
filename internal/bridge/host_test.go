package bridge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/trail_agent/internal/nativemsg"
)

// exchange frames requests through Serve and returns the decoded replies.
func exchange(t *testing.T, h *Host, reqs ...map[string]any) []map[string]any {
	t.Helper()

	var in bytes.Buffer
	for _, req := range reqs {
		if err := nativemsg.WriteMessage(&in, req); err != nil {
			t.Fatalf("frame request: %v", err)
		}
	}

	var out bytes.Buffer
	if err := h.Serve(&in, &out); err != nil {
		t.Fatalf("serve failed: %v", err)
	}

	replies := make([]map[string]any, 0, len(reqs))
	for range reqs {
		var reply map[string]any
		if err := nativemsg.ReadMessage(&out, &reply); err != nil {
			t.Fatalf("read reply: %v", err)
		}
		replies = append(replies, reply)
	}
	return replies
}

func writePortFile(t *testing.T, port int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "port.json")
	if err := nativemsg.WritePort(path, port); err != nil {
		t.Fatalf("write port file: %v", err)
	}
	return path
}

func TestPingPong(t *testing.T) {
	h := NewHost(writePortFile(t, 5000), nil)

	replies := exchange(t, h, map[string]any{"type": "ping", "data": "hello"})
	if replies[0]["type"] != "pong" {
		t.Errorf("reply type = %v, want pong", replies[0]["type"])
	}
	if replies[0]["echo"] != "hello" {
		t.Errorf("echo = %v, want hello", replies[0]["echo"])
	}
}

func TestGetPortReadsPortFile(t *testing.T) {
	h := NewHost(writePortFile(t, 7777), nil)

	replies := exchange(t, h, map[string]any{"type": "get_port"})
	if replies[0]["type"] != "port" {
		t.Errorf("reply type = %v, want port", replies[0]["type"])
	}
	if port, _ := replies[0]["port"].(float64); int(port) != 7777 {
		t.Errorf("port = %v, want 7777", replies[0]["port"])
	}
}

func TestForwardPostsToIngestionServer(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := NewHost(writePortFile(t, 5000), srv.Client())
	replies := exchange(t, h, map[string]any{
		"type":         "forward",
		"endpoint":     "/visit",
		"api_base_url": srv.URL,
		"data":         map[string]any{"url": "https://example.com/"},
	})

	reply := replies[0]
	if reply["type"] != "forward_result" {
		t.Errorf("reply type = %v", reply["type"])
	}
	if reply["success"] != true {
		t.Errorf("success = %v, want true", reply["success"])
	}
	if gotPath != "/visit" {
		t.Errorf("posted path = %q", gotPath)
	}
	if gotBody["url"] != "https://example.com/" {
		t.Errorf("posted body = %v", gotBody)
	}
}

func TestForwardReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	h := NewHost(writePortFile(t, 5000), srv.Client())
	replies := exchange(t, h, map[string]any{
		"type":         "forward",
		"api_base_url": srv.URL,
	})

	reply := replies[0]
	if reply["success"] != false {
		t.Errorf("success = %v, want false", reply["success"])
	}
	if status, _ := reply["status"].(float64); int(status) != http.StatusInternalServerError {
		t.Errorf("status = %v, want 500", reply["status"])
	}
}

func TestForwardUnreachableServer(t *testing.T) {
	// A port-file port nobody listens on.
	h := NewHost(writePortFile(t, 1), &http.Client{})

	replies := exchange(t, h, map[string]any{"type": "forward", "endpoint": "/visit"})
	reply := replies[0]
	if reply["success"] != false {
		t.Errorf("success = %v, want false", reply["success"])
	}
	if reply["error"] == nil || reply["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestUnknownMessageType(t *testing.T) {
	h := NewHost(writePortFile(t, 5000), nil)

	replies := exchange(t, h, map[string]any{"type": "bogus"})
	if replies[0]["type"] != "error" {
		t.Errorf("reply type = %v, want error", replies[0]["type"])
	}
}

func TestServeHandlesMultipleFrames(t *testing.T) {
	h := NewHost(writePortFile(t, 5000), nil)

	replies := exchange(t, h,
		map[string]any{"type": "ping"},
		map[string]any{"type": "get_port"},
	)
	if replies[0]["type"] != "pong" || replies[1]["type"] != "port" {
		t.Errorf("replies = %v", replies)
	}
}
