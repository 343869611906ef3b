package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dgnsrekt/trail_agent/internal/router"
	"github.com/dgnsrekt/trail_agent/internal/tabhistory"
	"github.com/dgnsrekt/trail_agent/internal/types"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// sseHandler streams visit records as server-sent events until the client
// disconnects.
func sseHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		id, ch := svc.Subscribe()
		defer svc.Unsubscribe(id)
		slog.Debug("sse subscriber connected", "subscriber_id", id, "remote", r.RemoteAddr)

		for {
			select {
			case <-r.Context().Done():
				return
			case visit, open := <-ch:
				if !open {
					return
				}
				data, err := json.Marshal(visit)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: visit\ndata: %s\n\n", data); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// wsRequest is one client frame on the WebSocket endpoint: a runtime message
// plus addressing. The id, when present, is echoed on the reply so clients
// can pipeline requests.
type wsRequest struct {
	ID    int64  `json:"id,omitempty"`
	TabID string `json:"tab_id,omitempty"`
	types.Message
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wsReply struct {
	ID     int64               `json:"id,omitempty"`
	Type   string              `json:"type"`
	Result any                 `json:"result,omitempty"`
	Error  *wsError            `json:"error,omitempty"`
	Visit  *types.VisitPayload `json:"visit,omitempty"`
}

// wsHandler upgrades the connection and serves two flows over it: request
// frames routed through the message router, and visit broadcasts pushed as
// they happen. A single write mutex keeps the two from interleaving frames.
func wsHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
			return
		}

		var writeMu sync.Mutex
		write := func(reply wsReply) error {
			data, err := json.Marshal(reply)
			if err != nil {
				return err
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			return wsutil.WriteServerText(conn, data)
		}

		subID, visits := svc.Subscribe()
		done := make(chan struct{})

		go func() {
			for {
				select {
				case <-done:
					return
				case visit, open := <-visits:
					if !open {
						return
					}
					v := visit
					if err := write(wsReply{Type: "visit", Visit: &v}); err != nil {
						return
					}
				}
			}
		}()

		defer func() {
			close(done)
			svc.Unsubscribe(subID)
			conn.Close()
		}()

		slog.Info("websocket client connected", "remote", r.RemoteAddr)
		for {
			data, err := wsutil.ReadClientText(conn)
			if err != nil {
				if err != io.EOF {
					slog.Debug("websocket read ended", "error", err)
				}
				return
			}

			var req wsRequest
			if err := json.Unmarshal(data, &req); err != nil {
				_ = write(wsReply{Type: "error", Error: &wsError{Code: "BAD_REQUEST", Message: "malformed message"}})
				continue
			}

			result, err := svc.HandleMessage(r.Context(), tabhistory.TabID(req.TabID), req.Message)
			if err != nil {
				_ = write(wsReply{ID: req.ID, Type: "error", Error: toWsError(err)})
				continue
			}
			if err := write(wsReply{ID: req.ID, Type: "result", Result: result}); err != nil {
				return
			}
		}
	}
}

func toWsError(err error) *wsError {
	var coded *router.CodedError
	if errors.As(err, &coded) {
		return &wsError{Code: coded.Code, Message: coded.Message}
	}
	return &wsError{Code: "INTERNAL", Message: err.Error()}
}
