package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/trail_agent/internal/router"
	"github.com/dgnsrekt/trail_agent/internal/types"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

func dialWs(t *testing.T, srv *httptest.Server) (net.Conn, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, _, err := ws.Dial(ctx, wsURL)
	if err != nil {
		cancel()
		t.Fatalf("ws dial failed: %v", err)
	}
	return conn, cancel
}

func TestWebSocketRoutesMessages(t *testing.T) {
	svc := newFakeService()
	srv := httptest.NewServer(NewServer(svc))
	defer srv.Close()

	conn, cancel := dialWs(t, srv)
	defer cancel()
	defer conn.Close()

	if err := wsutil.WriteClientText(conn, []byte(`{"id":7,"tab_id":"tab-1","action":"getReferrer"}`)); err != nil {
		t.Fatalf("ws write failed: %v", err)
	}

	data, err := wsutil.ReadServerText(conn)
	if err != nil {
		t.Fatalf("ws read failed: %v", err)
	}

	var reply wsReply
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("reply not json: %v", err)
	}
	if reply.ID != 7 {
		t.Errorf("reply id = %d, want 7", reply.ID)
	}
	if reply.Type != "result" {
		t.Errorf("reply type = %q, want result", reply.Type)
	}
	if svc.lastTab != "tab-1" {
		t.Errorf("routed tab id = %q", svc.lastTab)
	}
}

func TestWebSocketReportsCodedErrors(t *testing.T) {
	svc := newFakeService()
	svc.msgErr = &router.CodedError{Code: router.CodeUnknownAction, Message: "unknown action"}
	srv := httptest.NewServer(NewServer(svc))
	defer srv.Close()

	conn, cancel := dialWs(t, srv)
	defer cancel()
	defer conn.Close()

	if err := wsutil.WriteClientText(conn, []byte(`{"id":1,"action":"bogus"}`)); err != nil {
		t.Fatalf("ws write failed: %v", err)
	}

	data, err := wsutil.ReadServerText(conn)
	if err != nil {
		t.Fatalf("ws read failed: %v", err)
	}

	var reply wsReply
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("reply not json: %v", err)
	}
	if reply.Type != "error" || reply.Error == nil {
		t.Fatalf("expected error reply, got %+v", reply)
	}
	if reply.Error.Code != router.CodeUnknownAction {
		t.Errorf("error code = %q", reply.Error.Code)
	}
}

func TestWebSocketBroadcastsVisits(t *testing.T) {
	svc := newFakeService()
	srv := httptest.NewServer(NewServer(svc))
	defer srv.Close()

	conn, cancel := dialWs(t, srv)
	defer cancel()
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for svc.subscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("ws handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	svc.publish(types.VisitPayload{URL: "https://example.com/", TabID: "tab-1", GroupID: "g1"})

	data, err := wsutil.ReadServerText(conn)
	if err != nil {
		t.Fatalf("ws read failed: %v", err)
	}

	var reply wsReply
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("reply not json: %v", err)
	}
	if reply.Type != "visit" || reply.Visit == nil {
		t.Fatalf("expected visit frame, got %+v", reply)
	}
	if reply.Visit.URL != "https://example.com/" {
		t.Errorf("visit url = %q", reply.Visit.URL)
	}
}
