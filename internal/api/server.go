// Package api exposes the tracker over HTTP: a small REST surface for
// inspecting tab histories and referrers, a message endpoint mirroring the
// runtime messaging contract, an SSE visit stream, and a WebSocket endpoint
// for long-lived page-side clients.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/trail_agent/internal/router"
	"github.com/dgnsrekt/trail_agent/internal/tabhistory"
	"github.com/dgnsrekt/trail_agent/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Service is everything the HTTP layer needs from the tracker core.
type Service interface {
	HandleMessage(ctx context.Context, tabID tabhistory.TabID, msg types.Message) (any, error)
	GetReferrer(tabID tabhistory.TabID) (types.ReferrerInfo, error)
	ListTabs() tabhistory.Store
	Status() types.StatusInfo
	Subscribe() (int64, <-chan types.VisitPayload)
	Unsubscribe(id int64)
}

func NewServer(svc Service) http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(requestLogger)
	mux.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Trail Agent Tracker API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(mux, cfg)

	mux.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerTrackerHandlers(api, svc)

	mux.Get("/api/v1/events", sseHandler(svc))
	mux.Get("/ws", wsHandler(svc))

	return mux
}

func registerTrackerHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type statusOutput struct {
		Body types.StatusInfo
	}
	huma.Register(api, huma.Operation{OperationID: "status", Method: http.MethodGet, Path: "/api/v1/status", Summary: "Tracker runtime status", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*statusOutput, error) {
			out := &statusOutput{}
			out.Body = svc.Status()
			return out, nil
		})

	type tabsOutput struct {
		Body struct {
			Tabs  map[string]tabhistory.TabHistory `json:"tabs"`
			Count int                              `json:"count"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-tabs", Method: http.MethodGet, Path: "/api/v1/tabs", Summary: "List tracked tab histories", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*tabsOutput, error) {
			store := svc.ListTabs()
			out := &tabsOutput{}
			out.Body.Tabs = make(map[string]tabhistory.TabHistory, store.Len())
			for id, history := range store {
				out.Body.Tabs[string(id)] = history
			}
			out.Body.Count = store.Len()
			return out, nil
		})

	type referrerInput struct {
		TabID string `path:"tab_id"`
	}
	type referrerOutput struct {
		Body types.ReferrerInfo
	}
	huma.Register(api, huma.Operation{OperationID: "get-referrer", Method: http.MethodGet, Path: "/api/v1/tabs/{tab_id}/referrer", Summary: "Resolve a tab's referrer", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *referrerInput) (*referrerOutput, error) {
			info, err := svc.GetReferrer(tabhistory.TabID(input.TabID))
			if err != nil {
				return nil, mapErr(err)
			}
			out := &referrerOutput{}
			out.Body = info
			return out, nil
		})

	type messageInput struct {
		Body struct {
			TabID string `json:"tab_id,omitempty" doc:"Tab the message is attributed to"`
			types.Message
		}
	}
	type messageOutput struct {
		Body struct {
			Result any `json:"result"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "post-message", Method: http.MethodPost, Path: "/api/v1/message", Summary: "Route a runtime message", Tags: []string{"Messages"}},
		func(ctx context.Context, input *messageInput) (*messageOutput, error) {
			result, err := svc.HandleMessage(ctx, tabhistory.TabID(input.Body.TabID), input.Body.Message)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &messageOutput{}
			out.Body.Result = result
			return out, nil
		})
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *router.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case router.CodeNoTabID, router.CodeMissingField, router.CodeUnknownAction:
			return huma.Error400BadRequest(coded.Message)
		case router.CodeSendFailed:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
