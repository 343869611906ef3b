// Package tracker composes the core pieces (tab history, message router,
// visit broker, visit log, outbound transport) into the service the API layer
// and the CDP layer both talk to.
package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgnsrekt/trail_agent/internal/config"
	"github.com/dgnsrekt/trail_agent/internal/events"
	"github.com/dgnsrekt/trail_agent/internal/router"
	"github.com/dgnsrekt/trail_agent/internal/storage"
	"github.com/dgnsrekt/trail_agent/internal/tabhistory"
	"github.com/dgnsrekt/trail_agent/internal/types"
)

const forwardTimeout = 10 * time.Second

// Service is the tracker core behind the HTTP API.
type Service struct {
	cfg    *config.Config
	tabs   *tabhistory.Holder
	router *router.Router
	broker *events.Broker
	writer *storage.VisitWriter
	sender router.Sender

	// attachedTabs and transportState report live counts for the status
	// endpoint; either may be nil when the corresponding piece is disabled.
	attachedTabs   func() int
	transportState func() string
}

// New builds the service. writer, sender, attachedTabs and transportState are
// all optional.
func New(cfg *config.Config, tabs *tabhistory.Holder, rt *router.Router, broker *events.Broker, writer *storage.VisitWriter, sender router.Sender) *Service {
	return &Service{
		cfg:    cfg,
		tabs:   tabs,
		router: rt,
		broker: broker,
		writer: writer,
		sender: sender,
	}
}

// SetAttachedTabsFunc wires the live attached-tab count into status reports.
func (s *Service) SetAttachedTabsFunc(fn func() int) { s.attachedTabs = fn }

// SetTransportStateFunc wires the outbound transport state into status reports.
func (s *Service) SetTransportStateFunc(fn func() string) { s.transportState = fn }

func (s *Service) HandleMessage(ctx context.Context, tabID tabhistory.TabID, msg types.Message) (any, error) {
	return s.router.HandleMessage(ctx, tabID, msg)
}

func (s *Service) GetReferrer(tabID tabhistory.TabID) (types.ReferrerInfo, error) {
	return s.router.GetReferrer(tabID)
}

func (s *Service) ListTabs() tabhistory.Store {
	return s.tabs.Load()
}

func (s *Service) Status() types.StatusInfo {
	info := types.StatusInfo{
		Status:      "ok",
		TrackedTabs: s.tabs.Load().Len(),
		Transport:   "disabled",
		Subscribers: s.broker.SubscriberCount(),
	}
	if s.attachedTabs != nil {
		info.AttachedTabs = s.attachedTabs()
	}
	if s.transportState != nil {
		info.Transport = s.transportState()
	}
	return info
}

func (s *Service) Subscribe() (int64, <-chan types.VisitPayload) {
	return s.broker.Subscribe()
}

func (s *Service) Unsubscribe(id int64) {
	s.broker.Unsubscribe(id)
}

// OnVisit fans one visit record out to every sink: live subscribers, the
// local visit log, and the ingestion host. Forwarding is asynchronous; a slow
// or absent host never stalls navigation handling.
func (s *Service) OnVisit(visit types.VisitPayload) {
	s.broker.Publish(visit)

	if s.writer != nil {
		if err := s.writer.Write(visit); err != nil {
			slog.Warn("visit log write failed", "url", visit.URL, "error", err)
		}
	}

	if s.sender != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
			defer cancel()
			if err := s.sender.Send(ctx, s.cfg.IngestEndpoint, visit, ""); err != nil {
				slog.Warn("visit forward failed", "url", visit.URL, "error", err)
			}
		}()
	}
}
