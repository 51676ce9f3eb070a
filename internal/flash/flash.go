// Package flash implements the single-slot notification each visitor sees.
// Showing a new message replaces whatever is pending; the slot survives a
// redirect (logout lands on the login page with its confirmation intact)
// but not the configured retention window.
package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkpi/kpi-gateway/internal/kvstore"
	"github.com/openkpi/kpi-gateway/internal/serviceerr"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DefaultAutoHideMillis matches the dashboard's snackbar display time.
const DefaultAutoHideMillis = 5000

type Notification struct {
	Message        string   `json:"message"`
	Severity       Severity `json:"severity"`
	AutoHideMillis int      `json:"autoHideMillis"`
}

type Service struct {
	store     kvstore.Store
	retention time.Duration
}

func NewService(store kvstore.Store, retention time.Duration) *Service {
	return &Service{
		store:     store,
		retention: retention,
	}
}

// Show queues a notification for the visitor, replacing any pending one.
// Zero severity and auto-hide fall back to the defaults.
func (s *Service) Show(ctx context.Context, visitorID string, n Notification) error {
	if n.Severity == "" {
		n.Severity = SeverityInfo
	}
	if n.AutoHideMillis <= 0 {
		n.AutoHideMillis = DefaultAutoHideMillis
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	if err := s.store.Set(ctx, key(visitorID), raw, s.retention); err != nil {
		return fmt.Errorf("storing notification: %w", err)
	}

	return nil
}

// Pop returns the pending notification and clears the slot. An empty slot
// reports serviceerr.ErrNotFound.
func (s *Service) Pop(ctx context.Context, visitorID string) (Notification, error) {
	raw, err := s.store.Get(ctx, key(visitorID))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return Notification{}, serviceerr.ErrNotFound
		}

		return Notification{}, fmt.Errorf("loading notification: %w", err)
	}

	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		s.dismiss(ctx, visitorID)
		return Notification{}, fmt.Errorf("decoding notification: %w", err)
	}

	s.dismiss(ctx, visitorID)

	return n, nil
}

// Dismiss clears the slot without reading it.
func (s *Service) Dismiss(ctx context.Context, visitorID string) error {
	if err := s.store.Delete(ctx, key(visitorID)); err != nil {
		return fmt.Errorf("clearing notification: %w", err)
	}

	return nil
}

func (s *Service) dismiss(ctx context.Context, visitorID string) {
	if err := s.Dismiss(ctx, visitorID); err != nil {
		slogctx.Debug(ctx, "Failed to clear notification slot", "error", err)
	}
}

func key(visitorID string) string {
	return "flash:" + visitorID
}
