// Package session owns the authenticated browser sessions of the gateway.
// A session is created when the auth backend accepts the credentials, lives
// in the injected repository for a configured duration, and is resolved on
// every guarded request.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	slogctx "github.com/veqryn/slog-context"

	"github.com/openkpi/kpi-gateway/internal/backend"
	"github.com/openkpi/kpi-gateway/internal/serviceerr"
	"github.com/openkpi/kpi-gateway/pkg/csrf"
)

// ErrFingerprintMismatch marks a session cookie presented by a client other
// than the one that logged in.
var ErrFingerprintMismatch = errors.New("session fingerprint mismatch")

// Authenticator verifies credentials against the auth backend.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (backend.User, error)
}

type Manager struct {
	sessions   Repository
	auth       Authenticator
	duration   time.Duration
	csrfSecret []byte

	initializing atomic.Bool
}

func NewManager(sessions Repository, auth Authenticator, sessionDuration time.Duration, csrfHMACSecret string) *Manager {
	m := &Manager{
		sessions:   sessions,
		auth:       auth,
		duration:   sessionDuration,
		csrfSecret: []byte(csrfHMACSecret),
	}
	m.initializing.Store(true)

	return m
}

// Initialize probes the session repository once at startup and then marks
// the manager ready. A failed probe is logged but never fatal; the gateway
// starts unauthenticated rather than not at all.
func (m *Manager) Initialize(ctx context.Context) {
	slogctx.Debug(ctx, "Initialize() called")
	defer slogctx.Debug(ctx, "Initialize() completed")

	defer m.initializing.Store(false)

	_, err := m.sessions.LoadSession(ctx, "startup-probe")
	if err != nil && !errors.Is(err, serviceerr.ErrUnauthenticated) && !errors.Is(err, serviceerr.ErrNotFound) {
		slogctx.Warn(ctx, "Session store probe failed, starting unauthenticated", "error", err)
	}
}

// Initializing reports whether the startup probe is still in flight. The
// guard refuses to redirect while this is true.
func (m *Manager) Initializing() bool {
	return m.initializing.Load()
}

// Login verifies the credentials and creates a session bound to the client
// fingerprint. On any failure no session state is written and the error
// carries exactly one of the service error codes. Logging in over a live
// session simply issues a new one.
func (m *Manager) Login(ctx context.Context, username, password, fingerprint string) (Session, error) {
	slogctx.Debug(ctx, "Login() called")
	defer slogctx.Debug(ctx, "Login() completed")

	user, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return Session{}, fmt.Errorf("verifying credentials: %w", err)
	}

	sessionID := uuid.NewString()

	s := Session{
		ID:          sessionID,
		User:        user,
		Fingerprint: fingerprint,
		CSRFToken:   csrf.NewToken(sessionID, m.csrfSecret),
		Expiry:      time.Now().Add(m.duration),
	}

	if err := m.sessions.StoreSession(ctx, s); err != nil {
		return Session{}, fmt.Errorf("storing session: %w", err)
	}

	return s, nil
}

// Logout deletes the session. It never surfaces a failure: the visitor is
// logged out from their own point of view regardless, and a stale record
// expires on its own TTL.
func (m *Manager) Logout(ctx context.Context, sessionID string) {
	slogctx.Debug(ctx, "Logout() called")
	defer slogctx.Debug(ctx, "Logout() completed")

	if sessionID == "" {
		return
	}

	if err := m.sessions.DeleteSession(ctx, sessionID); err != nil {
		slogctx.Error(ctx, "Failed to delete session on logout", "error", err)
	}
}

// Resolve restores the session for a request. A missing, expired, or
// unreadable record resolves to ErrUnauthenticated, as does a fingerprint
// that differs from the one captured at login; corruption is logged and
// cleaned up, never propagated as an internal error.
func (m *Manager) Resolve(ctx context.Context, sessionID, fingerprint string) (Session, error) {
	if sessionID == "" {
		return Session{}, serviceerr.ErrUnauthenticated
	}

	s, err := m.sessions.LoadSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, serviceerr.ErrUnauthenticated) {
			slogctx.Debug(ctx, "Failed to load session, treating as unauthenticated", "error", err)
		}

		return Session{}, errors.Join(err, serviceerr.ErrUnauthenticated)
	}

	if s.Expired() {
		if err := m.sessions.DeleteSession(ctx, sessionID); err != nil {
			slogctx.Error(ctx, "Failed to delete expired session", "error", err)
		}

		return Session{}, serviceerr.ErrUnauthenticated
	}

	if s.Fingerprint != fingerprint {
		slogctx.Warn(ctx, "Session presented with a foreign fingerprint")

		return Session{}, errors.Join(ErrFingerprintMismatch, serviceerr.ErrUnauthenticated)
	}

	return s, nil
}

// ValidateCSRFToken reports whether the token was minted for the session.
func (m *Manager) ValidateCSRFToken(token, sessionID string) bool {
	return csrf.Validate(token, sessionID, m.csrfSecret)
}

// Touch records the path of the latest guarded page view on the session.
func (m *Manager) Touch(ctx context.Context, s Session, path string) {
	if s.LastVisited == path {
		return
	}

	s.LastVisited = path
	if err := m.sessions.StoreSession(ctx, s); err != nil {
		slogctx.Debug(ctx, "Failed to record last visited path", "error", err)
	}
}
