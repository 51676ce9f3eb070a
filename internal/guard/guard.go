// Package guard gates the protected routes. It resolves the session cookie
// on every request, so a logout is effective on the very next request.
package guard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkpi/kpi-gateway/internal/session"
	"github.com/openkpi/kpi-gateway/pkg/fingerprint"
)

// Using an unexported type prevents key collisions from other packages.
type contextKey string

const sessionKey contextKey = "session"

// CSRFHeader carries the token on state-changing requests.
const CSRFHeader = "X-CSRF-Token"

// Resolver is the slice of the session manager the guard needs.
type Resolver interface {
	Initializing() bool
	Resolve(ctx context.Context, sessionID, fingerprint string) (session.Session, error)
	ValidateCSRFToken(token, sessionID string) bool
	Touch(ctx context.Context, s session.Session, path string)
}

type Guard struct {
	sessions   Resolver
	cookieName string
	loginPath  string
}

func New(sessions Resolver, cookieName, loginPath string) *Guard {
	return &Guard{
		sessions:   sessions,
		cookieName: cookieName,
		loginPath:  loginPath,
	}
}

// Protect wraps a handler with the session check. While the manager is
// still initializing the guard answers neutrally and never redirects; a
// redirect before the restore finished would bounce a valid session to the
// login page. After initialization an unauthenticated page request is
// redirected exactly once to the login path; API requests get a 401.
// State-changing requests additionally need a valid CSRF token header.
func (g *Guard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.sessions.Initializing() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "initializing", http.StatusServiceUnavailable)
			return
		}

		sessionID := g.sessionID(r)
		s, err := g.sessions.Resolve(r.Context(), sessionID, fingerprint.FromRequest(r))
		if err != nil {
			g.reject(w, r)
			return
		}

		if isMutating(r) && !g.sessions.ValidateCSRFToken(r.Header.Get(CSRFHeader), s.ID) {
			writeJSONError(w, r, http.StatusForbidden, "invalid csrf token")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, s)

		if r.Method == http.MethodGet && !isAPIRequest(r) {
			g.sessions.Touch(ctx, s, r.URL.Path)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Guard) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

func (g *Guard) reject(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		writeJSONError(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	http.Redirect(w, r, g.loginPath, http.StatusFound)
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slogctx.Debug(r.Context(), "Failed to write error response", "error", err)
	}
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func isMutating(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}

	return true
}

// SessionFromContext returns the session the guard injected.
func SessionFromContext(ctx context.Context) (session.Session, error) {
	s, ok := ctx.Value(sessionKey).(session.Session)
	if !ok {
		return session.Session{}, errors.New("session not found in context")
	}

	return s, nil
}
