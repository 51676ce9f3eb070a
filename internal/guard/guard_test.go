package guard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkpi/kpi-gateway/internal/backend"
	"github.com/openkpi/kpi-gateway/internal/guard"
	"github.com/openkpi/kpi-gateway/internal/session"
	sessionmock "github.com/openkpi/kpi-gateway/internal/session/mock"
	"github.com/openkpi/kpi-gateway/pkg/csrf"
	"github.com/openkpi/kpi-gateway/pkg/fingerprint"
)

const (
	cookieName = "kpi_session"
	csrfSecret = "test-csrf-secret-0123456789abcdef"
)

func newManager(t *testing.T, opts ...sessionmock.RepositoryOption) (*session.Manager, *sessionmock.Repository) {
	t.Helper()
	repo := sessionmock.NewInMemRepository(opts...)
	// Login is never exercised here, so no authenticator is wired.
	manager := session.NewManager(repo, nil, time.Hour, csrfSecret)
	return manager, repo
}

func request(sessionID, path string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		r.AddCookie(&http.Cookie{Name: cookieName, Value: sessionID})
	}
	return r
}

// testFingerprint matches what the guard derives from the header-less
// requests the tests send.
func testFingerprint() string {
	return fingerprint.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
}

func liveSession(id string) session.Session {
	return session.Session{
		ID:          id,
		User:        backend.User{Name: "Alice", Email: "alice@example.com"},
		Fingerprint: testFingerprint(),
		Expiry:      time.Now().Add(time.Hour),
	}
}

func TestGuardWhileInitializing(t *testing.T) {
	manager, _ := newManager(t)
	g := guard.New(manager, cookieName, "/login")

	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run while initializing")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("", "/dashboard"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"), "no redirect while initializing")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestGuardRedirectsUnauthenticatedPageRequest(t *testing.T) {
	manager, _ := newManager(t)
	manager.Initialize(t.Context())
	g := guard.New(manager, cookieName, "/login")

	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run unauthenticated")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("", "/dashboard"))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGuardRejectsUnauthenticatedAPIRequest(t *testing.T) {
	manager, _ := newManager(t)
	manager.Initialize(t.Context())
	g := guard.New(manager, cookieName, "/login")

	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run unauthenticated")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("stale-id", "/api/dashboard/sectors"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"), "API requests are never redirected")
	assert.JSONEq(t, `{"error":"unauthenticated"}`, rec.Body.String())
}

func TestGuardServesAuthenticatedRequest(t *testing.T) {
	manager, _ := newManager(t, sessionmock.WithSession(liveSession("live")))
	manager.Initialize(t.Context())
	g := guard.New(manager, cookieName, "/login")

	var seen session.Session
	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		seen, err = guard.SessionFromContext(r.Context())
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("live", "/dashboard"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live", seen.ID)
	assert.Equal(t, "alice@example.com", seen.User.Email)
}

func TestGuardRejectsForeignFingerprint(t *testing.T) {
	stolen := liveSession("stolen")
	stolen.Fingerprint = "some-other-client"
	manager, _ := newManager(t, sessionmock.WithSession(stolen))
	manager.Initialize(t.Context())
	g := guard.New(manager, cookieName, "/login")

	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run with a foreign fingerprint")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("stolen", "/api/dashboard/sectors"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardRequiresCSRFTokenOnMutatingRequests(t *testing.T) {
	manager, _ := newManager(t, sessionmock.WithSession(liveSession("live")))
	manager.Initialize(t.Context())
	g := guard.New(manager, cookieName, "/login")

	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{name: "valid token passes", token: csrf.NewToken("live", []byte(csrfSecret)), wantCode: http.StatusOK},
		{name: "missing token is forbidden", token: "", wantCode: http.StatusForbidden},
		{name: "token for another session is forbidden", token: csrf.NewToken("other", []byte(csrfSecret)), wantCode: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/dashboard/rawdata", nil)
			r.AddCookie(&http.Cookie{Name: cookieName, Value: "live"})
			if tt.token != "" {
				r.Header.Set(guard.CSRFHeader, tt.token)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, r)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestGuardSkipsCSRFCheckOnReads(t *testing.T) {
	manager, _ := newManager(t, sessionmock.WithSession(liveSession("live")))
	manager.Initialize(t.Context())
	g := guard.New(manager, cookieName, "/login")

	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("live", "/api/dashboard/sectors"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardReflectsLogoutImmediately(t *testing.T) {
	manager, repo := newManager(t, sessionmock.WithSession(liveSession("live")))
	manager.Initialize(t.Context())
	g := guard.New(manager, cookieName, "/login")

	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("live", "/dashboard"))
	require.Equal(t, http.StatusOK, rec.Code)

	manager.Logout(t.Context(), "live")
	require.Zero(t, repo.Len())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, request("live", "/dashboard"))
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestGuardRecordsLastVisitedPage(t *testing.T) {
	manager, repo := newManager(t, sessionmock.WithSession(liveSession("live")))
	manager.Initialize(t.Context())
	g := guard.New(manager, cookieName, "/login")

	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request("live", "/dashboard/sector"))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, ok := repo.Session("live")
	require.True(t, ok)
	assert.Equal(t, "/dashboard/sector", stored.LastVisited)
}
