package server

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkpi/kpi-gateway/internal/backend"
	"github.com/openkpi/kpi-gateway/internal/chrome"
	"github.com/openkpi/kpi-gateway/internal/config"
	"github.com/openkpi/kpi-gateway/internal/dashboard"
	"github.com/openkpi/kpi-gateway/internal/flash"
	"github.com/openkpi/kpi-gateway/internal/guard"
	"github.com/openkpi/kpi-gateway/internal/middleware/visitor"
	"github.com/openkpi/kpi-gateway/internal/serviceerr"
	"github.com/openkpi/kpi-gateway/internal/session"
	"github.com/openkpi/kpi-gateway/pkg/fingerprint"
)

type handlers struct {
	sessions  *session.Manager
	backend   *backend.Client
	dashboard *dashboard.Service
	flash     *flash.Service
	crumbs    *chrome.Breadcrumbs
	validate  *validator.Validate

	sessionCookie config.CookieTemplate
	loginPath     string
	errorPath     string
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signUpRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
}

// login verifies the credentials, issues the session cookie and returns
// the signed-in user together with the CSRF token the client must replay
// on state-changing requests. Nothing is persisted on a failed attempt.
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	s, err := h.sessions.Login(r.Context(), req.Username, req.Password, fingerprint.FromRequest(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	http.SetCookie(w, h.sessionCookie.ToCookie(s.ID))

	respondJSON(w, r, http.StatusOK, map[string]any{
		"user":      s.User,
		"csrfToken": s.CSRFToken,
	})
}

// signup registers a new account with the auth backend.
func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	err := h.backend.SignUp(r.Context(), backend.SignUpRequest{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, map[string]string{"status": "created"})
}

// logout clears the session, queues the confirmation flash for the visitor
// and sends the browser back to the login page. It cannot fail user-visibly.
func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s, err := guard.SessionFromContext(ctx); err == nil {
		h.sessions.Logout(ctx, s.ID)
	}

	if visitorID, err := visitor.FromContext(ctx); err == nil {
		err := h.flash.Show(ctx, visitorID, flash.Notification{
			Message:  "Successfully logged out!",
			Severity: flash.SeverityInfo,
		})
		if err != nil {
			slogctx.Error(ctx, "Failed to queue logout notification", "error", err)
		}

		if err := h.crumbs.Clear(ctx, visitorID); err != nil {
			slogctx.Debug(ctx, "Failed to clear breadcrumb trail", "error", err)
		}
	}

	expired := h.sessionCookie.ToCookie("")
	expired.MaxAge = -1
	http.SetCookie(w, expired)

	http.Redirect(w, r, h.loginPath, http.StatusFound)
}

// sessionInfo reports the signed-in identity and the last visited page.
func (h *handlers) sessionInfo(w http.ResponseWriter, r *http.Request) {
	s, err := guard.SessionFromContext(r.Context())
	if err != nil {
		h.respondError(w, r, serviceerr.ErrUnauthenticated)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"user":        s.User,
		"csrfToken":   s.CSRFToken,
		"expiry":      s.Expiry,
		"lastVisited": s.LastVisited,
	})
}

// errorInfo backs the generic error page the frontend navigates to on
// timeouts and outages.
func (h *handlers) errorInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"message": "Something went wrong while reaching the KPI services. Please try again.",
	})
}
