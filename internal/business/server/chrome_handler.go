package server

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/openkpi/kpi-gateway/internal/chrome"
	"github.com/openkpi/kpi-gateway/internal/guard"
	"github.com/openkpi/kpi-gateway/internal/middleware/visitor"
	"github.com/openkpi/kpi-gateway/internal/serviceerr"
)

// getBreadcrumbs returns the visitor's rendered trail.
func (h *handlers) getBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	visitorID, err := visitor.FromContext(r.Context())
	if err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	crumbs, err := h.crumbs.Trail(r.Context(), visitorID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"breadcrumbs": crumbs})
}

type pushBreadcrumbRequest struct {
	Path string `json:"path" validate:"required"`
}

// pushBreadcrumb records a navigation and returns the updated trail.
func (h *handlers) pushBreadcrumb(w http.ResponseWriter, r *http.Request) {
	visitorID, err := visitor.FromContext(r.Context())
	if err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	var req pushBreadcrumbRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	if _, err := h.crumbs.Push(r.Context(), visitorID, req.Path); err != nil {
		h.respondError(w, r, err)
		return
	}

	crumbs, err := h.crumbs.Trail(r.Context(), visitorID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"breadcrumbs": crumbs})
}

// navigation returns the sidebar model for the signed-in user.
func (h *handlers) navigation(w http.ResponseWriter, r *http.Request) {
	s, err := guard.SessionFromContext(r.Context())
	if err != nil {
		h.respondError(w, r, serviceerr.ErrUnauthenticated)
		return
	}

	respondJSON(w, r, http.StatusOK, chrome.BuildNavigation(s.User))
}
