package server

import (
	"errors"
	"net/http"

	"github.com/openkpi/kpi-gateway/internal/middleware/visitor"
	"github.com/openkpi/kpi-gateway/internal/serviceerr"
)

// getNotification pops the visitor's pending notification. An empty slot
// is a 204, not an error; polling for nothing is the normal case.
func (h *handlers) getNotification(w http.ResponseWriter, r *http.Request) {
	visitorID, err := visitor.FromContext(r.Context())
	if err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	n, err := h.flash.Pop(r.Context(), visitorID)
	if err != nil {
		if errors.Is(err, serviceerr.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, n)
}

// dismissNotification clears the slot without reading it.
func (h *handlers) dismissNotification(w http.ResponseWriter, r *http.Request) {
	visitorID, err := visitor.FromContext(r.Context())
	if err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	if err := h.flash.Dismiss(r.Context(), visitorID); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
