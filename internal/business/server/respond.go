package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	slogctx "github.com/veqryn/slog-context"

	"github.com/openkpi/kpi-gateway/internal/serviceerr"
)

// errorResponse is the JSON body every failed request gets. Redirect is set
// for the error kinds the frontend answers with a navigation instead of an
// inline message.
type errorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	render.Status(r, status)
	render.JSON(w, r, payload)
}

// respondError folds any error onto the closed taxonomy. Unrecognised
// errors are logged and reported as unknown so internals never leak.
func (h *handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	svcErr := serviceerr.ErrUnknown

	var known *serviceerr.Error
	if errors.As(err, &known) {
		svcErr = known
	} else {
		slogctx.Error(r.Context(), "Unclassified error", "error", err)
	}

	resp := errorResponse{
		Error:   string(svcErr.Err),
		Message: svcErr.Description,
	}

	// Timeouts and network outages send the visitor to the error page.
	if svcErr.Is(serviceerr.ErrTimeout) || svcErr.Is(serviceerr.ErrNetworkUnavailable) {
		resp.Redirect = h.errorPath
	}

	respondJSON(w, r, svcErr.HTTPStatus(), resp)
}
