package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/openkpi/kpi-gateway/internal/backend"
	"github.com/openkpi/kpi-gateway/internal/guard"
	"github.com/openkpi/kpi-gateway/internal/serviceerr"
)

type createKPIRequest struct {
	Baseline  string `json:"baseline" validate:"required"`
	Indicator string `json:"indicator" validate:"required"`
	Sector    string `json:"sector" validate:"required"`
	Target    string `json:"target" validate:"required"`
}

// createKPI registers a new performance indicator with the KPI backend.
func (h *handlers) createKPI(w http.ResponseWriter, r *http.Request) {
	var req createKPIRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	sector, ok := parseSector(req.Sector)
	if !ok {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	err := h.backend.CreateIndicator(r.Context(), backend.CreateIndicatorRequest{
		Baseline:  req.Baseline,
		Indicator: req.Indicator,
		Sector:    sector,
		Target:    req.Target,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, map[string]string{"status": "created"})
}

// getKPI returns one indicator with its quarterly captures.
func (h *handlers) getKPI(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	indicator, err := h.backend.GetIndicator(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, indicator)
}

// listKPIs returns every indicator record.
func (h *handlers) listKPIs(w http.ResponseWriter, r *http.Request) {
	indicators, err := h.backend.ListIndicators(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, indicators)
}

type recordPerformanceRequest struct {
	Quarter          string `json:"quarterEnum" validate:"required"`
	ProgressRating   string `json:"progressRatingEnum" validate:"required"`
	Province         string `json:"province"`
	Performance      string `json:"perfomance"`
	DataSource       string `json:"dataSource"`
	CommentOnQuality string `json:"commentOnQuality"`
	BriefExplanation string `json:"briefExplanation"`
	ProgressReport   string `json:"progressReport"`
}

// recordPerformance appends a quarterly capture to an indicator. The
// capture is attributed to the signed-in user.
func (h *handlers) recordPerformance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	var req recordPerformanceRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	s, err := guard.SessionFromContext(r.Context())
	if err != nil {
		h.respondError(w, r, serviceerr.ErrUnauthenticated)
		return
	}

	err = h.backend.RecordPerformance(r.Context(), id, backend.ActualPerformance{
		CaptureID:        s.User.ID,
		Quarter:          backend.Quarter(req.Quarter),
		ProgressRating:   backend.ProgressRating(req.ProgressRating),
		Province:         backend.Province(req.Province),
		Performance:      req.Performance,
		DataSource:       req.DataSource,
		CommentOnQuality: req.CommentOnQuality,
		BriefExplanation: req.BriefExplanation,
		ProgressReport:   req.ProgressReport,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]string{"status": "recorded"})
}

// kpiEnums returns the value sets the KPI forms offer. Sectors and
// provinces are fixed; progress ratings and quarters come from the KPI
// backend, which owns them.
func (h *handlers) kpiEnums(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.backend.ListProgressRatings(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	quarters, err := h.backend.ListQuarters(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	type option struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}

	sectors := make([]option, 0, len(backend.Sectors()))
	for _, sector := range backend.Sectors() {
		sectors = append(sectors, option{Value: string(sector), Label: sector.DisplayName()})
	}

	provinces := make([]option, 0, len(backend.Provinces()))
	for _, province := range backend.Provinces() {
		provinces = append(provinces, option{Value: string(province), Label: province.DisplayName()})
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"sectors":   sectors,
		"provinces": provinces,
		"progress":  ratings,
		"quarters":  quarters,
	})
}
