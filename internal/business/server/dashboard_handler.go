package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/openkpi/kpi-gateway/internal/backend"
	"github.com/openkpi/kpi-gateway/internal/serviceerr"
)

const defaultRecentLimit = 10

// dashboardSectors returns the per-sector quarterly percentage series.
func (h *handlers) dashboardSectors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"quarters": backend.Quarters(),
		"series":   h.dashboard.SectorOverview(r.Context()),
	})
}

// dashboardProvinces returns the per-province series within one sector.
func (h *handlers) dashboardProvinces(w http.ResponseWriter, r *http.Request) {
	sector, ok := parseSector(r.URL.Query().Get("sector"))
	if !ok {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"sector":   sector,
		"quarters": backend.Quarters(),
		"series":   h.dashboard.ProvinceBreakdown(r.Context(), sector),
	})
}

// dashboardRecent returns the latest quarterly captures in a sector.
func (h *handlers) dashboardRecent(w http.ResponseWriter, r *http.Request) {
	sector, ok := parseSector(r.URL.Query().Get("sector"))
	if !ok {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.respondError(w, r, serviceerr.ErrInvalidRequest)
			return
		}
		limit = parsed
	}

	updates, err := h.dashboard.RecentUpdates(r.Context(), sector, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"updates": updates})
}

type rawDataRequest struct {
	Sector   string `json:"sector" validate:"required"`
	Province string `json:"province" validate:"required"`
	Page     int    `json:"page" validate:"min=0"`
}

// dashboardRawData returns one page of indicator records for the raw data
// table, addressed by sector and province.
func (h *handlers) dashboardRawData(w http.ResponseWriter, r *http.Request) {
	var req rawDataRequest
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

	province, ok := parseProvince(req.Province)
	if !ok {
		h.respondError(w, r, serviceerr.ErrInvalidRequest)
		return
	}

	indicators, err := h.dashboard.RawData(r.Context(), sector, province, req.Page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"content": indicators})
}

func parseSector(raw string) (backend.Sector, bool) {
	for _, sector := range backend.Sectors() {
		if string(sector) == raw {
			return sector, true
		}
	}

	return "", false
}

func parseProvince(raw string) (backend.Province, bool) {
	for _, province := range backend.Provinces() {
		if string(province) == raw {
			return province, true
		}
	}

	return "", false
}
