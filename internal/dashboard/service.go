// Package dashboard aggregates the per-quarter progress series the charts
// plot. The sector overview alone costs 52 upstream calls, so aggregates
// are held in an in-process cache for a short TTL.
package dashboard

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	slogctx "github.com/veqryn/slog-context"

	"github.com/openkpi/kpi-gateway/internal/backend"
)

// KPIBackend is the slice of the KPI client the aggregations need.
type KPIBackend interface {
	MostFrequentProgressBySector(ctx context.Context, sector backend.Sector, quarter backend.Quarter) (backend.ProgressRating, error)
	MostFrequentProgressByProvince(ctx context.Context, sector backend.Sector, province backend.Province, quarter backend.Quarter) (backend.ProgressRating, error)
	RecentPerformances(ctx context.Context, sector backend.Sector, page int) ([]backend.ActualPerformance, error)
	SearchBySectorAndProvince(ctx context.Context, sector backend.Sector, province backend.Province, page int) ([]backend.Indicator, error)
}

// Series is one plotted line: a display name and the four quarterly
// percentages in Q1..Q4 order.
type Series struct {
	Name        string `json:"name"`
	Percentages []int  `json:"percentages"`
}

// RecentUpdate is one row of the recent updates table.
type RecentUpdate struct {
	Province         string                 `json:"province"`
	ProgressReport   string                 `json:"progressReport"`
	ProgressRating   backend.ProgressRating `json:"progressRating"`
	BriefExplanation string                 `json:"briefExplanation"`
	CreationDate     string                 `json:"creationDate"`
}

type Service struct {
	kpi   KPIBackend
	cache *gocache.Cache
}

func NewService(kpi KPIBackend, cacheTTL time.Duration) *Service {
	return &Service{
		kpi:   kpi,
		cache: gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// SectorOverview returns one series per sector. A failed cell plots as
// zero rather than failing the whole chart; upstream hiccups on a single
// sector and quarter should not blank the dashboard.
func (s *Service) SectorOverview(ctx context.Context) []Series {
	const cacheKey = "sectors"
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]Series)
	}

	slogctx.Debug(ctx, "SectorOverview() aggregating")

	series := make([]Series, 0, len(backend.Sectors()))
	for _, sector := range backend.Sectors() {
		series = append(series, Series{
			Name:        sector.DisplayName(),
			Percentages: s.sectorQuarters(ctx, sector),
		})
	}

	s.cache.SetDefault(cacheKey, series)

	return series
}

// ProvinceBreakdown returns one series per province within a sector.
func (s *Service) ProvinceBreakdown(ctx context.Context, sector backend.Sector) []Series {
	cacheKey := "provinces:" + string(sector)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]Series)
	}

	slogctx.Debug(ctx, "ProvinceBreakdown() aggregating", "sector", sector)

	series := make([]Series, 0, len(backend.Provinces()))
	for _, province := range backend.Provinces() {
		percentages := make([]int, 0, len(backend.Quarters()))
		for _, quarter := range backend.Quarters() {
			rating, err := s.kpi.MostFrequentProgressByProvince(ctx, sector, province, quarter)
			if err != nil {
				slogctx.Debug(ctx, "Province cell failed, plotting zero",
					"sector", sector, "province", province, "quarter", quarter, "error", err)
				rating = backend.RatingNone
			}
			percentages = append(percentages, rating.Percentage())
		}

		series = append(series, Series{
			Name:        province.DisplayName(),
			Percentages: percentages,
		})
	}

	s.cache.SetDefault(cacheKey, series)

	return series
}

// RecentUpdates returns the newest quarterly captures in a sector, capped
// at limit rows.
func (s *Service) RecentUpdates(ctx context.Context, sector backend.Sector, limit int) ([]RecentUpdate, error) {
	performances, err := s.kpi.RecentPerformances(ctx, sector, 0)
	if err != nil {
		return nil, fmt.Errorf("loading recent performances: %w", err)
	}

	if limit > 0 && len(performances) > limit {
		performances = performances[:limit]
	}

	updates := make([]RecentUpdate, 0, len(performances))
	for _, p := range performances {
		updates = append(updates, RecentUpdate{
			Province:         p.Province.DisplayName(),
			ProgressReport:   p.ProgressReport,
			ProgressRating:   p.ProgressRating,
			BriefExplanation: p.BriefExplanation,
			CreationDate:     p.CreationDate,
		})
	}

	return updates, nil
}

// RawData returns one page of indicator records for a sector and province.
func (s *Service) RawData(ctx context.Context, sector backend.Sector, province backend.Province, page int) ([]backend.Indicator, error) {
	indicators, err := s.kpi.SearchBySectorAndProvince(ctx, sector, province, page)
	if err != nil {
		return nil, fmt.Errorf("searching raw data: %w", err)
	}

	return indicators, nil
}

func (s *Service) sectorQuarters(ctx context.Context, sector backend.Sector) []int {
	percentages := make([]int, 0, len(backend.Quarters()))
	for _, quarter := range backend.Quarters() {
		rating, err := s.kpi.MostFrequentProgressBySector(ctx, sector, quarter)
		if err != nil {
			slogctx.Debug(ctx, "Sector cell failed, plotting zero",
				"sector", sector, "quarter", quarter, "error", err)
			rating = backend.RatingNone
		}
		percentages = append(percentages, rating.Percentage())
	}

	return percentages
}
