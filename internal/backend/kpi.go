package backend

import (
	"context"
	"fmt"

	slogctx "github.com/veqryn/slog-context"
)

// The KPI API spells "performance" as "perfomance" in its paths and field
// names. The Go names are spelled correctly; only the wire format keeps the
// upstream spelling.

// ActualPerformance is one quarterly progress capture for an indicator.
type ActualPerformance struct {
	ID               int            `json:"id,omitempty"`
	CaptureID        string         `json:"captureId,omitempty"`
	Quarter          Quarter        `json:"quarterEnum"`
	ProgressRating   ProgressRating `json:"progressRatingEnum"`
	Province         Province       `json:"province,omitempty"`
	Performance      string         `json:"perfomance,omitempty"`
	DataSource       string         `json:"dataSource,omitempty"`
	CommentOnQuality string         `json:"commentOnQuality,omitempty"`
	BriefExplanation string         `json:"briefExplanation,omitempty"`
	ProgressReport   string         `json:"progressReport,omitempty"`
	CreationDate     string         `json:"creationDate,omitempty"`
}

// Indicator is a performance indicator record with its captured quarters.
type Indicator struct {
	ID                 int                 `json:"id,omitempty"`
	Indicator          string              `json:"indicator"`
	Sector             Sector              `json:"sector"`
	Baseline           string              `json:"baseline"`
	Target             string              `json:"target"`
	CreationDate       string              `json:"creationDate,omitempty"`
	ActualPerformances []ActualPerformance `json:"actualPerfomances,omitempty"`
}

type CreateIndicatorRequest struct {
	Baseline  string `json:"baseline"`
	Indicator string `json:"indicator"`
	Sector    Sector `json:"sector"`
	Target    string `json:"target"`
}

func (c *Client) ListIndicators(ctx context.Context) ([]Indicator, error) {
	slogctx.Debug(ctx, "ListIndicators() called")
	defer slogctx.Debug(ctx, "ListIndicators() completed")

	var indicators []Indicator
	err := c.getJSON(ctx, c.kpiBaseURL+"/api/perfomance-indicators", &indicators)
	if err != nil {
		return nil, fmt.Errorf("listing indicators: %w", err)
	}

	return indicators, nil
}

func (c *Client) CreateIndicator(ctx context.Context, req CreateIndicatorRequest) error {
	slogctx.Debug(ctx, "CreateIndicator() called")
	defer slogctx.Debug(ctx, "CreateIndicator() completed")

	err := c.postJSON(ctx, c.kpiBaseURL+"/api/perfomance-indicators", req, nil)
	if err != nil {
		return fmt.Errorf("creating indicator: %w", err)
	}

	return nil
}

func (c *Client) GetIndicator(ctx context.Context, id int) (Indicator, error) {
	slogctx.Debug(ctx, "GetIndicator() called")
	defer slogctx.Debug(ctx, "GetIndicator() completed")

	var indicator Indicator
	err := c.getJSON(ctx, fmt.Sprintf("%s/api/perfomance-indicators/%d", c.kpiBaseURL, id), &indicator)
	if err != nil {
		return Indicator{}, fmt.Errorf("getting indicator %d: %w", id, err)
	}

	return indicator, nil
}

// RecordPerformance appends a quarterly capture to an indicator.
func (c *Client) RecordPerformance(ctx context.Context, id int, capture ActualPerformance) error {
	slogctx.Debug(ctx, "RecordPerformance() called")
	defer slogctx.Debug(ctx, "RecordPerformance() completed")

	uri := fmt.Sprintf("%s/api/perfomance-indicators/%d/actual-perfomances", c.kpiBaseURL, id)
	err := c.postJSON(ctx, uri, capture, nil)
	if err != nil {
		return fmt.Errorf("recording performance for indicator %d: %w", id, err)
	}

	return nil
}

// SearchBySectorAndProvince returns one page of indicators matching the
// sector and province. Pages are zero-based upstream.
func (c *Client) SearchBySectorAndProvince(ctx context.Context, sector Sector, province Province, page int) ([]Indicator, error) {
	slogctx.Debug(ctx, "SearchBySectorAndProvince() called")
	defer slogctx.Debug(ctx, "SearchBySectorAndProvince() completed")

	body := struct {
		Sector   Sector   `json:"sectorEnum"`
		Province Province `json:"provinceEnum"`
		Page     int      `json:"page"`
	}{Sector: sector, Province: province, Page: page}

	var out struct {
		Content []Indicator `json:"content"`
	}
	err := c.postJSON(ctx, c.kpiBaseURL+"/api/perfomance-indicators/search-by-sector-and-province", body, &out)
	if err != nil {
		return nil, fmt.Errorf("searching indicators: %w", err)
	}

	return out.Content, nil
}

// RecentPerformances returns one page of the latest quarterly captures in a
// sector, newest first.
func (c *Client) RecentPerformances(ctx context.Context, sector Sector, page int) ([]ActualPerformance, error) {
	slogctx.Debug(ctx, "RecentPerformances() called")
	defer slogctx.Debug(ctx, "RecentPerformances() completed")

	body := struct {
		Sector Sector `json:"sector"`
		Page   int    `json:"page"`
	}{Sector: sector, Page: page}

	var out struct {
		Content []ActualPerformance `json:"content"`
	}
	err := c.postJSON(ctx, c.kpiBaseURL+"/api/perfomance-indicators/actual-performance", body, &out)
	if err != nil {
		return nil, fmt.Errorf("listing recent performances: %w", err)
	}

	return out.Content, nil
}

// MostFrequentProgressBySector returns the dominant progress rating across
// a sector for one quarter.
func (c *Client) MostFrequentProgressBySector(ctx context.Context, sector Sector, quarter Quarter) (ProgressRating, error) {
	body := struct {
		Sector  Sector  `json:"sectorEnum"`
		Quarter Quarter `json:"quarterEnum"`
	}{Sector: sector, Quarter: quarter}

	var out struct {
		ProgressRating ProgressRating `json:"progressRatingEnum"`
	}
	err := c.postJSON(ctx, c.kpiBaseURL+"/api/perfomance-indicators/most-frequent-progress-sector", body, &out)
	if err != nil {
		return "", fmt.Errorf("getting sector progress: %w", err)
	}

	return out.ProgressRating, nil
}

// MostFrequentProgressByProvince narrows the dominant rating further to a
// single province within the sector.
func (c *Client) MostFrequentProgressByProvince(ctx context.Context, sector Sector, province Province, quarter Quarter) (ProgressRating, error) {
	body := struct {
		Sector   Sector   `json:"sectorEnum"`
		Province Province `json:"provinceEnum"`
		Quarter  Quarter  `json:"quarterEnum"`
	}{Sector: sector, Province: province, Quarter: quarter}

	var out struct {
		ProgressRating ProgressRating `json:"progressRatingEnum"`
	}
	err := c.postJSON(ctx, c.kpiBaseURL+"/api/perfomance-indicators/most-frequent-progress-province", body, &out)
	if err != nil {
		return "", fmt.Errorf("getting province progress: %w", err)
	}

	return out.ProgressRating, nil
}

// ListProgressRatings returns the rating values the KPI API accepts.
func (c *Client) ListProgressRatings(ctx context.Context) ([]ProgressRating, error) {
	var ratings []ProgressRating
	err := c.getJSON(ctx, c.kpiBaseURL+"/api/progress", &ratings)
	if err != nil {
		return nil, fmt.Errorf("listing progress ratings: %w", err)
	}

	return ratings, nil
}

// ListQuarters returns the quarter values the KPI API accepts.
func (c *Client) ListQuarters(ctx context.Context) ([]Quarter, error) {
	var quarters []Quarter
	err := c.getJSON(ctx, c.kpiBaseURL+"/api/quarters", &quarters)
	if err != nil {
		return nil, fmt.Errorf("listing quarters: %w", err)
	}

	return quarters, nil
}
