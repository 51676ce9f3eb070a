// Package chrome serves the page furniture around the dashboard views: the
// per-visitor breadcrumb trail and the sidebar navigation model.
package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/openkpi/kpi-gateway/internal/kvstore"
)

// maxTrail bounds the breadcrumb history; older entries fall off the front.
const maxTrail = 3

// fallbackLabel is used when a path is nothing but an entity id.
const fallbackLabel = "Item"

// Crumb is one rendered trail entry. Only the last entry is the current
// location; the rest link back to their paths.
type Crumb struct {
	Path    string `json:"path"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

type Breadcrumbs struct {
	store kvstore.Store
}

func NewBreadcrumbs(store kvstore.Store) *Breadcrumbs {
	return &Breadcrumbs{store: store}
}

// Push records a navigation. Pushing the path already at the end of the
// trail changes nothing; otherwise the path is appended and the oldest
// entry evicted once the trail exceeds its bound.
func (b *Breadcrumbs) Push(ctx context.Context, visitorID, path string) ([]string, error) {
	trail, err := b.load(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	if len(trail) > 0 && trail[len(trail)-1] == path {
		return trail, nil
	}

	trail = append(trail, path)
	if len(trail) > maxTrail {
		trail = trail[len(trail)-maxTrail:]
	}

	raw, err := json.Marshal(trail)
	if err != nil {
		return nil, fmt.Errorf("encoding breadcrumb trail: %w", err)
	}

	if err := b.store.Set(ctx, key(visitorID), raw, 0); err != nil {
		return nil, fmt.Errorf("storing breadcrumb trail: %w", err)
	}

	return trail, nil
}

// Trail returns the rendered crumbs for the visitor, oldest first.
func (b *Breadcrumbs) Trail(ctx context.Context, visitorID string) ([]Crumb, error) {
	trail, err := b.load(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	crumbs := make([]Crumb, 0, len(trail))
	for i, path := range trail {
		crumbs = append(crumbs, Crumb{
			Path:    path,
			Label:   Label(path),
			Current: i == len(trail)-1,
		})
	}

	return crumbs, nil
}

// Clear drops the visitor's trail, e.g. on logout.
func (b *Breadcrumbs) Clear(ctx context.Context, visitorID string) error {
	if err := b.store.Delete(ctx, key(visitorID)); err != nil {
		return fmt.Errorf("clearing breadcrumb trail: %w", err)
	}

	return nil
}

func (b *Breadcrumbs) load(ctx context.Context, visitorID string) ([]string, error) {
	raw, err := b.store.Get(ctx, key(visitorID))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("loading breadcrumb trail: %w", err)
	}

	var trail []string
	if err := json.Unmarshal(raw, &trail); err != nil {
		// A broken trail is cosmetic state; start over.
		return nil, nil
	}

	if len(trail) > maxTrail {
		trail = trail[len(trail)-maxTrail:]
	}

	return trail, nil
}

// Label derives the human label for a path: query and fragment stripped,
// final segment decoded; a purely numeric final segment is an entity id,
// so the previous segment names it instead.
func Label(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return "Home"
	}

	last := parts[len(parts)-1]
	if isNumeric(last) {
		if len(parts) < 2 {
			return fallbackLabel
		}

		last = parts[len(parts)-2]
	}

	if decoded, err := url.PathUnescape(last); err == nil {
		return decoded
	}

	return last
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func key(visitorID string) string {
	return "breadcrumbs:" + visitorID
}
