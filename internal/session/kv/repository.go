// Package sessionkv persists sessions in a key-value store. Each session
// is two keys, an authenticated marker and the serialized record, written
// and removed together.
package sessionkv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkpi/kpi-gateway/internal/backend"
	"github.com/openkpi/kpi-gateway/internal/kvstore"
	"github.com/openkpi/kpi-gateway/internal/serviceerr"
	"github.com/openkpi/kpi-gateway/internal/session"
)

var (
	ErrLoadSession  = errors.New("getting session from store")
	ErrStoreSession = errors.New("setting session into storage")
)

const authenticatedMarker = "true"

type record struct {
	User        backend.User `json:"user"`
	Fingerprint string       `json:"fingerprint,omitempty"`
	CSRFToken   string       `json:"csrfToken,omitempty"`
	Expiry      time.Time    `json:"expiry"`
	LastVisited string       `json:"lastVisited,omitempty"`
}

type Repository struct {
	store kvstore.Store
}

var _ = session.Repository(&Repository{})

func NewRepository(store kvstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) LoadSession(ctx context.Context, sessionID string) (session.Session, error) {
	_, err := r.store.Get(ctx, authKey(sessionID))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return session.Session{}, serviceerr.ErrUnauthenticated
		}

		return session.Session{}, errors.Join(ErrLoadSession, err)
	}

	raw, err := r.store.Get(ctx, recordKey(sessionID))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			// Half a session is no session. Drop the dangling marker.
			r.cleanup(ctx, sessionID)
			return session.Session{}, serviceerr.ErrUnauthenticated
		}

		return session.Session{}, errors.Join(ErrLoadSession, err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		r.cleanup(ctx, sessionID)
		return session.Session{}, errors.Join(ErrLoadSession, fmt.Errorf("decoding session record: %w", err))
	}

	return session.Session{
		ID:          sessionID,
		User:        rec.User,
		Fingerprint: rec.Fingerprint,
		CSRFToken:   rec.CSRFToken,
		Expiry:      rec.Expiry,
		LastVisited: rec.LastVisited,
	}, nil
}

func (r *Repository) StoreSession(ctx context.Context, s session.Session) error {
	raw, err := json.Marshal(record{
		User:        s.User,
		Fingerprint: s.Fingerprint,
		CSRFToken:   s.CSRFToken,
		Expiry:      s.Expiry,
		LastVisited: s.LastVisited,
	})
	if err != nil {
		return errors.Join(ErrStoreSession, err)
	}

	ttl := time.Until(s.Expiry)

	var errs []error
	if err := r.store.Set(ctx, authKey(s.ID), []byte(authenticatedMarker), ttl); err != nil {
		errs = append(errs, err)
	}

	if err := r.store.Set(ctx, recordKey(s.ID), raw, ttl); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		if err := r.DeleteSession(ctx, s.ID); err != nil {
			slogctx.Error(ctx, "couldn't delete session during rollback", "error", err)
			errs = append(errs, err)
		}

		return errors.Join(append([]error{ErrStoreSession}, errs...)...)
	}

	return nil
}

func (r *Repository) DeleteSession(ctx context.Context, sessionID string) error {
	var errs []error
	if err := r.store.Delete(ctx, authKey(sessionID)); err != nil {
		errs = append(errs, err)
	}

	if err := r.store.Delete(ctx, recordKey(sessionID)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (r *Repository) cleanup(ctx context.Context, sessionID string) {
	if err := r.DeleteSession(ctx, sessionID); err != nil {
		slogctx.Debug(ctx, "Failed to clean up broken session record", "error", err)
	}
}

func authKey(sessionID string) string {
	return "session:auth:" + sessionID
}

func recordKey(sessionID string) string {
	return "session:record:" + sessionID
}
