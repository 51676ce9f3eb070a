package sessionmock

import (
	"context"

	"github.com/openkpi/kpi-gateway/internal/serviceerr"
	"github.com/openkpi/kpi-gateway/internal/session"
)

type RepositoryOption func(*Repository)

type Repository struct {
	sessions map[string]session.Session

	loadSessionErr, storeSessionErr, deleteSessionErr error
}

func WithSession(sess session.Session) RepositoryOption {
	return func(r *Repository) { r.sessions[sess.ID] = sess }
}
func WithLoadSessionError(err error) RepositoryOption {
	return func(r *Repository) { r.loadSessionErr = err }
}
func WithStoreSessionError(err error) RepositoryOption {
	return func(r *Repository) { r.storeSessionErr = err }
}
func WithDeleteSessionError(err error) RepositoryOption {
	return func(r *Repository) { r.deleteSessionErr = err }
}

var _ = session.Repository(&Repository{})

func NewInMemRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{
		sessions: make(map[string]session.Session),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Repository) LoadSession(_ context.Context, sessionID string) (session.Session, error) {
	if r.loadSessionErr != nil {
		return session.Session{}, r.loadSessionErr
	}
	if s, ok := r.sessions[sessionID]; ok {
		return s, nil
	}
	return session.Session{}, serviceerr.ErrUnauthenticated
}

func (r *Repository) StoreSession(_ context.Context, s session.Session) error {
	if r.storeSessionErr != nil {
		return r.storeSessionErr
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *Repository) DeleteSession(_ context.Context, sessionID string) error {
	if r.deleteSessionErr != nil {
		return r.deleteSessionErr
	}
	delete(r.sessions, sessionID)
	return nil
}

// Session returns the stored session and whether it exists, for assertions.
func (r *Repository) Session(sessionID string) (session.Session, bool) {
	s, ok := r.sessions[sessionID]
	return s, ok
}

// Len reports how many sessions the repository holds.
func (r *Repository) Len() int {
	return len(r.sessions)
}
