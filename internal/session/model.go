package session

import (
	"time"

	"github.com/openkpi/kpi-gateway/internal/backend"
)

type Session struct {
	ID          string
	User        backend.User
	Fingerprint string
	CSRFToken   string
	Expiry      time.Time
	LastVisited string
}

func (s Session) Expired() bool {
	return time.Now().After(s.Expiry)
}
