// Package fingerprint derives a stable client fingerprint from request
// headers. Sessions are bound to the fingerprint taken at login; a stolen
// session cookie presented by a different client no longer resolves.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

var headerKeys = []string{"user-agent", "accept"}

// FromRequest hashes the identifying request headers. Absent headers hash
// as empty strings, so the result is defined for every request.
func FromRequest(r *http.Request) string {
	h := sha256.New()

	for _, key := range headerKeys {
		h.Write([]byte(r.Header.Get(key)))
	}

	return hex.EncodeToString(h.Sum(nil))
}
