// Package visitor assigns every browser a stable anonymous identifier and
// makes it available in the context. The flash slot and the breadcrumb
// trail are keyed by it, so they work before login and survive logout.
package visitor

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/openkpi/kpi-gateway/internal/config"
)

// Using an unexported type prevents key collisions from other packages.
type contextKey string

// VisitorKey is the context key used to store the visitor identifier.
const VisitorKey contextKey = "visitor"

// Middleware injects the visitor identifier from the cookie into the
// context, minting a new one when the cookie is missing or empty.
func Middleware(template config.CookieTemplate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := visitorFromRequest(r, template.Name)
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, template.ToCookie(id))
			}

			ctx := context.WithValue(r.Context(), VisitorKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext is a helper function that retrieves the visitor identifier
// from the context.
func FromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(VisitorKey).(string)
	if !ok || id == "" {
		return "", errors.New("visitor not found in context")
	}
	return id, nil
}

func visitorFromRequest(r *http.Request, cookieName string) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}
