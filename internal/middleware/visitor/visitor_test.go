package visitor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkpi/kpi-gateway/internal/config"
)

var template = config.CookieTemplate{Name: "kpi_visitor", Path: "/"}

func TestMiddlewareMintsAnIdentifier(t *testing.T) {
	var seen string
	handler := Middleware(template)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		seen, err = FromContext(r.Context())
		require.NoError(t, err)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "kpi_visitor", cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
}

func TestMiddlewareReusesTheCookie(t *testing.T) {
	var seen string
	handler := Middleware(template)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "kpi_visitor", Value: "existing-id"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "existing-id", seen)
	assert.Empty(t, rec.Result().Cookies(), "no new cookie for a known visitor")
}

func TestFromContextWithoutMiddleware(t *testing.T) {
	_, err := FromContext(t.Context())

	assert.Error(t, err)
}
