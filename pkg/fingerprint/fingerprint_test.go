package fingerprint_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkpi/kpi-gateway/pkg/fingerprint"
)

func TestFromRequest(t *testing.T) {
	chrome := &http.Request{Header: http.Header{
		"User-Agent": []string{"Mozilla/5.0"},
		"Accept":     []string{"application/json"},
	}}
	sameClient := &http.Request{Header: http.Header{
		"User-Agent": []string{"Mozilla/5.0"},
		"Accept":     []string{"application/json"},
	}}
	otherClient := &http.Request{Header: http.Header{
		"User-Agent": []string{"curl/8.0"},
		"Accept":     []string{"application/json"},
	}}

	assert.Equal(t, fingerprint.FromRequest(chrome), fingerprint.FromRequest(sameClient))
	assert.NotEqual(t, fingerprint.FromRequest(chrome), fingerprint.FromRequest(otherClient))
}

func TestFromRequestWithoutHeaders(t *testing.T) {
	bare := &http.Request{Header: http.Header{}}

	fp := fingerprint.FromRequest(bare)

	assert.NotEmpty(t, fp)
	assert.Equal(t, fp, fingerprint.FromRequest(&http.Request{Header: http.Header{}}))
}
