// Package backend wraps the two upstream REST services: the auth API that
// verifies credentials and the KPI API that owns the performance indicator
// records. Every error leaving this package is normalised onto the
// serviceerr taxonomy so callers never branch on transport details.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkpi/kpi-gateway/internal/serviceerr"
)

const apiKeyHeader = "x-api-key"

// User is the profile the auth API returns on a successful login. ID may be
// absent; older accounts predate the identifier column.
type User struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

type SignUpRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type Client struct {
	authBaseURL string
	kpiBaseURL  string
	apiKey      string
	httpClient  *http.Client
}

// NewClient builds a client for both upstream services. The timeout bounds
// every request; upstream outages must surface as errors, not hangs.
func NewClient(authBaseURL, kpiBaseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		authBaseURL: strings.TrimSuffix(authBaseURL, "/"),
		kpiBaseURL:  strings.TrimSuffix(kpiBaseURL, "/"),
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Login verifies the credentials against the auth API and returns the
// user's profile. A 401 or 403 from upstream means the credentials were
// rejected.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	slogctx.Debug(ctx, "Login() called")
	defer slogctx.Debug(ctx, "Login() completed")

	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var user User
	err := c.postJSON(ctx, c.authBaseURL+"/api/auth/login", body, &user)
	if err != nil {
		var svcErr *serviceerr.Error
		if errors.As(err, &svcErr) &&
			(svcErr.BackendStatus == http.StatusUnauthorized || svcErr.BackendStatus == http.StatusForbidden) {
			return User{}, serviceerr.ErrInvalidCredentials.WithStatus(svcErr.BackendStatus)
		}

		return User{}, fmt.Errorf("calling the login endpoint: %w", err)
	}

	return user, nil
}

// SignUp registers a new account. A conflict means the email is taken.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) error {
	slogctx.Debug(ctx, "SignUp() called")
	defer slogctx.Debug(ctx, "SignUp() completed")

	err := c.postJSON(ctx, c.authBaseURL+"/api/auth/signup", req, nil)
	if err != nil {
		return fmt.Errorf("calling the signup endpoint: %w", err)
	}

	return nil
}

func (c *Client) getJSON(ctx context.Context, uri string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return fmt.Errorf("creating a new HTTP request: %w", err)
	}

	return c.execute(req, out)
}

func (c *Client) postJSON(ctx context.Context, uri string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("creating a new HTTP request: %w", err)
	}

	return c.execute(req, out)
}

func (c *Client) execute(req *http.Request, out any) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return normalizeTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return normalizeStatus(resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

// normalizeTransportError folds request execution failures onto the error
// taxonomy: deadline overruns become timeouts, everything else on the wire
// becomes a network error. Callers rely on this being a closed set.
func normalizeTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(err, serviceerr.ErrTimeout)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return errors.Join(err, serviceerr.ErrTimeout)
		}

		return errors.Join(err, serviceerr.ErrNetworkUnavailable)
	}

	return errors.Join(err, serviceerr.ErrUnknown)
}

func normalizeStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return serviceerr.ErrInvalidRequest.WithStatus(status)
	case http.StatusUnauthorized, http.StatusForbidden:
		return serviceerr.ErrUnauthenticated.WithStatus(status)
	case http.StatusNotFound:
		return serviceerr.ErrNotFound.WithStatus(status)
	case http.StatusConflict:
		return serviceerr.ErrConflict.WithStatus(status)
	default:
		return serviceerr.ErrUnknown.WithStatus(status)
	}
}
