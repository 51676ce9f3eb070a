package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkpi/kpi-gateway/internal/serviceerr"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantUser User
		wantErr  error
	}{
		{
			name: "success returns the profile",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/auth/login", r.URL.Path)
				assert.Equal(t, "secret-key", r.Header.Get("x-api-key"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "jane", body["username"])
				assert.Equal(t, "pw", body["password"])

				_ = json.NewEncoder(w).Encode(User{
					ID:      "u-1",
					Name:    "Jane",
					Surname: "Doe",
					Email:   "jane@example.com",
				})
			},
			wantUser: User{ID: "u-1", Name: "Jane", Surname: "Doe", Email: "jane@example.com"},
		}, {
			name: "401 reports invalid credentials",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantErr: serviceerr.ErrInvalidCredentials,
		}, {
			name: "403 reports invalid credentials",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			wantErr: serviceerr.ErrInvalidCredentials,
		}, {
			name: "500 reports an unknown error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: serviceerr.ErrUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(srv.URL, srv.URL, "secret-key", time.Second)

			user, err := client.Login(t.Context(), "jane", "pw")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, user)
		})
	}
}

func TestLoginTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, "secret-key", 20*time.Millisecond)

	_, err := client.Login(t.Context(), "jane", "pw")

	assert.ErrorIs(t, err, serviceerr.ErrTimeout)
}

func TestLoginNetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, srv.URL, "secret-key", time.Second)

	_, err := client.Login(t.Context(), "jane", "pw")

	assert.ErrorIs(t, err, serviceerr.ErrNetworkUnavailable)
}

func TestSignUp(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "success", status: http.StatusCreated},
		{name: "conflict when the email is taken", status: http.StatusConflict, wantErr: serviceerr.ErrConflict},
		{name: "400 reports an invalid request", status: http.StatusBadRequest, wantErr: serviceerr.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/auth/signup", r.URL.Path)

				var body SignUpRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "jane@example.com", body.Email)

				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, srv.URL, "secret-key", time.Second)

			err := client.SignUp(t.Context(), SignUpRequest{
				Email:     "jane@example.com",
				FirstName: "Jane",
				LastName:  "Doe",
				Password:  "pw",
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
