package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clavisauth/clavis/internal/core/domain/auth"
	"github.com/clavisauth/clavis/internal/core/domain/user"
	"github.com/clavisauth/clavis/internal/core/ports"
	"github.com/clavisauth/clavis/internal/infrastructure/httpserver"
	"github.com/clavisauth/clavis/test/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, registration ports.RegistrationService, authSvc ports.AuthService) *httptest.Server {
	t.Helper()
	if registration == nil {
		registration = &mocks.RegistrationServiceMock{}
	}
	if authSvc == nil {
		authSvc = &mocks.AuthServiceMock{}
	}

	srv := httpserver.NewServer(
		&httpserver.ServerConfig{Host: "127.0.0.1", Port: "0"},
		&httpserver.CookieConfig{AccessTTL: time.Minute, RefreshTTL: 7 * 24 * time.Hour},
		nil,
		httpserver.ServerDeps{RegistrationService: registration, AuthService: authSvc},
	)

	ts := httptest.NewServer(srv.Echo())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestRegisterEndpointSuccess(t *testing.T) {
	var gotReq *user.RegisterRequest
	registration := &mocks.RegistrationServiceMock{
		RegisterFn: func(ctx context.Context, req *user.RegisterRequest, clientID string) error {
			gotReq = req
			return nil
		},
	}
	ts := newTestServer(t, registration, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/register", map[string]string{
		"name":     "Ada Lovelace",
		"email":    "  Ada@Example.COM ",
		"password": "password123",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "If your email is valid, a verification link has been sent. It will expire in 5 minutes.", body["message"])
	require.NotNil(t, gotReq)
	assert.Equal(t, "ada@example.com", gotReq.Email, "email is trimmed and lowercased before the service sees it")
}

func TestRegisterEndpointValidation(t *testing.T) {
	registration := &mocks.RegistrationServiceMock{
		RegisterFn: func(ctx context.Context, req *user.RegisterRequest, clientID string) error {
			t.Fatal("invalid payload must not reach the service")
			return nil
		},
	}
	ts := newTestServer(t, registration, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/register", map[string]string{
		"name":     "Al",
		"email":    "not-an-email",
		"password": "shrt",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation failed", body["message"])

	errs, ok := body["errors"].(map[string]interface{})
	require.True(t, ok)
	for _, field := range []string{"name", "email", "password"} {
		fieldErr, ok := errs[field].(map[string]interface{})
		require.True(t, ok, "expected a structured error for %q", field)
		assert.NotEmpty(t, fieldErr["message"])
		assert.NotEmpty(t, fieldErr["code"])
	}
	assert.Equal(t, "min", errs["name"].(map[string]interface{})["code"])
	assert.Equal(t, "email", errs["email"].(map[string]interface{})["code"])
}

func TestRegisterEndpointThrottled(t *testing.T) {
	registration := &mocks.RegistrationServiceMock{
		RegisterFn: func(ctx context.Context, req *user.RegisterRequest, clientID string) error {
			return auth.ErrThrottled
		},
	}
	ts := newTestServer(t, registration, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/register", map[string]string{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Too many requests, try again later", body["message"])
}

func TestRegisterEndpointInternalErrorIsOpaque(t *testing.T) {
	registration := &mocks.RegistrationServiceMock{
		RegisterFn: func(ctx context.Context, req *user.RegisterRequest, clientID string) error {
			return assert.AnError
		},
	}
	ts := newTestServer(t, registration, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/register", map[string]string{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal Server Error", body["message"])
	assert.NotContains(t, body["message"], "assert.AnError")
}

func TestVerifyEmailEndpointSuccess(t *testing.T) {
	created := &user.User{
		ID:           uuid.New(),
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "secret-hash",
		Role:         user.RoleUser,
	}
	registration := &mocks.RegistrationServiceMock{
		VerifyFn: func(ctx context.Context, token string) (*user.User, error) {
			assert.Equal(t, "tok-1", token)
			return created, nil
		},
	}
	ts := newTestServer(t, registration, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/verify/tok-1", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Email verified successfully! Your account has been created.", body["message"])

	publicUser, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", publicUser["email"])
	assert.NotContains(t, publicUser, "password_hash")
}

func TestVerifyEmailEndpointExpired(t *testing.T) {
	registration := &mocks.RegistrationServiceMock{
		VerifyFn: func(ctx context.Context, token string) (*user.User, error) {
			return nil, auth.ErrTokenExpired
		},
	}
	ts := newTestServer(t, registration, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/verify/tok-gone", nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Verification link is expired.", body["message"])
}

func TestVerifyEmailEndpointDuplicate(t *testing.T) {
	registration := &mocks.RegistrationServiceMock{
		VerifyFn: func(ctx context.Context, token string) (*user.User, error) {
			return nil, user.ErrEmailTaken
		},
	}
	ts := newTestServer(t, registration, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/verify/tok-1", nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User already exists", body["message"])
}
