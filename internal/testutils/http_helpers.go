package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/bookreviews-api/internal/api/shared"
	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CreateTestServer creates a httptest server with the given handler and
// closes it when the test ends.
func CreateTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// RequestOption customizes a request built by DoJSON.
type RequestOption func(*http.Request)

// WithAuth sets a bearer token.
func WithAuth(token string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// WithRawBody replaces the JSON body with body as is.
func WithRawBody(body string) RequestOption {
	return func(r *http.Request) {
		r.Body = io.NopCloser(bytes.NewBufferString(body))
		r.ContentLength = int64(len(body))
	}
}

// DoJSON sends body encoded as JSON to server and returns the response. A nil
// body sends no payload. The response body is closed when the test ends.
func DoJSON(
	t *testing.T,
	server *httptest.Server,
	method, path string,
	body interface{},
	opts ...RequestOption,
) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err, "Failed to create request")
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err, "Failed to execute request")
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// DecodeJSON reads the response body into a value of type T.
func DecodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")
	require.NoError(t, json.Unmarshal(body, &v), "Failed to decode response: %s", string(body))
	return v
}

// AssertErrorResponse checks the status code and that the error message
// contains expectedErrorMsgPart.
func AssertErrorResponse(
	t *testing.T,
	resp *http.Response,
	expectedStatus int,
	expectedErrorMsgPart string,
) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")

	var errResp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp), "Failed to unmarshal error response: %s", string(body))
	assert.Contains(t, errResp.Error, expectedErrorMsgPart)
}

// AccessToken signs a real access token for user with the test secret.
func AccessToken(t *testing.T, jwtService auth.JWTService, user *domain.User) string {
	t.Helper()
	token, err := jwtService.GenerateToken(context.Background(), user)
	require.NoError(t, err, "Failed to generate access token")
	return token
}

// NewJWTService creates a JWT service from TestAuthConfig.
func NewJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(TestAuthConfig())
	require.NoError(t, err, "Failed to create JWT service")
	return svc
}
