//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "8f2d1c2e-3b1f-4c0a-9d6e-0a1b2c3d4e5f"
	testAnonKey = "test-anon-key"
)

func newAccessToken(sub string, exp time.Time) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": "jane@example.com",
		"exp":   exp.Unix(),
	}).SignedString([]byte("integration-jwt-secret"))
	if err != nil {
		panic(err)
	}
	return token
}

// newFakeAuthAPI plays the hosted auth backend for a single valid token.
func newFakeAuthAPI(validToken string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != testAnonKey || r.Header.Get("Authorization") != "Bearer "+validToken {
			http.Error(w, `{"msg":"invalid JWT"}`, http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/auth/v1/user":
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprintf(w, `{"id":%q,"email":"jane@example.com","role":"authenticated"}`, testUserID)
		case "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
}

type apiRequest struct {
	method string
	path   string
	body   string
	token  string
	admin  bool
}

func doRequest(ctx context.Context, t *testing.T, ar apiRequest) (int, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, ar.method, serverEndpoint+ar.path, bytes.NewBufferString(ar.body))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if ar.token != "" {
		req.Header.Set("Authorization", "Bearer "+ar.token)
	}
	if ar.admin {
		req.SetBasicAuth(testAdminUsername, testAdminPassword)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBytes
}
