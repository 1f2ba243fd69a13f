package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCorsMiddleware(t *testing.T) {
	testCases := []struct {
		name           string
		origin         string
		userAgent      string
		path           string
		expectedOrigin string
		expectedStatus int
	}{
		{
			name:           "AppURL",
			origin:         "https://fittrack.example.com",
			expectedOrigin: "https://fittrack.example.com",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "LocalDev",
			origin:         "http://localhost:3000",
			expectedOrigin: "http://localhost:3000",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "NotAllowedOrigin",
			origin:         "https://www.notallowed.com",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Curl",
			userAgent:      "curl/8.5.0",
			expectedOrigin: "*",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "OpsCLI",
			userAgent:      "fittrackctl/1",
			expectedOrigin: "*",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "MCPWithoutOrigin",
			path:           "/mcp",
			expectedOrigin: "*",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "UnknownAgent",
			userAgent:      "UnknownAgent/1.0",
			path:           "/workouts",
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := tc.path
			if path == "" {
				path = "/"
			}
			rr := httptest.NewRecorder()
			req, err := http.NewRequest(http.MethodGet, path, nil)
			require.NoError(t, err)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("User-Agent", tc.userAgent)

			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
			Cors("https://fittrack.example.com/")(nextHandler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectedOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
