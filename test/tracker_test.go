//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/fittrack/internal/tracker"
)

type workoutsResponse struct {
	Workouts []tracker.Workout `json:"workouts"`
	Total    int               `json:"total"`
}

func (s *IntegrationTestSuite) TestTracker_SignInAddAndReset() {
	ctx := context.Background()
	t := s.T()

	status, _ := doRequest(ctx, t, apiRequest{method: http.MethodGet, path: "/workouts"})
	s.Equal(http.StatusUnauthorized, status)

	status, body := doRequest(ctx, t, apiRequest{
		method: http.MethodPost,
		path:   "/auth/session",
		body:   `{"accessToken":"` + s.accessToken + `"}`,
	})
	s.Require().Equal(http.StatusOK, status, string(body))

	status, body = doRequest(ctx, t, apiRequest{method: http.MethodGet, path: "/workouts", token: s.accessToken})
	s.Require().Equal(http.StatusOK, status)
	var listed workoutsResponse
	s.Require().NoError(json.Unmarshal(body, &listed))
	s.Equal(2, listed.Total)

	status, body = doRequest(ctx, t, apiRequest{
		method: http.MethodPost,
		path:   "/workouts",
		token:  s.accessToken,
		body:   `{"name":"Deadlift Day","date":"2025-03-16T07:30:00Z","exercises":[{"id":"e1","name":"Deadlift","targetMuscle":"Back","sets":[{"id":"s1","reps":5,"weight":140,"completed":true}]}],"completed":true}`,
	})
	s.Require().Equal(http.StatusCreated, status, string(body))

	var summary tracker.Summary
	status, body = doRequest(ctx, t, apiRequest{method: http.MethodGet, path: "/summary", token: s.accessToken})
	s.Require().Equal(http.StatusOK, status)
	s.Require().NoError(json.Unmarshal(body, &summary))
	s.Equal(3, summary.Workouts)
	s.True(summary.Seeded)

	status, body = doRequest(ctx, t, apiRequest{method: http.MethodGet, path: "/admin/duplicates", admin: true})
	s.Require().Equal(http.StatusOK, status)
	var report tracker.DuplicatesReport
	s.Require().NoError(json.Unmarshal(body, &report))
	s.False(report.HasDuplicates)

	status, body = doRequest(ctx, t, apiRequest{method: http.MethodPost, path: "/admin/reset", admin: true})
	s.Require().Equal(http.StatusOK, status, string(body))
	s.Require().NoError(json.Unmarshal(body, &summary))
	s.Equal(2, summary.Workouts)
	s.Equal(1, summary.DietEntries)
	s.Equal(3, summary.ProgressEntries)

	status, _ = doRequest(ctx, t, apiRequest{method: http.MethodPost, path: "/auth/signout", token: s.accessToken})
	s.Equal(http.StatusOK, status)

	status, _ = doRequest(ctx, t, apiRequest{method: http.MethodGet, path: "/auth/session"})
	s.Equal(http.StatusUnauthorized, status)

	status, body = doRequest(ctx, t, apiRequest{method: http.MethodGet, path: "/auth/session", token: s.accessToken})
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"user":null,"loading":false}`, string(body))
}

func (s *IntegrationTestSuite) TestTheme_PersistedInRedis() {
	ctx := context.Background()
	t := s.T()

	status, _ := doRequest(ctx, t, apiRequest{method: http.MethodPut, path: "/theme", body: `{"theme":"light"}`})
	s.Equal(http.StatusUnauthorized, status)

	status, _ = doRequest(ctx, t, apiRequest{method: http.MethodPut, path: "/theme", token: s.accessToken, body: `{"theme":"light"}`})
	s.Require().Equal(http.StatusOK, status)

	status, body := doRequest(ctx, t, apiRequest{method: http.MethodGet, path: "/theme?system=dark"})
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`{"theme":"light"}`, string(body))
}
