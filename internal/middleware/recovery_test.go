package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
)

type panicRecTestHandler struct {
	panicWith any
	called    bool
}

func (p *panicRecTestHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	p.called = true
	if p.panicWith != nil {
		panic(p.panicWith)
	}
	w.WriteHeader(http.StatusAccepted)
}

func TestPanicRecovery_NoPanic(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	next := &panicRecTestHandler{}

	rr := httptest.NewRecorder()
	PanicRecovery(metricsManager)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/summary", nil))

	assert.True(t, next.called)
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.CounterHandleRequestPanic))
}

func TestPanicRecovery_Panic(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	next := &panicRecTestHandler{panicWith: "nil workout"}

	rr := httptest.NewRecorder()
	PanicRecovery(metricsManager)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/workouts", nil))

	assert.True(t, next.called)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterHandleRequestPanic))
}

func TestPanicRecovery_AbortHandlerPropagates(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	next := &panicRecTestHandler{panicWith: http.ErrAbortHandler}

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		PanicRecovery(metricsManager)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.CounterHandleRequestPanic))
}

func TestPanicRecovery_NilManager(t *testing.T) {
	rr := httptest.NewRecorder()
	PanicRecovery(nil)(&panicRecTestHandler{panicWith: 42}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
