package tracker

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

const maxRecordBodyBytes = 1 << 20

type Handler struct {
	store    *Store
	resetter *Resetter
	metrics  *metrics.Manager
	now      func() time.Time
}

func NewHandler(
	store *Store,
	resetter *Resetter,
	metrics *metrics.Manager,
) *Handler {
	return &Handler{
		store:    store,
		resetter: resetter,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (handler *Handler) HandleListWorkouts(w http.ResponseWriter, r *http.Request) {
	dr, err := ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	workouts := FilterByDate(handler.store.Workouts(), dr)
	pkg.WriteJSON(w, map[string]any{
		"workouts": workouts,
		"total":    len(workouts),
	}, http.StatusOK)
}

func (handler *Handler) HandleAddWorkout(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.addWorkout")
	defer span.End()

	var workout Workout
	if err := decodeRecord(w, r, &workout); err != nil {
		log.Debugf("add workout, decode body: %s", err)
		http.Error(w, "invalid workout", http.StatusBadRequest)
		return
	}
	if workout.Date.IsZero() {
		workout.Date = handler.now().UTC()
	}

	added, err := handler.store.AddWorkout(ctx, workout)
	if err != nil {
		log.Errorf("add workout [%s]: %s", workout.Name, err)
		http.Error(w, "failed to add workout", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRecordsAdded.WithLabelValues("workout").Inc()
	log.Debugf("workout added: %s [%s]", added.ID, added.Name)
	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleListDietEntries(w http.ResponseWriter, r *http.Request) {
	dr, err := ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entries := FilterByDate(handler.store.DietEntries(), dr)
	pkg.WriteJSON(w, map[string]any{
		"dietEntries": entries,
		"total":       len(entries),
	}, http.StatusOK)
}

func (handler *Handler) HandleAddDietEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.addDietEntry")
	defer span.End()

	var entry DietEntry
	if err := decodeRecord(w, r, &entry); err != nil {
		log.Debugf("add diet entry, decode body: %s", err)
		http.Error(w, "invalid diet entry", http.StatusBadRequest)
		return
	}
	if entry.Date.IsZero() {
		entry.Date = handler.now().UTC()
	}

	added, err := handler.store.AddDietEntry(ctx, entry)
	if err != nil {
		log.Errorf("add diet entry [%s]: %s", entry.Date, err)
		http.Error(w, "failed to add diet entry", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRecordsAdded.WithLabelValues("diet").Inc()
	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleListProgressEntries(w http.ResponseWriter, r *http.Request) {
	dr, err := ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entries := FilterByDate(handler.store.ProgressEntries(), dr)
	pkg.WriteJSON(w, map[string]any{
		"progressEntries": entries,
		"total":           len(entries),
	}, http.StatusOK)
}

func (handler *Handler) HandleAddProgressEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.addProgressEntry")
	defer span.End()

	var entry ProgressEntry
	if err := decodeRecord(w, r, &entry); err != nil {
		log.Debugf("add progress entry, decode body: %s", err)
		http.Error(w, "invalid progress entry", http.StatusBadRequest)
		return
	}
	if entry.Date.IsZero() {
		entry.Date = handler.now().UTC()
	}

	added, err := handler.store.AddProgressEntry(ctx, entry)
	if err != nil {
		log.Errorf("add progress entry [%s]: %s", entry.Date, err)
		http.Error(w, "failed to add progress entry", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRecordsAdded.WithLabelValues("progress").Inc()
	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, handler.store.Summary(), http.StatusOK)
}

func (handler *Handler) HandleDuplicates(w http.ResponseWriter, _ *http.Request) {
	report := CheckDuplicates(handler.store.State())
	if report.HasDuplicates {
		log.Warnf("duplicate ids found: %+v", report)
	}
	pkg.WriteJSON(w, report, http.StatusOK)
}

func (handler *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := handler.resetter.Reset(r.Context()); err != nil {
		log.Errorf("reset tracker data: %s", err)
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterResets.Inc()
	log.Warnln("tracker data reset")
	pkg.WriteJSON(w, handler.store.Summary(), http.StatusOK)
}

func decodeRecord(w http.ResponseWriter, r *http.Request, target any) error {
	if r.Body == nil {
		return fmt.Errorf("empty body")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
