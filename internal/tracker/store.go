package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"

	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

//go:generate mockgen -destination=kv_mocks_test.go -package=tracker github.com/2beens/fittrack/internal/storage KV

const snapshotVersion = 1

var (
	ErrCorruptState       = errors.New("corrupt app state")
	ErrUnsupportedVersion = errors.New("unsupported app state version")
)

// State is the application state kept under storage.KeyAppState.
type State struct {
	Workouts        []Workout       `json:"workouts"`
	DietEntries     []DietEntry     `json:"dietEntries"`
	ProgressEntries []ProgressEntry `json:"progressEntries"`
	Seeded          bool            `json:"seeded"`
}

func (s State) clone() State {
	return State{
		Workouts:        slices.Clone(s.Workouts),
		DietEntries:     slices.Clone(s.DietEntries),
		ProgressEntries: slices.Clone(s.ProgressEntries),
		Seeded:          s.Seeded,
	}
}

func (s State) Summary() Summary {
	return Summary{
		Workouts:        len(s.Workouts),
		DietEntries:     len(s.DietEntries),
		ProgressEntries: len(s.ProgressEntries),
		Total:           len(s.Workouts) + len(s.DietEntries) + len(s.ProgressEntries),
		Seeded:          s.Seeded,
	}
}

type snapshot struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}

// Store holds the tracker collections in memory and writes every change
// through to the persisted storage. Writes start from the persisted state,
// so a wipe done by another process is not undone by the next write.
type Store struct {
	kv    storage.KV
	newID func() string

	mutex sync.RWMutex
	state State

	// serializes Bootstrap, Seed and the wipe step of a reset
	bootstrapMutex sync.Mutex

	listenersMutex sync.Mutex
	listeners      map[int]func(State)
	nextListenerID int
}

func NewStore(kv storage.KV) *Store {
	return &Store{
		kv:        kv,
		newID:     uuid.NewString,
		listeners: make(map[int]func(State)),
	}
}

// Reload replaces the in-memory state with the persisted one. A missing
// key leaves an empty, unseeded store.
func (s *Store) Reload(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.store.reload")
	defer tracing.EndSpanWithErrCheck(span, &err)

	state, err := s.loadPersisted(ctx)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.state = state
	current := s.state.clone()
	s.mutex.Unlock()

	log.Debugf("store reloaded: %+v", current.Summary())
	s.notify(current)
	return nil
}

// Wipe removes the app state key and extraKeys from storage and empties
// the in-memory state. Removal errors are combined; the in-memory state
// is kept when any removal fails.
func (s *Store) Wipe(ctx context.Context, extraKeys ...string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.store.wipe")
	defer tracing.EndSpanWithErrCheck(span, &err)

	keys := append([]string{storage.KeyAppState}, extraKeys...)

	s.mutex.Lock()
	var removeErr error
	for _, key := range keys {
		if err := s.kv.Remove(ctx, key); err != nil {
			removeErr = multierr.Append(removeErr, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	if removeErr != nil {
		s.mutex.Unlock()
		return removeErr
	}
	s.state = State{}
	current := s.state.clone()
	s.mutex.Unlock()

	log.Warnf("storage keys %v removed", keys)
	s.notify(current)
	return nil
}

func (s *Store) loadPersisted(ctx context.Context) (State, error) {
	raw, found, err := s.kv.Get(ctx, storage.KeyAppState)
	if err != nil {
		return State{}, fmt.Errorf("read app state: %w", err)
	}
	if !found {
		return State{}, nil
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return State{}, fmt.Errorf("%w: %s", ErrCorruptState, err)
	}
	if snap.Version > snapshotVersion {
		return State{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	return snap.State, nil
}

func (s *Store) AddWorkout(ctx context.Context, workout Workout) (Workout, error) {
	if workout.ID == "" {
		workout.ID = s.newID()
	}
	if workout.Exercises == nil {
		workout.Exercises = []Exercise{}
	}
	err := s.update(ctx, "workout", func(state *State) {
		state.Workouts = append(state.Workouts, workout)
	})
	return workout, err
}

func (s *Store) AddDietEntry(ctx context.Context, entry DietEntry) (DietEntry, error) {
	if entry.ID == "" {
		entry.ID = s.newID()
	}
	err := s.update(ctx, "diet", func(state *State) {
		state.DietEntries = append(state.DietEntries, entry)
	})
	return entry, err
}

func (s *Store) AddProgressEntry(ctx context.Context, entry ProgressEntry) (ProgressEntry, error) {
	if entry.ID == "" {
		entry.ID = s.newID()
	}
	err := s.update(ctx, "progress", func(state *State) {
		state.ProgressEntries = append(state.ProgressEntries, entry)
	})
	return entry, err
}

// MarkSeeded records that the sample data step ran for this state.
func (s *Store) MarkSeeded(ctx context.Context) error {
	return s.update(ctx, "seeded", func(state *State) {
		state.Seeded = true
	})
}

func (s *Store) update(ctx context.Context, kind string, mutate func(*State)) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.store.update")
	span.SetAttributes(attribute.String("kind", kind))
	defer tracing.EndSpanWithErrCheck(span, &err)

	s.mutex.Lock()
	base, err := s.loadPersisted(ctx)
	if err != nil {
		s.mutex.Unlock()
		return fmt.Errorf("refresh before %s: %w", kind, err)
	}
	s.state = base.clone()
	mutate(&s.state)
	if err := s.persistLocked(ctx); err != nil {
		s.state = base
		s.mutex.Unlock()
		return fmt.Errorf("persist %s: %w", kind, err)
	}
	current := s.state.clone()
	s.mutex.Unlock()

	s.notify(current)
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(snapshot{
		State:   s.state,
		Version: snapshotVersion,
	})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, storage.KeyAppState, string(raw))
}

func (s *Store) Workouts() []Workout {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return slices.Clone(s.state.Workouts)
}

func (s *Store) DietEntries() []DietEntry {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return slices.Clone(s.state.DietEntries)
}

func (s *Store) ProgressEntries() []ProgressEntry {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return slices.Clone(s.state.ProgressEntries)
}

func (s *Store) State() State {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.state.clone()
}

func (s *Store) Summary() Summary {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.state.Summary()
}

func (s *Store) Seeded() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.state.Seeded
}

// Subscribe registers a listener called with a copy of the state after
// every change. The returned func removes it.
func (s *Store) Subscribe(listener func(State)) func() {
	s.listenersMutex.Lock()
	defer s.listenersMutex.Unlock()

	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = listener

	return func() {
		s.listenersMutex.Lock()
		defer s.listenersMutex.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(state State) {
	s.listenersMutex.Lock()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMutex.Unlock()

	for _, l := range listeners {
		l(state)
	}
}
