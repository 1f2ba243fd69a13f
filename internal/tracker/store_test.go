package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/2beens/fittrack/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// hookKV wraps a KV so a test can fail a given Set or act right after a
// key is removed.
type hookKV struct {
	storage.KV

	mutex       sync.Mutex
	sets        int
	failSetAt   int
	setErr      error
	afterRemove func(key string)
}

func (k *hookKV) Set(ctx context.Context, key, value string) error {
	k.mutex.Lock()
	k.sets++
	n := k.sets
	k.mutex.Unlock()
	if k.failSetAt > 0 && n == k.failSetAt {
		return k.setErr
	}
	return k.KV.Set(ctx, key, value)
}

func (k *hookKV) Remove(ctx context.Context, key string) error {
	if err := k.KV.Remove(ctx, key); err != nil {
		return err
	}
	if k.afterRemove != nil {
		k.afterRemove(key)
	}
	return nil
}

func randomWorkout() Workout {
	return Workout{
		ID:   gofakeit.UUID(),
		Name: gofakeit.Word() + " workout",
		Date: gofakeit.DateRange(time.Now().AddDate(0, -1, 0), time.Now()).UTC(),
		Exercises: []Exercise{
			{
				ID:           gofakeit.UUID(),
				Name:         gofakeit.Word(),
				TargetMuscle: gofakeit.RandomString([]string{"Chest", "Back", "Legs", "Arms"}),
				Sets: []Set{
					{ID: gofakeit.UUID(), Reps: gofakeit.Number(1, 20), Weight: gofakeit.Float64Range(0, 150)},
				},
			},
		},
		Completed: gofakeit.Bool(),
	}
}

func randomProgressEntry() ProgressEntry {
	weight := gofakeit.Float64Range(50, 120)
	return ProgressEntry{
		ID:     gofakeit.UUID(),
		Date:   gofakeit.DateRange(time.Now().AddDate(0, -1, 0), time.Now()).UTC(),
		Weight: &weight,
	}
}

func TestStore_Reload_Empty(t *testing.T) {
	store := NewStore(storage.NewMemoryKV())
	require.NoError(t, store.Reload(context.Background()))

	summary := store.Summary()
	assert.Equal(t, 0, summary.Total)
	assert.False(t, summary.Seeded)
	assert.Empty(t, store.Workouts())
}

func TestStore_AddAndPersist(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	store := NewStore(kv)

	w := randomWorkout()
	added, err := store.AddWorkout(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, w.ID, added.ID)

	// empty ids get assigned
	noID := randomWorkout()
	noID.ID = ""
	added, err = store.AddWorkout(ctx, noID)
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)

	p := randomProgressEntry()
	_, err = store.AddProgressEntry(ctx, p)
	require.NoError(t, err)

	_, err = store.AddDietEntry(ctx, DietEntry{Date: time.Now().UTC(), WaterIntake: 1500})
	require.NoError(t, err)

	summary := store.Summary()
	assert.Equal(t, 2, summary.Workouts)
	assert.Equal(t, 1, summary.DietEntries)
	assert.Equal(t, 1, summary.ProgressEntries)
	assert.Equal(t, 4, summary.Total)

	raw, found, err := kv.Get(ctx, storage.KeyAppState)
	require.NoError(t, err)
	require.True(t, found)

	var snap snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.Equal(t, 1, snap.Version)
	assert.Len(t, snap.State.Workouts, 2)
	assert.Len(t, snap.State.ProgressEntries, 1)

	// a fresh store over the same storage sees the same data
	other := NewStore(kv)
	require.NoError(t, other.Reload(ctx))
	assert.Equal(t, store.Summary(), other.Summary())
	assert.Equal(t, w.Name, other.Workouts()[0].Name)
	assert.InDelta(t, *p.Weight, *other.ProgressEntries()[0].Weight, 0.0001)
}

func TestStore_Reload_Corrupt(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, storage.KeyAppState, "{not json"))

	err := NewStore(kv).Reload(ctx)
	assert.ErrorIs(t, err, ErrCorruptState)

	require.NoError(t, kv.Set(ctx, storage.KeyAppState, `{"state":{},"version":7}`))
	err = NewStore(kv).Reload(ctx)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestStore_Add_PersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	kv := NewMockKV(ctrl)
	store := NewStore(kv)

	kv.EXPECT().
		Get(gomock.Any(), storage.KeyAppState).
		Return("", false, nil).
		Times(2)
	kv.EXPECT().
		Set(gomock.Any(), storage.KeyAppState, gomock.Any()).
		Return(errors.New("disk full"))

	_, err := store.AddWorkout(ctx, randomWorkout())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, store.Workouts())

	kv.EXPECT().
		Set(gomock.Any(), storage.KeyAppState, gomock.Any()).
		Return(nil)
	_, err = store.AddWorkout(ctx, randomWorkout())
	require.NoError(t, err)
	assert.Len(t, store.Workouts(), 1)
}

func TestStore_Add_RefreshFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := NewMockKV(ctrl)
	kv.EXPECT().
		Get(gomock.Any(), storage.KeyAppState).
		Return("", false, errors.New("conn refused"))

	_, err := NewStore(kv).AddWorkout(context.Background(), randomWorkout())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh before workout")
}

func TestStore_WriteAfterWipeByAnotherStore(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()

	service := NewStore(kv)
	_, err := Bootstrap(ctx, service, NewSeeder(service, fixedClock))
	require.NoError(t, err)
	require.Equal(t, 6, service.Summary().Total)

	// e.g. fittrackctl reset against the same storage
	ctl := NewStore(kv)
	require.NoError(t, ctl.Reload(ctx))
	require.NoError(t, ctl.Wipe(ctx, storage.KeyUserID))

	w := randomWorkout()
	_, err = service.AddWorkout(ctx, w)
	require.NoError(t, err)

	assert.Equal(t, Summary{Workouts: 1, Total: 1}, service.Summary())
	require.NoError(t, ctl.Reload(ctx))
	require.Len(t, ctl.Workouts(), 1)
	assert.Equal(t, w.ID, ctl.Workouts()[0].ID)
}

func TestStore_Wipe(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, storage.KeyUserID, "user-1"))
	require.NoError(t, kv.Set(ctx, storage.KeyTheme, "light"))

	store := NewStore(kv)
	_, err := store.AddWorkout(ctx, randomWorkout())
	require.NoError(t, err)

	var notified []State
	unsubscribe := store.Subscribe(func(state State) { notified = append(notified, state) })
	defer unsubscribe()

	require.NoError(t, store.Wipe(ctx, storage.KeyUserID))
	assert.Equal(t, Summary{}, store.Summary())
	require.Len(t, notified, 1)
	assert.Empty(t, notified[0].Workouts)

	for key, want := range map[string]bool{
		storage.KeyAppState: false,
		storage.KeyUserID:   false,
		storage.KeyTheme:    true,
	} {
		_, found, err := kv.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, found, key)
	}
}

func TestStore_Reload_ReadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := NewMockKV(ctrl)
	kv.EXPECT().
		Get(gomock.Any(), storage.KeyAppState).
		Return("", false, errors.New("conn refused"))

	err := NewStore(kv).Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn refused")
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryKV())

	var got []Summary
	unsubscribe := store.Subscribe(func(s State) {
		got = append(got, s.Summary())
	})

	_, err := store.AddWorkout(ctx, randomWorkout())
	require.NoError(t, err)
	_, err = store.AddProgressEntry(ctx, randomProgressEntry())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Total)
	assert.Equal(t, 2, got[1].Total)

	unsubscribe()
	_, err = store.AddWorkout(ctx, randomWorkout())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryKV())
	_, err := store.AddWorkout(ctx, randomWorkout())
	require.NoError(t, err)

	workouts := store.Workouts()
	workouts[0].Name = "changed"
	assert.NotEqual(t, "changed", store.Workouts()[0].Name)
}
