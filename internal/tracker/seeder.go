package tracker

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

const (
	SeedReasonSeeded        = "seeded"
	SeedReasonAlreadySeeded = "already seeded"
	SeedReasonNotEmpty      = "store not empty"
)

type SeedResult struct {
	Seeded          bool   `json:"seeded"`
	Reason          string `json:"reason"`
	Workouts        int    `json:"workouts"`
	DietEntries     int    `json:"dietEntries"`
	ProgressEntries int    `json:"progressEntries"`
}

// Seeder fills an empty store with sample records, once.
type Seeder struct {
	store *Store
	now   func() time.Time
}

func NewSeeder(store *Store, now func() time.Time) *Seeder {
	if now == nil {
		now = time.Now
	}
	return &Seeder{
		store: store,
		now:   now,
	}
}

// Seed inserts the samples when the store is empty and not seeded yet.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	s.store.bootstrapMutex.Lock()
	defer s.store.bootstrapMutex.Unlock()
	return s.seed(ctx)
}

func (s *Seeder) seed(ctx context.Context) (_ SeedResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.seeder.seed")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if s.store.Seeded() {
		return SeedResult{Reason: SeedReasonAlreadySeeded}, nil
	}

	if s.store.Summary().Total > 0 {
		if err := s.store.MarkSeeded(ctx); err != nil {
			return SeedResult{}, fmt.Errorf("mark seeded: %w", err)
		}
		return SeedResult{Reason: SeedReasonNotEmpty}, nil
	}

	now := s.now()
	result := SeedResult{Seeded: true, Reason: SeedReasonSeeded}

	for _, w := range SampleWorkouts(now) {
		if _, err := s.store.AddWorkout(ctx, w); err != nil {
			return result, fmt.Errorf("add sample workout %s: %w", w.ID, err)
		}
		result.Workouts++
	}

	if _, err := s.store.AddDietEntry(ctx, SampleDietEntry(now)); err != nil {
		return result, fmt.Errorf("add sample diet entry: %w", err)
	}
	result.DietEntries++

	for _, p := range SampleProgressEntries(now) {
		if _, err := s.store.AddProgressEntry(ctx, p); err != nil {
			return result, fmt.Errorf("add sample progress entry %s: %w", p.ID, err)
		}
		result.ProgressEntries++
	}

	if err := s.store.MarkSeeded(ctx); err != nil {
		return result, fmt.Errorf("mark seeded: %w", err)
	}

	log.Infof("sample data seeded: %d workouts, %d diet entries, %d progress entries",
		result.Workouts, result.DietEntries, result.ProgressEntries)
	return result, nil
}

// Bootstrap hydrates the store from storage and runs the seeder.
// It is also the reload step after a reset. Concurrent calls run one
// after the other, so the samples go in at most once.
func Bootstrap(ctx context.Context, store *Store, seeder *Seeder) (SeedResult, error) {
	store.bootstrapMutex.Lock()
	defer store.bootstrapMutex.Unlock()

	if err := store.Reload(ctx); err != nil {
		return SeedResult{}, fmt.Errorf("reload store: %w", err)
	}
	return seeder.seed(ctx)
}

func day(now time.Time, daysAgo int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func SampleWorkouts(now time.Time) []Workout {
	return []Workout{
		{
			ID:   "sample-workout-1",
			Name: "Upper Body Strength",
			Date: day(now, 2),
			Exercises: []Exercise{
				{
					ID:           "sample-exercise-1",
					Name:         "Bench Press",
					TargetMuscle: "Chest",
					Sets: []Set{
						{ID: "sample-set-1", Reps: 10, Weight: 60, Completed: true},
						{ID: "sample-set-2", Reps: 8, Weight: 70, Completed: true},
						{ID: "sample-set-3", Reps: 6, Weight: 75, Completed: true},
					},
				},
				{
					ID:           "sample-exercise-2",
					Name:         "Pull Ups",
					TargetMuscle: "Back",
					Sets: []Set{
						{ID: "sample-set-4", Reps: 10, Weight: 0, Completed: true},
						{ID: "sample-set-5", Reps: 8, Weight: 0, Completed: true},
					},
					Notes: "bodyweight",
				},
			},
			Duration:  intPtr(60),
			Notes:     "Felt strong today",
			Completed: true,
		},
		{
			ID:   "sample-workout-2",
			Name: "Leg Day",
			Date: day(now, 0),
			Exercises: []Exercise{
				{
					ID:           "sample-exercise-3",
					Name:         "Squats",
					TargetMuscle: "Legs",
					Sets: []Set{
						{ID: "sample-set-6", Reps: 8, Weight: 100, Completed: false},
						{ID: "sample-set-7", Reps: 8, Weight: 100, Completed: false},
						{ID: "sample-set-8", Reps: 8, Weight: 100, Completed: false},
					},
				},
			},
			Duration:  intPtr(45),
			Completed: false,
		},
	}
}

func SampleDietEntry(now time.Time) DietEntry {
	return DietEntry{
		ID:   "sample-diet-1",
		Date: day(now, 0),
		Meals: Meals{
			Breakfast: []Meal{
				{ID: "sample-meal-1", Name: "Oatmeal with berries", Calories: 350, Protein: 12, Carbs: 60, Fats: 7, Quantity: 1, Unit: "bowl"},
			},
			Lunch: []Meal{
				{ID: "sample-meal-2", Name: "Grilled chicken salad", Calories: 450, Protein: 40, Carbs: 20, Fats: 22, Quantity: 1, Unit: "plate"},
			},
			Dinner: []Meal{
				{ID: "sample-meal-3", Name: "Salmon with rice", Calories: 600, Protein: 42, Carbs: 55, Fats: 20, Quantity: 1, Unit: "plate"},
			},
			Snacks: []Meal{
				{ID: "sample-meal-4", Name: "Greek yogurt", Calories: 150, Protein: 15, Carbs: 8, Fats: 5, Quantity: 170, Unit: "g"},
			},
		},
		WaterIntake: 2000,
	}
}

func SampleProgressEntries(now time.Time) []ProgressEntry {
	return []ProgressEntry{
		{
			ID:      "sample-progress-1",
			Date:    day(now, 28),
			Weight:  floatPtr(82.5),
			BodyFat: floatPtr(20),
			Measurements: &Measurements{
				Chest: floatPtr(102), Waist: floatPtr(88), Hips: floatPtr(100), Arms: floatPtr(35), Thighs: floatPtr(58),
			},
			Notes: "Starting point",
		},
		{
			ID:      "sample-progress-2",
			Date:    day(now, 14),
			Weight:  floatPtr(81.2),
			BodyFat: floatPtr(19.2),
			Measurements: &Measurements{
				Chest: floatPtr(102), Waist: floatPtr(86.5), Hips: floatPtr(99), Arms: floatPtr(35.5), Thighs: floatPtr(58),
			},
		},
		{
			ID:      "sample-progress-3",
			Date:    day(now, 0),
			Weight:  floatPtr(80.1),
			BodyFat: floatPtr(18.5),
			Measurements: &Measurements{
				Chest: floatPtr(103), Waist: floatPtr(85), Hips: floatPtr(98.5), Arms: floatPtr(36), Thighs: floatPtr(57.5),
			},
			Notes: "Down 2.4kg",
		},
	}
}
