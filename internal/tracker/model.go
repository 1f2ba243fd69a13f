package tracker

import "time"

type Set struct {
	ID        string  `json:"id"`
	Reps      int     `json:"reps"`
	Weight    float64 `json:"weight"`
	Completed bool    `json:"completed"`
}

func (s Set) GetID() string { return s.ID }

type Exercise struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TargetMuscle string `json:"targetMuscle"`
	Sets         []Set  `json:"sets"`
	Notes        string `json:"notes,omitempty"`
}

func (e Exercise) GetID() string { return e.ID }

type Workout struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Date      time.Time  `json:"date"`
	Exercises []Exercise `json:"exercises"`
	// Duration is in minutes.
	Duration  *int   `json:"duration,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Completed bool   `json:"completed"`
}

func (w Workout) GetID() string { return w.ID }

type Meal struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

func (m Meal) GetID() string { return m.ID }

type Meals struct {
	Breakfast []Meal `json:"breakfast"`
	Lunch     []Meal `json:"lunch"`
	Dinner    []Meal `json:"dinner"`
	Snacks    []Meal `json:"snacks"`
}

func (m Meals) All() []Meal {
	all := make([]Meal, 0, len(m.Breakfast)+len(m.Lunch)+len(m.Dinner)+len(m.Snacks))
	all = append(all, m.Breakfast...)
	all = append(all, m.Lunch...)
	all = append(all, m.Dinner...)
	all = append(all, m.Snacks...)
	return all
}

type DietEntry struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Meals Meals     `json:"meals"`
	// WaterIntake is in ml.
	WaterIntake float64 `json:"waterIntake"`
	Notes       string  `json:"notes,omitempty"`
}

func (d DietEntry) GetID() string { return d.ID }

// TotalCalories sums the calories of every meal in all four buckets.
func (d DietEntry) TotalCalories() float64 {
	total := 0.0
	for _, m := range d.Meals.All() {
		total += m.Calories
	}
	return total
}

type Measurements struct {
	Chest  *float64 `json:"chest,omitempty"`
	Waist  *float64 `json:"waist,omitempty"`
	Hips   *float64 `json:"hips,omitempty"`
	Arms   *float64 `json:"arms,omitempty"`
	Thighs *float64 `json:"thighs,omitempty"`
}

type ProgressEntry struct {
	ID           string        `json:"id"`
	Date         time.Time     `json:"date"`
	Weight       *float64      `json:"weight,omitempty"`
	BodyFat      *float64      `json:"bodyFat,omitempty"`
	Measurements *Measurements `json:"measurements,omitempty"`
	Photos       []string      `json:"photos,omitempty"`
	Notes        string        `json:"notes,omitempty"`
}

func (p ProgressEntry) GetID() string { return p.ID }

// Summary reports the collection sizes of the store.
type Summary struct {
	Workouts        int  `json:"workouts"`
	DietEntries     int  `json:"dietEntries"`
	ProgressEntries int  `json:"progressEntries"`
	Total           int  `json:"total"`
	Seeded          bool `json:"seeded"`
}
