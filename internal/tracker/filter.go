package tracker

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

type Dated interface {
	GetDate() time.Time
}

func (w Workout) GetDate() time.Time       { return w.Date }
func (d DietEntry) GetDate() time.Time     { return d.Date }
func (p ProgressEntry) GetDate() time.Time { return p.Date }

// DateRange bounds are inclusive days; a nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange parses YYYY-MM-DD bounds, empty strings meaning open.
func ParseDateRange(from, to string) (DateRange, error) {
	var dr DateRange
	if from != "" {
		f, err := time.Parse(DateLayout, from)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid from date %q: use YYYY-MM-DD", from)
		}
		dr.From = &f
	}
	if to != "" {
		t, err := time.Parse(DateLayout, to)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid to date %q: use YYYY-MM-DD", to)
		}
		// include the whole day
		t = t.Add(24*time.Hour - time.Nanosecond)
		dr.To = &t
	}
	if dr.From != nil && dr.To != nil && dr.From.After(*dr.To) {
		return DateRange{}, fmt.Errorf("from date %s is after to date %s", from, to)
	}
	return dr, nil
}

func (dr DateRange) Contains(t time.Time) bool {
	if dr.From != nil && t.Before(*dr.From) {
		return false
	}
	if dr.To != nil && t.After(*dr.To) {
		return false
	}
	return true
}

func FilterByDate[T Dated](records []T, dr DateRange) []T {
	filtered := make([]T, 0, len(records))
	for _, r := range records {
		if dr.Contains(r.GetDate()) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
