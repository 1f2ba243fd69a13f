package tracker

import "sort"

type Identifiable interface {
	GetID() string
}

// HasDuplicateIDs reports whether any id occurs more than once in records.
func HasDuplicateIDs[T Identifiable](records []T) bool {
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		ids[r.GetID()] = struct{}{}
	}
	return len(ids) != len(records)
}

// DuplicateIDs lists, sorted and once each, the ids occurring more than once.
func DuplicateIDs[T Identifiable](records []T) []string {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.GetID()]++
	}

	dups := []string{}
	for id, c := range counts {
		if c > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	return dups
}

type DuplicatesReport struct {
	HasDuplicates   bool     `json:"hasDuplicates"`
	Workouts        []string `json:"workouts"`
	DietEntries     []string `json:"dietEntries"`
	ProgressEntries []string `json:"progressEntries"`
}

func CheckDuplicates(state State) DuplicatesReport {
	report := DuplicatesReport{
		Workouts:        DuplicateIDs(state.Workouts),
		DietEntries:     DuplicateIDs(state.DietEntries),
		ProgressEntries: DuplicateIDs(state.ProgressEntries),
	}
	report.HasDuplicates = HasDuplicateIDs(state.Workouts) ||
		HasDuplicateIDs(state.DietEntries) ||
		HasDuplicateIDs(state.ProgressEntries)
	return report
}
