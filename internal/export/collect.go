package export

import (
	"sort"

	"github.com/sadopc/feet/internal/store"
)

// Day joins the water, steps and workout totals recorded for one date.
type Day struct {
	Date              string
	WaterMl           int
	GlassSizeMl       float64
	Steps             int
	StepGoal          int
	Workouts          int
	CompletedWorkouts int
}

// History is everything an export writes.
type History struct {
	Days     []Day
	Workouts []store.Workout
}

// Collect reads every stored record and groups it by date, oldest first.
func Collect(s *store.Store) (History, error) {
	water, err := s.ListWaterRecords()
	if err != nil {
		return History{}, err
	}
	steps, err := s.ListStepRecords()
	if err != nil {
		return History{}, err
	}
	workouts, err := s.ListWorkouts()
	if err != nil {
		return History{}, err
	}
	return Join(water, steps, workouts), nil
}

// Join builds a History from already loaded records.
func Join(water []store.WaterRecord, steps []store.StepRecord, workouts []store.Workout) History {
	days := make(map[string]*Day)
	day := func(date string) *Day {
		d, ok := days[date]
		if !ok {
			d = &Day{Date: date}
			days[date] = d
		}
		return d
	}

	for _, w := range water {
		d := day(w.Date)
		d.WaterMl = w.TotalMl
		d.GlassSizeMl = w.GlassSizeMl
	}
	for _, st := range steps {
		d := day(st.Date)
		d.Steps = st.Steps
		d.StepGoal = st.Goal
	}
	for _, w := range workouts {
		d := day(w.Date)
		d.Workouts++
		if w.Completed {
			d.CompletedWorkouts++
		}
	}

	h := History{Workouts: append([]store.Workout(nil), workouts...)}
	for _, d := range days {
		h.Days = append(h.Days, *d)
	}
	sort.Slice(h.Days, func(i, j int) bool { return h.Days[i].Date < h.Days[j].Date })
	sort.SliceStable(h.Workouts, func(i, j int) bool {
		if h.Workouts[i].Date != h.Workouts[j].Date {
			return h.Workouts[i].Date < h.Workouts[j].Date
		}
		return h.Workouts[i].ID < h.Workouts[j].ID
	})
	return h
}
