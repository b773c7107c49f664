package repository

import "github.com/sadopc/feet/internal/store"

const kmPerStep = 0.000762

// Summary is a read-only view of one day, shared by widgets, CLI and MCP.
type Summary struct {
	Date              string          `json:"date"`
	WaterMl           int             `json:"water_ml"`
	WaterGoalMl       int             `json:"water_goal_ml"`
	GlassSizeMl       float64         `json:"glass_size_ml"`
	Steps             int             `json:"steps"`
	StepGoal          int             `json:"step_goal"`
	Calories          int             `json:"calories"`
	DistanceKm        float32         `json:"distance_km"`
	Workouts          []store.Workout `json:"workouts"`
	CompletedWorkouts int             `json:"completed_workouts"`
}

// TodaySummary reads today's water, steps and workouts together with the
// preferences that apply to them.
func (r *Repository) TodaySummary() (Summary, error) {
	prefs, err := r.Preferences()
	if err != nil {
		return Summary{}, err
	}
	today := r.Today()
	s := Summary{
		Date:        today,
		WaterGoalMl: prefs.DailyWaterGoalMl,
		GlassSizeMl: prefs.GlassSizeMl,
		StepGoal:    prefs.DailyStepGoal,
	}

	water, err := r.store.GetWaterByDate(today)
	if err != nil {
		return Summary{}, err
	}
	if water != nil {
		s.WaterMl = water.TotalMl
	}

	steps, err := r.store.GetStepsByDate(today)
	if err != nil {
		return Summary{}, err
	}
	if steps != nil {
		s.Steps = steps.Steps
		if steps.Goal > 0 {
			s.StepGoal = steps.Goal
		}
	}
	s.Calories = Calories(s.Steps)
	s.DistanceKm = DistanceKm(s.Steps)

	s.Workouts, err = r.store.ListWorkoutsByDate(today)
	if err != nil {
		return Summary{}, err
	}
	for _, w := range s.Workouts {
		if w.Completed {
			s.CompletedWorkouts++
		}
	}
	return s, nil
}

// Calories is floor(steps * 0.04), computed in integers.
func Calories(steps int) int {
	if steps <= 0 {
		return 0
	}
	return steps * 4 / 100
}

// DistanceKm is steps * 0.000762.
func DistanceKm(steps int) float32 {
	return float32(steps) * kmPerStep
}

// Progress is value/goal clamped to [0, 1]; a non-positive goal yields 0.
func Progress(value, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	p := float64(value) / float64(goal)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Percent is Progress scaled to a whole percentage.
func Percent(value, goal int) int {
	return int(Progress(value, goal) * 100)
}
