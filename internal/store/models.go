package store

import "time"

// Default preference values, used when the singleton row has not been written yet.
const (
	DefaultWaterGoalMl = 4000
	DefaultStepGoal    = 10000
	DefaultGlassSizeMl = 250.0
)

// GoalType is the unit a workout goal is measured in.
type GoalType string

const (
	GoalReps GoalType = "REPS"
	GoalKm   GoalType = "KM"
)

// Valid reports whether g is one of the known goal types.
func (g GoalType) Valid() bool {
	return g == GoalReps || g == GoalKm
}

type WaterRecord struct {
	Date        string // YYYY-MM-DD
	TotalMl     int
	GlassSizeMl float64
	Timestamp   time.Time
}

type StepRecord struct {
	Date      string // YYYY-MM-DD
	Steps     int
	Goal      int
	Timestamp time.Time
}

type Workout struct {
	ID        int64
	Date      string // YYYY-MM-DD
	Name      string
	Duration  *int // minutes
	GoalValue int
	GoalType  GoalType
	Completed bool
	Timestamp time.Time
}

// Preferences is the single user_preferences row.
type Preferences struct {
	DailyWaterGoalMl int
	DailyStepGoal    int
	GlassSizeMl      float64
	Timestamp        time.Time
}

// DefaultPreferences returns the values a fresh install starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		DailyWaterGoalMl: DefaultWaterGoalMl,
		DailyStepGoal:    DefaultStepGoal,
		GlassSizeMl:      DefaultGlassSizeMl,
	}
}
