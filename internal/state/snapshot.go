package state

import (
	"github.com/sadopc/feet/internal/repository"
	"github.com/sadopc/feet/internal/store"
)

const (
	StatusLive       = "Live Tracking"
	StatusReady      = "Sensor Ready"
	StatusSimulation = "Simulation Mode"
)

func (s Snapshot) GlassesConsumed() int {
	if s.GlassSizeMl <= 0 {
		return 0
	}
	n := int(float64(s.TodayWaterMl) / s.GlassSizeMl)
	if n < 0 {
		return 0
	}
	return n
}

func (s Snapshot) GlassesGoal() int {
	if s.GlassSizeMl <= 0 {
		return defaultGlassesGoal
	}
	return int(float64(s.DailyGoalMl) / s.GlassSizeMl)
}

func (s Snapshot) WaterProgress() float64 {
	return repository.Progress(s.TodayWaterMl, s.DailyGoalMl)
}

func (s Snapshot) RemainingGlasses() int {
	return max(s.GlassesGoal()-s.GlassesConsumed(), 0)
}

func (s Snapshot) RemainingWaterMl() int {
	return max(s.DailyGoalMl-s.TodayWaterMl, 0)
}

// WaterGoalReached is true once today's total meets the goal.
func (s Snapshot) WaterGoalReached() bool {
	return s.DailyGoalMl > 0 && s.TodayWaterMl >= s.DailyGoalMl
}

func (s Snapshot) StepsProgress() float64 {
	return repository.Progress(s.TodaySteps, s.DailyStepGoal)
}

func (s Snapshot) WeekHistory() []store.StepRecord {
	return lastN(s.StepHistory, weekDays)
}

func (s Snapshot) MonthHistory() []store.StepRecord {
	return lastN(s.StepHistory, monthDays)
}

func lastN(h []store.StepRecord, n int) []store.StepRecord {
	if len(h) > n {
		h = h[:n]
	}
	return h
}

func (s Snapshot) Calories() int {
	return repository.Calories(s.TodaySteps)
}

func (s Snapshot) DistanceKm() float32 {
	return repository.DistanceKm(s.TodaySteps)
}

func (s Snapshot) TrackingStatus() string {
	switch {
	case s.LiveTracking:
		return StatusLive
	case s.SensorAvailable:
		return StatusReady
	default:
		return StatusSimulation
	}
}

func (s Snapshot) CompletedWorkouts() int {
	n := 0
	for _, w := range s.Workouts {
		if w.Completed {
			n++
		}
	}
	return n
}

// NowPlaying is "track - artist", or empty when nothing is playing.
func (s Snapshot) NowPlaying() string {
	if s.CurrentTrack == "" {
		return ""
	}
	return s.CurrentTrack + " - " + s.CurrentArtist
}
