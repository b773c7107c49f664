package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/feet/internal/repository"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Days       []jsonDay     `json:"days"`
	Workouts   []jsonWorkout `json:"workouts"`
}

type jsonDay struct {
	Date              string  `json:"date"`
	WaterMl           int     `json:"water_ml"`
	GlassSizeMl       float64 `json:"glass_size_ml,omitempty"`
	Steps             int     `json:"steps"`
	StepGoal          int     `json:"step_goal,omitempty"`
	Calories          int     `json:"calories"`
	DistanceKm        float32 `json:"distance_km"`
	Workouts          int     `json:"workouts"`
	CompletedWorkouts int     `json:"completed_workouts"`
}

type jsonWorkout struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Duration  *int   `json:"duration_minutes,omitempty"`
	GoalValue int    `json:"goal_value"`
	GoalType  string `json:"goal_type"`
	Completed bool   `json:"completed"`
}

func ToJSON(h History, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Days:       []jsonDay{},
		Workouts:   []jsonWorkout{},
	}

	for _, d := range h.Days {
		export.Days = append(export.Days, jsonDay{
			Date:              d.Date,
			WaterMl:           d.WaterMl,
			GlassSizeMl:       d.GlassSizeMl,
			Steps:             d.Steps,
			StepGoal:          d.StepGoal,
			Calories:          repository.Calories(d.Steps),
			DistanceKm:        repository.DistanceKm(d.Steps),
			Workouts:          d.Workouts,
			CompletedWorkouts: d.CompletedWorkouts,
		})
	}
	for _, w := range h.Workouts {
		export.Workouts = append(export.Workouts, jsonWorkout{
			ID:        w.ID,
			Date:      w.Date,
			Name:      w.Name,
			Duration:  w.Duration,
			GoalValue: w.GoalValue,
			GoalType:  string(w.GoalType),
			Completed: w.Completed,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
