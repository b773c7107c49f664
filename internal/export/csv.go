package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/feet/internal/repository"
)

// ToCSV writes one row per day.
func ToCSV(h History, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Date", "Water (ml)", "Glass (ml)", "Steps", "Step Goal", "Calories", "Distance (km)", "Workouts", "Completed"}); err != nil {
		return err
	}

	for _, d := range h.Days {
		row := []string{
			d.Date,
			strconv.Itoa(d.WaterMl),
			strconv.FormatFloat(d.GlassSizeMl, 'f', -1, 64),
			strconv.Itoa(d.Steps),
			strconv.Itoa(d.StepGoal),
			strconv.Itoa(repository.Calories(d.Steps)),
			fmt.Sprintf("%.2f", repository.DistanceKm(d.Steps)),
			strconv.Itoa(d.Workouts),
			strconv.Itoa(d.CompletedWorkouts),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
