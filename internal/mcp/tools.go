package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sadopc/feet/internal/export"
	"github.com/sadopc/feet/internal/repository"
	"github.com/sadopc/feet/internal/store"
)

const (
	defaultHistoryDays = 7
	maxHistoryDays     = 365
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_today",
		Description: "Get today's water intake, steps, calories, distance and workouts",
	}, s.handleGetToday)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_glass",
		Description: "Log one or more glasses of water for today",
	}, s.handleAddGlass)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "remove_glass",
		Description: "Remove one or more glasses of water from today's total",
	}, s.handleRemoveGlass)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_steps",
		Description: "Add steps to today's count",
	}, s.handleAddSteps)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_goals",
		Description: "Update the daily water goal, step goal or glass size",
	}, s.handleSetGoals)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_workout",
		Description: "Add a workout to today's list",
	}, s.handleAddWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "toggle_workout",
		Description: "Mark a workout as done, or not done if it already is",
	}, s.handleToggleWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_workout",
		Description: "Delete a workout by ID",
	}, s.handleDeleteWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List the workouts logged on a day",
	}, s.handleListWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "history",
		Description: "Daily water, steps and workout totals for the last few days",
	}, s.handleHistory)
}

// Tool input/output types

type emptyInput struct{}

type todayOutput struct {
	Date              string          `json:"date"`
	WaterMl           int             `json:"water_ml"`
	WaterGoalMl       int             `json:"water_goal_ml"`
	GlassSizeMl       float64         `json:"glass_size_ml"`
	Steps             int             `json:"steps"`
	StepGoal          int             `json:"step_goal"`
	Calories          int             `json:"calories"`
	DistanceKm        float32         `json:"distance_km"`
	Workouts          []workoutOutput `json:"workouts"`
	CompletedWorkouts int             `json:"completed_workouts"`
}

type glassInput struct {
	Count int `json:"count,omitempty" jsonschema:"Number of glasses from 1 to 100, defaults to 1"`
}

type waterOutput struct {
	WaterMl     int    `json:"water_ml"`
	WaterGoalMl int    `json:"water_goal_ml"`
	Percent     int    `json:"percent"`
	Message     string `json:"message"`
}

type addStepsInput struct {
	Steps int `json:"steps" jsonschema:"Steps to add; negative values subtract"`
}

type stepsOutput struct {
	Steps    int    `json:"steps"`
	StepGoal int    `json:"step_goal"`
	Percent  int    `json:"percent"`
	Message  string `json:"message"`
}

type setGoalsInput struct {
	WaterGoalMl int     `json:"water_goal_ml,omitempty" jsonschema:"Daily water goal in milliliters"`
	StepGoal    int     `json:"step_goal,omitempty" jsonschema:"Daily step goal"`
	GlassSizeMl float64 `json:"glass_size_ml,omitempty" jsonschema:"Size of one glass in milliliters"`
}

type goalsOutput struct {
	WaterGoalMl int     `json:"water_goal_ml"`
	StepGoal    int     `json:"step_goal"`
	GlassSizeMl float64 `json:"glass_size_ml"`
	Message     string  `json:"message"`
}

type addWorkoutInput struct {
	Name            string `json:"name" jsonschema:"Workout name"`
	GoalValue       int    `json:"goal_value" jsonschema:"Target repetitions or kilometers"`
	GoalType        string `json:"goal_type,omitempty" jsonschema:"REPS or KM, defaults to REPS"`
	DurationMinutes *int   `json:"duration_minutes,omitempty" jsonschema:"Planned duration in minutes"`
}

type workoutOutput struct {
	ID              int64  `json:"id"`
	Date            string `json:"date"`
	Name            string `json:"name"`
	GoalValue       int    `json:"goal_value"`
	GoalType        string `json:"goal_type"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	Completed       bool   `json:"completed"`
}

type workoutIDInput struct {
	ID int64 `json:"id" jsonschema:"Workout ID"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type listWorkoutsInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
}

type listWorkoutsOutput struct {
	Date     string          `json:"date"`
	Workouts []workoutOutput `json:"workouts"`
	Count    int             `json:"count"`
}

type historyInput struct {
	Days int `json:"days,omitempty" jsonschema:"Number of days including today, defaults to 7"`
}

type dayOutput struct {
	Date              string  `json:"date"`
	WaterMl           int     `json:"water_ml"`
	Steps             int     `json:"steps"`
	StepGoal          int     `json:"step_goal"`
	Calories          int     `json:"calories"`
	DistanceKm        float32 `json:"distance_km"`
	Workouts          int     `json:"workouts"`
	CompletedWorkouts int     `json:"completed_workouts"`
}

type historyOutput struct {
	From string      `json:"from"`
	To   string      `json:"to"`
	Days []dayOutput `json:"days"`
}

func toWorkoutOutput(w store.Workout) workoutOutput {
	return workoutOutput{
		ID:              w.ID,
		Date:            w.Date,
		Name:            w.Name,
		GoalValue:       w.GoalValue,
		GoalType:        string(w.GoalType),
		DurationMinutes: w.Duration,
		Completed:       w.Completed,
	}
}

func toWorkoutOutputs(ws []store.Workout) []workoutOutput {
	out := make([]workoutOutput, 0, len(ws))
	for _, w := range ws {
		out = append(out, toWorkoutOutput(w))
	}
	return out
}

// Tool handlers

func (s *Server) today() (todayOutput, error) {
	sum, err := s.repo.TodaySummary()
	if err != nil {
		return todayOutput{}, fmt.Errorf("failed to read today: %w", err)
	}
	return todayOutput{
		Date:              sum.Date,
		WaterMl:           sum.WaterMl,
		WaterGoalMl:       sum.WaterGoalMl,
		GlassSizeMl:       sum.GlassSizeMl,
		Steps:             sum.Steps,
		StepGoal:          sum.StepGoal,
		Calories:          sum.Calories,
		DistanceKm:        sum.DistanceKm,
		Workouts:          toWorkoutOutputs(sum.Workouts),
		CompletedWorkouts: sum.CompletedWorkouts,
	}, nil
}

func (s *Server) handleGetToday(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, todayOutput, error) {
	out, err := s.today()
	if err != nil {
		return nil, todayOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) adjustGlasses(count int) (waterOutput, error) {
	prefs, err := s.repo.Preferences()
	if err != nil {
		return waterOutput{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	rec, err := s.repo.AddWater(count * int(prefs.GlassSizeMl))
	if err != nil {
		return waterOutput{}, fmt.Errorf("failed to update water: %w", err)
	}
	return waterOutput{
		WaterMl:     rec.TotalMl,
		WaterGoalMl: prefs.DailyWaterGoalMl,
		Percent:     repository.Percent(rec.TotalMl, prefs.DailyWaterGoalMl),
	}, nil
}

func glassCount(n int) (int, error) {
	if n == 0 {
		return 1, nil
	}
	if n < 0 || n > repository.MaxGlassesPerAdd {
		return 0, fmt.Errorf("count must be 1 to %d, got %d", repository.MaxGlassesPerAdd, n)
	}
	return n, nil
}

func (s *Server) handleAddGlass(ctx context.Context, req *mcp.CallToolRequest, input glassInput) (*mcp.CallToolResult, waterOutput, error) {
	n, err := glassCount(input.Count)
	if err != nil {
		return nil, waterOutput{}, err
	}
	out, err := s.adjustGlasses(n)
	if err != nil {
		return nil, waterOutput{}, err
	}
	out.Message = fmt.Sprintf("Added %d glass(es), %d ml today", n, out.WaterMl)
	return nil, out, nil
}

func (s *Server) handleRemoveGlass(ctx context.Context, req *mcp.CallToolRequest, input glassInput) (*mcp.CallToolResult, waterOutput, error) {
	n, err := glassCount(input.Count)
	if err != nil {
		return nil, waterOutput{}, err
	}
	out, err := s.adjustGlasses(-n)
	if err != nil {
		return nil, waterOutput{}, err
	}
	out.Message = fmt.Sprintf("Removed %d glass(es), %d ml today", n, out.WaterMl)
	return nil, out, nil
}

func (s *Server) handleAddSteps(ctx context.Context, req *mcp.CallToolRequest, input addStepsInput) (*mcp.CallToolResult, stepsOutput, error) {
	if input.Steps == 0 {
		return nil, stepsOutput{}, fmt.Errorf("steps must not be zero")
	}
	if input.Steps > repository.MaxStepDelta || input.Steps < -repository.MaxStepDelta {
		return nil, stepsOutput{}, fmt.Errorf("steps must be within ±%d, got %d", repository.MaxStepDelta, input.Steps)
	}
	rec, err := s.repo.AddSteps(input.Steps)
	if err != nil {
		return nil, stepsOutput{}, fmt.Errorf("failed to update steps: %w", err)
	}
	return nil, stepsOutput{
		Steps:    rec.Steps,
		StepGoal: rec.Goal,
		Percent:  repository.Percent(rec.Steps, rec.Goal),
		Message:  fmt.Sprintf("%d steps today", rec.Steps),
	}, nil
}

func (s *Server) handleSetGoals(ctx context.Context, req *mcp.CallToolRequest, input setGoalsInput) (*mcp.CallToolResult, goalsOutput, error) {
	if input.WaterGoalMl < 0 || input.StepGoal < 0 || input.GlassSizeMl < 0 {
		return nil, goalsOutput{}, fmt.Errorf("goals must be positive")
	}
	if input.WaterGoalMl == 0 && input.StepGoal == 0 && input.GlassSizeMl == 0 {
		return nil, goalsOutput{}, fmt.Errorf("nothing to update")
	}
	if input.WaterGoalMl > 0 {
		if err := s.repo.SetWaterGoal(input.WaterGoalMl); err != nil {
			return nil, goalsOutput{}, fmt.Errorf("failed to set water goal: %w", err)
		}
	}
	if input.GlassSizeMl > 0 {
		if err := s.repo.SetGlassSize(input.GlassSizeMl); err != nil {
			return nil, goalsOutput{}, fmt.Errorf("failed to set glass size: %w", err)
		}
	}
	if input.StepGoal > 0 {
		if err := s.repo.SetStepGoal(input.StepGoal); err != nil {
			return nil, goalsOutput{}, fmt.Errorf("failed to set step goal: %w", err)
		}
	}

	prefs, err := s.repo.Preferences()
	if err != nil {
		return nil, goalsOutput{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	return nil, goalsOutput{
		WaterGoalMl: prefs.DailyWaterGoalMl,
		StepGoal:    prefs.DailyStepGoal,
		GlassSizeMl: prefs.GlassSizeMl,
		Message:     "Goals updated",
	}, nil
}

func (s *Server) handleAddWorkout(ctx context.Context, req *mcp.CallToolRequest, input addWorkoutInput) (*mcp.CallToolResult, workoutOutput, error) {
	w, err := s.repo.AddWorkout(repository.NewWorkout{
		Name:      input.Name,
		Duration:  input.DurationMinutes,
		GoalValue: input.GoalValue,
		GoalType:  store.GoalType(input.GoalType),
	})
	if err != nil {
		return nil, workoutOutput{}, fmt.Errorf("failed to add workout: %w", err)
	}
	return nil, toWorkoutOutput(*w), nil
}

func (s *Server) handleToggleWorkout(ctx context.Context, req *mcp.CallToolRequest, input workoutIDInput) (*mcp.CallToolResult, workoutOutput, error) {
	w, err := s.repo.ToggleWorkout(input.ID)
	if err != nil {
		return nil, workoutOutput{}, fmt.Errorf("failed to toggle workout: %w", err)
	}
	return nil, toWorkoutOutput(*w), nil
}

func (s *Server) handleDeleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input workoutIDInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteWorkout(input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete workout: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted workout %d", input.ID)}, nil
}

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, listWorkoutsOutput, error) {
	date := input.Date
	if date == "" {
		date = s.repo.Today()
	} else if _, err := time.Parse(store.DateLayout, date); err != nil {
		return nil, listWorkoutsOutput{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}
	ws, err := s.repo.WorkoutsByDate(date)
	if err != nil {
		return nil, listWorkoutsOutput{}, fmt.Errorf("failed to list workouts: %w", err)
	}
	return nil, listWorkoutsOutput{Date: date, Workouts: toWorkoutOutputs(ws), Count: len(ws)}, nil
}

func (s *Server) handleHistory(ctx context.Context, req *mcp.CallToolRequest, input historyInput) (*mcp.CallToolResult, historyOutput, error) {
	days := input.Days
	if days == 0 {
		days = defaultHistoryDays
	}
	if days < 0 || days > maxHistoryDays {
		return nil, historyOutput{}, fmt.Errorf("days must be between 1 and %d", maxHistoryDays)
	}

	today, err := time.Parse(store.DateLayout, s.repo.Today())
	if err != nil {
		return nil, historyOutput{}, err
	}
	from := today.AddDate(0, 0, 1-days).Format(store.DateLayout)
	to := today.AddDate(0, 0, 1).Format(store.DateLayout)

	st := s.repo.Store()
	water, err := st.ListWaterRecordsBetween(from, to)
	if err != nil {
		return nil, historyOutput{}, fmt.Errorf("failed to read water: %w", err)
	}
	steps, err := st.ListStepRecordsBetween(from, to)
	if err != nil {
		return nil, historyOutput{}, fmt.Errorf("failed to read steps: %w", err)
	}
	workouts, err := st.ListWorkoutsBetween(from, to)
	if err != nil {
		return nil, historyOutput{}, fmt.Errorf("failed to read workouts: %w", err)
	}

	out := historyOutput{From: from, To: today.Format(store.DateLayout), Days: []dayOutput{}}
	for _, d := range export.Join(water, steps, workouts).Days {
		out.Days = append(out.Days, dayOutput{
			Date:              d.Date,
			WaterMl:           d.WaterMl,
			Steps:             d.Steps,
			StepGoal:          d.StepGoal,
			Calories:          repository.Calories(d.Steps),
			DistanceKm:        repository.DistanceKm(d.Steps),
			Workouts:          d.Workouts,
			CompletedWorkouts: d.CompletedWorkouts,
		})
	}
	return nil, out, nil
}
