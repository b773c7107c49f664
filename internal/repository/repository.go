// Package repository is the single mutation path for fitness data. The TUI
// state holder, widgets, CLI commands and the MCP server all write through
// it, and every committed change is announced on the events bus.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sadopc/feet/internal/events"
	"github.com/sadopc/feet/internal/store"
)

var (
	ErrInvalidWorkout = errors.New("invalid workout")
	ErrInvalidGoal    = errors.New("goal out of range")
)

// Accepted ranges for preferences and for a single adjustment from a
// command surface.
const (
	MinGlassSizeMl = 1
	MaxGlassSizeMl = 5000
	MaxWaterGoalMl = 20000

	MaxGlassesPerAdd = 100
	MaxStepDelta     = 100000
)

type Repository struct {
	store  *store.Store
	bus    *events.Bus
	logger *log.Logger
	now    func() time.Time
}

type Option func(*Repository)

// WithClock replaces time.Now. Tests use it to pin "today".
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New builds a repository over s. bus and logger may be nil.
func New(s *store.Store, bus *events.Bus, logger *log.Logger, opts ...Option) *Repository {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Repository{
		store:  s,
		bus:    bus,
		logger: logger.WithPrefix("repository"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Store() *store.Store { return r.store }

func (r *Repository) Bus() *events.Bus { return r.bus }

// Today returns the local calendar date used as the day key.
func (r *Repository) Today() string {
	return r.now().Format(store.DateLayout)
}

func (r *Repository) publish(topic events.Topic) {
	if r.bus == nil {
		return
	}
	r.bus.Notify(topic)
}

// ============================================================
// Point lookups and upserts
// ============================================================

func (r *Repository) WaterByDate(date string) (*store.WaterRecord, error) {
	return r.store.GetWaterByDate(date)
}

func (r *Repository) StepsByDate(date string) (*store.StepRecord, error) {
	return r.store.GetStepsByDate(date)
}

func (r *Repository) UpsertWater(date string, totalMl int, glassSizeMl float64) error {
	if totalMl < 0 {
		totalMl = 0
	}
	if err := r.store.UpsertWater(date, totalMl, glassSizeMl); err != nil {
		return err
	}
	r.publish(events.Water)
	return nil
}

func (r *Repository) UpsertSteps(date string, steps, goal int) error {
	if steps < 0 {
		steps = 0
	}
	if err := r.store.UpsertSteps(date, steps, goal); err != nil {
		return err
	}
	r.publish(events.Steps)
	return nil
}

// Preferences returns the singleton row, writing the defaults first if it
// does not exist yet.
func (r *Repository) Preferences() (store.Preferences, error) {
	p, err := r.store.GetPreferences()
	if err != nil {
		return store.Preferences{}, err
	}
	if p != nil {
		return *p, nil
	}
	if err := r.store.InitPreferences(); err != nil {
		return store.Preferences{}, err
	}
	p, err = r.store.GetPreferences()
	if err != nil {
		return store.Preferences{}, err
	}
	if p == nil {
		return store.DefaultPreferences(), nil
	}
	return *p, nil
}

// ============================================================
// Water
// ============================================================

// AddWater adjusts today's total by deltaMl (negative removes) and returns
// the stored record. The total is floored at zero.
func (r *Repository) AddWater(deltaMl int) (*store.WaterRecord, error) {
	prefs, err := r.Preferences()
	if err != nil {
		return nil, err
	}
	rec, err := r.store.AdjustWater(r.Today(), deltaMl, prefs.GlassSizeMl)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("water adjusted", "delta", deltaMl, "total", rec.TotalMl)
	r.publish(events.Water)
	return rec, nil
}

// AddWaterUpToGoal adds deltaMl without taking today's total past the
// daily goal. Widgets use it; the app itself has no ceiling.
func (r *Repository) AddWaterUpToGoal(deltaMl int) (*store.WaterRecord, error) {
	prefs, err := r.Preferences()
	if err != nil {
		return nil, err
	}
	rec, err := r.store.AdjustWaterCapped(r.Today(), deltaMl, prefs.DailyWaterGoalMl, prefs.GlassSizeMl)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("water adjusted", "delta", deltaMl, "total", rec.TotalMl, "cap", prefs.DailyWaterGoalMl)
	r.publish(events.Water)
	return rec, nil
}

func (r *Repository) SetWaterGoal(ml int) error {
	if ml <= 0 || ml > MaxWaterGoalMl {
		return fmt.Errorf("set water goal %d: %w", ml, ErrInvalidGoal)
	}
	return r.updatePreferences(func(p *store.Preferences) { p.DailyWaterGoalMl = ml })
}

// SetGlassSize rejects sizes that are not finite or fall outside
// MinGlassSizeMl..MaxGlassSizeMl.
func (r *Repository) SetGlassSize(ml float64) error {
	if math.IsNaN(ml) || math.IsInf(ml, 0) || ml < MinGlassSizeMl || ml > MaxGlassSizeMl {
		return fmt.Errorf("set glass size %g: %w", ml, ErrInvalidGoal)
	}
	return r.updatePreferences(func(p *store.Preferences) { p.GlassSizeMl = ml })
}

func (r *Repository) updatePreferences(fn func(*store.Preferences)) error {
	p, err := r.Preferences()
	if err != nil {
		return err
	}
	fn(&p)
	if err := r.store.SavePreferences(p); err != nil {
		return err
	}
	r.publish(events.Preferences)
	return nil
}

// WaterHistory returns up to n stored days, most recent first.
func (r *Repository) WaterHistory(n int) ([]store.WaterRecord, error) {
	records, err := r.store.ListWaterRecords()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// ============================================================
// Steps
// ============================================================

// SetSteps overwrites today's count. The stored goal is kept, falling back
// to the preferred goal for a new day.
func (r *Repository) SetSteps(n int) (*store.StepRecord, error) {
	goal, err := r.todayStepGoal()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	today := r.Today()
	if err := r.store.UpsertSteps(today, n, goal); err != nil {
		return nil, err
	}
	r.publish(events.Steps)
	return r.store.GetStepsByDate(today)
}

// AddSteps adds delta to today's count in one transaction.
func (r *Repository) AddSteps(delta int) (*store.StepRecord, error) {
	prefs, err := r.Preferences()
	if err != nil {
		return nil, err
	}
	rec, err := r.store.AdjustSteps(r.Today(), delta, prefs.DailyStepGoal)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("steps adjusted", "delta", delta, "steps", rec.Steps)
	r.publish(events.Steps)
	return rec, nil
}

// SetStepGoal saves the preferred goal and rewrites today's record with it.
func (r *Repository) SetStepGoal(goal int) error {
	if goal <= 0 {
		return fmt.Errorf("set step goal %d: %w", goal, ErrInvalidGoal)
	}
	if err := r.updatePreferences(func(p *store.Preferences) { p.DailyStepGoal = goal }); err != nil {
		return err
	}
	today := r.Today()
	steps := 0
	rec, err := r.store.GetStepsByDate(today)
	if err != nil {
		return err
	}
	if rec != nil {
		steps = rec.Steps
	}
	if err := r.store.UpsertSteps(today, steps, goal); err != nil {
		return err
	}
	r.publish(events.Steps)
	return nil
}

func (r *Repository) todayStepGoal() (int, error) {
	rec, err := r.store.GetStepsByDate(r.Today())
	if err != nil {
		return 0, err
	}
	if rec != nil && rec.Goal > 0 {
		return rec.Goal, nil
	}
	prefs, err := r.Preferences()
	if err != nil {
		return 0, err
	}
	return prefs.DailyStepGoal, nil
}

// StepHistory returns up to n stored days, most recent first.
func (r *Repository) StepHistory(n int) ([]store.StepRecord, error) {
	records, err := r.store.ListStepRecords()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// ============================================================
// Workouts
// ============================================================

type NewWorkout struct {
	Name      string
	Duration  *int
	GoalValue int
	GoalType  store.GoalType
}

// AddWorkout validates w and stores it under today's date.
func (r *Repository) AddWorkout(w NewWorkout) (*store.Workout, error) {
	name := strings.TrimSpace(w.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrInvalidWorkout)
	}
	if w.GoalValue <= 0 {
		return nil, fmt.Errorf("goal value %d must be positive: %w", w.GoalValue, ErrInvalidWorkout)
	}
	if w.GoalType == "" {
		w.GoalType = store.GoalReps
	}
	if !w.GoalType.Valid() {
		return nil, fmt.Errorf("goal type %q: %w", w.GoalType, ErrInvalidWorkout)
	}
	if w.Duration != nil && *w.Duration < 0 {
		return nil, fmt.Errorf("duration %d: %w", *w.Duration, ErrInvalidWorkout)
	}

	created, err := r.store.CreateWorkout(r.Today(), name, w.Duration, w.GoalValue, w.GoalType, false)
	if err != nil {
		return nil, err
	}
	r.logger.Info("workout added", "id", created.ID, "name", created.Name)
	r.publish(events.Workouts)
	return created, nil
}

func (r *Repository) ToggleWorkout(id int64) (*store.Workout, error) {
	w, err := r.store.ToggleWorkout(id)
	if err != nil {
		return nil, err
	}
	r.publish(events.Workouts)
	return w, nil
}

func (r *Repository) DeleteWorkout(id int64) error {
	if err := r.store.DeleteWorkout(id); err != nil {
		return err
	}
	r.logger.Info("workout deleted", "id", id)
	r.publish(events.Workouts)
	return nil
}

func (r *Repository) WorkoutsByDate(date string) ([]store.Workout, error) {
	return r.store.ListWorkoutsByDate(date)
}

func (r *Repository) TodayWorkouts() ([]store.Workout, error) {
	return r.store.ListWorkoutsByDate(r.Today())
}

// ============================================================
// Maintenance
// ============================================================

func (r *Repository) DeleteWaterOlderThan(cutoff string) (int64, error) {
	return r.store.DeleteWaterOlderThan(cutoff)
}

func (r *Repository) DeleteStepsOlderThan(cutoff string) (int64, error) {
	return r.store.DeleteStepsOlderThan(cutoff)
}

func (r *Repository) DeleteWorkoutsOlderThan(cutoff string) (int64, error) {
	return r.store.DeleteWorkoutsOlderThan(cutoff)
}

type PruneResult struct {
	Cutoff   string
	Water    int64
	Steps    int64
	Workouts int64
}

// Prune deletes every record dated more than daysToKeep days before today.
// It only runs when asked to; nothing schedules it.
func (r *Repository) Prune(daysToKeep int) (PruneResult, error) {
	if daysToKeep < 0 {
		return PruneResult{}, fmt.Errorf("prune: days to keep %d must not be negative", daysToKeep)
	}
	cutoff := r.now().AddDate(0, 0, -daysToKeep).Format(store.DateLayout)
	res := PruneResult{Cutoff: cutoff}

	var err error
	if res.Water, err = r.store.DeleteWaterOlderThan(cutoff); err != nil {
		return res, err
	}
	if res.Steps, err = r.store.DeleteStepsOlderThan(cutoff); err != nil {
		return res, err
	}
	if res.Workouts, err = r.store.DeleteWorkoutsOlderThan(cutoff); err != nil {
		return res, err
	}
	r.logger.Info("pruned history", "cutoff", cutoff, "water", res.Water, "steps", res.Steps, "workouts", res.Workouts)
	if res.Water > 0 {
		r.publish(events.Water)
	}
	if res.Steps > 0 {
		r.publish(events.Steps)
	}
	if res.Workouts > 0 {
		r.publish(events.Workouts)
	}
	return res, nil
}

// ============================================================
// Cross-process changes
// ============================================================

// Watch polls SQLite's data_version and publishes events.External whenever
// another process has committed. It returns when ctx is done.
func (r *Repository) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	last, err := r.store.DataVersion()
	if err != nil {
		r.logger.Warn("data version unavailable, not watching", "err", err)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v, err := r.store.DataVersion()
			if err != nil {
				r.logger.Warn("read data version", "err", err)
				continue
			}
			if v != last {
				last = v
				r.logger.Debug("external change detected", "data_version", v)
				r.publish(events.External)
			}
		}
	}
}
