// Package state holds today's fitness data for the interactive UI. Every
// mutator persists through the repository first and only then updates the
// in-memory view, so a failed write leaves the view untouched.
package state

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sadopc/feet/internal/events"
	"github.com/sadopc/feet/internal/repository"
	"github.com/sadopc/feet/internal/sensor"
	"github.com/sadopc/feet/internal/store"
)

const (
	weekDays  = 7
	monthDays = 30

	// GlassesGoal falls back to this when the glass size is not positive.
	defaultGlassesGoal = 16

	sensorPollInterval = 500 * time.Millisecond
)

// Snapshot is a copy of everything the UI renders.
type Snapshot struct {
	Date string

	TodayWaterMl int
	DailyGoalMl  int
	GlassSizeMl  float64
	WaterHistory []store.WaterRecord // most recent first

	TodaySteps      int
	DailyStepGoal   int
	LiveTracking    bool
	SensorAvailable bool
	StepHistory     []store.StepRecord // most recent first

	Workouts []store.Workout

	CurrentTrack  string
	CurrentArtist string
}

type Holder struct {
	mu   sync.Mutex
	snap Snapshot

	repo    *repository.Repository
	logger  *log.Logger
	randInt func(n int) int
	changes chan struct{}
}

type Option func(*Holder)

// WithRand replaces the random source used by SimulateStepUpdate. fn must
// return a value in [0, n).
func WithRand(fn func(n int) int) Option {
	return func(h *Holder) { h.randInt = fn }
}

func New(repo *repository.Repository, logger *log.Logger, opts ...Option) *Holder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	h := &Holder{
		repo:    repo,
		logger:  logger.WithPrefix("state"),
		randInt: rand.IntN,
		changes: make(chan struct{}, 1),
		snap: Snapshot{
			DailyGoalMl:   store.DefaultWaterGoalMl,
			GlassSizeMl:   store.DefaultGlassSizeMl,
			DailyStepGoal: store.DefaultStepGoal,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Changes signals after every state change. Signals are coalesced.
func (h *Holder) Changes() <-chan struct{} {
	return h.changes
}

func (h *Holder) notify() {
	select {
	case h.changes <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current state.
func (h *Holder) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.snap
	s.WaterHistory = append([]store.WaterRecord(nil), h.snap.WaterHistory...)
	s.StepHistory = append([]store.StepRecord(nil), h.snap.StepHistory...)
	s.Workouts = append([]store.Workout(nil), h.snap.Workouts...)
	return s
}

// Load re-reads today's data, preferences and history from the repository.
// Live tracking flags and media metadata are kept.
func (h *Holder) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.loadLocked(); err != nil {
		return err
	}
	h.notify()
	return nil
}

func (h *Holder) loadLocked() error {
	prefs, err := h.repo.Preferences()
	if err != nil {
		return err
	}
	today := h.repo.Today()
	next := h.snap
	next.Date = today
	next.DailyGoalMl = prefs.DailyWaterGoalMl
	next.GlassSizeMl = prefs.GlassSizeMl
	next.DailyStepGoal = prefs.DailyStepGoal
	next.TodayWaterMl = 0
	next.TodaySteps = 0

	water, err := h.repo.WaterByDate(today)
	if err != nil {
		return err
	}
	if water != nil {
		next.TodayWaterMl = water.TotalMl
	}
	steps, err := h.repo.StepsByDate(today)
	if err != nil {
		return err
	}
	if steps != nil {
		next.TodaySteps = steps.Steps
		if steps.Goal > 0 {
			next.DailyStepGoal = steps.Goal
		}
	}

	if next.WaterHistory, err = h.repo.WaterHistory(monthDays); err != nil {
		return err
	}
	if next.StepHistory, err = h.repo.StepHistory(monthDays); err != nil {
		return err
	}
	if next.Workouts, err = h.repo.TodayWorkouts(); err != nil {
		return err
	}
	if h.snap.Date != "" && h.snap.Date != today {
		next.LiveTracking = false
	}
	h.snap = next
	return nil
}

// ============================================================
// Water
// ============================================================

// AddGlass adds one glass to today's total. There is no ceiling here; the
// UI disables the action once the goal is reached.
func (h *Holder) AddGlass() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	rec, err := h.repo.AddWater(int(h.snap.GlassSizeMl))
	if err != nil {
		return err
	}
	h.applyWaterLocked(rec)
	return nil
}

// RemoveGlass removes one glass, flooring at zero. Nothing is written when
// the total is already zero.
func (h *Holder) RemoveGlass() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.snap.TodayWaterMl <= 0 {
		return nil
	}
	rec, err := h.repo.AddWater(-int(h.snap.GlassSizeMl))
	if err != nil {
		return err
	}
	h.applyWaterLocked(rec)
	return nil
}

func (h *Holder) applyWaterLocked(rec *store.WaterRecord) {
	h.snap.TodayWaterMl = rec.TotalMl
	h.snap.Date = rec.Date
	for i := range h.snap.WaterHistory {
		if h.snap.WaterHistory[i].Date == rec.Date {
			h.snap.WaterHistory[i] = *rec
			h.notify()
			return
		}
	}
	h.snap.WaterHistory = append([]store.WaterRecord{*rec}, h.snap.WaterHistory...)
	h.notify()
}

// SetGlassSize ignores sizes that are not positive numbers.
func (h *Holder) SetGlassSize(ml float64) error {
	if !(ml > 0) {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.repo.SetGlassSize(ml); err != nil {
		return err
	}
	h.snap.GlassSizeMl = ml
	h.notify()
	return nil
}

// SetDailyGoal takes the goal in liters and ignores values that are not
// finite positive numbers.
func (h *Holder) SetDailyGoal(liters float64) error {
	if !(liters > 0) || math.IsInf(liters, 1) {
		return nil
	}
	ml := int(math.Round(liters * 1000))
	if ml <= 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.repo.SetWaterGoal(ml); err != nil {
		return err
	}
	h.snap.DailyGoalMl = ml
	h.notify()
	return nil
}

func (h *Holder) GlassesConsumed() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.GlassesConsumed()
}

func (h *Holder) GlassesGoal() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.GlassesGoal()
}

func (h *Holder) WaterProgress() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.WaterProgress()
}

func (h *Holder) RemainingGlasses() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.RemainingGlasses()
}

func (h *Holder) RemainingWaterMl() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.RemainingWaterMl()
}

// ============================================================
// Steps
// ============================================================

func (h *Holder) SetStepSensorAvailable(available bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snap.SensorAvailable = available
	h.notify()
}

// UpdateLiveSteps overwrites today's count with a sensor reading and
// switches to live tracking.
func (h *Holder) UpdateLiveSteps(steps int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snap.LiveTracking = true
	rec, err := h.repo.SetSteps(steps)
	if err != nil {
		h.notify()
		return err
	}
	h.applyStepsLocked(rec)
	return nil
}

// SetDailyStepGoal ignores non-positive goals.
func (h *Holder) SetDailyStepGoal(goal int) error {
	if goal <= 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.repo.SetStepGoal(goal); err != nil {
		return err
	}
	h.snap.DailyStepGoal = goal
	for i := range h.snap.StepHistory {
		if h.snap.StepHistory[i].Date == h.snap.Date {
			h.snap.StepHistory[i].Goal = goal
		}
	}
	h.notify()
	return nil
}

// SimulateStepUpdate adds a pseudo-random increment: 50-200 steps normally,
// 10-50 while live tracking.
func (h *Holder) SimulateStepUpdate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	lo, hi := 50, 200
	if h.snap.LiveTracking {
		lo, hi = 10, 50
	}
	inc := lo + h.randInt(hi-lo+1)
	rec, err := h.repo.AddSteps(inc)
	if err != nil {
		return err
	}
	h.applyStepsLocked(rec)
	return nil
}

// ResetTodaySteps zeroes today's count and leaves live tracking.
func (h *Holder) ResetTodaySteps() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	rec, err := h.repo.SetSteps(0)
	if err != nil {
		return err
	}
	h.snap.LiveTracking = false
	h.applyStepsLocked(rec)
	return nil
}

func (h *Holder) applyStepsLocked(rec *store.StepRecord) {
	h.snap.TodaySteps = rec.Steps
	h.snap.DailyStepGoal = rec.Goal
	h.snap.Date = rec.Date
	for i := range h.snap.StepHistory {
		if h.snap.StepHistory[i].Date == rec.Date {
			h.snap.StepHistory[i] = *rec
			h.notify()
			return
		}
	}
	h.snap.StepHistory = append([]store.StepRecord{*rec}, h.snap.StepHistory...)
	if len(h.snap.StepHistory) > monthDays {
		h.snap.StepHistory = h.snap.StepHistory[:monthDays]
	}
	h.notify()
}

func (h *Holder) StepsProgress() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.StepsProgress()
}

// WeekHistory returns the 7 most recent days, newest first.
func (h *Holder) WeekHistory() []store.StepRecord {
	return h.Snapshot().WeekHistory()
}

// MonthHistory returns the 30 most recent days, newest first.
func (h *Holder) MonthHistory() []store.StepRecord {
	return h.Snapshot().MonthHistory()
}

func (h *Holder) CalculateCalories() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return repository.Calories(h.snap.TodaySteps)
}

func (h *Holder) CalculateDistance() float32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return repository.DistanceKm(h.snap.TodaySteps)
}

func (h *Holder) TrackingStatus() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.TrackingStatus()
}

// ============================================================
// Workouts
// ============================================================

func (h *Holder) AddCustomWorkout(name string, duration *int, goalValue int, goalType store.GoalType) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, err := h.repo.AddWorkout(repository.NewWorkout{
		Name:      name,
		Duration:  duration,
		GoalValue: goalValue,
		GoalType:  goalType,
	})
	if err != nil {
		return err
	}
	h.snap.Workouts = append([]store.Workout{*w}, h.snap.Workouts...)
	h.notify()
	return nil
}

func (h *Holder) DeleteWorkout(id int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.repo.DeleteWorkout(id); err != nil {
		return err
	}
	kept := h.snap.Workouts[:0:0]
	for _, w := range h.snap.Workouts {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	h.snap.Workouts = kept
	h.notify()
	return nil
}

func (h *Holder) ToggleWorkout(id int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	updated, err := h.repo.ToggleWorkout(id)
	if err != nil {
		return err
	}
	for i := range h.snap.Workouts {
		if h.snap.Workouts[i].ID == id {
			h.snap.Workouts[i] = *updated
		}
	}
	h.notify()
	return nil
}

func (h *Holder) CompletedWorkoutsCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.CompletedWorkouts()
}

// ============================================================
// Media
// ============================================================

func (h *Holder) CurrentTrack() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.CurrentTrack
}

func (h *Holder) CurrentArtist() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.CurrentArtist
}

func (h *Holder) setMedia(track, artist string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snap.CurrentTrack = track
	h.snap.CurrentArtist = artist
	h.notify()
}

// ============================================================
// Event loops
// ============================================================

// Run applies bus events until ctx is done or the bus closes. Data events
// trigger a reload; media events update the now-playing fields. The day is
// also checked once a minute so the view rolls over at midnight.
func (h *Holder) Run(ctx context.Context, bus *events.Bus) {
	sub := bus.Subscribe(16)
	defer sub.Close()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.C():
			if !ok {
				return
			}
			switch e.Topic {
			case events.MediaUpdate:
				h.setMedia(e.Track, e.Artist)
			case events.MediaClear:
				h.setMedia("", "")
			default:
				if err := h.Load(); err != nil {
					h.logger.Error("reload after change", "topic", e.Topic, "err", err)
				}
			}
		case <-ticker.C:
			h.mu.Lock()
			stale := h.snap.Date != h.repo.Today()
			h.mu.Unlock()
			if stale {
				if err := h.Load(); err != nil {
					h.logger.Error("reload on new day", "err", err)
				}
			}
		}
	}
}

// BindSensor writes collector counts into today's step record until ctx is
// done. Counts are added to what the day already held when the sensor was
// bound, so the baseline reading never lowers a stored count. When the date
// rolls over the collector is reset and the new day starts from its own
// stored count. SensorAvailable follows the collector's Available.
func (h *Holder) BindSensor(ctx context.Context, c *sensor.Collector) {
	date := h.repo.Today()
	offset := h.storedSteps(date)
	h.SetStepSensorAvailable(c.Available())
	defer h.SetStepSensorAvailable(false)

	rollover := func() bool {
		today := h.repo.Today()
		if today == date {
			return false
		}
		c.Reset()
		date = today
		offset = h.storedSteps(today)
		h.logger.Info("new day, sensor count reset", "date", today, "offset", offset)
		return true
	}

	ticker := time.NewTicker(sensorPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rollover()
			if a := c.Available(); a != h.Snapshot().SensorAvailable {
				h.SetStepSensorAvailable(a)
			}
		case n := <-c.Updates():
			if rollover() {
				continue
			}
			if err := h.UpdateLiveSteps(offset + n); err != nil {
				h.logger.Error("save live steps", "steps", offset+n, "err", err)
			}
		}
	}
}

func (h *Holder) storedSteps(date string) int {
	rec, err := h.repo.StepsByDate(date)
	if err != nil {
		h.logger.Error("read stored steps", "date", date, "err", err)
		return 0
	}
	if rec == nil {
		return 0
	}
	return rec.Steps
}
