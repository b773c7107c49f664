package store

import (
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(n int) *int { return &n }

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "feet.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertWater("2024-05-01", 500, 250); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: same version, data must survive.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	r, err := s2.GetWaterByDate("2024-05-01")
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || r.TotalMl != 500 {
		t.Fatalf("expected 500 ml after reopen, got %+v", r)
	}
}

func TestVersionMismatchWipesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feet.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.UpsertSteps("2024-05-01", 1200, 10000)
	if _, err := s.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	r, err := s2.GetStepsByDate("2024-05-01")
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		t.Fatalf("expected data wiped on version mismatch, got %+v", r)
	}
	var version int
	s2.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestDataVersion(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.DataVersion(); err != nil {
		t.Fatal(err)
	}
}

// ============================================================
// Water
// ============================================================

func TestGetWaterMissing(t *testing.T) {
	s := newTestStore(t)
	r, err := s.GetWaterByDate("2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		t.Fatalf("expected nil for missing day, got %+v", r)
	}
}

func TestUpsertWaterKeepsOneRowPerDay(t *testing.T) {
	s := newTestStore(t)
	s.UpsertWater("2024-01-01", 250, 250)
	s.UpsertWater("2024-01-01", 750, 300)

	records, err := s.ListWaterRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 row, got %d", len(records))
	}
	if records[0].TotalMl != 750 || records[0].GlassSizeMl != 300 {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if records[0].Timestamp.IsZero() {
		t.Fatal("Timestamp should be set")
	}
}

func TestAdjustWater(t *testing.T) {
	s := newTestStore(t)

	r, err := s.AdjustWater("2024-01-01", 250, 250)
	if err != nil {
		t.Fatal(err)
	}
	if r.TotalMl != 250 {
		t.Fatalf("expected 250, got %d", r.TotalMl)
	}
	r, _ = s.AdjustWater("2024-01-01", 250, 250)
	if r.TotalMl != 500 {
		t.Fatalf("expected 500, got %d", r.TotalMl)
	}

	got, _ := s.GetWaterByDate("2024-01-01")
	if got.TotalMl != 500 {
		t.Fatalf("stored total: expected 500, got %d", got.TotalMl)
	}
}

func TestAdjustWaterFloorsAtZero(t *testing.T) {
	s := newTestStore(t)
	s.UpsertWater("2024-01-01", 100, 250)

	r, err := s.AdjustWater("2024-01-01", -250, 250)
	if err != nil {
		t.Fatal(err)
	}
	if r.TotalMl != 0 {
		t.Fatalf("expected 0, got %d", r.TotalMl)
	}
}

func TestAdjustWaterCapped(t *testing.T) {
	s := newTestStore(t)
	s.UpsertWater("2024-01-01", 3900, 250)

	r, err := s.AdjustWaterCapped("2024-01-01", 250, 4000, 250)
	if err != nil {
		t.Fatal(err)
	}
	if r.TotalMl != 4000 {
		t.Fatalf("expected cap at 4000, got %d", r.TotalMl)
	}

	s.UpsertWater("2024-01-02", 4500, 250)
	r, _ = s.AdjustWaterCapped("2024-01-02", 250, 4000, 250)
	if r.TotalMl != 4500 {
		t.Fatalf("total above cap should be left alone, got %d", r.TotalMl)
	}
}

func TestListWaterOrdering(t *testing.T) {
	s := newTestStore(t)
	s.UpsertWater("2024-01-02", 2, 250)
	s.UpsertWater("2024-01-01", 1, 250)
	s.UpsertWater("2024-01-03", 3, 250)

	all, _ := s.ListWaterRecords()
	if all[0].Date != "2024-01-03" || all[2].Date != "2024-01-01" {
		t.Fatalf("expected newest first, got %s..%s", all[0].Date, all[2].Date)
	}

	between, _ := s.ListWaterRecordsBetween("2024-01-01", "2024-01-03")
	if len(between) != 2 {
		t.Fatalf("expected 2 records in range, got %d", len(between))
	}
	if between[0].Date != "2024-01-01" {
		t.Fatalf("expected oldest first, got %s", between[0].Date)
	}
}

func TestDeleteWaterOlderThan(t *testing.T) {
	s := newTestStore(t)
	s.UpsertWater("2024-01-01", 1, 250)
	s.UpsertWater("2024-01-05", 1, 250)
	s.UpsertWater("2024-01-10", 1, 250)

	n, err := s.DeleteWaterOlderThan("2024-01-05")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
	records, _ := s.ListWaterRecords()
	if len(records) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(records))
	}
}

// ============================================================
// Steps
// ============================================================

func TestUpsertAndGetSteps(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertSteps("2024-01-01", 4200, 8000); err != nil {
		t.Fatal(err)
	}
	r, err := s.GetStepsByDate("2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if r.Steps != 4200 || r.Goal != 8000 {
		t.Fatalf("unexpected record: %+v", r)
	}

	s.UpsertSteps("2024-01-01", 5000, 8000)
	records, _ := s.ListStepRecords()
	if len(records) != 1 {
		t.Fatalf("expected 1 row, got %d", len(records))
	}
}

func TestAdjustStepsKeepsStoredGoal(t *testing.T) {
	s := newTestStore(t)
	s.UpsertSteps("2024-01-01", 100, 6000)

	r, err := s.AdjustSteps("2024-01-01", 100, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if r.Steps != 200 {
		t.Fatalf("expected 200 steps, got %d", r.Steps)
	}
	if r.Goal != 6000 {
		t.Fatalf("expected stored goal 6000, got %d", r.Goal)
	}
}

func TestAdjustStepsNewRowUsesDefaultGoal(t *testing.T) {
	s := newTestStore(t)
	r, err := s.AdjustSteps("2024-01-01", 100, 12000)
	if err != nil {
		t.Fatal(err)
	}
	if r.Steps != 100 || r.Goal != 12000 {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestAdjustStepsFloorsAtZero(t *testing.T) {
	s := newTestStore(t)
	r, _ := s.AdjustSteps("2024-01-01", -50, 10000)
	if r.Steps != 0 {
		t.Fatalf("expected 0, got %d", r.Steps)
	}
}

func TestDeleteStepsOlderThan(t *testing.T) {
	s := newTestStore(t)
	s.UpsertSteps("2023-12-31", 1, 1)
	s.UpsertSteps("2024-01-01", 1, 1)

	n, _ := s.DeleteStepsOlderThan("2024-01-01")
	if n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
	between, _ := s.ListStepRecordsBetween("2023-01-01", "2025-01-01")
	if len(between) != 1 || between[0].Date != "2024-01-01" {
		t.Fatalf("unexpected remaining: %+v", between)
	}
}

// ============================================================
// Workouts
// ============================================================

func TestCreateAndGetWorkout(t *testing.T) {
	s := newTestStore(t)
	w, err := s.CreateWorkout("2024-01-01", "Push-ups", intPtr(15), 50, GoalReps, false)
	if err != nil {
		t.Fatal(err)
	}
	if w.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if w.Name != "Push-ups" || w.GoalValue != 50 || w.GoalType != GoalReps {
		t.Fatalf("unexpected workout: %+v", w)
	}
	if w.Duration == nil || *w.Duration != 15 {
		t.Fatalf("expected duration 15, got %v", w.Duration)
	}
	if w.Completed {
		t.Fatal("new workout should not be completed")
	}
}

func TestCreateWorkoutWithoutDuration(t *testing.T) {
	s := newTestStore(t)
	w, err := s.CreateWorkout("2024-01-01", "Run", nil, 5, GoalKm, false)
	if err != nil {
		t.Fatal(err)
	}
	if w.Duration != nil {
		t.Fatalf("expected nil duration, got %d", *w.Duration)
	}
}

func TestGetWorkoutNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetWorkout(999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleWorkoutTwice(t *testing.T) {
	s := newTestStore(t)
	w, _ := s.CreateWorkout("2024-01-01", "Squats", nil, 30, GoalReps, false)

	w, err := s.ToggleWorkout(w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Completed {
		t.Fatal("expected completed after first toggle")
	}
	w, _ = s.ToggleWorkout(w.ID)
	if w.Completed {
		t.Fatal("expected not completed after second toggle")
	}
}

func TestToggleWorkoutMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ToggleWorkout(42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteWorkout(t *testing.T) {
	s := newTestStore(t)
	w, _ := s.CreateWorkout("2024-01-01", "Plank", nil, 3, GoalReps, false)
	if err := s.DeleteWorkout(w.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteWorkout(w.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListWorkoutsByDate(t *testing.T) {
	s := newTestStore(t)
	s.CreateWorkout("2024-01-01", "A", nil, 1, GoalReps, false)
	s.CreateWorkout("2024-01-01", "B", nil, 1, GoalReps, false)
	s.CreateWorkout("2024-01-02", "C", nil, 1, GoalReps, false)

	day, err := s.ListWorkoutsByDate("2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(day) != 2 {
		t.Fatalf("expected 2 workouts, got %d", len(day))
	}
	if day[0].Name != "B" {
		t.Fatalf("expected newest first, got %s", day[0].Name)
	}

	all, _ := s.ListWorkouts()
	if len(all) != 3 || all[0].Date != "2024-01-02" {
		t.Fatalf("unexpected list: %+v", all)
	}
}

func TestListWorkoutsEmpty(t *testing.T) {
	s := newTestStore(t)
	workouts, err := s.ListWorkoutsByDate("2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if workouts != nil {
		t.Fatalf("expected nil slice, got %d items", len(workouts))
	}
}

func TestDeleteWorkoutsOlderThan(t *testing.T) {
	s := newTestStore(t)
	s.CreateWorkout("2023-06-01", "Old", nil, 1, GoalReps, false)
	s.CreateWorkout("2024-06-01", "New", nil, 1, GoalReps, false)

	n, _ := s.DeleteWorkoutsOlderThan("2024-01-01")
	if n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
	between, _ := s.ListWorkoutsBetween("2024-01-01", "2025-01-01")
	if len(between) != 1 || between[0].Name != "New" {
		t.Fatalf("unexpected remaining: %+v", between)
	}
}

// ============================================================
// Preferences
// ============================================================

func TestPreferencesAbsentUntilSaved(t *testing.T) {
	s := newTestStore(t)
	p, err := s.GetPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatalf("expected nil preferences, got %+v", p)
	}
}

func TestInitPreferences(t *testing.T) {
	s := newTestStore(t)
	if err := s.InitPreferences(); err != nil {
		t.Fatal(err)
	}
	p, _ := s.GetPreferences()
	if p.DailyWaterGoalMl != 4000 || p.DailyStepGoal != 10000 || p.GlassSizeMl != 250 {
		t.Fatalf("unexpected defaults: %+v", p)
	}

	// A second init must not overwrite saved values.
	s.SavePreferences(Preferences{DailyWaterGoalMl: 2500, DailyStepGoal: 8000, GlassSizeMl: 330})
	s.InitPreferences()
	p, _ = s.GetPreferences()
	if p.DailyWaterGoalMl != 2500 {
		t.Fatalf("init overwrote saved goal: %+v", p)
	}
}

func TestSavePreferencesSingleRow(t *testing.T) {
	s := newTestStore(t)
	s.SavePreferences(Preferences{DailyWaterGoalMl: 3000, DailyStepGoal: 9000, GlassSizeMl: 200})
	s.SavePreferences(Preferences{DailyWaterGoalMl: 3500, DailyStepGoal: 9500, GlassSizeMl: 300})

	var n int
	s.db.QueryRow("SELECT COUNT(*) FROM user_preferences").Scan(&n)
	if n != 1 {
		t.Fatalf("expected 1 preferences row, got %d", n)
	}
	p, _ := s.GetPreferences()
	if p.DailyWaterGoalMl != 3500 || p.DailyStepGoal != 9500 || p.GlassSizeMl != 300 {
		t.Fatalf("unexpected preferences: %+v", p)
	}
}

func TestGoalTypeValid(t *testing.T) {
	if !GoalReps.Valid() || !GoalKm.Valid() {
		t.Fatal("known goal types should be valid")
	}
	if GoalType("MILES").Valid() {
		t.Fatal("unknown goal type should be invalid")
	}
}

// ============================================================
// Overflow and contention
// ============================================================

func TestAddSaturating(t *testing.T) {
	tests := []struct {
		n, delta, want int
	}{
		{5, 3, 8},
		{5, -8, -3},
		{5000, math.MaxInt, math.MaxInt},
		{math.MaxInt, 1, math.MaxInt},
		{-5, math.MinInt, math.MinInt},
	}
	for _, tt := range tests {
		if got := addSaturating(tt.n, tt.delta); got != tt.want {
			t.Errorf("addSaturating(%d, %d) = %d, want %d", tt.n, tt.delta, got, tt.want)
		}
	}
}

func TestAdjustStepsHugeDeltaDoesNotWrap(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AdjustSteps("2024-01-01", 5000, 10000); err != nil {
		t.Fatal(err)
	}
	rec, err := s.AdjustSteps("2024-01-01", math.MaxInt, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Steps != math.MaxInt {
		t.Fatalf("expected saturated count, got %d", rec.Steps)
	}
}

func TestAdjustWaterHugeDeltaDoesNotWrap(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AdjustWater("2024-01-01", 1000, 250); err != nil {
		t.Fatal(err)
	}
	rec, err := s.AdjustWater("2024-01-01", math.MaxInt, 250)
	if err != nil {
		t.Fatal(err)
	}
	if rec.TotalMl != math.MaxInt {
		t.Fatalf("expected saturated total, got %d", rec.TotalMl)
	}
}

func TestConcurrentAdjustAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feet.db")
	a, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	const perStore = 100
	var wg sync.WaitGroup
	errs := make(chan error, 2*perStore)
	for _, s := range []*Store{a, b} {
		wg.Add(1)
		go func(s *Store) {
			defer wg.Done()
			for i := 0; i < perStore; i++ {
				if _, err := s.AdjustWater("2024-01-01", 1, 250); err != nil {
					errs <- err
				}
			}
		}(s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("adjust failed: %v", err)
	}

	rec, err := a.GetWaterByDate("2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if rec.TotalMl != 2*perStore {
		t.Fatalf("expected %d ml, got %d", 2*perStore, rec.TotalMl)
	}
}
