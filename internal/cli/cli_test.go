package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sadopc/feet/internal/store"
)

// harness runs commands against one temporary data directory.
type harness struct {
	t   *testing.T
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FEET_DATA_DIR", dir)
	t.Setenv("FEET_DB_PATH", "")
	t.Setenv("FEET_MEDIA", "false")
	t.Setenv("FEET_SENSOR_PATH", "")
	t.Setenv("FEET_LOG_LEVEL", "")
	return &harness{t: t, dir: dir}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	out, _, err := h.runEnv(args...)
	return out, err
}

// runEnv also returns the env so tests can inspect what was released.
func (h *harness) runEnv(args ...string) (string, *env, error) {
	h.t.Helper()
	var buf bytes.Buffer
	base := []string{
		"--config", filepath.Join(h.dir, "config.json"),
		"--log", filepath.Join(h.dir, "feet.log"),
	}
	e := &env{}
	err := run(context.Background(), e, append(base, args...), &buf)
	return buf.String(), e, err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("feet %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

// ============================================================
// Water
// ============================================================

func TestWaterShowEmpty(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("water")
	assertContains(t, out, "0.0L / 4.0L", "0 glasses of 250 ml")
}

func TestWaterAddAndRemove(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("water", "add", "2")
	assertContains(t, out, "Added 2 glass(es)", "0.5L / 4.0L")

	out = h.mustRun("water", "add")
	assertContains(t, out, "0.8L / 4.0L", "3 glasses")

	out = h.mustRun("water", "remove", "5")
	assertContains(t, out, "Removed 5 glass(es)", "0.0L / 4.0L")
}

func TestWaterAddPastGoal(t *testing.T) {
	h := newHarness(t)
	h.mustRun("goal", "water", "0.5")
	out := h.mustRun("water", "add", "3")
	assertContains(t, out, "0.8L / 0.5L", "Daily water goal reached")
}

func TestWaterInvalidCount(t *testing.T) {
	h := newHarness(t)
	for _, arg := range []string{"abc", "0", "101", "9223372036854775807"} {
		if _, err := h.run("water", "add", arg); err == nil {
			t.Errorf("water add %s: expected error", arg)
		}
	}
}

// ============================================================
// Steps
// ============================================================

func TestStepsCommands(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("steps")
	assertContains(t, out, "Steps 0 / 10000")

	out = h.mustRun("steps", "add", "1200")
	assertContains(t, out, "Added 1200 steps", "1200 / 10000", "48 kcal", "0.91 km")

	out = h.mustRun("steps", "add")
	assertContains(t, out, "1300 / 10000")

	out = h.mustRun("steps", "set", "8000")
	assertContains(t, out, "Steps set to 8000", "8000 / 10000", "80%")

	out = h.mustRun("steps", "reset")
	assertContains(t, out, "0 / 10000")
}

func TestStepsInvalid(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("steps", "set", "abc"); err == nil {
		t.Error("steps set abc: expected error")
	}
	if _, err := h.run("steps", "add", "0"); err == nil {
		t.Error("steps add 0: expected error")
	}
	h.mustRun("steps", "set", "5000")
	if _, err := h.run("steps", "add", "9223372036854775807"); err == nil {
		t.Error("steps add max int: expected error")
	}
	if _, err := h.run("steps", "add", "100001"); err == nil {
		t.Error("steps add above the limit: expected error")
	}
	out := h.mustRun("steps")
	assertContains(t, out, "5000 / 10000")
}

// ============================================================
// Workouts
// ============================================================

func TestWorkoutLifecycle(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("workout", "list")
	assertContains(t, out, "No workouts found.")

	out = h.mustRun("workout", "add", "Push-ups", "--goal", "40")
	assertContains(t, out, "Added Push-ups", "ID: 1", "40 reps")

	out = h.mustRun("workout", "add", "Morning", "run", "--goal", "5", "--type", "km", "--duration", "30")
	assertContains(t, out, "Added Morning run", "5 km, 30 min")

	out = h.mustRun("workout", "toggle", "1")
	assertContains(t, out, "Push-ups done")

	out = h.mustRun("workout", "list")
	assertContains(t, out, "Push-ups", "Morning run", "1 of 2 done")

	out = h.mustRun("workout", "toggle", "1")
	assertContains(t, out, "marked not done")

	h.mustRun("workout", "delete", "1")
	out = h.mustRun("workout", "list")
	if strings.Contains(out, "Push-ups") {
		t.Errorf("deleted workout still listed:\n%s", out)
	}
}

func TestWorkoutValidation(t *testing.T) {
	h := newHarness(t)
	cases := [][]string{
		{"workout", "add", "Squats"},
		{"workout", "add", "Squats", "--goal", "10", "--type", "miles"},
		{"workout", "toggle", "abc"},
		{"workout", "toggle", "99"},
		{"workout", "delete", "0"},
	}
	for _, args := range cases {
		if _, err := h.run(args...); err == nil {
			t.Errorf("feet %s: expected error", strings.Join(args, " "))
		}
	}
}

func TestWorkoutListOtherDate(t *testing.T) {
	h := newHarness(t)
	h.mustRun("workout", "add", "Plank", "--goal", "3")
	out := h.mustRun("workout", "list", "--date", "2001-01-01")
	assertContains(t, out, "No workouts found.")
}

// ============================================================
// Goals
// ============================================================

func TestGoalCommands(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("goal")
	assertContains(t, out, "4.0L", "250 ml", "(16 per day)", "10000")

	h.mustRun("goal", "water", "2.5")
	h.mustRun("goal", "glass", "500")
	h.mustRun("goal", "steps", "12000")

	out = h.mustRun("goal")
	assertContains(t, out, "2.5L", "500 ml", "(5 per day)", "12000")

	out = h.mustRun("steps")
	assertContains(t, out, "0 / 12000")
}

func TestGoalWaterRounds(t *testing.T) {
	h := newHarness(t)
	h.mustRun("goal", "water", "4.35")

	s, err := store.New(filepath.Join(h.dir, "feet.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	p, err := s.GetPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if p.DailyWaterGoalMl != 4350 {
		t.Fatalf("expected 4350 ml, got %d", p.DailyWaterGoalMl)
	}
}

func TestFailedCommandReleasesEnv(t *testing.T) {
	h := newHarness(t)
	_, e, err := h.runEnv("workout", "toggle", "99")
	if err == nil {
		t.Fatal("expected error")
	}
	if e.store != nil || e.bus != nil || e.logCloser != nil {
		t.Fatalf("env not released after failure: %+v", e)
	}
}

func TestGoalInvalid(t *testing.T) {
	h := newHarness(t)
	cases := [][]string{
		{"goal", "water", "0"},
		{"goal", "water", "inf"},
		{"goal", "water", "NaN"},
		{"goal", "water", "1e300"},
		{"goal", "glass", "abc"},
		{"goal", "glass", "inf"},
		{"goal", "glass", "NaN"},
		{"goal", "glass", "5001"},
		{"goal", "steps", "1.5"},
	}
	for _, args := range cases {
		if _, err := h.run(args...); err == nil {
			t.Errorf("feet %s: expected error", strings.Join(args, " "))
		}
	}
}

// ============================================================
// Export and prune
// ============================================================

func TestExportJSON(t *testing.T) {
	h := newHarness(t)
	h.mustRun("water", "add")
	h.mustRun("workout", "add", "Lunges", "--goal", "20")

	path := filepath.Join(h.dir, "out.json")
	out := h.mustRun("export", "--format", "json", "--output", path)
	assertContains(t, out, "Exported 1 days and 1 workouts", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if _, ok := doc["days"]; !ok {
		t.Error("export has no days")
	}
}

func TestExportCSV(t *testing.T) {
	h := newHarness(t)
	h.mustRun("steps", "set", "4000")

	path := filepath.Join(h.dir, "out.csv")
	h.mustRun("export", "-o", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	assertContains(t, string(data), "Date", "4000")
}

func TestExportUnknownFormat(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("export", "--format", "xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestPrune(t *testing.T) {
	h := newHarness(t)
	h.mustRun("water", "add")

	out := h.mustRun("prune", "--days", "30")
	assertContains(t, out, "Nothing older than")

	if _, err := h.run("prune", "--days", "-1"); err == nil {
		t.Error("expected error for negative days")
	}
}

// ============================================================
// Config
// ============================================================

func TestConfigShow(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("config")
	assertContains(t, out, "Database", filepath.Join(h.dir, "feet.db"), "none (simulated steps)", "off")

	if _, err := os.Stat(filepath.Join(h.dir, "feet.db")); err == nil {
		t.Error("config should not open the database")
	}
}

func TestConfigInit(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "config.json")

	out := h.mustRun("config", "init")
	assertContains(t, out, "Wrote", path)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := h.run("config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}
	h.mustRun("config", "init", "--force")
}

// ============================================================
// Helpers
// ============================================================

func TestCountArg(t *testing.T) {
	tests := []struct {
		args    []string
		want    int
		wantErr bool
	}{
		{nil, 1, false},
		{[]string{"4"}, 4, false},
		{[]string{"0"}, 0, true},
		{[]string{"-2"}, 0, true},
		{[]string{"two"}, 0, true},
	}
	for _, tt := range tests {
		got, err := countArg(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("countArg(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("countArg(%v) = %d, want %d", tt.args, got, tt.want)
		}
	}
}

func TestGoalLabel(t *testing.T) {
	d := 25
	tests := []struct {
		w    store.Workout
		want string
	}{
		{store.Workout{GoalValue: 30, GoalType: store.GoalReps}, "30 reps"},
		{store.Workout{GoalValue: 5, GoalType: store.GoalKm}, "5 km"},
		{store.Workout{GoalValue: 5, GoalType: store.GoalKm, Duration: &d}, "5 km, 25 min"},
	}
	for _, tt := range tests {
		if got := goalLabel(tt.w); got != tt.want {
			t.Errorf("goalLabel() = %q, want %q", got, tt.want)
		}
	}
}

func TestBar(t *testing.T) {
	if got := bar(0, 100); got != "["+strings.Repeat("-", 20)+"]" {
		t.Errorf("bar(0) = %q", got)
	}
	if got := bar(50, 100); got != "["+strings.Repeat("#", 10)+strings.Repeat("-", 10)+"]" {
		t.Errorf("bar(50) = %q", got)
	}
	if got := bar(500, 100); got != "["+strings.Repeat("#", 20)+"]" {
		t.Errorf("bar(500) = %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Errorf("padRight = %q", got)
	}
}
