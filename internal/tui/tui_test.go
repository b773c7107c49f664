package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/feet/internal/events"
	"github.com/sadopc/feet/internal/repository"
	"github.com/sadopc/feet/internal/state"
	"github.com/sadopc/feet/internal/store"
)

var fixedNow = time.Date(2024, 7, 4, 10, 0, 0, 0, time.Local)

func newTestHolder(t *testing.T, opts ...state.Option) (*state.Holder, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	bus := events.New()
	t.Cleanup(bus.Close)
	repo := repository.New(s, bus, nil, repository.WithClock(func() time.Time { return fixedNow }))
	h := state.New(repo, nil, opts...)
	if err := h.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return h, s
}

func newTestApp(t *testing.T, opts ...state.Option) (App, *state.Holder) {
	t.Helper()
	h, s := newTestHolder(t, opts...)
	app := NewApp(h, s)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	return model.(App), h
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// press sends a key to the app, runs the resulting command and applies the
// holder's change notification.
func press(t *testing.T, app App, k tea.KeyMsg) (App, tea.Msg) {
	t.Helper()
	model, cmd := app.Update(k)
	app = model.(App)
	var out tea.Msg
	if cmd != nil {
		out = cmd()
		if out != nil {
			model, _ = app.Update(out)
			app = model.(App)
		}
	}
	select {
	case <-app.holder.Changes():
	case <-time.After(time.Second):
	}
	model, _ = app.Update(snapshotMsg{snap: app.holder.Snapshot()})
	return model.(App), out
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)

	if app.activeView != viewWater {
		t.Fatal("default view should be water")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.snap.DailyGoalMl != store.DefaultWaterGoalMl {
		t.Fatalf("snapshot not loaded, goal = %d", app.snap.DailyGoalMl)
	}
}

func TestAppIsFormActiveDefault(t *testing.T) {
	app, _ := newTestApp(t)
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	app, _ := newTestApp(t)

	for v := range viewNames {
		app.activeView = viewState(v)
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppTabCycles(t *testing.T) {
	app, _ := newTestApp(t)
	for i := 0; i < len(viewNames); i++ {
		model, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
		app = model.(App)
	}
	if app.activeView != viewWater {
		t.Fatalf("expected to wrap to water, got %d", app.activeView)
	}

	model, _ := app.Update(keyMsg('3'))
	if model.(App).activeView != viewWorkouts {
		t.Fatal("3 should switch to workouts")
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t)
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppFooterShowsTrackingAndMedia(t *testing.T) {
	app, _ := newTestApp(t)
	footer := app.renderFooter()
	if !strings.Contains(footer, state.StatusSimulation) {
		t.Fatalf("footer should show tracking status:\n%s", footer)
	}

	app.snap.CurrentTrack = "Song"
	app.snap.CurrentArtist = "Band"
	if footer := app.renderFooter(); !strings.Contains(footer, "Song - Band") {
		t.Fatalf("footer should show now playing:\n%s", footer)
	}
}

func TestAppLoadingState(t *testing.T) {
	h, s := newTestHolder(t)
	app := NewApp(h, s)
	// Width 0 means not yet sized
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _ := newTestApp(t)
	model, _ := app.Update(statusMsg{text: "test status", isError: true})
	app = model.(App)
	if !app.isErr {
		t.Fatal("status should be marked as error")
	}
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppSnapshotMsgRearmsWatcher(t *testing.T) {
	app, _ := newTestApp(t)
	snap := app.snap
	snap.TodayWaterMl = 750
	model, cmd := app.Update(snapshotMsg{snap: snap})
	if cmd == nil {
		t.Fatal("expected the change watcher to be re-armed")
	}
	app = model.(App)
	if app.water.snap.TodayWaterMl != 750 || app.settings.snap.TodayWaterMl != 750 {
		t.Fatal("snapshot not propagated to views")
	}
}

// ============================================================
// Water view
// ============================================================

func TestWaterAddAndRemoveGlass(t *testing.T) {
	app, h := newTestApp(t)

	app, _ = press(t, app, keyMsg('+'))
	app, _ = press(t, app, keyMsg('+'))
	if app.snap.TodayWaterMl != 500 {
		t.Fatalf("expected 500 ml, got %d", app.snap.TodayWaterMl)
	}
	if !strings.Contains(app.View(), "2 / 16 glasses") {
		t.Fatalf("water view should show glasses:\n%s", app.View())
	}

	app, _ = press(t, app, keyMsg('-'))
	if h.Snapshot().TodayWaterMl != 250 || app.snap.TodayWaterMl != 250 {
		t.Fatalf("expected 250 ml after remove, got %d", app.snap.TodayWaterMl)
	}
}

func TestWaterAddDisabledAtGoal(t *testing.T) {
	app, h := newTestApp(t)
	if err := h.SetDailyGoal(0.25); err != nil {
		t.Fatal(err)
	}
	if err := h.AddGlass(); err != nil {
		t.Fatal(err)
	}
	app.setSnapshot(h.Snapshot())

	app, out := press(t, app, keyMsg('+'))
	status, ok := out.(statusMsg)
	if !ok || status.isError {
		t.Fatalf("expected an informational status, got %#v", out)
	}
	if app.snap.TodayWaterMl != 250 {
		t.Fatalf("add should be disabled at goal, got %d ml", app.snap.TodayWaterMl)
	}
	if !strings.Contains(app.View(), "Goal reached") {
		t.Fatal("water view should show goal reached")
	}
}

// ============================================================
// Steps view
// ============================================================

func TestStepsSimulate(t *testing.T) {
	app, _ := newTestApp(t, state.WithRand(func(int) int { return 0 }))
	app.activeView = viewSteps

	app, _ = press(t, app, keyMsg('s'))
	if app.snap.TodaySteps != 50 {
		t.Fatalf("expected 50 simulated steps, got %d", app.snap.TodaySteps)
	}
	if !strings.Contains(app.View(), "2 kcal") {
		t.Fatalf("steps view should show calories:\n%s", app.View())
	}

	app, _ = press(t, app, keyMsg('x'))
	if app.snap.TodaySteps != 0 {
		t.Fatalf("expected reset to 0, got %d", app.snap.TodaySteps)
	}
}

func TestStepsPeriodToggle(t *testing.T) {
	app, _ := newTestApp(t)
	app.activeView = viewSteps

	model, _ := app.Update(keyMsg('w'))
	app = model.(App)
	if app.steps.period != periodMonth {
		t.Fatal("w should switch to month history")
	}
	model, _ = app.Update(keyMsg('w'))
	if model.(App).steps.period != periodWeek {
		t.Fatal("w should switch back to week history")
	}
}

func TestStepsGoalFormOpens(t *testing.T) {
	app, _ := newTestApp(t)
	app.activeView = viewSteps

	model, _ := app.Update(keyMsg('g'))
	app = model.(App)
	if !app.isFormActive() {
		t.Fatal("g should open the goal form")
	}
	if *app.steps.goalInput != "10000" {
		t.Fatalf("form should be prefilled with the current goal, got %q", *app.steps.goalInput)
	}

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(App).isFormActive() {
		t.Fatal("esc should close the form")
	}
}

func TestStepsHistoryOldestFirst(t *testing.T) {
	m := newStepsModel(nil)
	m.setSize(120, 40)
	m.setSnapshot(state.Snapshot{StepHistory: []store.StepRecord{
		{Date: "2024-07-04", Steps: 300, Goal: 1000},
		{Date: "2024-07-03", Steps: 1200, Goal: 1000},
	}})
	if len(m.history()) != 2 {
		t.Fatalf("expected 2 days of history, got %d", len(m.history()))
	}
	if !strings.Contains(m.view(), "1500 steps total") {
		t.Fatalf("expected history summary:\n%s", m.view())
	}
}

func TestParseFallbacks(t *testing.T) {
	if got := parseIntOr("8000", 10000); got != 8000 {
		t.Fatalf("parseIntOr = %d", got)
	}
	for _, in := range []string{"", "abc", "-5", "0", "1.5"} {
		if got := parseIntOr(in, 10000); got != 10000 {
			t.Fatalf("parseIntOr(%q) = %d, want fallback", in, got)
		}
	}
	if got := parseFloatOr(" 2.5 ", 4); got != 2.5 {
		t.Fatalf("parseFloatOr = %v", got)
	}
	for _, in := range []string{"lots", "inf", "+Inf", "-inf", "NaN", "0", "-1"} {
		if got := parseFloatOr(in, 4); got != 4 {
			t.Fatalf("parseFloatOr(%q) = %v, want fallback", in, got)
		}
	}
}

// ============================================================
// Workouts view
// ============================================================

func TestWorkoutsToggleAndDelete(t *testing.T) {
	app, h := newTestApp(t)
	if err := h.AddCustomWorkout("Squats", nil, 30, store.GoalReps); err != nil {
		t.Fatal(err)
	}
	app.setSnapshot(h.Snapshot())
	app.activeView = viewWorkouts

	app, _ = press(t, app, keyMsg(' '))
	if app.snap.CompletedWorkouts() != 1 {
		t.Fatal("space should complete the selected workout")
	}
	if !strings.Contains(app.View(), "1 / 1 done") {
		t.Fatalf("workouts view should count completed:\n%s", app.View())
	}

	app, _ = press(t, app, keyMsg('d'))
	if len(app.snap.Workouts) != 0 {
		t.Fatal("d should delete the selected workout")
	}
}

func TestWorkoutsCursorClamped(t *testing.T) {
	m := newWorkoutsModel(nil)
	m.cursor = 5
	m.setSnapshot(state.Snapshot{Workouts: []store.Workout{{ID: 1, Name: "Run"}}})
	if m.cursor != 0 {
		t.Fatalf("cursor should clamp to 0, got %d", m.cursor)
	}
	if _, ok := newWorkoutsModel(nil).selected(); ok {
		t.Fatal("empty list should have no selection")
	}
}

func TestWorkoutsFormOpens(t *testing.T) {
	app, _ := newTestApp(t)
	app.activeView = viewWorkouts
	model, _ := app.Update(keyMsg('n'))
	app = model.(App)
	if !app.isFormActive() {
		t.Fatal("n should open the new workout form")
	}
	if *app.workouts.formGoalType != string(store.GoalReps) {
		t.Fatal("goal type should default to reps")
	}
}

func TestWorkoutValidators(t *testing.T) {
	if validateName("  ") == nil {
		t.Fatal("blank name should be rejected")
	}
	if validateName("Run") != nil {
		t.Fatal("name should be accepted")
	}
	for _, in := range []string{"", "0", "-1", "x"} {
		if validateGoal(in) == nil {
			t.Fatalf("goal %q should be rejected", in)
		}
	}
	if validateGoal("12") != nil {
		t.Fatal("goal 12 should be accepted")
	}
	if validateDuration("") != nil || validateDuration("45") != nil {
		t.Fatal("empty and whole durations should be accepted")
	}
	if validateDuration("-3") == nil {
		t.Fatal("negative duration should be rejected")
	}
}

func TestWorkoutGoalLabel(t *testing.T) {
	d := 20
	km := workoutGoal(store.Workout{GoalValue: 5, GoalType: store.GoalKm, Duration: &d})
	if !strings.Contains(km, "5 km") || !strings.Contains(km, "20 min") {
		t.Fatalf("unexpected km label %q", km)
	}
	if reps := workoutGoal(store.Workout{GoalValue: 10, GoalType: store.GoalReps}); !strings.Contains(reps, "10 reps") {
		t.Fatalf("unexpected reps label %q", reps)
	}
}

func TestWorkoutsNowPlaying(t *testing.T) {
	m := newWorkoutsModel(nil)
	m.setSize(120, 40)
	if !strings.Contains(m.view(), "Nothing playing") {
		t.Fatal("expected empty now-playing card")
	}
	m.setSnapshot(state.Snapshot{CurrentTrack: "Intro", CurrentArtist: "The XX"})
	if v := m.view(); !strings.Contains(v, "Intro") || !strings.Contains(v, "The XX") {
		t.Fatalf("expected track and artist:\n%s", v)
	}
}

// ============================================================
// Settings view
// ============================================================

func TestSettingsSaveWithFallbacks(t *testing.T) {
	app, h := newTestApp(t)
	app.activeView = viewSettings

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = model.(App)
	if !app.settings.formActive {
		t.Fatal("enter should open the settings form")
	}
	if *app.settings.waterGoal != "4" || *app.settings.glassSize != "250" {
		t.Fatalf("form not prefilled: %q %q", *app.settings.waterGoal, *app.settings.glassSize)
	}

	*app.settings.waterGoal = "2.5"
	*app.settings.glassSize = "big"
	*app.settings.stepGoal = "8000"
	if msg := app.settings.saveSettings()(); msg != nil {
		t.Fatalf("save failed: %#v", msg)
	}

	snap := h.Snapshot()
	if snap.DailyGoalMl != 2500 {
		t.Fatalf("expected 2500 ml goal, got %d", snap.DailyGoalMl)
	}
	if snap.GlassSizeMl != store.DefaultGlassSizeMl {
		t.Fatalf("non-numeric glass size should fall back, got %v", snap.GlassSizeMl)
	}
	if snap.DailyStepGoal != 8000 {
		t.Fatalf("expected 8000 step goal, got %d", snap.DailyStepGoal)
	}
}

func TestSettingsSaveRejectsNonFiniteAndHuge(t *testing.T) {
	app, h := newTestApp(t)
	for i := 0; i < 4; i++ {
		if err := h.AddGlass(); err != nil {
			t.Fatal(err)
		}
	}
	app.activeView = viewSettings
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = model.(App)

	*app.settings.waterGoal = "inf"
	*app.settings.glassSize = "1e12"
	*app.settings.stepGoal = "9000"
	if msg := app.settings.saveSettings()(); msg != nil {
		t.Fatalf("save failed: %#v", msg)
	}

	snap := h.Snapshot()
	if snap.DailyGoalMl != store.DefaultWaterGoalMl {
		t.Fatalf("expected default water goal, got %d", snap.DailyGoalMl)
	}
	if snap.GlassSizeMl != store.DefaultGlassSizeMl {
		t.Fatalf("expected default glass size, got %v", snap.GlassSizeMl)
	}
	if err := h.AddGlass(); err != nil {
		t.Fatal(err)
	}
	if got := h.Snapshot().TodayWaterMl; got != 1250 {
		t.Fatalf("expected 1250 ml after another glass, got %d", got)
	}
}

func TestSettingsView(t *testing.T) {
	app, _ := newTestApp(t)
	app.activeView = viewSettings
	v := app.View()
	for _, want := range []string{"Daily water goal", "4.0L", "250 ml", "10000 steps", state.StatusSimulation} {
		if !strings.Contains(v, want) {
			t.Fatalf("settings view missing %q:\n%s", want, v)
		}
	}
}

// ============================================================
// Export
// ============================================================

func TestExportPicker(t *testing.T) {
	app, h := newTestApp(t)
	h.AddGlass()
	app.exportDir = t.TempDir()

	model, _ := app.Update(keyMsg('e'))
	app = model.(App)
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyDown})
	app = model.(App)
	if app.exportCursor != 1 {
		t.Fatal("down should select JSON")
	}

	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = model.(App)
	if app.exportPicking || cmd == nil {
		t.Fatal("enter should close the picker and start the export")
	}
	done, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatal("expected exportDoneMsg")
	}
	if filepath.Ext(done.path) != ".json" {
		t.Fatalf("expected a json file, got %s", done.path)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatal(err)
	}
}

func TestExportCSV(t *testing.T) {
	app, _ := newTestApp(t)
	app.exportDir = t.TempDir()
	done, ok := app.doExport(0)().(exportDoneMsg)
	if !ok {
		t.Fatal("expected exportDoneMsg")
	}
	data, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Date,") {
		t.Fatalf("expected csv header, got %q", data)
	}
}

func TestExportBadDir(t *testing.T) {
	app, _ := newTestApp(t)
	app.exportDir = "/nonexistent/dir"
	msg, ok := app.doExport(0)().(statusMsg)
	if !ok || !msg.isError {
		t.Fatal("expected an error status")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatLiters(t *testing.T) {
	tests := []struct {
		ml   int
		want string
	}{
		{0, "0.0L"},
		{250, "0.2L"},
		{1500, "1.5L"},
		{4000, "4.0L"},
	}
	for _, tt := range tests {
		if got := formatLiters(tt.ml); got != tt.want {
			t.Errorf("formatLiters(%d) = %q, want %q", tt.ml, got, tt.want)
		}
	}
	if got := formatKm(1.5); got != "1.50 km" {
		t.Errorf("formatKm = %q", got)
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test, just verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"figure", func() string { return figureStyle.Render("test") }},
		{"figureDone", func() string { return figureDoneStyle.Render("test") }},
		{"card", func() string { return cardStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}

	for _, s := range styles {
		if result := s.fn(); result == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
