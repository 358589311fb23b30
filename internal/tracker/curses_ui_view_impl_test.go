package tracker

import (
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/mapty/internal/workout"
)

// newCursesSession wires a controller to a curses view that is never run.
// The session is put in MapReady directly since geolocation goes through
// the event loop.
func newCursesSession(t *testing.T) (*CursesUIViewImpl, *SessionController) {
	t.Helper()
	logger := newTestLogger()
	ui := NewCursesUIView(logger, tview.NewApplication(), testAttribution)
	model := NewSessionModel(logger, nil)
	controller := NewSessionController(SessionControllerArgs{
		Model:     model,
		Locator:   &fakeLocator{position: testCoords},
		Map:       ui,
		Form:      ui,
		List:      ui,
		Alerter:   ui,
		Scheduler: ui,
		Now:       func() time.Time { return testTime },
		Logger:    logger,
	})
	ui.Initialize(controller)
	ui.SetupKeyboardHandlers(controller)
	t.Cleanup(func() {
		controller.Shutdown()
		model.Shutdown()
	})

	ui.SetView(testCoords, DefaultZoom)
	ui.OnClick(controller.OnMapClick)
	model.SetState(SessionStateMapReady)
	return ui, controller
}

func TestCursesUIView_NilDependencyPanics(t *testing.T) {
	assert.PanicsWithValue(t, "CursesUIViewImpl: logger cannot be nil", func() {
		NewCursesUIView(nil, tview.NewApplication(), "")
	})
	assert.PanicsWithValue(t, "CursesUIViewImpl: app cannot be nil", func() {
		NewCursesUIView(newTestLogger(), nil, "")
	})
}

func TestCursesUIView_FormDefaults(t *testing.T) {
	ui := NewCursesUIView(newTestLogger(), tview.NewApplication(), testAttribution)

	assert.Equal(t, FormValues{Kind: workout.KindRunning}, ui.Values())
	assert.Equal(t, "Cadence", ui.form.GetFormItem(specificFieldIndex).GetLabel())
	assert.False(t, ui.formVisible)
}

func TestCursesUIView_ToggleElevationField(t *testing.T) {
	ui := NewCursesUIView(newTestLogger(), tview.NewApplication(), testAttribution)

	ui.ToggleElevationField()
	assert.Equal(t, "Elev Gain", ui.form.GetFormItem(specificFieldIndex).GetLabel())
	assert.Equal(t, 4, ui.form.GetFormItemCount())

	ui.ToggleElevationField()
	assert.Equal(t, "Cadence", ui.form.GetFormItem(specificFieldIndex).GetLabel())
}

func TestCursesUIView_SelectingTypeTogglesOnce(t *testing.T) {
	ui, controller := newCursesSession(t)
	ui.mapView.Click()

	ui.kindDropDown.SetCurrentOption(1)
	assert.Equal(t, "Elev Gain", ui.form.GetFormItem(specificFieldIndex).GetLabel())
	assert.Equal(t, workout.KindCycling, ui.Values().Kind)

	// re-selecting the same type keeps the field
	ui.kindDropDown.SetCurrentOption(1)
	assert.Equal(t, "Elev Gain", ui.form.GetFormItem(specificFieldIndex).GetLabel())
	assert.Equal(t, SessionStateFormOpen, controller.State())
}

func TestCursesUIView_SubmitRecordsWorkout(t *testing.T) {
	ui, controller := newCursesSession(t)

	ui.mapView.Click()
	require.True(t, ui.formVisible)
	require.Equal(t, SessionStateFormOpen, controller.State())

	ui.distanceField.SetText("5.2")
	ui.durationField.SetText("30")
	ui.cadenceField.SetText("180")
	w, err := controller.SubmitWorkout()
	require.NoError(t, err)

	assert.False(t, ui.formVisible)
	assert.Equal(t, "", ui.distanceField.GetText())
	require.Equal(t, 1, ui.workoutList.GetItemCount())
	main, secondary := ui.workoutList.GetItemText(0)
	assert.Equal(t, "🏃‍♂️ Running on July 3 ", main)
	assert.Contains(t, secondary, "5.2 km")
	assert.Contains(t, secondary, "5.8 min/km")
	assert.Equal(t, []string{w.ID()}, ui.workoutIDs)
	require.Len(t, ui.mapView.markers, 1)
	assert.Equal(t, 'R', ui.mapView.markers[0].glyph)
}

func TestCursesUIView_NewestEntryFirst(t *testing.T) {
	ui := NewCursesUIView(newTestLogger(), tview.NewApplication(), testAttribution)

	ui.AddWorkoutEntry(NewListEntry(workout.NewRunning("first", testTime, 5, 25, testCoords, 170)))
	ui.AddWorkoutEntry(NewListEntry(workout.NewCycling("second", testTime, 20, 60, testCoords, 100)))

	assert.Equal(t, []string{"second", "first"}, ui.workoutIDs)
	main, _ := ui.workoutList.GetItemText(0)
	assert.Contains(t, main, "Cycling")
}

func TestCursesUIView_InvalidInputShowsAlert(t *testing.T) {
	ui, controller := newCursesSession(t)
	ui.mapView.Click()
	ui.distanceField.SetText("abc")

	_, err := controller.SubmitWorkout()
	require.ErrorIs(t, err, ErrInvalidInput)

	name, _ := ui.pages.GetFrontPage()
	assert.Equal(t, pageAlert, name)
	assert.True(t, ui.formVisible)
	assert.Equal(t, "abc", ui.distanceField.GetText())
}

func TestCursesUIView_CancelHidesForm(t *testing.T) {
	ui, controller := newCursesSession(t)
	ui.mapView.Click()
	ui.distanceField.SetText("3")

	controller.CancelForm()

	assert.False(t, ui.formVisible)
	assert.Equal(t, "", ui.distanceField.GetText())
	assert.Equal(t, SessionStateMapReady, controller.State())
}

func TestFormatDetails(t *testing.T) {
	details := []Detail{{Icon: "⏱", Value: "30", Unit: "min"}, {Icon: "⛰", Value: "-40", Unit: "m"}}
	assert.Equal(t, "⏱ 30 min  ⛰ -40 m", formatDetails(details))
}

func TestCursesUIView_PostKeepsOrder(t *testing.T) {
	app := tview.NewApplication().SetScreen(tcell.NewSimulationScreen("UTF-8"))
	ui := NewCursesUIView(newTestLogger(), app, testAttribution)

	runErr := make(chan error, 1)
	go func() { runErr <- ui.Run() }()

	const posts = 200
	var mu sync.Mutex
	var got []int
	done := make(chan struct{})
	for i := 0; i < posts; i++ {
		ui.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	ui.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("posted funcs did not run")
	}
	ui.Stop()
	require.NoError(t, <-runErr)

	want := make([]int, posts)
	for i := range want {
		want[i] = i
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, got)
}
