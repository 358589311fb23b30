package tracker

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/mapty/internal/geo"
	"github.com/lowaak/mapty/internal/workout"
)

type consoleSession struct {
	ui     *ConsoleUIViewImpl
	out    *bytes.Buffer
	runErr chan error
}

// startConsoleSession runs a full session on a console view
func startConsoleSession(t *testing.T, locator geo.Locator, html bool) *consoleSession {
	t.Helper()
	color.NoColor = true

	logger := newTestLogger()
	out := &bytes.Buffer{}
	model := NewSessionModel(logger, nil)
	ui := NewConsoleUIView(logger, out, model, html)
	controller := NewSessionController(SessionControllerArgs{
		Model:     model,
		Locator:   locator,
		Map:       ui,
		Form:      ui,
		List:      ui,
		Alerter:   ui,
		Scheduler: ui,
		Now:       func() time.Time { return testTime },
		Logger:    logger,
	})
	base := NewBaseUIView(NewBaseUIViewArg{UIViewImpl: ui, Model: model, Controller: controller, Logger: logger})

	s := &consoleSession{ui: ui, out: out, runErr: make(chan error, 1)}
	go func() { s.runErr <- base.Run() }()
	t.Cleanup(func() {
		ui.Stop()
		base.Shutdown()
		controller.Shutdown()
		model.Shutdown()
	})
	return s
}

// quit stops the session and returns everything it printed
func (s *consoleSession) quit(t *testing.T) string {
	t.Helper()
	s.ui.Quit()
	select {
	case err := <-s.runErr:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("console view did not stop")
	}
	return s.out.String()
}

func TestConsoleUIView_RecordsWorkouts(t *testing.T) {
	s := startConsoleSession(t, geo.NewStaticLocator(&testCoords), false)

	position, err := s.ui.AwaitPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testCoords, position)

	require.NoError(t, s.ui.ClickMap(testCoords))
	require.NoError(t, s.ui.FillForm(FormValues{Distance: "5.2", Duration: "30", Cadence: "180"}))
	run, err := s.ui.Save()
	require.NoError(t, err)
	assert.Equal(t, workout.KindRunning, run.Kind())

	require.NoError(t, s.ui.ClickMap(workout.Coordinates{Lat: 51.51, Lng: -0.13}))
	require.NoError(t, s.ui.SelectKind(workout.KindCycling))
	require.NoError(t, s.ui.FillForm(FormValues{Distance: "27", Duration: "95", ElevationGain: "523"}))
	ride, err := s.ui.Save()
	require.NoError(t, err)
	assert.Equal(t, workout.KindCycling, ride.Kind())

	status, err := s.ui.Status()
	require.NoError(t, err)
	assert.Equal(t, StatusInfo{State: SessionStateMapReady, WorkoutCount: 2}, status)
	require.NoError(t, s.ui.SelectEntry(0))
	assert.Error(t, s.ui.SelectEntry(5))

	out := s.quit(t)
	assert.Contains(t, out, "Map centered on 51.50720, -0.12760 (zoom 13)")
	assert.Contains(t, out, "[marker 51.50720, -0.12760] 🏃‍♂️Running on July 3 ")
	assert.Contains(t, out, "🏃‍♂️ 5.2 km  ⏱ 30 min  🦶🏼 180 spm  ⚡️ 5.8 min/km")
	assert.Contains(t, out, "🚴‍♀️ 27 km  ⏱ 95 min  ⛰ 523 m  ⚡️ 17.1 km/h")
}

func TestConsoleUIView_InvalidInputAlerts(t *testing.T) {
	s := startConsoleSession(t, geo.NewStaticLocator(&testCoords), false)
	_, err := s.ui.AwaitPosition(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.ui.ClickMap(testCoords))
	require.NoError(t, s.ui.FillForm(FormValues{Distance: "-1", Duration: "30", Cadence: "180"}))
	_, err = s.ui.Save()
	assert.ErrorIs(t, err, ErrInvalidInput)

	status, err := s.ui.Status()
	require.NoError(t, err)
	assert.Equal(t, SessionStateFormOpen, status.State)

	out := s.quit(t)
	assert.Contains(t, out, "! 🛑 Input should be valid and positive.")
}

func TestConsoleUIView_PositionUnavailable(t *testing.T) {
	s := startConsoleSession(t, geo.NewStaticLocator(nil), false)

	_, err := s.ui.AwaitPosition(context.Background())
	assert.ErrorIs(t, err, geo.ErrPositionUnavailable)

	require.NoError(t, s.ui.ClickMap(testCoords))
	status, err := s.ui.Status()
	require.NoError(t, err)
	assert.Equal(t, SessionStateIdle, status.State)

	out := s.quit(t)
	assert.Contains(t, out, "! couldn't get current position")
	assert.NotContains(t, out, "Map centered")
}

func TestConsoleUIView_HTMLOutput(t *testing.T) {
	s := startConsoleSession(t, geo.NewStaticLocator(&testCoords), true)
	_, err := s.ui.AwaitPosition(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.ui.ClickMap(testCoords))
	require.NoError(t, s.ui.SelectKind(workout.KindCycling))
	require.NoError(t, s.ui.FillForm(FormValues{Distance: "27", Duration: "95", ElevationGain: "0"}))
	w, err := s.ui.Save()
	require.NoError(t, err)

	out := s.quit(t)
	assert.Contains(t, out, `<li class="workout workout--cycling" data-id="`+w.ID()+`">`)
}

func TestConsoleUIView_InvokeAfterStop(t *testing.T) {
	ui := NewConsoleUIView(newTestLogger(), &bytes.Buffer{}, NewSessionModel(newTestLogger(), nil), false)
	ui.Stop()

	assert.ErrorIs(t, ui.Invoke(func() {}), ErrViewStopped)
	assert.NoError(t, ui.Run())
}
