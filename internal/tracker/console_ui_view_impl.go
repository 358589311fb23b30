package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/fatih/color"

	"github.com/lowaak/mapty/internal/events"
	"github.com/lowaak/mapty/internal/workout"
)

// ErrViewStopped is returned when work is handed to a console view that has stopped
var ErrViewStopped = errors.New("view stopped")

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	titleColor   = color.New(color.FgYellow, color.Bold)
	detailColor  = color.New(color.FgWhite)
	alertColor   = color.New(color.FgRed, color.Bold)
	markerColors = map[string]*color.Color{
		"running-popup": color.New(color.FgGreen, color.Bold),
		"cycling-popup": color.New(color.FgHiYellow, color.Bold),
	}
)

// ConsoleUIViewImpl implements UIViewImpl on a plain output stream. Posted
// work runs one item at a time on the goroutine that called Run. User actions
// are simulated through the exported action methods, which may be called
// from any goroutine.
type ConsoleUIViewImpl struct {
	logger     *log.Logger
	out        io.Writer
	html       bool
	model      *SessionModel
	controller *SessionController

	mu       sync.Mutex
	queue    []func()
	wake     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	// Owned by the loop goroutine
	clickEvent   *events.Event[workout.Coordinates]
	mapReady     bool
	values       FormValues
	formVisible  bool
	specificKind workout.Kind
	entryIDs     []string // newest first
	status       StatusInfo
}

// NewConsoleUIView writes to out, rendering list entries as HTML fragments when html is set
func NewConsoleUIView(logger *log.Logger, out io.Writer, model *SessionModel, html bool) *ConsoleUIViewImpl {
	if logger == nil {
		panic("ConsoleUIViewImpl: logger cannot be nil")
	}
	if out == nil {
		panic("ConsoleUIViewImpl: out cannot be nil")
	}
	if model == nil {
		panic("ConsoleUIViewImpl: model cannot be nil")
	}
	return &ConsoleUIViewImpl{
		logger:       logger,
		out:          out,
		html:         html,
		model:        model,
		wake:         make(chan struct{}, 1),
		stopped:      make(chan struct{}),
		clickEvent:   events.NewEvent[workout.Coordinates](false),
		values:       FormValues{Kind: workout.KindRunning},
		specificKind: workout.KindRunning,
	}
}

// Initialize keeps the controller for the action methods
func (ui *ConsoleUIViewImpl) Initialize(controller *SessionController) {
	ui.controller = controller
}

// SetupKeyboardHandlers does nothing: the console view has no keyboard input
func (ui *ConsoleUIViewImpl) SetupKeyboardHandlers(controller *SessionController) {}

// Run processes posted work until Stop
func (ui *ConsoleUIViewImpl) Run() error {
	for {
		select {
		case <-ui.stopped:
			return nil
		case <-ui.wake:
			for _, fn := range ui.drain() {
				fn()
			}
		}
	}
}

func (ui *ConsoleUIViewImpl) drain() []func() {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	queue := ui.queue
	ui.queue = nil
	return queue
}

// Stop ends Run. Work still queued is dropped.
func (ui *ConsoleUIViewImpl) Stop() {
	ui.stopOnce.Do(func() { close(ui.stopped) })
}

// Post queues fn for the loop. It never blocks.
func (ui *ConsoleUIViewImpl) Post(fn func()) {
	ui.mu.Lock()
	ui.queue = append(ui.queue, fn)
	ui.mu.Unlock()

	select {
	case ui.wake <- struct{}{}:
	default:
	}
}

// Invoke runs fn on the loop and waits for it
func (ui *ConsoleUIViewImpl) Invoke(fn func()) error {
	done := make(chan struct{})
	ui.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ui.stopped:
		return ErrViewStopped
	}
}

// --- User actions ---

// AwaitPosition blocks until the startup geolocation has been handled
func (ui *ConsoleUIViewImpl) AwaitPosition(ctx context.Context) (workout.Coordinates, error) {
	ch := make(chan GeolocationResult, 1)
	unregister := ui.model.ListenToGeolocation(ch)
	defer unregister()

	select {
	case result := <-ch:
		return result.Position, result.Err
	case <-ctx.Done():
		return workout.Coordinates{}, ctx.Err()
	case <-ui.stopped:
		return workout.Coordinates{}, ErrViewStopped
	}
}

// ClickMap clicks the map at coords. Clicks before the map is ready are lost.
func (ui *ConsoleUIViewImpl) ClickMap(coords workout.Coordinates) error {
	return ui.Invoke(func() {
		if !ui.mapReady {
			ui.logger.Printf("ConsoleUIView: map not ready, click at %s ignored", coords)
			return
		}
		ui.clickEvent.Notify(coords)
	})
}

// SelectKind picks a workout type in the form
func (ui *ConsoleUIViewImpl) SelectKind(kind workout.Kind) error {
	return ui.Invoke(func() {
		ui.values.Kind = kind
		if kind != ui.specificKind {
			ui.controller.OnTypeChange()
		}
	})
}

// FillForm types into the numeric inputs; the type selection is kept
func (ui *ConsoleUIViewImpl) FillForm(values FormValues) error {
	return ui.Invoke(func() {
		values.Kind = ui.values.Kind
		ui.values = values
	})
}

// Save presses the form's save button
func (ui *ConsoleUIViewImpl) Save() (workout.Workout, error) {
	var (
		w   workout.Workout
		err error
	)
	if invokeErr := ui.Invoke(func() { w, err = ui.controller.SubmitWorkout() }); invokeErr != nil {
		return workout.Workout{}, invokeErr
	}
	return w, err
}

// Cancel abandons the form
func (ui *ConsoleUIViewImpl) Cancel() error {
	return ui.Invoke(func() { ui.controller.CancelForm() })
}

// SelectEntry clicks the list entry at index, 0 being the newest
func (ui *ConsoleUIViewImpl) SelectEntry(index int) error {
	var err error
	if invokeErr := ui.Invoke(func() {
		if index < 0 || index >= len(ui.entryIDs) {
			err = fmt.Errorf("no workout at list index %d (have %d)", index, len(ui.entryIDs))
			return
		}
		ui.controller.OnWorkoutSelected(ui.entryIDs[index])
	}); invokeErr != nil {
		return invokeErr
	}
	return err
}

// Quit presses escape
func (ui *ConsoleUIViewImpl) Quit() {
	ui.Post(func() { ui.controller.OnEscapeKey() })
}

// --- MapAdapter ---

// SetView reports the centered map
func (ui *ConsoleUIViewImpl) SetView(center workout.Coordinates, zoom int) {
	ui.mapReady = true
	ui.printf("%s\n", headerColor.Sprintf("Map centered on %s (zoom %d)", center, zoom))
}

// OnClick registers a map click callback
func (ui *ConsoleUIViewImpl) OnClick(callback func(workout.Coordinates)) func() {
	return ui.clickEvent.Listen(callback)
}

// AddMarker reports the marker and its popup
func (ui *ConsoleUIViewImpl) AddMarker(at workout.Coordinates, content string, opts PopupOptions) {
	c, ok := markerColors[opts.ClassName]
	if !ok {
		c = detailColor
	}
	ui.printf("%s %s\n", c.Sprintf("[marker %s]", at), content)
}

// --- WorkoutForm ---

func (ui *ConsoleUIViewImpl) Show() {
	ui.formVisible = true
}

func (ui *ConsoleUIViewImpl) Hide() {
	ui.formVisible = false
	ui.values = FormValues{Kind: ui.values.Kind}
}

func (ui *ConsoleUIViewImpl) Values() FormValues {
	return ui.values
}

func (ui *ConsoleUIViewImpl) ToggleElevationField() {
	if ui.specificKind == workout.KindRunning {
		ui.specificKind = workout.KindCycling
	} else {
		ui.specificKind = workout.KindRunning
	}
}

// --- WorkoutList ---

// AddWorkoutEntry prints the entry as colored text or as an HTML fragment
func (ui *ConsoleUIViewImpl) AddWorkoutEntry(entry ListEntry) {
	ui.entryIDs = append([]string{entry.ID}, ui.entryIDs...)

	if ui.html {
		fragment, err := RenderHTML(entry)
		if err != nil {
			ui.logger.Printf("ConsoleUIView: %v", err)
			return
		}
		ui.printf("%s", fragment)
		return
	}

	ui.printf("%s %s\n", entry.Icon, titleColor.Sprint(entry.Title))
	ui.printf("   %s\n", detailColor.Sprint(formatDetails(entry.Details)))
}

// --- Alerter ---

func (ui *ConsoleUIViewImpl) Alert(message string) {
	ui.printf("%s\n", alertColor.Sprintf("! %s", message))
}

// UpdateStatus records the status; the console has no status line
func (ui *ConsoleUIViewImpl) UpdateStatus(status StatusInfo) {
	ui.status = status
}

// Status returns the last status reported to the view
func (ui *ConsoleUIViewImpl) Status() (StatusInfo, error) {
	var status StatusInfo
	err := ui.Invoke(func() { status = ui.status })
	return status, err
}

// --- Log View: the console has none ---

func (ui *ConsoleUIViewImpl) GetLogViewHeight() int { return 0 }

func (ui *ConsoleUIViewImpl) ClearLogView() {}

func (ui *ConsoleUIViewImpl) WriteLogLine(line string) error { return nil }

func (ui *ConsoleUIViewImpl) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(ui.out, format, args...); err != nil {
		ui.logger.Printf("ConsoleUIView: write failed: %v", err)
	}
}
