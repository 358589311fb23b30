package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lowaak/mapty/internal/geo"
	"github.com/lowaak/mapty/internal/go_func_utils"
	"github.com/lowaak/mapty/internal/workout"
)

// ErrAlreadyStarted is returned by Start after the first call
var ErrAlreadyStarted = errors.New("session already started")

// SessionControllerArgs holds the collaborators of a SessionController.
// Zoom, Now and NewID fall back to defaults when zero.
type SessionControllerArgs struct {
	Model     *SessionModel
	Locator   geo.Locator
	Map       MapAdapter
	Form      WorkoutForm
	List      WorkoutList
	Alerter   Alerter
	Scheduler Scheduler
	Zoom      int
	Now       func() time.Time
	NewID     func() string
	Logger    *log.Logger
}

// SessionController mediates between the map, the form and the workout list.
// Every method except Start's geolocation request runs on the UI event loop.
type SessionController struct {
	model           *SessionModel
	locator         geo.Locator
	mapAdapter      MapAdapter
	form            WorkoutForm
	list            WorkoutList
	alerter         Alerter
	scheduler       Scheduler
	zoom            int
	now             func() time.Time
	newID           func() string
	logger          *log.Logger
	started         bool
	unregisterClick func()
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
}

// NewSessionController creates a new SessionController with the given dependencies
func NewSessionController(args SessionControllerArgs) *SessionController {
	if args.Model == nil {
		panic("SessionController: model cannot be nil")
	}
	if args.Locator == nil {
		panic("SessionController: locator cannot be nil")
	}
	if args.Map == nil {
		panic("SessionController: map cannot be nil")
	}
	if args.Form == nil {
		panic("SessionController: form cannot be nil")
	}
	if args.List == nil {
		panic("SessionController: list cannot be nil")
	}
	if args.Alerter == nil {
		panic("SessionController: alerter cannot be nil")
	}
	if args.Scheduler == nil {
		panic("SessionController: scheduler cannot be nil")
	}
	if args.Logger == nil {
		panic("SessionController: logger cannot be nil")
	}

	zoom := args.Zoom
	if zoom == 0 {
		zoom = DefaultZoom
	}
	now := args.Now
	if now == nil {
		now = time.Now
	}
	newID := args.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &SessionController{
		model:      args.Model,
		locator:    args.Locator,
		mapAdapter: args.Map,
		form:       args.Form,
		list:       args.List,
		alerter:    args.Alerter,
		scheduler:  args.Scheduler,
		zoom:       geo.ClampZoom(zoom),
		now:        now,
		newID:      newID,
		logger:     args.Logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start requests the current position once. The outcome is handled on the
// event loop: the map is centered and starts accepting clicks, or the user
// is told the position is unavailable. There is no retry.
func (c *SessionController) Start() error {
	if c.started {
		c.logger.Printf("SessionController: Start called twice, ignoring")
		return ErrAlreadyStarted
	}
	c.started = true

	c.wg.Add(1)
	go_func_utils.SafeGo(c.logger, "SessionController.locate", func() {
		defer c.wg.Done()

		position, err := c.locator.Locate(c.ctx)
		c.scheduler.Post(func() {
			if err != nil {
				c.onPositionFailed(err)
			} else {
				c.onPositionResolved(position)
			}
			c.model.SetGeolocationResult(GeolocationResult{Position: position, Err: err})
		})
	})
	return nil
}

func (c *SessionController) onPositionResolved(position workout.Coordinates) {
	c.logger.Printf("SessionController: position resolved at %s", position)
	c.mapAdapter.SetView(position, c.zoom)
	c.unregisterClick = c.mapAdapter.OnClick(c.OnMapClick)
	c.model.SetState(SessionStateMapReady)
}

func (c *SessionController) onPositionFailed(err error) {
	c.logger.Printf("SessionController: geolocation failed: %v", err)
	c.alerter.Alert(MessagePositionUnavailable)
}

// OnMapClick stashes the clicked position and opens the form. A click while
// the form is open replaces the pending position.
func (c *SessionController) OnMapClick(coords workout.Coordinates) {
	if c.model.GetState() == SessionStateIdle {
		c.logger.Printf("SessionController: map click at %s before the map is ready, ignoring", coords)
		return
	}
	c.model.SetPending(coords)
	c.form.Show()
	c.model.SetState(SessionStateFormOpen)
}

// SubmitWorkout validates the form and records a workout at the pending
// position. On invalid input the user is alerted and the form stays open
// with the pending position kept.
func (c *SessionController) SubmitWorkout() (workout.Workout, error) {
	coords, ok := c.model.GetPending()
	if !ok || c.model.GetState() != SessionStateFormOpen {
		c.logger.Printf("SessionController: submit rejected: %v", ErrNoPendingLocation)
		return workout.Workout{}, ErrNoPendingLocation
	}

	input, err := ParseFormValues(c.form.Values())
	if err != nil {
		c.logger.Printf("SessionController: submit rejected: %v", err)
		c.alerter.Alert(MessageInvalidInput)
		return workout.Workout{}, err
	}

	var w workout.Workout
	switch input.Kind {
	case workout.KindRunning:
		w = workout.NewRunning(c.newID(), c.now(), input.DistanceKm, input.DurationMin, coords, input.Cadence)
	case workout.KindCycling:
		w = workout.NewCycling(c.newID(), c.now(), input.DistanceKm, input.DurationMin, coords, input.ElevationGain)
	default:
		return workout.Workout{}, fmt.Errorf("%w: unknown workout type %s", ErrInvalidInput, input.Kind)
	}

	c.model.AddWorkout(w)
	c.form.Hide()
	c.mapAdapter.AddMarker(w.Coordinates(), PopupContent(w), NewPopupOptions(w.Kind()))
	c.list.AddWorkoutEntry(NewListEntry(w))
	c.model.ClearPending()
	c.model.SetState(SessionStateMapReady)

	metric := w.DerivedMetric()
	c.logger.Printf("SessionController: recorded %s %s at %s (%s %.1f %s)",
		w.Kind(), w.ID(), w.Coordinates(), metric.Name, metric.Value, metric.Unit)
	return w, nil
}

// CancelForm abandons the pending submission
func (c *SessionController) CancelForm() {
	if c.model.GetState() != SessionStateFormOpen {
		return
	}
	c.form.Hide()
	c.model.ClearPending()
	c.model.SetState(SessionStateMapReady)
}

// OnTypeChange swaps the type specific form field. Session state is untouched.
func (c *SessionController) OnTypeChange() {
	c.form.ToggleElevationField()
}

// OnWorkoutSelected handles a click on a list entry
func (c *SessionController) OnWorkoutSelected(id string) {
	w, ok := c.model.FindWorkout(id)
	if !ok {
		c.logger.Printf("SessionController: selected unknown workout %s", id)
		return
	}
	c.logger.Printf("SessionController: selected workout %s (%s)", id, PopupContent(w))
}

// OnEscapeKey requests application close
func (c *SessionController) OnEscapeKey() {
	c.model.RequestCloseApplication()
}

// Shutdown unregisters the map callback and waits for the geolocation request
func (c *SessionController) Shutdown() {
	c.cancel()
	c.wg.Wait()
	if c.unregisterClick != nil {
		c.unregisterClick()
		c.unregisterClick = nil
	}
}

// State returns the current session state
func (c *SessionController) State() SessionState {
	return c.model.GetState()
}

// Workouts returns the recorded workouts in creation order
func (c *SessionController) Workouts() []workout.Workout {
	return c.model.GetWorkouts()
}

// PendingCoordinates returns the position of the last unsubmitted map click
func (c *SessionController) PendingCoordinates() (workout.Coordinates, bool) {
	return c.model.GetPending()
}
