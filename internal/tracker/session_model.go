package tracker

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/mapty/internal/events"
	"github.com/lowaak/mapty/internal/go_func_utils"
	"github.com/lowaak/mapty/internal/workout"
)

// GeolocationResult is the single outcome of the startup position request
type GeolocationResult struct {
	Position workout.Coordinates
	Err      error
}

// SessionModel holds the session state the controller owns: the click/submit
// state, the pending map click and the workouts recorded so far.
type SessionModel struct {
	state                 SessionState
	pending               *workout.Coordinates
	workouts              *workout.Collection
	stateEvent            *events.Event[SessionState]
	workoutAddedEvent     *events.Event[workout.Workout]
	geolocationEvent      *events.Event[GeolocationResult]
	closeApplicationEvent *events.Event[struct{}]
	logEvent              *events.Event[string]
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

// NewSessionModel creates an empty session. uiLogChan feeds the log pane and
// may be nil when there is no pane.
func NewSessionModel(logger *log.Logger, uiLogChan <-chan string) *SessionModel {
	if logger == nil {
		panic("SessionModel: logger cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &SessionModel{
		state:                 SessionStateIdle,
		workouts:              workout.NewCollection(),
		stateEvent:            events.NewEvent[SessionState](true),
		workoutAddedEvent:     events.NewEvent[workout.Workout](false),
		geolocationEvent:      events.NewEvent[GeolocationResult](true),
		closeApplicationEvent: events.NewEvent[struct{}](true),
		logEvent:              events.NewEvent[string](false),
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
	}

	if uiLogChan != nil {
		model.wg.Add(1)
		go_func_utils.SafeGo(logger, "SessionModel.readFromLogChannel", func() { model.readFromLogChannel(ctx, uiLogChan) })
	}

	return model
}

// Shutdown stops the log reader and waits for it to finish
func (m *SessionModel) Shutdown() {
	m.cancel()
	m.wg.Wait()
}

// GetState returns the current session state
func (m *SessionModel) GetState() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SetState updates the session state and notifies listeners on change
func (m *SessionModel) SetState(state SessionState) {
	m.mu.Lock()
	if m.state == state {
		m.mu.Unlock()
		return
	}
	m.state = state
	m.mu.Unlock()

	m.stateEvent.Notify(state)
}

// ListenToState registers a callback for state changes. The current state is
// replayed once something has changed it.
func (m *SessionModel) ListenToState(callback func(SessionState)) func() {
	return m.stateEvent.Listen(callback)
}

// GetPending returns the pending map click, if any
func (m *SessionModel) GetPending() (workout.Coordinates, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pending == nil {
		return workout.Coordinates{}, false
	}
	return *m.pending, true
}

// SetPending stashes a map click; the most recent click wins
func (m *SessionModel) SetPending(coords workout.Coordinates) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &coords
}

// ClearPending drops the pending map click
func (m *SessionModel) ClearPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
}

// AddWorkout appends w to the collection and notifies listeners
func (m *SessionModel) AddWorkout(w workout.Workout) {
	m.mu.Lock()
	m.workouts.Append(w)
	m.mu.Unlock()

	m.workoutAddedEvent.Notify(w)
}

// ListenToWorkoutAdded registers a callback for new workouts
func (m *SessionModel) ListenToWorkoutAdded(callback func(workout.Workout)) func() {
	return m.workoutAddedEvent.Listen(callback)
}

// GetWorkouts returns the workouts in creation order
func (m *SessionModel) GetWorkouts() []workout.Workout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workouts.All()
}

// FindWorkout looks a workout up by id
func (m *SessionModel) FindWorkout(id string) (workout.Workout, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workouts.FindByID(id)
}

// WorkoutCount returns the number of recorded workouts
func (m *SessionModel) WorkoutCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workouts.Len()
}

// SetGeolocationResult records the startup position outcome
func (m *SessionModel) SetGeolocationResult(result GeolocationResult) {
	m.geolocationEvent.Notify(result)
}

// ListenToGeolocation registers a channel for the startup position outcome.
// A listener registered after the outcome still receives it.
func (m *SessionModel) ListenToGeolocation(ch chan<- GeolocationResult) func() {
	return m.geolocationEvent.ListenChan(ch)
}

// RequestCloseApplication signals that the application should close
func (m *SessionModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// ListenToCloseApplication registers a channel for close requests
func (m *SessionModel) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeApplicationEvent.ListenChan(ch)
}

// ListenToLog registers a channel to receive log lines
func (m *SessionModel) ListenToLog(ch chan<- string) func() {
	return m.logEvent.ListenChan(ch)
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *SessionModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *SessionModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	if n > len(m.logLines) {
		n = len(m.logLines)
	}
	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}
