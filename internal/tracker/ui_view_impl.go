package tracker

// StatusInfo is what the status line shows
type StatusInfo struct {
	State        SessionState
	WorkoutCount int
}

// UIViewImpl defines the interface for framework-specific UI implementations.
// Besides its own lifecycle, a view provides every collaborator the session
// controller talks to.
type UIViewImpl interface {
	MapAdapter
	WorkoutForm
	WorkoutList
	Alerter
	Scheduler

	// Initialize is called after construction to hook widgets to the controller
	Initialize(controller *SessionController)

	// SetupKeyboardHandlers sets up keyboard event handlers
	SetupKeyboardHandlers(controller *SessionController)

	// Run starts the UI framework and blocks until it exits
	Run() error

	// Stop stops the UI framework
	Stop()

	// UpdateStatus refreshes the status line
	UpdateStatus(status StatusInfo)

	// --- Log View ---

	// GetLogViewHeight returns the visible height of the log view, 0 if there is none
	GetLogViewHeight() int

	// ClearLogView clears the log view
	ClearLogView()

	// WriteLogLine writes a line to the log view
	WriteLogLine(line string) error
}
