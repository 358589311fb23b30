package tracker

import "github.com/lowaak/mapty/internal/workout"

// MapAdapter is what the session needs from the map widget. The session only
// commands it and never reads state back.
type MapAdapter interface {
	// SetView centers the map on center at the given zoom level
	SetView(center workout.Coordinates, zoom int)

	// OnClick registers a callback invoked with the clicked position.
	// Returns a deregistration function.
	OnClick(callback func(workout.Coordinates)) func()

	// AddMarker places a marker at a position and opens a popup showing content
	AddMarker(at workout.Coordinates, content string, opts PopupOptions)
}

// PopupOptions configures a marker popup. Widths are in map pixels.
type PopupOptions struct {
	MaxWidth     int
	MinWidth     int
	AutoClose    bool // close when another popup opens
	CloseOnClick bool // close when the map is clicked
	ClassName    string
}

// NewPopupOptions returns the options used for a workout marker: popups stay
// open until the user closes them.
func NewPopupOptions(kind workout.Kind) PopupOptions {
	return PopupOptions{
		MaxWidth:     PopupMaxWidth,
		MinWidth:     PopupMinWidth,
		AutoClose:    false,
		CloseOnClick: false,
		ClassName:    GetKindInfo(kind).PopupClass,
	}
}

// FormValues is the raw content of the workout form
type FormValues struct {
	Kind          workout.Kind
	Distance      string
	Duration      string
	Cadence       string
	ElevationGain string
}

// WorkoutForm is the input form. It holds no logic of its own.
type WorkoutForm interface {
	// Show reveals the form and focuses the distance input
	Show()

	// Hide clears every input and hides the form
	Hide()

	// Values reads the current input
	Values() FormValues

	// ToggleElevationField swaps the cadence input for the elevation input or back
	ToggleElevationField()
}

// WorkoutList displays rendered workouts
type WorkoutList interface {
	// AddWorkoutEntry shows a new entry; the newest entry comes first
	AddWorkoutEntry(entry ListEntry)
}

// Alerter shows a blocking message to the user
type Alerter interface {
	Alert(message string)
}

// Scheduler runs work on the UI event loop
type Scheduler interface {
	// Post queues fn; it must not block the caller
	Post(fn func())
}
