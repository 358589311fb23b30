package tracker

import "github.com/lowaak/mapty/internal/workout"

// SessionState is the controller's position in the click/submit cycle
type SessionState int

const (
	SessionStateIdle     SessionState = iota // no map yet
	SessionStateMapReady                     // map centered, awaiting clicks
	SessionStateFormOpen                     // a click is pending, form visible
)

// SessionStateInfo contains display information for a session state
type SessionStateInfo struct {
	State       SessionState
	DisplayName string
	Hint        string
}

// AllSessionStates defines all session states in order
var AllSessionStates = []SessionStateInfo{
	{State: SessionStateIdle, DisplayName: "Locating", Hint: "Waiting for your position"},
	{State: SessionStateMapReady, DisplayName: "Map", Hint: "Move with arrows, Enter to pick a spot"},
	{State: SessionStateFormOpen, DisplayName: "New workout", Hint: "Fill the form, Enter on Save (Esc cancels)"},
}

// GetSessionStateInfo returns the info for a given state
func GetSessionStateInfo(state SessionState) (SessionStateInfo, bool) {
	for _, info := range AllSessionStates {
		if info.State == state {
			return info, true
		}
	}
	return SessionStateInfo{}, false
}

func (s SessionState) String() string {
	if info, ok := GetSessionStateInfo(s); ok {
		return info.DisplayName
	}
	return "Unknown"
}

// KindInfo contains display information for a workout kind
type KindInfo struct {
	Kind         workout.Kind
	DisplayName  string
	Icon         string
	MarkerGlyph  rune
	PopupClass   string
	SpecificName string // label of the kind-specific form field
}

// AllKindInfos lists the kinds in selector order
var AllKindInfos = []KindInfo{
	{
		Kind:         workout.KindRunning,
		DisplayName:  "Running",
		Icon:         "🏃‍♂️",
		MarkerGlyph:  'R',
		PopupClass:   "running-popup",
		SpecificName: "Cadence",
	},
	{
		Kind:         workout.KindCycling,
		DisplayName:  "Cycling",
		Icon:         "🚴‍♀️",
		MarkerGlyph:  'C',
		PopupClass:   "cycling-popup",
		SpecificName: "Elev Gain",
	},
}

// GetKindInfo returns the info for a given kind
func GetKindInfo(kind workout.Kind) KindInfo {
	for _, info := range AllKindInfos {
		if info.Kind == kind {
			return info
		}
	}
	return AllKindInfos[0]
}

// User-facing alert texts
const (
	MessagePositionUnavailable = "couldn't get current position"
	MessageInvalidInput        = "🛑 Input should be valid and positive."
)

// Popup sizing in map pixels, and marker popups stay open
const (
	PopupMaxWidth = 250
	PopupMinWidth = 30
)

// DefaultZoom is used when the controller is given no zoom
const DefaultZoom = 13

const maxLogLines = 1000
