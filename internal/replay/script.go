// Package replay drives a session from a TOML script of user actions, for
// running mapty without a terminal UI.
package replay

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/lowaak/mapty/internal/geo"
	"github.com/lowaak/mapty/internal/workout"
)

// Step actions
const (
	ActionClick  = "click"  // click the map at lat/lng, or at the start position when omitted
	ActionType   = "type"   // pick the workout type
	ActionFill   = "fill"   // type into the numeric inputs
	ActionSubmit = "submit" // press save
	ActionCancel = "cancel" // abandon the form
	ActionSelect = "select" // click a list entry, 0 being the newest
)

// ErrInvalidScript is returned for scripts that cannot be replayed
var ErrInvalidScript = errors.New("invalid script")

// Script is a sequence of user actions
type Script struct {
	Steps []Step `toml:"step"`
}

// Step is one user action. Which fields apply depends on Action.
type Step struct {
	Action    string     `toml:"action"`
	Lat       *float64   `toml:"lat"`
	Lng       *float64   `toml:"lng"`
	Type      string     `toml:"type"`
	Distance  FieldValue `toml:"distance"`
	Duration  FieldValue `toml:"duration"`
	Cadence   FieldValue `toml:"cadence"`
	Elevation FieldValue `toml:"elevation"`
	Index     int        `toml:"index"`
}

// FieldValue is the text typed into a form input. Scripts may write it as a
// TOML string, integer or float.
type FieldValue string

// UnmarshalTOML implements toml.Unmarshaler
func (f *FieldValue) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		*f = FieldValue(v)
	case int64:
		*f = FieldValue(strconv.FormatInt(v, 10))
	case float64:
		*f = FieldValue(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Errorf("form value must be a string or a number, got %T", data)
	}
	return nil
}

// LoadFile reads and validates a script file
func LoadFile(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a script
func Parse(data []byte) (Script, error) {
	var script Script
	if err := toml.Unmarshal(data, &script); err != nil {
		return Script{}, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	for i, step := range script.Steps {
		if err := step.validate(); err != nil {
			return Script{}, fmt.Errorf("%w: step %d: %v", ErrInvalidScript, i+1, err)
		}
	}
	return script, nil
}

func (s Step) validate() error {
	switch s.Action {
	case ActionClick:
		if (s.Lat == nil) != (s.Lng == nil) {
			return errors.New("click needs both lat and lng, or neither")
		}
		if s.Lat != nil {
			return geo.Validate(workout.Coordinates{Lat: *s.Lat, Lng: *s.Lng})
		}
	case ActionType:
		if _, ok := workout.ParseKind(s.Type); !ok {
			return fmt.Errorf("unknown workout type %q", s.Type)
		}
	case ActionFill:
		if s.Type != "" {
			if _, ok := workout.ParseKind(s.Type); !ok {
				return fmt.Errorf("unknown workout type %q", s.Type)
			}
		}
	case ActionSelect:
		if s.Index < 0 {
			return fmt.Errorf("negative list index %d", s.Index)
		}
	case ActionSubmit, ActionCancel:
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
	return nil
}
