package replay

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lowaak/mapty/internal/tracker"
	"github.com/lowaak/mapty/internal/workout"
)

// Driver performs user actions against a running session
type Driver interface {
	AwaitPosition(ctx context.Context) (workout.Coordinates, error)
	ClickMap(coords workout.Coordinates) error
	SelectKind(kind workout.Kind) error
	FillForm(values tracker.FormValues) error
	Save() (workout.Workout, error)
	Cancel() error
	SelectEntry(index int) error
}

// Summary counts what a replay did
type Summary struct {
	Position workout.Coordinates
	Steps    int
	Recorded int
	Rejected int
}

// Run waits for the session's start position, then replays the steps in
// order. Rejected submissions are counted, not fatal.
func Run(ctx context.Context, script Script, driver Driver, logger *log.Logger) (Summary, error) {
	if driver == nil {
		panic("replay: driver cannot be nil")
	}
	if logger == nil {
		panic("replay: logger cannot be nil")
	}

	var summary Summary
	position, err := driver.AwaitPosition(ctx)
	if err != nil {
		return summary, fmt.Errorf("replay: %w", err)
	}
	summary.Position = position

	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rejected, err := runStep(step, driver, position)
		if err != nil {
			return summary, fmt.Errorf("replay: step %d (%s): %w", i+1, step.Action, err)
		}
		summary.Steps++
		switch {
		case rejected:
			summary.Rejected++
		case step.Action == ActionSubmit:
			summary.Recorded++
		}
	}

	logger.Printf("replay: %d steps, %d workouts recorded, %d rejected", summary.Steps, summary.Recorded, summary.Rejected)
	return summary, nil
}

func runStep(step Step, driver Driver, start workout.Coordinates) (rejected bool, err error) {
	switch step.Action {
	case ActionClick:
		at := start
		if step.Lat != nil && step.Lng != nil {
			at = workout.Coordinates{Lat: *step.Lat, Lng: *step.Lng}
		}
		return false, driver.ClickMap(at)
	case ActionType:
		kind, _ := workout.ParseKind(step.Type)
		return false, driver.SelectKind(kind)
	case ActionFill:
		if step.Type != "" {
			kind, _ := workout.ParseKind(step.Type)
			if err := driver.SelectKind(kind); err != nil {
				return false, err
			}
		}
		return false, driver.FillForm(tracker.FormValues{
			Distance:      string(step.Distance),
			Duration:      string(step.Duration),
			Cadence:       string(step.Cadence),
			ElevationGain: string(step.Elevation),
		})
	case ActionSubmit:
		_, err := driver.Save()
		if errors.Is(err, tracker.ErrInvalidInput) || errors.Is(err, tracker.ErrNoPendingLocation) {
			return true, nil
		}
		return false, err
	case ActionCancel:
		return false, driver.Cancel()
	case ActionSelect:
		return false, driver.SelectEntry(step.Index)
	default:
		return false, fmt.Errorf("%w: unknown action %q", ErrInvalidScript, step.Action)
	}
}
