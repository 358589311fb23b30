package tracker

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lowaak/mapty/internal/workout"
)

var (
	// ErrInvalidInput is returned when the form holds a non-numeric field or a
	// non-positive value where a positive one is required.
	ErrInvalidInput = errors.New("input should be valid and positive")
	// ErrNoPendingLocation is returned when a workout is submitted without a
	// map click to attach it to.
	ErrNoPendingLocation = errors.New("no map location selected")
)

// WorkoutInput is a validated form submission
type WorkoutInput struct {
	Kind          workout.Kind
	DistanceKm    float64
	DurationMin   float64
	Cadence       float64 // running only
	ElevationGain float64 // cycling only
}

// ParseFormValues validates the fields relevant to the selected kind.
// Every relevant field must be a finite number; distance and duration must be
// strictly positive, and so must cadence for running. Elevation gain only has
// to be finite: zero and descents are accepted.
func ParseFormValues(values FormValues) (WorkoutInput, error) {
	input := WorkoutInput{
		Kind:        values.Kind,
		DistanceKm:  parseNumber(values.Distance),
		DurationMin: parseNumber(values.Duration),
	}

	switch values.Kind {
	case workout.KindRunning:
		input.Cadence = parseNumber(values.Cadence)
		if err := allFinite(input.DistanceKm, input.DurationMin, input.Cadence); err != nil {
			return WorkoutInput{}, err
		}
		if err := allPositive(input.DistanceKm, input.DurationMin, input.Cadence); err != nil {
			return WorkoutInput{}, err
		}
	case workout.KindCycling:
		input.ElevationGain = parseNumber(values.ElevationGain)
		if err := allFinite(input.DistanceKm, input.DurationMin, input.ElevationGain); err != nil {
			return WorkoutInput{}, err
		}
		if err := allPositive(input.DistanceKm, input.DurationMin); err != nil {
			return WorkoutInput{}, err
		}
	default:
		return WorkoutInput{}, fmt.Errorf("%w: unknown workout type %v", ErrInvalidInput, values.Kind)
	}
	return input, nil
}

// Unsigned integer literals a form field may hold besides decimals
var radixPrefixes = map[string]int{
	"0x": 16, "0X": 16,
	"0o": 8, "0O": 8,
	"0b": 2, "0B": 2,
}

// parseNumber reads a form field. Blank reads as 0 and anything unparsable as
// NaN, so both fall out in validation rather than here.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if len(s) > 2 {
		if base, ok := radixPrefixes[s[:2]]; ok {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func allFinite(values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v is not a finite number", ErrInvalidInput, v)
		}
	}
	return nil
}

func allPositive(values ...float64) error {
	for _, v := range values {
		if !(v > 0) {
			return fmt.Errorf("%w: %v is not positive", ErrInvalidInput, v)
		}
	}
	return nil
}
