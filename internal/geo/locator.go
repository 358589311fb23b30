// Package geo provides the position source used to center the map and the
// projection the terminal map draws with.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/lowaak/mapty/internal/workout"
)

// ErrPositionUnavailable is returned when no current position can be had.
var ErrPositionUnavailable = errors.New("current position unavailable")

// Locator resolves the user's current position once per call.
type Locator interface {
	Locate(ctx context.Context) (workout.Coordinates, error)
}

// StaticLocator reports a fixed, configured position.
type StaticLocator struct {
	position *workout.Coordinates
}

// NewStaticLocator returns a locator that always fails when position is nil.
func NewStaticLocator(position *workout.Coordinates) *StaticLocator {
	return &StaticLocator{position: position}
}

func (l *StaticLocator) Locate(ctx context.Context) (workout.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return workout.Coordinates{}, err
	}
	if l.position == nil {
		return workout.Coordinates{}, ErrPositionUnavailable
	}
	if err := Validate(*l.position); err != nil {
		return workout.Coordinates{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	return *l.position, nil
}

// Validate checks that c is a finite position on the globe.
func Validate(c workout.Coordinates) error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return fmt.Errorf("coordinates %v are not finite", c)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %f out of range", c.Lng)
	}
	return nil
}
