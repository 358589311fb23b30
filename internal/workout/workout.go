// Package workout holds the workout domain model: an immutable tagged union
// over the supported activity kinds, and the session's ordered collection.
package workout

import (
	"fmt"
	"time"
)

// Kind discriminates the workout variants.
type Kind int

const (
	KindRunning Kind = iota // distance activity, carries cadence and pace
	KindCycling             // elevation activity, carries elevation gain and speed
)

// AllKinds lists the kinds in selector order.
var AllKinds = []Kind{KindRunning, KindCycling}

func (k Kind) String() string {
	switch k {
	case KindRunning:
		return "running"
	case KindCycling:
		return "cycling"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a selector value ("running", "cycling") to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range AllKinds {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.5f, %.5f", c.Lat, c.Lng)
}

// Workout is a single recorded activity. All fields are fixed at
// construction; the zero value is not a valid workout.
type Workout struct {
	id          string
	createdAt   time.Time
	distanceKm  float64
	durationMin float64
	coords      Coordinates
	kind        Kind

	cadenceSpm     float64 // running only
	elevationGainM float64 // cycling only
}

// NewRunning builds a running workout. Inputs are expected to be validated
// already: distance, duration and cadence strictly positive.
func NewRunning(id string, createdAt time.Time, distanceKm, durationMin float64, coords Coordinates, cadenceSpm float64) Workout {
	return Workout{
		id:          id,
		createdAt:   createdAt,
		distanceKm:  distanceKm,
		durationMin: durationMin,
		coords:      coords,
		kind:        KindRunning,
		cadenceSpm:  cadenceSpm,
	}
}

// NewCycling builds a cycling workout. Distance and duration are expected to
// be strictly positive; elevation gain only finite.
func NewCycling(id string, createdAt time.Time, distanceKm, durationMin float64, coords Coordinates, elevationGainM float64) Workout {
	return Workout{
		id:             id,
		createdAt:      createdAt,
		distanceKm:     distanceKm,
		durationMin:    durationMin,
		coords:         coords,
		kind:           KindCycling,
		elevationGainM: elevationGainM,
	}
}

func (w Workout) ID() string               { return w.id }
func (w Workout) CreatedAt() time.Time     { return w.createdAt }
func (w Workout) DistanceKm() float64      { return w.distanceKm }
func (w Workout) DurationMin() float64     { return w.durationMin }
func (w Workout) Coordinates() Coordinates { return w.coords }
func (w Workout) Kind() Kind               { return w.kind }

// Cadence returns steps per minute; ok is false for non-running workouts.
func (w Workout) Cadence() (spm float64, ok bool) {
	return w.cadenceSpm, w.kind == KindRunning
}

// ElevationGain returns meters climbed; ok is false for non-cycling workouts.
func (w Workout) ElevationGain() (meters float64, ok bool) {
	return w.elevationGainM, w.kind == KindCycling
}

// Pace is minutes per kilometer. Not rounded.
func (w Workout) Pace() float64 {
	return w.durationMin / w.distanceKm
}

// Speed is kilometers per hour. Not rounded.
func (w Workout) Speed() float64 {
	return w.distanceKm / (w.durationMin / 60)
}

// Metric is a derived value with its display unit.
type Metric struct {
	Name  string
	Value float64
	Unit  string
}

// DerivedMetric returns the metric that belongs to the workout's kind:
// pace for running, speed for cycling.
func (w Workout) DerivedMetric() Metric {
	switch w.kind {
	case KindCycling:
		return Metric{Name: "speed", Value: w.Speed(), Unit: "km/h"}
	default:
		return Metric{Name: "pace", Value: w.Pace(), Unit: "min/km"}
	}
}
