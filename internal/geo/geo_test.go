package geo

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/lowaak/mapty/internal/workout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticLocator(t *testing.T) {
	pos := workout.Coordinates{Lat: -6.2, Lng: 106.816}
	got, err := NewStaticLocator(&pos).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pos, got)
}

func TestStaticLocator_Unconfigured(t *testing.T) {
	_, err := NewStaticLocator(nil).Locate(context.Background())
	assert.ErrorIs(t, err, ErrPositionUnavailable)
}

func TestStaticLocator_OutOfRange(t *testing.T) {
	pos := workout.Coordinates{Lat: 91, Lng: 0}
	_, err := NewStaticLocator(&pos).Locate(context.Background())
	assert.True(t, errors.Is(err, ErrPositionUnavailable))
}

func TestStaticLocator_CancelledContext(t *testing.T) {
	pos := workout.Coordinates{Lat: 1, Lng: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStaticLocator(&pos).Locate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(workout.Coordinates{Lat: 0, Lng: 0}))
	assert.NoError(t, Validate(workout.Coordinates{Lat: -90, Lng: 180}))
	assert.Error(t, Validate(workout.Coordinates{Lat: math.NaN(), Lng: 0}))
	assert.Error(t, Validate(workout.Coordinates{Lat: 0, Lng: math.Inf(1)}))
	assert.Error(t, Validate(workout.Coordinates{Lat: 0, Lng: -180.5}))
}

func TestProject_Origin(t *testing.T) {
	p := Project(workout.Coordinates{}, 0)
	assert.InDelta(t, 128, p.X, 1e-9)
	assert.InDelta(t, 128, p.Y, 1e-9)

	p = Project(workout.Coordinates{}, 2)
	assert.InDelta(t, 512, p.X, 1e-9)
	assert.InDelta(t, 512, p.Y, 1e-9)
}

func TestProjectUnprojectRoundTrip(t *testing.T) {
	for _, c := range []workout.Coordinates{
		{Lat: 51.5072, Lng: -0.1276},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 40.7128, Lng: -74.006},
		{Lat: 0, Lng: 0},
	} {
		for _, zoom := range []int{0, 5, 13, 19} {
			back := Unproject(Project(c, zoom), zoom)
			assert.InDelta(t, c.Lat, back.Lat, 1e-9)
			assert.InDelta(t, c.Lng, back.Lng, 1e-9)
		}
	}
}

func TestUnproject_WrapsLongitude(t *testing.T) {
	size := WorldSize(3)
	c := Unproject(Point{X: size + size/2, Y: size / 2}, 3)
	assert.InDelta(t, 0, c.Lng, 1e-9)
	assert.InDelta(t, 0, c.Lat, 1e-9)
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, 0, ClampZoom(-2))
	assert.Equal(t, 13, ClampZoom(13))
	assert.Equal(t, 19, ClampZoom(25))
}
