package geo

import (
	"math"

	"github.com/lowaak/mapty/internal/workout"
)

const (
	// TileSize is the edge of a map tile in pixels at any zoom level.
	TileSize = 256
	// MaxLatitude is where Web Mercator is clipped.
	MaxLatitude = 85.0511287798
	MinZoom     = 0
	MaxZoom     = 19
)

// Point is a position in world pixels at a given zoom.
type Point struct {
	X float64
	Y float64
}

// WorldSize is the edge of the whole world in pixels at zoom.
func WorldSize(zoom int) float64 {
	return TileSize * math.Exp2(float64(zoom))
}

// Project converts coordinates to Web Mercator world pixels.
func Project(c workout.Coordinates, zoom int) Point {
	size := WorldSize(zoom)
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, c.Lat))
	sin := math.Sin(lat * math.Pi / 180)
	return Point{
		X: (c.Lng + 180) / 360 * size,
		Y: (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * size,
	}
}

// Unproject converts world pixels back to coordinates. Longitude wraps into
// [-180, 180); latitude is clipped to the Mercator range.
func Unproject(p Point, zoom int) workout.Coordinates {
	size := WorldSize(zoom)
	x := math.Mod(p.X, size)
	if x < 0 {
		x += size
	}
	y := math.Max(0, math.Min(size, p.Y))

	n := math.Pi - 2*math.Pi*y/size
	return workout.Coordinates{
		Lat: 180 / math.Pi * math.Atan(math.Sinh(n)),
		Lng: x/size*360 - 180,
	}
}

// ClampZoom keeps zoom within the supported range.
func ClampZoom(zoom int) int {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}
