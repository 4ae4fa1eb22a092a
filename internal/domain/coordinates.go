package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (longitude, latitude) in WGS84 degrees.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Validate rejects non-finite and out-of-range values.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) {
		return fmt.Errorf("%w: non-finite coordinate (lon=%v, lat=%v)", ErrInvalidArgument, c.Lon, c.Lat)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidArgument, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidArgument, c.Lon)
	}
	return nil
}

// Axis-aligned rectangle in longitude/latitude space.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Expand grows the box by bufferDeg on every side.
func (b BoundingBox) Expand(bufferDeg float64) BoundingBox {
	return BoundingBox{
		MinLon: b.MinLon - bufferDeg,
		MinLat: b.MinLat - bufferDeg,
		MaxLon: b.MaxLon + bufferDeg,
		MaxLat: b.MaxLat + bufferDeg,
	}
}

func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bounding box %+v", ErrInvalidArgument, b)
		}
	}
	if b.MinLon > b.MaxLon || b.MinLat > b.MaxLat {
		return fmt.Errorf("%w: inverted bounding box %+v", ErrInvalidArgument, b)
	}
	return nil
}

// Envelope returns the smallest box containing every point.
// ok is false when points is empty.
func Envelope(points []Coordinates) (box BoundingBox, ok bool) {
	if len(points) == 0 {
		return BoundingBox{}, false
	}

	box = BoundingBox{MinLon: points[0].Lon, MinLat: points[0].Lat, MaxLon: points[0].Lon, MaxLat: points[0].Lat}
	for _, p := range points[1:] {
		box.MinLon = math.Min(box.MinLon, p.Lon)
		box.MinLat = math.Min(box.MinLat, p.Lat)
		box.MaxLon = math.Max(box.MaxLon, p.Lon)
		box.MaxLat = math.Max(box.MaxLat, p.Lat)
	}
	return box, true
}
