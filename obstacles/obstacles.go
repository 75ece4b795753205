// Package obstacles describes objects detected around the vehicle and the planar footprints used to
// test trajectories against them.
package obstacles

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"go.viam.com/opplanner/spatialmath"
)

// ObjectType classifies a detected object.
type ObjectType int

// Known object types.
const (
	Sidewalk ObjectType = iota
	Tree
	Car
	Truck
	House
	Pedestrian
	Cyclist
	GeneralObstacle
)

func (t ObjectType) String() string {
	switch t {
	case Sidewalk:
		return "sidewalk"
	case Tree:
		return "tree"
	case Car:
		return "car"
	case Truck:
		return "truck"
	case House:
		return "house"
	case Pedestrian:
		return "pedestrian"
	case Cyclist:
		return "cyclist"
	case GeneralObstacle:
		return "general_obstacle"
	default:
		return "unknown"
	}
}

// DetectedObject is an object reported by perception. Width runs along the x axis of the object
// frame and Length along its y axis; the frame is centred on Center and rotated by Center.A.
type DetectedObject struct {
	ID              int
	Type            ObjectType
	Center          spatialmath.Point
	PredictedCenter spatialmath.Point
	Contour         []spatialmath.Point
	Width           float64
	Length          float64
	Height          float64

	DistanceToCenter float64
}

// NewDetectedObject returns a general obstacle with no contour.
func NewDetectedObject(id int, center spatialmath.Point, width, length, height float64) DetectedObject {
	return DetectedObject{
		ID:              id,
		Type:            GeneralObstacle,
		Center:          center,
		PredictedCenter: center,
		Width:           width,
		Length:          length,
		Height:          height,
	}
}

// Footprint is an oriented rectangle given by its corners in the order left bottom, right bottom,
// right top, left top.
type Footprint [4]spatialmath.Point

// ProjectFootprint returns the map frame corners of a width by length rectangle centred on center
// and rotated by its heading. Every corner is lifted to half the height above the centre.
func ProjectFootprint(center spatialmath.Point, width, length, height float64) Footprint {
	tf := spatialmath.NewTranslation(center.X, center.Y).Compose(spatialmath.NewRotation(center.A))
	w2, l2 := width/2, length/2
	z := center.Z + height/2

	local := Footprint{
		spatialmath.NewPoint(-w2, -l2, z, 0),
		spatialmath.NewPoint(w2, -l2, z, 0),
		spatialmath.NewPoint(w2, l2, z, 0),
		spatialmath.NewPoint(-w2, l2, z, 0),
	}
	var f Footprint
	for i, p := range local {
		f[i] = tf.Apply(p)
	}
	return f
}

// Footprint returns the projected footprint of the object.
func (o *DetectedObject) Footprint() Footprint {
	return ProjectFootprint(o.Center, o.Width, o.Length, o.Height)
}

// Points returns the corners as a slice.
func (f Footprint) Points() []spatialmath.Point {
	return f[:]
}

// Polygon returns the footprint as a closed planar polygon.
func (f Footprint) Polygon() orb.Polygon {
	ring := make(orb.Ring, 0, len(f)+1)
	for _, p := range f {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// Contains reports whether the planar position of p lies inside the footprint.
func (f Footprint) Contains(p spatialmath.Point) bool {
	return planar.PolygonContains(f.Polygon(), orb.Point{p.X, p.Y})
}

// Area returns the planar area of the footprint.
func (f Footprint) Area() float64 {
	return planar.Area(f.Polygon())
}

// ContourPoints returns copies of the objects whose centre is closer than filterDistance to pose,
// each with its contour set to its projected footprint. The input is left untouched.
func ContourPoints(pose spatialmath.Point, objects []DetectedObject, filterDistance float64) []DetectedObject {
	var out []DetectedObject
	for _, obj := range objects {
		if spatialmath.Distance(obj.Center, pose) >= filterDistance {
			continue
		}
		obj.Contour = append([]spatialmath.Point(nil), obj.Footprint().Points()...)
		out = append(out, obj)
	}
	return out
}

// ContourPolygon returns the contour of the object as a closed planar polygon, or nil when the
// contour has fewer than three points.
func (o *DetectedObject) ContourPolygon() orb.Polygon {
	if len(o.Contour) < 3 {
		return nil
	}
	ring := make(orb.Ring, 0, len(o.Contour)+1)
	for _, p := range o.Contour {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

// ContourContains reports whether p lies inside the contour of the object.
func (o *DetectedObject) ContourContains(p spatialmath.Point) bool {
	poly := o.ContourPolygon()
	if poly == nil {
		return false
	}
	return planar.PolygonContains(poly, orb.Point{p.X, p.Y})
}
