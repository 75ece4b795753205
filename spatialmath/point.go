// Package spatialmath defines the planar geometry used by the local planner: oriented points,
// rigid frame transforms, and a handful of closed-form fits.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
)

// Point is an oriented sample in the map frame. X, Y, Z are metres and A is the heading in radians.
// Lat, Lon, Alt and Dir are optional geodetic fields carried along with the cartesian ones; the
// planning algorithms never read them.
type Point struct {
	X float64
	Y float64
	Z float64
	A float64

	Lat float64
	Lon float64
	Alt float64
	Dir float64
}

// NewPoint returns a point at x, y, z with heading a.
func NewPoint(x, y, z, a float64) Point {
	return Point{X: x, Y: y, Z: z, A: a}
}

// Vector returns the cartesian part of the point.
func (p Point) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// Distance returns the planar distance between two points, ignoring Z.
func Distance(p1, p2 Point) float64 {
	return math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
}

// DistanceSquared returns the squared planar distance between two points.
func DistanceSquared(p1, p2 Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	return dx*dx + dy*dy
}

// Distance3D returns the euclidean distance between two points including Z.
func Distance3D(p1, p2 Point) float64 {
	return p1.Vector().Distance(p2.Vector())
}

// Bearing returns the heading of the vector from p1 to p2 in (-pi, pi].
func Bearing(p1, p2 Point) float64 {
	return math.Atan2(p2.Y-p1.Y, p2.X-p1.X)
}

// Coincident returns true if the two points share the same planar position.
func Coincident(p1, p2 Point) bool {
	return p1.X == p2.X && p1.Y == p2.Y
}

// GeoPoint returns the geodetic position of the point.
func (p Point) GeoPoint() *geo.Point {
	return geo.NewPoint(p.Lat, p.Lon)
}

// GeodeticDistance returns the great circle distance in metres between the geodetic fields of two points.
func GeodeticDistance(p1, p2 Point) float64 {
	return p1.GeoPoint().GreatCircleDistance(p2.GeoPoint()) * 1000
}

// String returns a human readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f, A:%.3f | Lon:%.8f, Lat:%.8f, Alt:%.3f, Dir:%.3f",
		p.X, p.Y, p.Z, p.A, p.Lon, p.Lat, p.Alt, p.Dir)
}
