package spatialmath

import (
	"math"
)

// StraightRadius is the radius reported by FitCircle for collinear points.
const StraightRadius = 100000.0

const circleEpsilon = 1e-12

// FitCircle returns the radius and center of the circle passing through three points.
// Collinear or coincident points yield StraightRadius centered on p2.
func FitCircle(p1, p2, p3 Point) (float64, Point) {
	yDeltaA := p2.Y - p1.Y
	xDeltaA := p2.X - p1.X
	yDeltaB := p3.Y - p2.Y
	xDeltaB := p3.X - p2.X

	cross := xDeltaA*(p3.Y-p1.Y) - yDeltaA*(p3.X-p1.X)
	if math.Abs(cross) <= circleEpsilon || math.IsNaN(cross) {
		return StraightRadius, p2
	}

	// vertical then horizontal; both slope forms are undefined here
	if math.Abs(xDeltaA) <= circleEpsilon && math.Abs(yDeltaB) <= circleEpsilon {
		center := Point{X: 0.5 * (p2.X + p3.X), Y: 0.5 * (p1.Y + p2.Y)}
		return Distance(center, p1), center
	}

	aSlope := yDeltaA / xDeltaA
	bSlope := yDeltaB / xDeltaB
	if math.Abs(aSlope-bSlope) <= circleEpsilon {
		return StraightRadius, p2
	}

	// circumcenter relative to p1
	bx, by := xDeltaA, yDeltaA
	cx, cy := p3.X-p1.X, p3.Y-p1.Y
	d := 2 * (bx*cy - by*cx)
	if math.Abs(d) <= circleEpsilon || math.IsNaN(d) {
		return StraightRadius, p2
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	center := Point{
		X: p1.X + (cy*b2-by*c2)/d,
		Y: p1.Y + (bx*c2-cx*b2)/d,
	}
	r := Distance(center, p1)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return StraightRadius, p2
	}
	return r, center
}
