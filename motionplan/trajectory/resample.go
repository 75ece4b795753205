package trajectory

import (
	"math"

	"go.viam.com/opplanner/spatialmath"
)

// ResampleToDensity returns path resampled so that consecutive points are spacing apart. Starting
// from the first point, each new point is the first place along the polyline that lies exactly
// spacing away from the previously emitted one, so any remainder of a segment carries over into
// the next. The last original point is always kept; when it falls within 1% of spacing of the last
// emitted point it replaces that point. Paths with fewer than 2 points and a non-positive spacing
// return a copy of path.
func ResampleToDensity(path Trajectory, spacing float64) Trajectory {
	if len(path) < 2 || spacing <= 0 {
		return path.Clone()
	}

	margin := spacing * 0.01
	out := make(Trajectory, 0, int(path.Length()/spacing)+2)
	out = append(out, path[0])

	q := path[0].Pos
	seg := 0
	for seg < len(path)-1 {
		a := path[seg].Pos
		b := path[seg+1].Pos
		t, ok := circleExit(a, b, q, spacing)
		if !ok {
			seg++
			continue
		}
		wp := path[seg]
		wp.Pos.X = a.X + t*(b.X-a.X)
		wp.Pos.Y = a.Y + t*(b.Y-a.Y)
		wp.Pos.Z = a.Z + t*(b.Z-a.Z)
		out = append(out, wp)
		q = wp.Pos
	}

	last := path[len(path)-1]
	if len(out) > 1 && spatialmath.Distance(q, last.Pos) <= margin {
		out[len(out)-1] = last
	} else if !spatialmath.Coincident(q, last.Pos) {
		out = append(out, last)
	}
	return out
}

// circleExit returns the parameter t in [0, 1] where segment a->b leaves the circle of radius r
// around q. The segment start is expected to lie inside the circle.
func circleExit(a, b, q spatialmath.Point, r float64) (float64, bool) {
	if spatialmath.Distance(b, q) < r {
		return 0, false
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	fx, fy := a.X-q.X, a.Y-q.Y
	qa := dx*dx + dy*dy
	if qa == 0 {
		return 0, false
	}
	qb := 2 * (fx*dx + fy*dy)
	qc := fx*fx + fy*fy - r*r
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		disc = 0
	}
	t := (-qb + math.Sqrt(disc)) / (2 * qa)
	return math.Max(0, math.Min(1, t)), true
}
