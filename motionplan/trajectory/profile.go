package trajectory

import (
	"math"

	"go.viam.com/opplanner/spatialmath"
	"go.viam.com/opplanner/utils"
)

const (
	maxCurvatureRadius = 150.0

	speedProfileDensity = 0.5
	curvatureDataWeight = 0.3
	curvatureSmoothness = 0.49
	curvatureTolerance  = 0.01
)

// ComputeHeadingAndArcCost sets every point's heading to the bearing of its successor and its cost
// to the arc length travelled so far, starting from initialCost. The last point keeps the heading of
// the one before it, and a point coincident with its successor takes the successor's heading. The
// returned cost is the cost of the last point, or 0 for an empty path.
func ComputeHeadingAndArcCost(path Trajectory, initialCost float64) (Trajectory, float64) {
	out := path.Clone()
	switch len(out) {
	case 0:
		return out, 0
	case 1:
		out[0].Cost = initialCost
		return out, initialCost
	}

	out[0].Cost = initialCost
	for i := 0; i < len(out); i++ {
		if i < len(out)-1 {
			out[i].Pos.A = utils.FixNegativeAngle(spatialmath.Bearing(out[i].Pos, out[i+1].Pos))
		} else {
			out[i].Pos.A = out[i-1].Pos.A
		}
		if i > 0 {
			out[i].Cost = out[i-1].Cost + spatialmath.Distance(out[i-1].Pos, out[i].Pos)
		}
	}

	for i := len(out) - 2; i >= 0; i-- {
		if spatialmath.Coincident(out[i].Pos, out[i+1].Pos) {
			out[i].Pos.A = out[i+1].Pos.A
		}
	}

	return out, out[len(out)-1].Cost
}

// ComputeHeadingAndCurvature sets every point's heading to the bearing of its successor and its
// cost to a curvature cost derived from the circle through it and its neighbours: 1 - 1/r, with r
// capped at 150 and radii under 1 mapped to 0. Straight sections therefore approach 1. Endpoints
// copy the cost of their only neighbour; a single point gets initialCost.
func ComputeHeadingAndCurvature(path Trajectory, initialCost float64) Trajectory {
	out := path.Clone()
	switch len(out) {
	case 0:
		return out
	case 1:
		out[0].Cost = initialCost
		return out
	}

	out[0].Pos.A = spatialmath.Bearing(out[0].Pos, out[1].Pos)
	out[0].Cost = initialCost
	for i := 1; i < len(out)-1; i++ {
		r, _ := spatialmath.FitCircle(out[i-1].Pos, out[i].Pos, out[i+1].Pos)
		if r > maxCurvatureRadius || math.IsNaN(r) {
			r = maxCurvatureRadius
		}
		if r < 1 {
			out[i].Cost = 0
		} else {
			out[i].Cost = 1 - 1/r
		}
		out[i].Pos.A = spatialmath.Bearing(out[i].Pos, out[i+1].Pos)
	}

	last := len(out) - 1
	if len(out) > 2 {
		out[0].Cost = out[1].Cost
		out[last].Cost = out[last-1].Cost
	} else {
		out[last].Cost = initialCost
	}
	out[last].Pos.A = out[last-1].Pos.A
	return out
}

// ComputeCurvatureSpeedProfile resamples path every half metre, estimates smoothed curvature along
// it and assigns a target speed to every point. Curvature costs of 0.95 and above get maxSpeed, 0.85
// and below get speedFactor, and costs in between are interpolated linearly. Speeds never exceed
// maxSpeed.
func ComputeCurvatureSpeedProfile(path Trajectory, maxSpeed, speedFactor float64) Trajectory {
	out := ResampleToDensity(path, speedProfileDensity)
	out = ComputeHeadingAndCurvature(out, 0)
	out = SmoothCurvatures(out, curvatureDataWeight, curvatureSmoothness, curvatureTolerance)

	for i := range out {
		k := out[i].Cost * 10
		var v float64
		switch {
		case k >= 9.5:
			v = maxSpeed
		case k <= 8.5:
			v = speedFactor
		default:
			v = ((maxSpeed-1)*(k-8.5) + 1) * speedFactor
		}
		out[i].V = math.Min(v, maxSpeed)
	}
	return out
}
