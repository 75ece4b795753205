package trajectory

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"go.viam.com/opplanner/roadnetwork"
)

// maxSmoothingIterations bounds every smoothing loop. Reaching it returns the current state.
const maxSmoothingIterations = 10000

// SmoothPositions pulls every interior point toward its original position by dataWeight and toward
// the midpoint of its neighbours by smoothWeight, repeating until the summed positional change of
// one sweep drops below tolerance. Endpoints never move. Paths with two points or fewer return
// ErrTooShortToSmooth together with an unchanged copy.
func SmoothPositions(path Trajectory, dataWeight, smoothWeight, tolerance float64) (Trajectory, error) {
	out := path.Clone()
	if len(path) <= 2 {
		return out, ErrTooShortToSmooth
	}

	deltas := make([]float64, 2*(len(out)-2))
	for iter := 0; iter < maxSmoothingIterations; iter++ {
		for i := 1; i < len(out)-1; i++ {
			x, y := out[i].Pos.X, out[i].Pos.Y
			x += dataWeight * (path[i].Pos.X - x)
			y += dataWeight * (path[i].Pos.Y - y)
			x += smoothWeight * (out[i-1].Pos.X + out[i+1].Pos.X - 2*x)
			y += smoothWeight * (out[i-1].Pos.Y + out[i+1].Pos.Y - 2*y)
			deltas[2*(i-1)] = x - out[i].Pos.X
			deltas[2*(i-1)+1] = y - out[i].Pos.Y
			out[i].Pos.X = x
			out[i].Pos.Y = y
		}
		if floats.Norm(deltas, 1) < tolerance {
			break
		}
	}
	return out, nil
}

// SmoothSpeeds smooths the speed channel of path with the positional smoothing rule.
func SmoothSpeeds(path Trajectory, dataWeight, smoothWeight, tolerance float64) Trajectory {
	return smoothChannel(path, dataWeight, smoothWeight, tolerance,
		func(wp *roadnetwork.WayPoint) *float64 { return &wp.V })
}

// SmoothHeadings smooths the heading channel of path. Headings are treated as plain numbers, so
// callers should pass paths whose headings don't wrap around.
func SmoothHeadings(path Trajectory, dataWeight, smoothWeight, tolerance float64) Trajectory {
	return smoothChannel(path, dataWeight, smoothWeight, tolerance,
		func(wp *roadnetwork.WayPoint) *float64 { return &wp.Pos.A })
}

// SmoothCurvatures smooths the cost channel of path, which holds curvature after
// ComputeHeadingAndCurvature.
func SmoothCurvatures(path Trajectory, dataWeight, smoothWeight, tolerance float64) Trajectory {
	return smoothChannel(path, dataWeight, smoothWeight, tolerance,
		func(wp *roadnetwork.WayPoint) *float64 { return &wp.Cost })
}

func smoothChannel(
	path Trajectory,
	dataWeight, smoothWeight, tolerance float64,
	channel func(*roadnetwork.WayPoint) *float64,
) Trajectory {
	out := path.Clone()
	if len(path) <= 2 {
		return out
	}

	orig := make([]float64, len(path))
	for i := range path {
		orig[i] = *channel(&path[i])
	}

	for iter := 0; iter < maxSmoothingIterations; iter++ {
		var change float64
		for i := 1; i < len(out)-1; i++ {
			v := channel(&out[i])
			aux := *v
			*v += dataWeight * (orig[i] - *v)
			*v += smoothWeight * (*channel(&out[i-1]) + *channel(&out[i+1]) - 2*(*v))
			change += math.Abs(aux - *v)
		}
		if change < tolerance {
			break
		}
	}
	return out
}
