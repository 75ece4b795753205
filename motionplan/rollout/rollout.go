// Package rollout generates the fan of laterally shifted trajectories the cost evaluator chooses
// from. Every roll-out starts at the vehicle's lateral position, blends toward its own target
// offset over a transition zone and then holds that offset.
package rollout

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/opplanner/config"
	"go.viam.com/opplanner/logging"
	"go.viam.com/opplanner/motionplan/trajectory"
	"go.viam.com/opplanner/roadnetwork"
	"go.viam.com/opplanner/spatialmath"
	"go.viam.com/opplanner/utils"
)

const (
	// laneChangeSpeedFactor derates the speed of every roll-out but the central one.
	laneChangeSpeedFactor = 0.5
	// tipLimitSpacing is the point spacing the tip limit index is expressed in.
	tipLimitSpacing = 0.3
)

var (
	// ErrEmptyReference is returned when there is no reference path to roll out from.
	ErrEmptyReference = errors.New("reference path is empty")
	// ErrNoParams is returned when Generate is called without planning parameters.
	ErrNoParams = errors.New("no planning parameters given")
)

// Result is a generated family of roll-outs. Trajectories are ordered by increasing lateral offset
// and Trajectories[CentralIndex] follows the reference path.
type Result struct {
	Trajectories []trajectory.Trajectory
	// EndLaterals holds the target lateral offset of each trajectory. Positive is to the right of
	// the reference heading.
	EndLaterals  []float64
	CentralIndex int

	// StartIndex is the reference index the vehicle was localized behind.
	StartIndex int
	// EndIndex is where the lateral transition ends.
	EndIndex            int
	SmoothingStartIndex int
	SmoothingEndIndex   int

	// SampledPoints are all generated points before smoothing.
	SampledPoints trajectory.Trajectory
}

// Generate rolls out params.RollOutNumber+1 trajectories around reference for a vehicle at pose
// driving at speed. The length of the lateral transition grows with speed; after it the
// trajectories run parallel to the reference up to params.MicroPlanDistance past the smoothing
// tail. Points closer to the vehicle than the car tip margin keep their unsmoothed position.
// params are validated first.
func Generate(
	reference trajectory.Trajectory,
	pose spatialmath.Point,
	speed float64,
	params *config.PlanningParams,
	logger logging.Logger,
) (*Result, error) {
	if params == nil {
		return nil, ErrNoParams
	}
	if _, err := params.Validate("rollout"); err != nil {
		return nil, err
	}
	if len(reference) == 0 {
		return nil, ErrEmptyReference
	}
	info, err := trajectory.LocalizeOnTrajectory(reference, pose, 0)
	if err != nil {
		return nil, errors.Wrap(err, "cannot localize on the reference path")
	}

	last := len(reference) - 1
	tipLimit := last
	if params.PathDensity > 0 {
		tipLimit = int((params.CarTipMargin / tipLimitSpacing) / params.PathDensity)
		if tipLimit > last {
			tipLimit = last
		}
	}

	start := info.Back
	initialLateral := info.PerpDistance

	remaining := lengthAhead(reference, start)
	commit := math.Min(params.RollInSpeedFactor*speed+params.RollInMargin, remaining)

	end := indexAfter(reference, start, func(d float64) bool { return d >= commit })
	smoothingStart := utils.MinInt(end, indexAfter(reference, start, func(d float64) bool { return d > params.CarTipMargin }))
	smoothingEnd := indexAfter(reference, end, func(d float64) bool { return d > params.CarTipMargin })

	central := params.RollOutNumber / 2
	res := &Result{
		Trajectories:        make([]trajectory.Trajectory, params.RollOutNumber+1),
		EndLaterals:         make([]float64, params.RollOutNumber+1),
		CentralIndex:        central,
		StartIndex:          start,
		EndIndex:            end,
		SmoothingStartIndex: smoothingStart,
		SmoothingEndIndex:   smoothingEnd,
	}

	for i := range res.Trajectories {
		endLateral := params.RollOutDensity * float64(i-central)
		res.EndLaterals[i] = endLateral

		var excluded, body trajectory.Trajectory
		push := func(j int, lateral float64, exclude bool) {
			wp := shifted(reference[j], lateral)
			if i != central {
				wp.V *= laneChangeSpeedFactor
			}
			res.SampledPoints = append(res.SampledPoints, wp)
			if exclude {
				excluded = append(excluded, wp)
			} else {
				body = append(body, wp)
			}
		}

		for j := start; j < smoothingStart; j++ {
			push(j, initialLateral, j < tipLimit)
		}

		var inc float64
		if steps := end - smoothingStart; steps > 0 {
			inc = (endLateral - initialLateral) / float64(steps)
		}
		lateral := initialLateral
		for j := smoothingStart; j < end; j++ {
			lateral += inc
			push(j, lateral, false)
		}

		for j := end; j < smoothingEnd; j++ {
			push(j, endLateral, false)
		}

		var d float64
		for j := smoothingEnd; j <= last; j++ {
			if j > 0 {
				d += distance(reference, j-1, j)
			}
			if d > params.MicroPlanDistance {
				break
			}
			push(j, endLateral, false)
		}

		if len(body) > 2 {
			body, err = trajectory.SmoothPositions(body, params.SmoothingDataWeight, params.SmoothingSmoothWeight, params.SmoothingToleranceError)
			if err != nil {
				return nil, err
			}
		}
		res.Trajectories[i], _ = trajectory.ComputeHeadingAndArcCost(append(excluded, body...), 0)
	}

	logger.Debugw("generated roll-outs",
		"count", len(res.Trajectories),
		"start", start,
		"end", end,
		"smoothing_start", smoothingStart,
		"smoothing_end", smoothingEnd,
		"initial_lateral", initialLateral,
	)
	return res, nil
}

// shifted returns wp moved sideways by lateral metres, positive to the right of its heading.
func shifted(wp roadnetwork.WayPoint, lateral float64) roadnetwork.WayPoint {
	a := wp.Pos.A + math.Pi/2
	wp.Pos.X -= lateral * math.Cos(a)
	wp.Pos.Y -= lateral * math.Sin(a)
	return wp
}

func distance(t trajectory.Trajectory, i, j int) float64 {
	return spatialmath.Distance(t[i].Pos, t[j].Pos)
}

func lengthAhead(t trajectory.Trajectory, from int) float64 {
	var d float64
	for i := from; i < len(t)-1; i++ {
		d += distance(t, i, i+1)
	}
	return d
}

// indexAfter walks t from index from, adding the segment leading into every visited index, and
// returns the first index at which done holds for the accumulated distance. It returns the last
// index if done never holds.
func indexAfter(t trajectory.Trajectory, from int, done func(float64) bool) int {
	var d float64
	for i := from; i < len(t); i++ {
		if i > 0 {
			d += distance(t, i-1, i)
		}
		if done(d) {
			return i
		}
	}
	return len(t) - 1
}
