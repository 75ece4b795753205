// Package motionplan runs one local planning tick: it localizes the vehicle on its reference paths,
// cuts a smoothed working path around it and rolls out the candidate trajectories handed to the
// cost evaluator.
package motionplan

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/opplanner/config"
	"go.viam.com/opplanner/logging"
	"go.viam.com/opplanner/motionplan/lanesearch"
	"go.viam.com/opplanner/motionplan/rollout"
	"go.viam.com/opplanner/motionplan/trajectory"
	"go.viam.com/opplanner/obstacles"
	"go.viam.com/opplanner/roadnetwork"
	"go.viam.com/opplanner/spatialmath"
)

// maxRegenerateAngle bounds the heading difference between the vehicle and the map waypoint a
// regenerated reference starts from.
const maxRegenerateAngle = math.Pi / 4

// ShiftPosition is the gear the vehicle reports.
type ShiftPosition int

// Gear positions. The zero value is neutral.
const (
	ShiftNeutral ShiftPosition = iota
	ShiftPark
	ShiftReverse
	ShiftDrive
	ShiftBrake
	ShiftSport
	ShiftUnknown
)

func (s ShiftPosition) String() string {
	switch s {
	case ShiftNeutral:
		return "neutral"
	case ShiftPark:
		return "park"
	case ShiftReverse:
		return "reverse"
	case ShiftDrive:
		return "drive"
	case ShiftBrake:
		return "brake"
	case ShiftSport:
		return "sport"
	default:
		return "unknown"
	}
}

// VehicleState is the vehicle status sampled at the start of a tick.
type VehicleState struct {
	Speed     float64
	Steer     float64
	Shift     ShiftPosition
	Timestamp time.Time
}

// TickResult is everything one planning tick produces.
type TickResult struct {
	ID uuid.UUID
	// PlannedAt is when the tick started and Duration how long it took.
	PlannedAt time.Time
	Duration  time.Duration

	// ReferenceIndex is the reference path the vehicle was localized on, or -1 when the reference
	// was regenerated from the map.
	ReferenceIndex int
	Reference      trajectory.Trajectory
	Localization   trajectory.RelativeInfo

	WorkingPath trajectory.Trajectory
	Rollouts    *rollout.Result
	Costs       []rollout.TrajectoryCost

	// Objects are the detected objects within the horizon, with their contours filled in.
	Objects []obstacles.DetectedObject
}

// Regenerated reports whether the reference of the tick came from a map search.
func (r *TickResult) Regenerated() bool {
	return r.ReferenceIndex < 0
}

type mapSnapshot struct {
	net   *roadnetwork.RoadNetwork
	index *roadnetwork.Index
}

// LocalPlanner plans one tick at a time against the most recently loaded road network. Plan and
// UpdateMap may be called concurrently; each tick works on the network that was current when it
// started.
type LocalPlanner struct {
	params config.PlanningParams
	logger logging.Logger
	clock  clock.Clock
	snap   atomic.Pointer[mapSnapshot]
}

// NewLocalPlanner validates params and returns a planner over net, which may be nil when every
// tick is given usable reference paths.
func NewLocalPlanner(net *roadnetwork.RoadNetwork, params *config.PlanningParams, logger logging.Logger) (*LocalPlanner, error) {
	if params == nil {
		defaults := config.DefaultPlanningParams()
		params = &defaults
	}
	warnings, err := params.Validate("planning")
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn(w)
	}

	lp := &LocalPlanner{params: *params, logger: logger, clock: clock.New()}
	lp.UpdateMap(net)
	return lp, nil
}

// UpdateMap replaces the road network used by subsequent ticks. Ticks already running keep the
// network they started with.
func (lp *LocalPlanner) UpdateMap(net *roadnetwork.RoadNetwork) {
	if net == nil {
		lp.snap.Store(nil)
		return
	}
	lp.snap.Store(&mapSnapshot{net: net, index: roadnetwork.NewIndex(net)})
	lp.logger.Debugw("road network loaded", "lanes", len(net.Lanes), "waypoints", net.NumWayPoints())
}

// Params returns a copy of the planning parameters.
func (lp *LocalPlanner) Params() config.PlanningParams {
	return lp.params
}

// Plan runs one tick for a vehicle at pose. When the pose matches none of references, a reference
// is searched straight ahead from the closest map waypoint instead.
func (lp *LocalPlanner) Plan(
	ctx context.Context,
	state VehicleState,
	pose spatialmath.Point,
	references []trajectory.Trajectory,
	objects []obstacles.DetectedObject,
) (*TickResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := lp.snap.Load()
	params := &lp.params

	res := &TickResult{ID: uuid.New(), PlannedAt: lp.clock.Now()}
	info, err := trajectory.LocalizeOnTrajectorySet(references, pose, 0)
	switch {
	case err == nil:
		res.ReferenceIndex = info.GlobalPathIndex
		res.Reference = references[info.GlobalPathIndex]
	case errors.Is(err, trajectory.ErrNoCandidate) || errors.Is(err, trajectory.ErrEmptyInput):
		lp.logger.CDebugw(ctx, "vehicle is off every reference, searching the map", "references", len(references))
		ref, regenErr := lp.regenerate(snap, pose)
		if regenErr != nil {
			return nil, NewNoReferenceError(regenErr)
		}
		res.ReferenceIndex = -1
		res.Reference = ref
	default:
		return nil, NewPlannerFailedError("localize on the reference paths", err)
	}

	reference := res.Reference
	if params.EnableTrajectoryVelocities {
		reference = trajectory.ComputeCurvatureSpeedProfile(reference, params.MaxSpeed, params.SpeedProfileFactor)
	}

	res.WorkingPath, err = trajectory.ExtractPathAroundPose(reference, pose, params.HorizonDistance, params)
	if err != nil {
		return nil, NewPlannerFailedError("extract the working path", err)
	}
	res.Localization, err = trajectory.LocalizeOnTrajectory(res.WorkingPath, pose, 0)
	if err != nil {
		return nil, NewPlannerFailedError("localize on the working path", err)
	}
	res.Localization.GlobalPathIndex = res.ReferenceIndex

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Rollouts, err = rollout.Generate(res.WorkingPath, pose, state.Speed, params, lp.logger)
	if err != nil {
		return nil, NewPlannerFailedError("generate roll-outs", err)
	}
	res.Costs = rollout.NewTrajectoryCosts(res.Rollouts, res.ReferenceIndex)
	res.Objects = obstacles.ContourPoints(pose, objects, params.HorizonDistance)
	res.Duration = lp.clock.Since(res.PlannedAt)

	lp.logger.CDebugw(ctx, "planning tick done",
		"tick", res.ID,
		"duration", res.Duration,
		"reference", res.ReferenceIndex,
		"perp_distance", res.Localization.PerpDistance,
		"working_points", len(res.WorkingPath),
		"rollouts", len(res.Rollouts.Trajectories),
		"objects", len(res.Objects),
	)
	return res, nil
}

// regenerate searches a straight reference of HorizonDistance from the map waypoint closest to pose,
// preferring waypoints heading the same way as the vehicle.
func (lp *LocalPlanner) regenerate(snap *mapSnapshot, pose spatialmath.Point) (trajectory.Trajectory, error) {
	if snap == nil {
		return nil, ErrNoMap
	}
	start, ok := snap.index.ClosestAligned(pose, lp.params.HorizonDistance, maxRegenerateAngle)
	if !ok {
		start, ok = snap.index.Closest(pose, lp.params.HorizonDistance)
	}
	if !ok {
		return nil, errors.Errorf("no map waypoint within %.1fm of the vehicle", lp.params.HorizonDistance)
	}

	last, arena, err := lanesearch.SearchStraight(snap.net, start, lp.params.HorizonDistance)
	if err != nil {
		return nil, err
	}
	defer arena.Release()

	path := lanesearch.ReconstructPath(arena, last, 0, nil)
	if len(path) < 2 {
		return nil, trajectory.ErrInsufficientPoints
	}
	lp.logger.Debugw("reference regenerated", "lane", path[0].LaneID, "points", len(path))
	return path, nil
}
