// Package trajectory implements the geometric queries and transforms applied to ordered waypoint
// sequences: localization of a pose, arc length, resampling, smoothing, heading and curvature
// annotation, and curvature-based speed profiles.
//
// Every function treats its input as read only and returns a new Trajectory.
package trajectory

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/opplanner/roadnetwork"
	"go.viam.com/opplanner/spatialmath"
)

var (
	// ErrInsufficientPoints is returned when a trajectory is too short for the requested query.
	ErrInsufficientPoints = errors.New("trajectory has too few points")
	// ErrEmptyInput is returned when a set of trajectories is empty.
	ErrEmptyInput = errors.New("no trajectories given")
	// ErrNoCandidate is returned when no trajectory survives a filter.
	ErrNoCandidate = errors.New("no trajectory matches the pose")
	// ErrTooShortToSmooth is returned when a path has two points or fewer. Callers may skip smoothing.
	ErrTooShortToSmooth = errors.New("path too short to smooth")
)

// Trajectory is an ordered sequence of waypoints annotated with speed and cost.
type Trajectory []roadnetwork.WayPoint

// Clone returns a copy of the trajectory.
func (t Trajectory) Clone() Trajectory {
	if t == nil {
		return nil
	}
	out := make(Trajectory, len(t))
	copy(out, t)
	return out
}

// Length returns the polyline length of the trajectory.
func (t Trajectory) Length() float64 {
	return floats.Sum(t.segmentLengths())
}

// segmentLengths returns the length of every segment; element i is the distance from point i to i+1.
func (t Trajectory) segmentLengths() []float64 {
	if len(t) < 2 {
		return nil
	}
	out := make([]float64, len(t)-1)
	for i := range out {
		out[i] = spatialmath.Distance(t[i].Pos, t[i+1].Pos)
	}
	return out
}

// lengthBetween returns the polyline length from point `from` to point `to`, with from <= to.
func (t Trajectory) lengthBetween(from, to int) float64 {
	var d float64
	for i := from; i < to; i++ {
		d += spatialmath.Distance(t[i].Pos, t[i+1].Pos)
	}
	return d
}

// RelativeInfo is the localization of a pose against a trajectory.
type RelativeInfo struct {
	// PerpDistance is the signed perpendicular offset of the trajectory from the pose, positive when
	// the trajectory passes to the left of the pose.
	PerpDistance float64
	// ToFrontDistance is the along-track distance from the pose to the Front point.
	ToFrontDistance float64
	// FromBackDistance is the distance from the Back point to the perpendicular foot.
	FromBackDistance float64
	Front            int
	Back             int
	// GlobalPathIndex is the index of the trajectory within the set it was chosen from.
	GlobalPathIndex int
	// PerpPoint is the foot of the perpendicular from the pose onto the trajectory.
	PerpPoint roadnetwork.WayPoint
	// AngleDiff is the heading difference between trajectory and pose in degrees.
	AngleDiff float64
}
