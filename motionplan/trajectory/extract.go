package trajectory

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/opplanner/config"
	"go.viam.com/opplanner/roadnetwork"
	"go.viam.com/opplanner/spatialmath"
)

// extractBacktrack is how many points behind the closest one an extracted window starts.
const extractBacktrack = 5

// ExtractPathAroundPose returns a working trajectory cut from path: it starts a few points behind
// the point closest to pose and ends once it is longer than minDistance. The window is resampled to
// params.PathDensity, smoothed and annotated with headings and arc length.
func ExtractPathAroundPose(
	path Trajectory,
	pose spatialmath.Point,
	minDistance float64,
	params *config.PlanningParams,
) (Trajectory, error) {
	if len(path) < 2 {
		return nil, ErrInsufficientPoints
	}

	start := ClosestNextPointIndexDirection(path, pose, 0) - extractBacktrack
	if start < 0 {
		start = 0
	}

	var window Trajectory
	var d float64
	for i := start; i < len(path); i++ {
		if i > start {
			d += spatialmath.Distance(path[i-1].Pos, path[i].Pos)
		}
		window = append(window, path[i])
		if d > minDistance {
			break
		}
	}
	if len(window) < 2 {
		return nil, ErrInsufficientPoints
	}

	window = ResampleToDensity(window, params.PathDensity)
	smoothed, err := SmoothPositions(window, params.SmoothingDataWeight, params.SmoothingSmoothWeight, params.SmoothingToleranceError)
	if err != nil && !errors.Is(err, ErrTooShortToSmooth) {
		return nil, err
	}
	out, _ := ComputeHeadingAndArcCost(smoothed, 0)
	return out, nil
}

// FollowPointOnTrajectory returns the point distance metres ahead of the localization info along
// traj, together with the index of the trajectory point it was derived from. Past the end of traj
// the point continues along the last heading. An empty trajectory yields the zero value.
func FollowPointOnTrajectory(traj Trajectory, info RelativeInfo, distance float64) (roadnetwork.WayPoint, int) {
	if len(traj) == 0 {
		return roadnetwork.WayPoint{}, 0
	}
	last := len(traj) - 1
	front := info.Front
	if front > last {
		front = last
	}

	if (front == 0 && info.Back == 0 && info.FromBackDistance > distance) || front == last {
		wp := traj[front]
		wp.Pos = offsetAlong(info.PerpPoint.Pos, traj[front].Pos.A, distance)
		wp.Pos.A = traj[front].Pos.A
		return wp, front
	}

	i := front
	d := info.ToFrontDistance
	for i < last && d < distance {
		d += spatialmath.Distance(traj[i].Pos, traj[i+1].Pos)
		i++
	}

	heading := traj[i].Pos.A
	if i > 0 && !spatialmath.Coincident(traj[i-1].Pos, traj[i].Pos) {
		heading = spatialmath.Bearing(traj[i-1].Pos, traj[i].Pos)
	}
	wp := traj[i]
	wp.Pos = offsetAlong(traj[i].Pos, heading, distance-d)
	wp.Pos.A = traj[i].Pos.A
	return wp, i
}

func offsetAlong(p spatialmath.Point, heading, d float64) spatialmath.Point {
	p.X += d * math.Cos(heading)
	p.Y += d * math.Sin(heading)
	return p
}

// VelocityAhead returns the lowest speed found on path from the pose up to distance metres ahead.
// Paths with a single point yield that point's speed; empty paths yield 0.
func VelocityAhead(path Trajectory, pose spatialmath.Point, distance float64) float64 {
	switch len(path) {
	case 0:
		return 0
	case 1:
		return path[0].V
	}
	info, err := LocalizeOnTrajectory(path, pose, 0)
	if err != nil {
		return 0
	}

	minV := path[info.Back].V
	d := info.ToFrontDistance
	for i := info.Front; i < len(path) && d < distance; i++ {
		minV = math.Min(minV, path[i].V)
		if i < len(path)-1 {
			d += spatialmath.Distance(path[i].Pos, path[i+1].Pos)
		}
	}
	return minV
}

// StopLineHit describes the first stop line ahead of a pose on a path.
type StopLineHit struct {
	StopLineID     roadnetwork.StopLineID
	StopSignID     int
	TrafficLightID roadnetwork.TrafficLightID
	// Distance is the arc length from the pose to the stop line.
	Distance float64
}

// DistanceToClosestStopLine finds the first stop line ahead of pose on path. Waypoints reference
// stop lines of net by id; the stop line's first point is localized on path to measure the
// distance. Stop lines at or behind the pose are skipped.
func DistanceToClosestStopLine(
	path Trajectory,
	pose spatialmath.Point,
	net *roadnetwork.RoadNetwork,
	start int,
) (StopLineHit, bool) {
	if net == nil {
		return StopLineHit{}, false
	}
	info, err := LocalizeOnTrajectory(path, pose, start)
	if err != nil {
		return StopLineHit{}, false
	}

	for i := info.Back; i < len(path); i++ {
		if path[i].StopLineID <= 0 {
			continue
		}
		sl := net.StopLineByID(path[i].StopLineID)
		if sl == nil || len(sl.Points) == 0 {
			continue
		}
		stopInfo, err := LocalizeOnTrajectory(path, sl.Points[0], 0)
		if err != nil {
			continue
		}
		if d := ArcLengthBetween(path, info, stopInfo); d > 0 {
			return StopLineHit{
				StopLineID:     sl.ID,
				StopSignID:     sl.StopSignID,
				TrafficLightID: sl.TrafficLightID,
				Distance:       d,
			}, true
		}
	}
	return StopLineHit{}, false
}

// CompareTrajectories reports whether two trajectories have the same points, comparing speed,
// planar position and geodetic fields.
func CompareTrajectories(a, b Trajectory) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].V != b[i].V ||
			a[i].Pos.X != b[i].Pos.X ||
			a[i].Pos.Y != b[i].Pos.Y ||
			a[i].Pos.Alt != b[i].Pos.Alt ||
			a[i].Pos.Lon != b[i].Pos.Lon {
			return false
		}
	}
	return true
}

// UniqueSideLaneIDs returns the ids of every lane to the left or right of some point on path, in
// order of first appearance.
func UniqueSideLaneIDs(path Trajectory) []roadnetwork.LaneID {
	var ids []roadnetwork.LaneID
	for _, wp := range path {
		if wp.LeftLaneID > 0 {
			ids = append(ids, wp.LeftLaneID)
		}
		if wp.RightLaneID > 0 {
			ids = append(ids, wp.RightLaneID)
		}
	}
	return lo.Uniq(ids)
}
