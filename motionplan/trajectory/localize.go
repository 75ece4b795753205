package trajectory

import (
	"math"

	"go.viam.com/opplanner/roadnetwork"
	"go.viam.com/opplanner/spatialmath"
	"go.viam.com/opplanner/utils"
)

const (
	maxDirectionDiffDeg = 45.0
	maxSetAngleDiffDeg  = 75.0
)

// ClosestNextPointIndex returns the index of the trajectory point closest to p, searching from
// start onward. When p lies ahead of the closest point, the following index is returned instead so
// that the result prefers the point in front of the vehicle. Empty trajectories and negative start
// indices yield 0.
func ClosestNextPointIndex(traj Trajectory, p spatialmath.Point, start int) int {
	return closestNextPointIndex(traj, p, start, false)
}

// ClosestNextPointIndexDirection is like ClosestNextPointIndex but ignores points whose heading
// differs from p's by 45 degrees or more.
func ClosestNextPointIndexDirection(traj Trajectory, p spatialmath.Point, start int) int {
	return closestNextPointIndex(traj, p, start, true)
}

func closestNextPointIndex(traj Trajectory, p spatialmath.Point, start int, checkDirection bool) int {
	if len(traj) == 0 || start < 0 {
		return 0
	}

	minD := math.Inf(1)
	minIndex := start
	for i := start; i < len(traj); i++ {
		if checkDirection && utils.RadToDeg(utils.AngleBetweenTwoAnglesPositive(traj[i].Pos.A, p.A)) >= maxDirectionDiffDeg {
			continue
		}
		if d := spatialmath.DistanceSquared(traj[i].Pos, p); d < minD {
			minIndex = i
			minD = d
		}
	}
	if minIndex >= len(traj) {
		minIndex = len(traj) - 1
	}

	if minIndex < len(traj)-2 {
		curr := traj[minIndex].Pos
		next := traj[minIndex+1].Pos
		v1x, v1y := p.X-curr.X, p.Y-curr.Y
		v2x, v2y := next.X-curr.X, next.Y-curr.Y
		norms := math.Hypot(v1x, v1y) * math.Hypot(v2x, v2y)
		if norms > 0 {
			cos := math.Max(-1, math.Min(1, (v1x*v2x+v1y*v2y)/norms))
			if math.Acos(cos) <= math.Pi/2 {
				minIndex++
			}
		}
	}

	return minIndex
}

// LocalizeOnTrajectory localizes pose against traj, searching for the closest point from start onward.
func LocalizeOnTrajectory(traj Trajectory, pose spatialmath.Point, start int) (RelativeInfo, error) {
	return localize(traj, pose, start, false)
}

// LocalizeOnTrajectoryDirection is like LocalizeOnTrajectory but uses the heading aware closest
// point search, for maps where lanes run antiparallel at the same location.
func LocalizeOnTrajectoryDirection(traj Trajectory, pose spatialmath.Point, start int) (RelativeInfo, error) {
	return localize(traj, pose, start, true)
}

func localize(traj Trajectory, pose spatialmath.Point, start int, checkDirection bool) (RelativeInfo, error) {
	var info RelativeInfo
	if len(traj) < 2 {
		return info, ErrInsufficientPoints
	}

	var p0, p1 roadnetwork.WayPoint
	if len(traj) == 2 {
		p0 = traj[0]
		p1 = midpoint(traj[0], traj[1], traj[0].Pos.A)
		info.Front = 1
		info.Back = 0
	} else {
		info.Front = closestNextPointIndex(traj, pose, start, checkDirection)
		if info.Front > 0 {
			info.Back = info.Front - 1
		}

		switch {
		case info.Front == 0:
			p0 = traj[0]
			p1 = traj[1]
		case info.Front < len(traj)-1:
			p0 = traj[info.Front-1]
			p1 = traj[info.Front]
		default:
			// past the last point: use the middle of the last segment with the previous heading
			p0 = traj[info.Front-1]
			p1 = midpoint(p0, traj[info.Front], p0.Pos.A)
		}
	}

	frame := spatialmath.BodyFrame(pose, p1.Pos.A)
	body0 := frame.Apply(p0.Pos)
	body1 := frame.Apply(p1.Pos)

	// a zero length segment has no defined offset; treat the pose as on the line
	perp, err := spatialmath.SegmentOffset(body0, body1)
	if err != nil {
		perp = 0
	}
	info.PerpDistance = perp
	info.ToFrontDistance = math.Abs(body1.X)

	info.PerpPoint = p1
	foot := body1
	foot.X = 0
	foot.Y = perp
	info.PerpPoint.Pos = frame.Inverse().Apply(foot)

	info.FromBackDistance = spatialmath.Distance(p0.Pos, info.PerpPoint.Pos)
	info.AngleDiff = utils.RadToDeg(utils.AngleBetweenTwoAnglesPositive(p1.Pos.A, pose.A))

	return info, nil
}

func midpoint(a, b roadnetwork.WayPoint, heading float64) roadnetwork.WayPoint {
	m := a
	m.Pos = spatialmath.Point{
		X: (a.Pos.X + b.Pos.X) / 2,
		Y: (a.Pos.Y + b.Pos.Y) / 2,
		Z: (a.Pos.Z + b.Pos.Z) / 2,
		A: heading,
	}
	return m
}

// LocalizeOnTrajectorySet localizes pose on every trajectory and picks one of them. Trajectories
// whose heading differs from the pose by 75 degrees or more are discarded. Among the rest, when
// searchDistance is positive the one with the lowest lane change cost within searchDistance of
// perpendicular offset wins; otherwise the smallest absolute offset wins. GlobalPathIndex of the
// result names the chosen trajectory.
func LocalizeOnTrajectorySet(trajs []Trajectory, pose spatialmath.Point, searchDistance float64) (RelativeInfo, error) {
	if len(trajs) == 0 {
		return RelativeInfo{}, ErrEmptyInput
	}

	var infos []RelativeInfo
	for i, traj := range trajs {
		info, err := LocalizeOnTrajectory(traj, pose, 0)
		if err != nil {
			continue
		}
		if info.AngleDiff < maxSetAngleDiffDeg {
			info.GlobalPathIndex = i
			infos = append(infos, info)
		}
	}

	switch len(infos) {
	case 0:
		return RelativeInfo{}, ErrNoCandidate
	case 1:
		return infos[0], nil
	}

	minCost := math.Inf(1)
	minIndex := 0
	for i, info := range infos {
		perp := math.Abs(info.PerpDistance)
		if searchDistance > 0 {
			laneChangeCost := trajs[info.GlobalPathIndex][info.Front].LaneChangeCost
			if perp < searchDistance && laneChangeCost < minCost {
				minIndex = i
				minCost = laneChangeCost
			}
		} else if perp < minCost {
			minIndex = i
			minCost = perp
		}
	}

	return infos[minIndex], nil
}

// ArcLengthBetween returns the signed distance along traj from a to b: positive when b lies ahead
// of a, negative when it lies behind. Localizations whose brackets overlap without coinciding are
// ambiguous and yield 0.
func ArcLengthBetween(traj Trajectory, a, b RelativeInfo) float64 {
	if len(traj) == 0 {
		return 0
	}

	switch {
	case a.Front == b.Front && a.Back == b.Back:
		return a.ToFrontDistance - b.ToFrontDistance
	case b.Back >= a.Front:
		return a.ToFrontDistance + b.FromBackDistance + traj.lengthBetween(a.Front, b.Back)
	case b.Front <= a.Back:
		return -(a.FromBackDistance + b.ToFrontDistance + traj.lengthBetween(b.Front, a.Back))
	default:
		return 0
	}
}
