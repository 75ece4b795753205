package lanesearch

import (
	"go.viam.com/opplanner/logging"
	"go.viam.com/opplanner/motionplan/trajectory"
	"go.viam.com/opplanner/roadnetwork"
	"go.viam.com/opplanner/spatialmath"
)

const (
	// alternativeSkipDistance is how much of the path after a lane change is left out of the
	// forward alternative.
	alternativeSkipDistance = 8.0
	// straightDetourDistance bounds the straight search that replaces a lane change.
	straightDetourDistance = 75.0
)

// SplitAtDirectionChanges turns a reconstructed path into driving alternatives. Every lane change in
// path spawns an alternative that follows path up to the lane change and then keeps straight on the
// current lane; those points carry a lane change cost of 1. The final alternative is path itself
// with the stretch right after each lane change left out, so the two lanes are stitched together.
func SplitAtDirectionChanges(net *roadnetwork.RoadNetwork, path trajectory.Trajectory, logger logging.Logger) []trajectory.Trajectory {
	if len(path) == 0 {
		return nil
	}

	var alternatives []trajectory.Trajectory
	forward := trajectory.Trajectory{path[0]}
	skipping := false
	var skipped float64
	for i := 1; i < len(path); i++ {
		wp := path[i]
		if wp.Dir != roadnetwork.Forward && len(wp.Fronts) > 0 && lanePresent(net, wp.Lane) {
			skipping = true
			if detour := straightDetour(net, path[i-1]); len(detour) > 2 {
				if detour[0].ID == forward[len(forward)-1].ID {
					detour = detour[1:]
				}
				alt := append(forward.Clone(), detour...)
				for k := range alt {
					alt[k].LaneChangeCost = 1
				}
				logger.Debugw("straight alternative", "lane", path[i-1].LaneID, "points", len(alt))
				alternatives = append(alternatives, alt)
			}
		}

		if skipping {
			skipped += spatialmath.Distance(path[i-1].Pos, wp.Pos)
			if skipped > alternativeSkipDistance {
				skipped = 0
				skipping = false
			}
		}
		if !skipping {
			forward = append(forward, wp)
		}
	}

	return append(alternatives, forward)
}

func lanePresent(net *roadnetwork.RoadNetwork, lane int) bool {
	return net != nil && lane >= 0 && lane < len(net.Lanes)
}

// straightDetour searches straight ahead on the lane of from, starting at the lane point in front
// of it.
func straightDetour(net *roadnetwork.RoadNetwork, from roadnetwork.WayPoint) trajectory.Trajectory {
	if !lanePresent(net, from.Lane) {
		return nil
	}
	points := trajectory.Trajectory(net.LanePoints(from.Lane))
	front := 0
	if len(points) > 1 {
		info, err := trajectory.LocalizeOnTrajectory(points, from.Pos, 0)
		if err != nil {
			return nil
		}
		front = info.Front
	}

	last, arena, err := SearchStraight(net, roadnetwork.NodeRef{Lane: from.Lane, Index: front}, straightDetourDistance)
	if err != nil {
		return nil
	}
	defer arena.Release()
	return ReconstructPath(arena, last, 0, nil)
}
