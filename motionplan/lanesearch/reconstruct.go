package lanesearch

import (
	"github.com/samber/lo"

	"go.viam.com/opplanner/motionplan/trajectory"
	"go.viam.com/opplanner/roadnetwork"
)

// ReconstructPath walks parent links back from goal to start and returns the waypoints in driving
// order. Where a node has several forward parents, one on a lane of route is preferred and the
// cheapest one otherwise. Every waypoint is tagged with the maneuver that reached it: nodes entered
// by a lane change get ForwardLeft or ForwardRight, the rest Forward. The walk also stops at a node
// without parents, so an unrelated start yields the path from the search root.
func ReconstructPath(arena *Arena, goal, start NodeID, route []roadnetwork.LaneID) trajectory.Trajectory {
	if arena == nil || goal == NoNode {
		return nil
	}

	var reversed trajectory.Trajectory
	id := goal
	for steps := 0; id != NoNode && steps <= arena.Len(); steps++ {
		n := arena.Node(id)
		wp := n.WayPoint
		next := NoNode
		switch {
		case id == start:
			wp.Dir = roadnetwork.Forward
		case len(n.Parents) > 0:
			wp.Dir = roadnetwork.Forward
			next = cheapestParent(arena, n.Parents, route)
		case n.LeftParent != NoNode:
			wp.Dir = roadnetwork.ForwardRight
			next = n.LeftParent
		case n.RightParent != NoNode:
			wp.Dir = roadnetwork.ForwardLeft
			next = n.RightParent
		}
		reversed = append(reversed, wp)
		id = next
	}

	path := make(trajectory.Trajectory, len(reversed))
	for i, wp := range reversed {
		path[len(reversed)-1-i] = wp
	}
	return path
}

func cheapestParent(arena *Arena, parents []NodeID, route []roadnetwork.LaneID) NodeID {
	onRoute := parents
	if len(route) > 0 {
		onRoute = lo.Filter(parents, func(id NodeID, _ int) bool {
			return lo.Contains(route, arena.Node(id).LaneID)
		})
		if len(onRoute) == 0 {
			onRoute = parents
		}
	}
	return lo.MinBy(onRoute, func(a, b NodeID) bool {
		return arena.Node(a).Cost < arena.Node(b).Cost
	})
}
