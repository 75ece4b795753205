package lanesearch

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/opplanner/logging"
	"go.viam.com/opplanner/roadnetwork"
	"go.viam.com/opplanner/spatialmath"
	"go.viam.com/opplanner/utils"
)

const (
	goalDistanceTolerance = 0.1
	goalAngleTolerance    = math.Pi / 4
)

// ErrNoStart is returned when the start of a search is not a waypoint of the network.
var ErrNoStart = errors.New("search start is not a map waypoint")

// Status tells how a goal directed search ended.
type Status int

// The ways a goal directed search can end.
const (
	// GoalReached means Result.Node is within tolerance of the goal.
	GoalReached Status = iota
	// BudgetExhausted means the distance budget ran out; Result.Node is the last expanded node.
	BudgetExhausted
	// GoalUnreachable means every reachable node was expanded without meeting the goal;
	// Result.Node is the expanded node closest to it.
	GoalUnreachable
)

func (s Status) String() string {
	switch s {
	case GoalReached:
		return "goal_reached"
	case BudgetExhausted:
		return "budget_exhausted"
	case GoalUnreachable:
		return "goal_unreachable"
	default:
		return "unknown"
	}
}

// Result is the outcome of SearchToGoal. The caller owns Arena and should Release it once the
// path has been reconstructed.
type Result struct {
	Status Status
	Node   NodeID
	Arena  *Arena
}

// frontier is the set of nodes waiting for expansion.
type frontier []NodeID

// popMin removes and returns the node with the lowest cost. Ties go to the node pushed first.
func (f *frontier) popMin(a *Arena) NodeID {
	best := 0
	for i := 1; i < len(*f); i++ {
		if a.Node((*f)[i]).Cost < a.Node((*f)[best]).Cost {
			best = i
		}
	}
	id := (*f)[best]
	*f = append((*f)[:best], (*f)[best+1:]...)
	return id
}

// popFirst removes and returns the node pushed earliest.
func (f *frontier) popFirst() NodeID {
	id := (*f)[0]
	*f = (*f)[1:]
	return id
}

// SearchToGoal runs a best first search over the lane graph from start toward goal. Forward edges
// are followed from nodes on a lane of route, or from every node when route is empty. Lane changes
// are followed into lanes the search hasn't entered yet when enableLaneChange is set. Without a
// route the search gives up once the length of all traversed edges exceeds distanceLimit.
func SearchToGoal(
	net *roadnetwork.RoadNetwork,
	start roadnetwork.NodeRef,
	goal spatialmath.Point,
	route []roadnetwork.LaneID,
	distanceLimit float64,
	enableLaneChange bool,
	logger logging.Logger,
) (Result, error) {
	if !validStart(net, start) {
		return Result{}, ErrNoStart
	}

	arena := newArena()
	open := frontier{arena.add(net, start, 0)}
	res := Result{Status: GoalUnreachable, Node: NoNode, Arena: arena}
	closest := math.Inf(1)

	var explored float64
	for len(open) > 0 {
		id := open.popMin(arena)
		current := *arena.Node(id)

		toGoal := spatialmath.Distance(current.Pos, goal)
		if toGoal < closest {
			closest = toGoal
			res.Node = id
		}
		if toGoal <= goalDistanceTolerance && utils.AngleBetweenTwoAnglesPositive(current.Pos.A, goal.A) < goalAngleTolerance {
			logger.Debugw("goal found", "lane", current.LaneID, "distance", toGoal, "nodes", arena.Len())
			res.Status = GoalReached
			res.Node = id
			return res, nil
		}

		if enableLaneChange {
			if current.Left != nil && !arena.laneVisited(current.Left.Lane) {
				cost, d := edgeCost(&current, net.WayPoint(*current.Left))
				explored += d
				next := arena.add(net, *current.Left, current.Cost+cost)
				arena.Node(next).RightParent = id
				open = append(open, next)
				logger.Debugw("lane change", "direction", "left", "from", current.LaneID, "to", arena.Node(next).LaneID)
			}
			if current.Right != nil && !arena.laneVisited(current.Right.Lane) {
				cost, d := edgeCost(&current, net.WayPoint(*current.Right))
				explored += d
				next := arena.add(net, *current.Right, current.Cost+cost)
				arena.Node(next).LeftParent = id
				open = append(open, next)
				logger.Debugw("lane change", "direction", "right", "from", current.LaneID, "to", arena.Node(next).LaneID)
			}
		}

		if len(route) == 0 || lo.Contains(route, current.LaneID) {
			for _, front := range current.Fronts {
				if arena.visited(front) {
					continue
				}
				cost, d := edgeCost(&current, net.WayPoint(front))
				explored += d
				next := arena.add(net, front, current.Cost+cost)
				arena.Node(next).Parents = []NodeID{id}
				open = append(open, next)
			}
		}

		if len(route) == 0 && explored > distanceLimit {
			logger.Debugw("search budget exhausted", "lane", current.LaneID, "explored", explored, "nodes", arena.Len())
			res.Status = BudgetExhausted
			res.Node = id
			return res, nil
		}
	}

	logger.Debugw("goal unreachable", "closest", closest, "nodes", arena.Len())
	return res, nil
}

// SearchStraight expands forward edges from start in order of cost, never creating nodes whose
// cost reaches distanceLimit, and returns the last node expanded.
func SearchStraight(net *roadnetwork.RoadNetwork, start roadnetwork.NodeRef, distanceLimit float64) (NodeID, *Arena, error) {
	if !validStart(net, start) {
		return NoNode, nil, ErrNoStart
	}

	arena := newArena()
	open := frontier{arena.add(net, start, 0)}
	last := NoNode
	for len(open) > 0 {
		id := open.popMin(arena)
		current := *arena.Node(id)
		for _, front := range current.Fronts {
			if arena.visited(front) {
				continue
			}
			cost, _ := edgeCost(&current, net.WayPoint(front))
			if current.Cost+cost >= distanceLimit {
				continue
			}
			next := arena.add(net, front, current.Cost+cost)
			arena.Node(next).Parents = []NodeID{id}
			open = append(open, next)
		}
		last = id
	}
	return last, arena, nil
}

// PredictiveDP expands forward edges from start in arrival order and returns the nodes at which
// the accumulated distance first reaches distanceLimit while the graph still continues. Each such
// node is reported once.
func PredictiveDP(net *roadnetwork.RoadNetwork, start roadnetwork.NodeRef, distanceLimit float64) ([]NodeID, *Arena, error) {
	if !validStart(net, start) {
		return nil, nil, ErrNoStart
	}

	arena := newArena()
	open := frontier{arena.add(net, start, 0)}
	var ends []NodeID
	for len(open) > 0 {
		id := open.popFirst()
		current := *arena.Node(id)
		for _, front := range current.Fronts {
			if arena.visited(front) {
				continue
			}
			if current.Cost >= distanceLimit {
				ends = append(ends, id)
				continue
			}
			d := spatialmath.Distance(current.Pos, net.WayPoint(front).Pos)
			next := arena.add(net, front, current.Cost+d)
			arena.Node(next).Parents = []NodeID{id}
			open = append(open, next)
		}
	}
	return lo.Uniq(ends), arena, nil
}
