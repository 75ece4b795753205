// Package lanesearch builds planning trees over the lane graph of a road network. Search nodes are
// copies of map waypoints held in an Arena that lives for one search; the map itself is never
// written to.
package lanesearch

import (
	"fmt"

	"go.viam.com/opplanner/roadnetwork"
	"go.viam.com/opplanner/spatialmath"
)

// NodeID addresses a node in an Arena.
type NodeID int

// NoNode marks a missing node.
const NoNode NodeID = -1

// Node is a search tree node. The embedded waypoint is a copy of the map waypoint at MapRef; its
// Cost holds the accumulated search cost and its Dir the maneuver chosen on reconstruction.
type Node struct {
	roadnetwork.WayPoint

	MapRef roadnetwork.NodeRef
	// Parents are the nodes this one was reached from by a forward edge.
	Parents []NodeID
	// LeftParent is set when the node was reached by a lane change to the right, RightParent when
	// it was reached by a lane change to the left.
	LeftParent  NodeID
	RightParent NodeID
}

// Arena owns every node created by one search invocation together with its visited sets.
type Arena struct {
	nodes        []Node
	visitedNodes map[roadnetwork.NodeRef]struct{}
	visitedLanes map[int]struct{}
}

func newArena() *Arena {
	return &Arena{
		visitedNodes: map[roadnetwork.NodeRef]struct{}{},
		visitedLanes: map[int]struct{}{},
	}
}

// Len returns the number of nodes in the arena.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Node returns the node with the given id. Asking for an id the arena never handed out is a
// programming error and panics.
func (a *Arena) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(a.nodes) {
		panic(fmt.Sprintf("search node %d does not exist in an arena of %d nodes", id, len(a.nodes)))
	}
	return &a.nodes[id]
}

// Release drops every node. The arena must not be used afterwards.
func (a *Arena) Release() {
	a.nodes = nil
	a.visitedNodes = nil
	a.visitedLanes = nil
}

func (a *Arena) visited(ref roadnetwork.NodeRef) bool {
	_, ok := a.visitedNodes[ref]
	return ok
}

func (a *Arena) laneVisited(lane int) bool {
	_, ok := a.visitedLanes[lane]
	return ok
}

// add copies the map waypoint at ref into a new node with the given cost.
func (a *Arena) add(net *roadnetwork.RoadNetwork, ref roadnetwork.NodeRef, cost float64) NodeID {
	id := NodeID(len(a.nodes))
	n := Node{
		WayPoint:    *net.WayPoint(ref),
		MapRef:      ref,
		LeftParent:  NoNode,
		RightParent: NoNode,
	}
	n.Cost = cost
	a.nodes = append(a.nodes, n)
	a.visitedNodes[ref] = struct{}{}
	a.visitedLanes[ref.Lane] = struct{}{}
	return id
}

// edgeCost is the cost of moving from one node onto the map waypoint to: the straight line
// distance plus every action cost declared on the target. The distance alone is returned too.
func edgeCost(from *Node, to *roadnetwork.WayPoint) (cost, dist float64) {
	dist = spatialmath.Distance(from.Pos, to.Pos)
	return dist + to.TotalActionCost(), dist
}

func validStart(net *roadnetwork.RoadNetwork, ref roadnetwork.NodeRef) bool {
	if net == nil || !ref.Valid() || ref.Lane >= len(net.Lanes) {
		return false
	}
	return ref.Index < len(net.Lanes[ref.Lane].Points)
}
