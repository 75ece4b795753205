package roadnetwork

import (
	"fmt"
	"math"

	"go.viam.com/opplanner/spatialmath"
)

// RoadNetwork is the arena owning every road segment, lane, waypoint, traffic light and stop line of
// a map. It is built once by a Builder and must not be mutated afterwards; planning reads it
// concurrently.
type RoadNetwork struct {
	Segments      []RoadSegment
	Lanes         []Lane
	TrafficLights []TrafficLight
	StopLines     []StopLine

	laneByID     map[LaneID]int
	stopLineByID map[StopLineID]int
}

// WayPoint returns the waypoint addressed by ref. It panics if ref does not address a waypoint of
// this network, since every NodeRef is produced by the network itself.
func (n *RoadNetwork) WayPoint(ref NodeRef) *WayPoint {
	if ref.Lane < 0 || ref.Lane >= len(n.Lanes) || ref.Index < 0 || ref.Index >= len(n.Lanes[ref.Lane].Points) {
		panic(fmt.Sprintf("waypoint reference %+v outside of road network", ref))
	}
	return &n.Lanes[ref.Lane].Points[ref.Index]
}

// LaneIndex returns the arena index of the lane with the given id.
func (n *RoadNetwork) LaneIndex(id LaneID) (int, bool) {
	idx, ok := n.laneByID[id]
	return idx, ok
}

// LaneByID returns the lane with the given id, or nil.
func (n *RoadNetwork) LaneByID(id LaneID) *Lane {
	idx, ok := n.laneByID[id]
	if !ok {
		return nil
	}
	return &n.Lanes[idx]
}

// StopLineByID returns the stop line with the given id, or nil.
func (n *RoadNetwork) StopLineByID(id StopLineID) *StopLine {
	idx, ok := n.stopLineByID[id]
	if !ok {
		return nil
	}
	return &n.StopLines[idx]
}

// LanePoints returns a copy of the waypoints of the lane at arena index lane.
func (n *RoadNetwork) LanePoints(lane int) []WayPoint {
	if lane < 0 || lane >= len(n.Lanes) {
		return nil
	}
	out := make([]WayPoint, len(n.Lanes[lane].Points))
	copy(out, n.Lanes[lane].Points)
	return out
}

// NumWayPoints returns the number of waypoints in the network.
func (n *RoadNetwork) NumWayPoints() int {
	var count int
	for i := range n.Lanes {
		count += len(n.Lanes[i].Points)
	}
	return count
}

// ClosestOnLane returns the index of the waypoint of lane closest to p, or -1 for an empty lane.
func (n *RoadNetwork) ClosestOnLane(lane int, p spatialmath.Point) int {
	return closestIndex(n.Lanes[lane].Points, p)
}

func closestIndex(points []WayPoint, p spatialmath.Point) int {
	best := -1
	bestD := math.Inf(1)
	for i := range points {
		d := spatialmath.DistanceSquared(points[i].Pos, p)
		if d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}
