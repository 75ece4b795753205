package roadnetwork

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Builder collects map items keyed by identifier and resolves their links into a RoadNetwork.
type Builder struct {
	segments  []RoadSegment
	lanes     []Lane
	lights    []TrafficLight
	stopLines []StopLine
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddRoadSegment registers a road segment. Its Lanes field is filled in by Build.
func (b *Builder) AddRoadSegment(seg RoadSegment) *Builder {
	b.segments = append(b.segments, seg)
	return b
}

// AddLane registers a lane together with its ordered waypoints.
func (b *Builder) AddLane(lane Lane) *Builder {
	b.lanes = append(b.lanes, lane)
	return b
}

// AddTrafficLight registers a traffic light.
func (b *Builder) AddTrafficLight(tl TrafficLight) *Builder {
	b.lights = append(b.lights, tl)
	return b
}

// AddStopLine registers a stop line.
func (b *Builder) AddStopLine(sl StopLine) *Builder {
	b.stopLines = append(b.stopLines, sl)
	return b
}

type laneLink struct {
	from, to int
}

// Build copies everything registered so far into a new RoadNetwork and links it:
//   - consecutive waypoints of a lane are fronts/backs of each other
//   - the last waypoint of a lane is a back of the first waypoint of every lane it leads to
//   - each waypoint naming a left or right lane gets the closest waypoint of that lane as neighbour
//   - stop lines and traffic lights are attached to their lanes
//
// Links naming unknown lanes are ignored.
func (b *Builder) Build() (*RoadNetwork, error) {
	net := &RoadNetwork{
		Segments:      make([]RoadSegment, len(b.segments)),
		Lanes:         make([]Lane, len(b.lanes)),
		TrafficLights: make([]TrafficLight, len(b.lights)),
		StopLines:     make([]StopLine, len(b.stopLines)),
		laneByID:      make(map[LaneID]int, len(b.lanes)),
		stopLineByID:  make(map[StopLineID]int, len(b.stopLines)),
	}

	roadByID := make(map[RoadID]int, len(b.segments))
	for i, seg := range b.segments {
		if _, dup := roadByID[seg.ID]; dup {
			return nil, errors.Errorf("duplicate road segment id %d", seg.ID)
		}
		roadByID[seg.ID] = i
		seg.Lanes = nil
		net.Segments[i] = seg
	}
	for i := range net.Segments {
		seg := &net.Segments[i]
		seg.FromRoads = resolve(seg.FromIDs, roadByID)
		seg.ToRoads = resolve(seg.ToIDs, roadByID)
	}

	var maxID WayPointID
	for i, lane := range b.lanes {
		if lane.ID == 0 {
			return nil, errors.Errorf("lane at position %d has no id", i)
		}
		if _, dup := net.laneByID[lane.ID]; dup {
			return nil, errors.Errorf("duplicate lane id %d", lane.ID)
		}
		if len(lane.Points) == 0 {
			return nil, errors.Errorf("lane %d has no waypoints", lane.ID)
		}
		net.laneByID[lane.ID] = i
		lane.Points = append([]WayPoint(nil), lane.Points...)
		lane.StopLines = nil
		lane.TrafficLights = nil
		net.Lanes[i] = lane
		for _, wp := range lane.Points {
			if wp.ID > maxID {
				maxID = wp.ID
			}
		}
	}

	var links []laneLink
	for i := range net.Lanes {
		lane := &net.Lanes[i]
		lane.Road = -1
		if r, ok := roadByID[lane.RoadID]; ok {
			lane.Road = r
			net.Segments[r].Lanes = append(net.Segments[r].Lanes, i)
		}
		lane.LeftLane = lookup(lane.LeftLaneID, net.laneByID)
		lane.RightLane = lookup(lane.RightLaneID, net.laneByID)

		for _, to := range resolve(lane.ToIDs, net.laneByID) {
			links = append(links, laneLink{from: i, to: to})
		}
		for _, from := range resolve(lane.FromIDs, net.laneByID) {
			links = append(links, laneLink{from: from, to: i})
		}

		for j := range lane.Points {
			wp := &lane.Points[j]
			wp.Lane = i
			wp.LaneID = lane.ID
			wp.Rot = HeadingRotation(wp.Pos.A)
			if wp.ID == 0 {
				maxID++
				wp.ID = maxID
			}
			if wp.LeftLaneID == 0 {
				wp.LeftLaneID = lane.LeftLaneID
			}
			if wp.RightLaneID == 0 {
				wp.RightLaneID = lane.RightLaneID
			}
			wp.Fronts = nil
			wp.Backs = nil
			wp.Left = nil
			wp.Right = nil
			if j > 0 {
				wp.Backs = append(wp.Backs, NodeRef{Lane: i, Index: j - 1})
			}
			if j < len(lane.Points)-1 {
				wp.Fronts = append(wp.Fronts, NodeRef{Lane: i, Index: j + 1})
			}
		}
	}

	for i := range net.Lanes {
		net.Lanes[i].FromLanes = nil
		net.Lanes[i].ToLanes = nil
	}
	for _, link := range lo.Uniq(links) {
		from := &net.Lanes[link.from]
		to := &net.Lanes[link.to]
		from.ToLanes = append(from.ToLanes, link.to)
		to.FromLanes = append(to.FromLanes, link.from)

		last := len(from.Points) - 1
		from.Points[last].Fronts = append(from.Points[last].Fronts, NodeRef{Lane: link.to, Index: 0})
		to.Points[0].Backs = append(to.Points[0].Backs, NodeRef{Lane: link.from, Index: last})
	}

	for i := range net.Lanes {
		for j := range net.Lanes[i].Points {
			wp := &net.Lanes[i].Points[j]
			wp.Left = net.neighbour(wp, wp.LeftLaneID)
			wp.Right = net.neighbour(wp, wp.RightLaneID)
		}
	}

	for i, sl := range b.stopLines {
		if sl.ID <= 0 {
			return nil, errors.Errorf("stop line at position %d must have a positive id", i)
		}
		sl.Lane = lookup(sl.LaneID, net.laneByID)
		net.StopLines[i] = sl
		net.stopLineByID[sl.ID] = i
		if sl.Lane < 0 {
			continue
		}
		lane := &net.Lanes[sl.Lane]
		lane.StopLines = append(lane.StopLines, sl.ID)
		if len(sl.Points) > 0 {
			if closest := closestIndex(lane.Points, sl.Points[0]); closest >= 0 {
				lane.Points[closest].StopLineID = sl.ID
			}
		}
	}

	for i, tl := range b.lights {
		tl.Lanes = resolve(tl.LaneIDs, net.laneByID)
		net.TrafficLights[i] = tl
		for _, l := range tl.Lanes {
			net.Lanes[l].TrafficLights = append(net.Lanes[l].TrafficLights, tl.ID)
		}
	}

	return net, nil
}

func (n *RoadNetwork) neighbour(wp *WayPoint, id LaneID) *NodeRef {
	if id == 0 || id == wp.LaneID {
		return nil
	}
	lane, ok := n.laneByID[id]
	if !ok {
		return nil
	}
	idx := n.ClosestOnLane(lane, wp.Pos)
	if idx < 0 {
		return nil
	}
	return &NodeRef{Lane: lane, Index: idx}
}

func lookup[K comparable](id K, index map[K]int) int {
	if i, ok := index[id]; ok {
		return i
	}
	return -1
}

func resolve[K comparable](ids []K, index map[K]int) []int {
	return lo.Uniq(lo.FilterMap(ids, func(id K, _ int) (int, bool) {
		i, ok := index[id]
		return i, ok
	}))
}
