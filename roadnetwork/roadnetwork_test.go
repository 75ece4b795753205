package roadnetwork

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/opplanner/spatialmath"
)

func straightLane(id LaneID, y, x0 float64, n int) Lane {
	lane := Lane{ID: id, RoadID: 1}
	for i := 0; i < n; i++ {
		lane.Points = append(lane.Points, NewWayPoint(x0+float64(i), y, 0, 0))
	}
	return lane
}

func buildTestNetwork(t *testing.T) *RoadNetwork {
	t.Helper()
	right := straightLane(1, 0, 0, 11)
	right.LeftLaneID = 2
	right.ToIDs = []LaneID{3}
	left := straightLane(2, 3, 0, 11)
	left.RightLaneID = 1
	next := straightLane(3, 0, 11, 5)
	next.FromIDs = []LaneID{1}

	net, err := NewBuilder().
		AddRoadSegment(RoadSegment{ID: 1}).
		AddLane(right).
		AddLane(left).
		AddLane(next).
		AddStopLine(StopLine{ID: 7, LaneID: 3, Points: []spatialmath.Point{{X: 13.2, Y: -1}, {X: 13.2, Y: 1}}}).
		AddTrafficLight(TrafficLight{ID: 9, LaneIDs: []LaneID{3, 42}}).
		Build()
	test.That(t, err, test.ShouldBeNil)
	return net
}

func TestBuildLinks(t *testing.T) {
	net := buildTestNetwork(t)
	test.That(t, net.Lanes, test.ShouldHaveLength, 3)
	test.That(t, net.NumWayPoints(), test.ShouldEqual, 27)
	test.That(t, net.Segments[0].Lanes, test.ShouldResemble, []int{0, 1, 2})

	first := net.WayPoint(NodeRef{Lane: 0, Index: 0})
	test.That(t, first.Backs, test.ShouldBeEmpty)
	test.That(t, first.Fronts, test.ShouldResemble, []NodeRef{{Lane: 0, Index: 1}})
	test.That(t, first.LaneID, test.ShouldEqual, LaneID(1))

	// ToIDs and FromIDs name the same link, which is only added once
	last := net.WayPoint(NodeRef{Lane: 0, Index: 10})
	test.That(t, last.Fronts, test.ShouldResemble, []NodeRef{{Lane: 2, Index: 0}})
	test.That(t, net.WayPoint(NodeRef{Lane: 2, Index: 0}).Backs, test.ShouldResemble, []NodeRef{{Lane: 0, Index: 10}})
	test.That(t, net.Lanes[0].ToLanes, test.ShouldResemble, []int{2})
	test.That(t, net.Lanes[2].FromLanes, test.ShouldResemble, []int{0})

	mid := net.WayPoint(NodeRef{Lane: 0, Index: 4})
	test.That(t, mid.Left, test.ShouldNotBeNil)
	test.That(t, *mid.Left, test.ShouldResemble, NodeRef{Lane: 1, Index: 4})
	test.That(t, mid.Right, test.ShouldBeNil)
	test.That(t, *net.WayPoint(NodeRef{Lane: 1, Index: 7}).Right, test.ShouldResemble, NodeRef{Lane: 0, Index: 7})
	test.That(t, net.Lanes[0].LeftLane, test.ShouldEqual, 1)
	test.That(t, net.Lanes[2].LeftLane, test.ShouldEqual, -1)

	test.That(t, net.Lanes[2].StopLines, test.ShouldResemble, []StopLineID{7})
	test.That(t, net.WayPoint(NodeRef{Lane: 2, Index: 2}).StopLineID, test.ShouldEqual, StopLineID(7))
	test.That(t, net.WayPoint(NodeRef{Lane: 2, Index: 1}).StopLineID, test.ShouldEqual, NoStopLine)
	test.That(t, net.StopLineByID(7).Lane, test.ShouldEqual, 2)
	test.That(t, net.StopLineByID(8), test.ShouldBeNil)

	test.That(t, net.TrafficLights[0].Lanes, test.ShouldResemble, []int{2})
	test.That(t, net.Lanes[2].TrafficLights, test.ShouldResemble, []TrafficLightID{9})
	test.That(t, net.TrafficLights[0].ControlsLane(42), test.ShouldBeTrue)

	idx, ok := net.LaneIndex(2)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, idx, test.ShouldEqual, 1)
	test.That(t, net.LaneByID(99), test.ShouldBeNil)

	// waypoint ids are unique once built
	seen := map[WayPointID]bool{}
	for _, lane := range net.Lanes {
		for _, wp := range lane.Points {
			test.That(t, seen[wp.ID], test.ShouldBeFalse)
			seen[wp.ID] = true
		}
	}
}

func TestLanePointsIsACopy(t *testing.T) {
	net := buildTestNetwork(t)
	points := net.LanePoints(0)
	points[0].Pos.X = 1000
	test.That(t, net.Lanes[0].Points[0].Pos.X, test.ShouldEqual, 0)
	test.That(t, net.LanePoints(5), test.ShouldBeNil)
}

func TestWayPointPanicsOnBadRef(t *testing.T) {
	net := buildTestNetwork(t)
	test.That(t, func() { net.WayPoint(NodeRef{Lane: 0, Index: 11}) }, test.ShouldPanic)
	test.That(t, func() { net.WayPoint(NodeRef{Lane: -1, Index: 0}) }, test.ShouldPanic)
}

func TestBuildErrors(t *testing.T) {
	_, err := NewBuilder().AddLane(straightLane(0, 0, 0, 2)).Build()
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewBuilder().AddLane(straightLane(1, 0, 0, 2)).AddLane(straightLane(1, 1, 0, 2)).Build()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate lane id 1")

	_, err = NewBuilder().AddLane(Lane{ID: 4}).Build()
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewBuilder().AddRoadSegment(RoadSegment{ID: 1}).AddRoadSegment(RoadSegment{ID: 1}).Build()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestIndexClosest(t *testing.T) {
	net := buildTestNetwork(t)
	ix := NewIndex(net)
	test.That(t, ix.Len(), test.ShouldEqual, 27)

	ref, ok := ix.Closest(spatialmath.NewPoint(4.2, 0.4, 0, 0), 10)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ref, test.ShouldResemble, NodeRef{Lane: 0, Index: 4})

	ref, ok = ix.Closest(spatialmath.NewPoint(6.9, 2.2, 0, 0), 10)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ref, test.ShouldResemble, NodeRef{Lane: 1, Index: 7})

	// far away points need several window expansions
	ref, ok = ix.Closest(spatialmath.NewPoint(40, 0, 0, 0), 50)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ref, test.ShouldResemble, NodeRef{Lane: 2, Index: 4})

	_, ok = ix.Closest(spatialmath.NewPoint(40, 0, 0, 0), 5)
	test.That(t, ok, test.ShouldBeFalse)

	_, ok = ix.ClosestAligned(spatialmath.NewPoint(4, 0, 0, math.Pi), 10, math.Pi/2)
	test.That(t, ok, test.ShouldBeFalse)
	ref, ok = ix.ClosestAligned(spatialmath.NewPoint(4, 0.1, 0, 0.2), 10, math.Pi/2)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ref, test.ShouldResemble, NodeRef{Lane: 0, Index: 4})
}

func TestWayPointRotation(t *testing.T) {
	lane := Lane{ID: 1, Points: []WayPoint{
		{Pos: spatialmath.NewPoint(0, 0, 0, math.Pi/2)},
		{Pos: spatialmath.NewPoint(0, 1, 0, math.Pi/2)},
	}}
	net, err := NewBuilder().AddLane(lane).Build()
	test.That(t, err, test.ShouldBeNil)

	wp := net.WayPoint(NodeRef{Lane: 0, Index: 0})
	test.That(t, wp.Rot.Real, test.ShouldAlmostEqual, math.Cos(math.Pi/4))
	test.That(t, wp.Rot.Kmag, test.ShouldAlmostEqual, math.Sin(math.Pi/4))
	test.That(t, wp.RotationTo(HeadingRotation(math.Pi/2)), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, wp.RotationTo(HeadingRotation(-math.Pi/2)), test.ShouldAlmostEqual, math.Pi, 1e-6)
	test.That(t, wp.RotationTo(HeadingRotation(math.Pi/2+2*math.Pi)), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, wp.RotationTo(HeadingRotation(0.1)), test.ShouldAlmostEqual, math.Pi/2-0.1, 1e-9)

	ix := NewIndex(net)
	_, ok := ix.ClosestAligned(spatialmath.NewPoint(0, 0.5, 0, 0), 5, math.Pi/4)
	test.That(t, ok, test.ShouldBeFalse)
	ref, ok := ix.ClosestAligned(spatialmath.NewPoint(0.1, 0.9, 0, math.Pi/2+0.3), 5, math.Pi/4)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ref, test.ShouldResemble, NodeRef{Lane: 0, Index: 1})
}
