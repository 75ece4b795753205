package motionplan

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.viam.com/test"
	"golang.org/x/sync/errgroup"

	"go.viam.com/opplanner/config"
	"go.viam.com/opplanner/logging"
	"go.viam.com/opplanner/motionplan/trajectory"
	"go.viam.com/opplanner/obstacles"
	"go.viam.com/opplanner/roadnetwork"
	"go.viam.com/opplanner/spatialmath"
)

// testNetwork has lane 1 along y = 0 heading +x and lane 2 along y = 30 heading -x, both 100m.
func testNetwork(t *testing.T) *roadnetwork.RoadNetwork {
	t.Helper()
	east := roadnetwork.Lane{ID: 1}
	west := roadnetwork.Lane{ID: 2}
	for i := 0; i <= 100; i++ {
		east.Points = append(east.Points, roadnetwork.NewWayPoint(float64(i), 0, 0, 0))
		west.Points = append(west.Points, roadnetwork.NewWayPoint(float64(100-i), 30, 0, math.Pi))
	}
	net, err := roadnetwork.NewBuilder().AddLane(east).AddLane(west).Build()
	test.That(t, err, test.ShouldBeNil)
	return net
}

func newTestPlanner(t *testing.T, net *roadnetwork.RoadNetwork, mutate func(*config.PlanningParams)) *LocalPlanner {
	t.Helper()
	params := config.DefaultPlanningParams()
	if mutate != nil {
		mutate(&params)
	}
	lp, err := NewLocalPlanner(net, &params, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return lp
}

func TestPlanOnReference(t *testing.T) {
	net := testNetwork(t)
	lp := newTestPlanner(t, net, nil)
	references := []trajectory.Trajectory{net.LanePoints(0)}
	objects := []obstacles.DetectedObject{
		obstacles.NewDetectedObject(1, spatialmath.NewPoint(20, 3, 0, 0), 2, 4, 1.5),
		obstacles.NewDetectedObject(2, spatialmath.NewPoint(500, 0, 0, 0), 2, 4, 1.5),
	}

	res, err := lp.Plan(context.Background(), VehicleState{Speed: 2, Shift: ShiftDrive}, spatialmath.NewPoint(10, 0.5, 0, 0), references, objects)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Regenerated(), test.ShouldBeFalse)
	test.That(t, res.ReferenceIndex, test.ShouldEqual, 0)
	test.That(t, len(res.WorkingPath), test.ShouldBeGreaterThan, 100)
	test.That(t, res.Localization.PerpDistance, test.ShouldAlmostEqual, -0.5, 1e-6)

	test.That(t, res.Rollouts.Trajectories, test.ShouldHaveLength, 5)
	test.That(t, res.Rollouts.CentralIndex, test.ShouldEqual, 2)
	test.That(t, res.Costs, test.ShouldHaveLength, 5)
	for i, c := range res.Costs {
		test.That(t, c.Index, test.ShouldEqual, i)
		test.That(t, c.RelativeIndex, test.ShouldEqual, i-2)
		test.That(t, c.LaneIndex, test.ShouldEqual, 0)
		test.That(t, c.DistanceFromCenter, test.ShouldEqual, res.Rollouts.EndLaterals[i])
	}

	test.That(t, res.Objects, test.ShouldHaveLength, 1)
	test.That(t, res.Objects[0].ID, test.ShouldEqual, 1)
	test.That(t, res.Objects[0].Contour, test.ShouldHaveLength, 4)
}

func TestPlanSpeedProfile(t *testing.T) {
	net := testNetwork(t)
	lp := newTestPlanner(t, net, func(p *config.PlanningParams) { p.EnableTrajectoryVelocities = true })
	references := []trajectory.Trajectory{net.LanePoints(0)}

	res, err := lp.Plan(context.Background(), VehicleState{Speed: 1}, spatialmath.NewPoint(10, 0, 0, 0), references, nil)
	test.That(t, err, test.ShouldBeNil)
	central := res.Rollouts.Trajectories[res.Rollouts.CentralIndex]
	test.That(t, central[10].V, test.ShouldAlmostEqual, 3)
	test.That(t, res.Rollouts.Trajectories[0][10].V, test.ShouldAlmostEqual, 1.5)
	test.That(t, res.Objects, test.ShouldBeNil)
}

func TestPlanRegeneratesReference(t *testing.T) {
	net := testNetwork(t)
	lp := newTestPlanner(t, net, nil)

	t.Run("pose against every reference", func(t *testing.T) {
		references := []trajectory.Trajectory{net.LanePoints(0)}
		res, err := lp.Plan(context.Background(), VehicleState{}, spatialmath.NewPoint(50, 30, 0, math.Pi), references, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, res.Regenerated(), test.ShouldBeTrue)
		test.That(t, res.Localization.GlobalPathIndex, test.ShouldEqual, -1)
		test.That(t, res.Reference, test.ShouldHaveLength, 51)
		test.That(t, res.Reference[0].LaneID, test.ShouldEqual, roadnetwork.LaneID(2))
		test.That(t, res.Reference[0].Pos.X, test.ShouldEqual, 50)
		test.That(t, res.Costs[0].LaneIndex, test.ShouldEqual, -1)
	})

	t.Run("no references", func(t *testing.T) {
		res, err := lp.Plan(context.Background(), VehicleState{}, spatialmath.NewPoint(10.2, 0.1, 0, 0), nil, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, res.Regenerated(), test.ShouldBeTrue)
		test.That(t, res.Reference[0].LaneID, test.ShouldEqual, roadnetwork.LaneID(1))
		test.That(t, res.Reference[0].Pos.X, test.ShouldEqual, 10)
	})

	t.Run("without a map", func(t *testing.T) {
		lp.UpdateMap(nil)
		defer lp.UpdateMap(net)
		_, err := lp.Plan(context.Background(), VehicleState{}, spatialmath.NewPoint(10, 0, 0, 0), nil, nil)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, ErrNoMap.Error())
	})

	t.Run("nothing close enough", func(t *testing.T) {
		_, err := lp.Plan(context.Background(), VehicleState{}, spatialmath.NewPoint(1000, 1000, 0, 0), nil, nil)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "no reference path")
	})
}

func TestPlanErrors(t *testing.T) {
	net := testNetwork(t)

	params := config.DefaultPlanningParams()
	params.MaxSpeed = 0
	_, err := NewLocalPlanner(net, &params, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_speed")

	lp, err := NewLocalPlanner(net, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lp.Params(), test.ShouldResemble, config.DefaultPlanningParams())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lp.Plan(ctx, VehicleState{}, spatialmath.NewPoint(10, 0, 0, 0), []trajectory.Trajectory{net.LanePoints(0)}, nil)
	test.That(t, err, test.ShouldBeError, context.Canceled)
}

func TestPlanWhileUpdatingMap(t *testing.T) {
	net := testNetwork(t)
	lp := newTestPlanner(t, net, nil)
	references := []trajectory.Trajectory{net.LanePoints(0)}

	var ticks errgroup.Group
	for i := 0; i < 8; i++ {
		ticks.Go(func() error {
			_, err := lp.Plan(context.Background(), VehicleState{Speed: 1}, spatialmath.NewPoint(5, 0, 0, 0), references, nil)
			return err
		})
	}
	for i := 0; i < 4; i++ {
		lp.UpdateMap(testNetwork(t))
	}
	test.That(t, ticks.Wait(), test.ShouldBeNil)
}

func TestPlanTimestamps(t *testing.T) {
	net := testNetwork(t)
	lp := newTestPlanner(t, net, nil)
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	lp.clock = mock
	references := []trajectory.Trajectory{net.LanePoints(0)}

	first, err := lp.Plan(context.Background(), VehicleState{}, spatialmath.NewPoint(5, 0, 0, 0), references, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, first.PlannedAt, test.ShouldEqual, mock.Now())
	test.That(t, first.Duration, test.ShouldEqual, time.Duration(0))
	test.That(t, first.ID, test.ShouldNotEqual, uuid.Nil)

	mock.Add(50 * time.Millisecond)
	second, err := lp.Plan(context.Background(), VehicleState{}, spatialmath.NewPoint(5, 0, 0, 0), references, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second.PlannedAt.Sub(first.PlannedAt), test.ShouldEqual, 50*time.Millisecond)
	test.That(t, second.ID, test.ShouldNotEqual, first.ID)
}

func TestShiftPositionString(t *testing.T) {
	test.That(t, ShiftDrive.String(), test.ShouldEqual, "drive")
	test.That(t, VehicleState{}.Shift.String(), test.ShouldEqual, "neutral")
	test.That(t, ShiftPosition(99).String(), test.ShouldEqual, "unknown")
}
