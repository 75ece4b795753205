package trajectory

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/opplanner/roadnetwork"
	"go.viam.com/opplanner/spatialmath"
)

// straightLine returns n points one metre apart along y = y0 with the given heading.
func straightLine(n int, y0, heading float64) Trajectory {
	out := make(Trajectory, 0, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		if math.Abs(heading) > math.Pi/2 {
			x = float64(n - 1 - i)
		}
		out = append(out, roadnetwork.NewWayPoint(x, y0, 0, heading))
	}
	return out
}

func TestClosestNextPointIndex(t *testing.T) {
	traj := straightLine(11, 0, 0)
	test.That(t, ClosestNextPointIndex(traj, spatialmath.NewPoint(3.4, 0, 0, 0), 0), test.ShouldEqual, 4)
	test.That(t, ClosestNextPointIndex(traj, spatialmath.NewPoint(3.6, 0, 0, 0), 0), test.ShouldEqual, 4)
	test.That(t, ClosestNextPointIndex(traj, spatialmath.NewPoint(2.8, 0, 0, 0), 5), test.ShouldEqual, 5)
	test.That(t, ClosestNextPointIndex(traj, spatialmath.NewPoint(20, 0, 0, 0), 0), test.ShouldEqual, 10)
	test.That(t, ClosestNextPointIndex(nil, spatialmath.NewPoint(0, 0, 0, 0), 0), test.ShouldEqual, 0)

	// points facing the other way are ignored by the direction aware search
	traj[4].Pos.A = math.Pi
	test.That(t, ClosestNextPointIndexDirection(traj, spatialmath.NewPoint(4.1, 0, 0, 0), 0), test.ShouldEqual, 5)
}

func TestLocalizeOnTrajectory(t *testing.T) {
	traj := straightLine(11, 0, 0)

	t.Run("too short", func(t *testing.T) {
		_, err := LocalizeOnTrajectory(traj[:1], spatialmath.NewPoint(0, 0, 0, 0), 0)
		test.That(t, err, test.ShouldBeError, ErrInsufficientPoints)
	})

	t.Run("round trip on every segment", func(t *testing.T) {
		for i := 0; i < len(traj)-2; i++ {
			pose := spatialmath.NewPoint(float64(i)+0.4, 0, 0, 0)
			info, err := LocalizeOnTrajectory(traj, pose, 0)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, info.Back, test.ShouldEqual, i)
			test.That(t, info.Front, test.ShouldEqual, i+1)
			test.That(t, info.PerpDistance, test.ShouldAlmostEqual, 0, 1e-9)
			test.That(t, info.ToFrontDistance, test.ShouldAlmostEqual, 0.6, 1e-9)
			test.That(t, info.FromBackDistance, test.ShouldAlmostEqual, 0.4, 1e-9)
		}
	})

	t.Run("lateral offset", func(t *testing.T) {
		info, err := LocalizeOnTrajectory(traj, spatialmath.NewPoint(3.4, 0.5, 0, 0), 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, info.PerpDistance, test.ShouldAlmostEqual, -0.5, 1e-9)
		test.That(t, info.PerpPoint.Pos.X, test.ShouldAlmostEqual, 3.4, 1e-9)
		test.That(t, info.PerpPoint.Pos.Y, test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, info.AngleDiff, test.ShouldAlmostEqual, 0, 1e-9)

		info, err = LocalizeOnTrajectory(traj, spatialmath.NewPoint(3.4, -1.5, 0, math.Pi/2), 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, info.AngleDiff, test.ShouldAlmostEqual, 90, 1e-9)
	})

	t.Run("two points", func(t *testing.T) {
		info, err := LocalizeOnTrajectory(traj[:2], spatialmath.NewPoint(0.2, 0.3, 0, 0), 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, info.Back, test.ShouldEqual, 0)
		test.That(t, info.Front, test.ShouldEqual, 1)
		test.That(t, info.PerpDistance, test.ShouldAlmostEqual, -0.3, 1e-9)
		test.That(t, info.ToFrontDistance, test.ShouldAlmostEqual, 0.3, 1e-9)
	})

	t.Run("past the end", func(t *testing.T) {
		info, err := LocalizeOnTrajectory(traj, spatialmath.NewPoint(10.2, 0, 0, 0), 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, info.Front, test.ShouldEqual, 10)
		test.That(t, info.Back, test.ShouldEqual, 9)
		test.That(t, info.ToFrontDistance, test.ShouldAlmostEqual, 0.7, 1e-9)
	})

	t.Run("coincident points fall back to zero offset", func(t *testing.T) {
		dup := Trajectory{traj[0], traj[1], traj[1], traj[2]}
		info, err := LocalizeOnTrajectory(dup, spatialmath.NewPoint(1, 0.5, 0, 0), 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, math.IsNaN(info.PerpDistance), test.ShouldBeFalse)
	})
}

func TestLocalizeOnTrajectoryDirection(t *testing.T) {
	// out along y = 0 and back along y = 0.2 over the same stretch
	outAndBack := append(straightLine(11, 0, 0), straightLine(11, 0.2, math.Pi)...)
	pose := spatialmath.NewPoint(3.4, 0.05, 0, math.Pi)

	plain, err := LocalizeOnTrajectory(outAndBack, pose, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, plain.Front, test.ShouldEqual, 4)
	test.That(t, plain.AngleDiff, test.ShouldAlmostEqual, 180, 1e-9)

	directed, err := LocalizeOnTrajectoryDirection(outAndBack, pose, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, directed.Front, test.ShouldEqual, 18)
	test.That(t, directed.Back, test.ShouldEqual, 17)
	test.That(t, outAndBack[directed.Front].Pos.X, test.ShouldEqual, 3)
	test.That(t, directed.PerpDistance, test.ShouldAlmostEqual, -0.15, 1e-9)
	test.That(t, directed.AngleDiff, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, directed.ToFrontDistance, test.ShouldAlmostEqual, 0.4, 1e-9)
}

func TestLocalizeOnTrajectorySet(t *testing.T) {
	right := straightLine(11, 0, 0)
	left := straightLine(11, 3, 0)
	for i := range right {
		right[i].LaneChangeCost = 1
	}
	opposite := straightLine(11, 1, math.Pi)
	pose := spatialmath.NewPoint(2.2, 0.4, 0, 0)

	_, err := LocalizeOnTrajectorySet(nil, pose, 0)
	test.That(t, err, test.ShouldBeError, ErrEmptyInput)

	_, err = LocalizeOnTrajectorySet([]Trajectory{opposite}, pose, 0)
	test.That(t, err, test.ShouldBeError, ErrNoCandidate)

	info, err := LocalizeOnTrajectorySet([]Trajectory{opposite, left, right}, pose, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.GlobalPathIndex, test.ShouldEqual, 2)
	test.That(t, info.PerpDistance, test.ShouldAlmostEqual, -0.4, 1e-9)

	// within the search distance the cheaper trajectory wins
	info, err = LocalizeOnTrajectorySet([]Trajectory{opposite, left, right}, pose, 5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.GlobalPathIndex, test.ShouldEqual, 1)

	info, err = LocalizeOnTrajectorySet([]Trajectory{opposite, left, right}, pose, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.GlobalPathIndex, test.ShouldEqual, 2)

	info, err = LocalizeOnTrajectorySet([]Trajectory{left}, pose, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.GlobalPathIndex, test.ShouldEqual, 0)
}

func TestArcLengthBetween(t *testing.T) {
	traj := straightLine(11, 0, 0)
	localize := func(x float64) RelativeInfo {
		info, err := LocalizeOnTrajectory(traj, spatialmath.NewPoint(x, 0, 0, 0), 0)
		test.That(t, err, test.ShouldBeNil)
		return info
	}

	a := localize(3.4)
	b := localize(7.2)
	c := localize(3.7)
	test.That(t, ArcLengthBetween(traj, a, b), test.ShouldAlmostEqual, 3.8, 1e-9)
	test.That(t, ArcLengthBetween(traj, b, a), test.ShouldAlmostEqual, -3.8, 1e-9)
	test.That(t, ArcLengthBetween(traj, a, c), test.ShouldAlmostEqual, 0.3, 1e-9)
	test.That(t, ArcLengthBetween(traj, c, a), test.ShouldAlmostEqual, -0.3, 1e-9)
	test.That(t, ArcLengthBetween(nil, a, b), test.ShouldEqual, 0)

	ambiguous := RelativeInfo{Back: 3, Front: 5}
	test.That(t, ArcLengthBetween(traj, ambiguous, a), test.ShouldEqual, 0)
}
