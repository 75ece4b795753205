package rollout

import (
	"fmt"
)

// TrajectoryCost is the scoring record of one roll-out. The generator fills in the indices and the
// distance from the center; the remaining fields belong to the cost evaluator.
type TrajectoryCost struct {
	Index         int
	RelativeIndex int
	LaneIndex     int

	Cost               float64
	PriorityCost       float64
	TransitionCost     float64
	ClosestObjCost     float64
	LateralCost        float64
	LongitudinalCost   float64
	LaneChangeCost     float64
	ClosestObjVelocity float64
	DistanceFromCenter float64
	LateralCosts       []float64

	Blocked bool
}

// NewTrajectoryCosts allocates one cost record per roll-out in res, all attributed to the lane at
// laneIndex.
func NewTrajectoryCosts(res *Result, laneIndex int) []TrajectoryCost {
	if res == nil {
		return nil
	}
	costs := make([]TrajectoryCost, len(res.Trajectories))
	for i := range costs {
		costs[i] = TrajectoryCost{
			Index:              i,
			RelativeIndex:      i - res.CentralIndex,
			LaneIndex:          laneIndex,
			DistanceFromCenter: res.EndLaterals[i],
		}
	}
	return costs
}

func (c TrajectoryCost) String() string {
	return fmt.Sprintf(
		"trajectory %d (rel %d, lane %d): cost %.3f priority %.3f transition %.3f lateral %.3f "+
			"longitudinal %.3f lane change %.3f closest obj %.3f center %.2f blocked %t",
		c.Index, c.RelativeIndex, c.LaneIndex, c.Cost, c.PriorityCost, c.TransitionCost, c.LateralCost,
		c.LongitudinalCost, c.LaneChangeCost, c.ClosestObjCost, c.DistanceFromCenter, c.Blocked,
	)
}
