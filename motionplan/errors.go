package motionplan

import "github.com/pkg/errors"

// ErrNoMap is returned when a reference has to be regenerated but the planner holds no road network.
var ErrNoMap = errors.New("no road network loaded")

// NewNoReferenceError is returned when the pose matches none of the reference paths and no
// replacement could be searched from the map.
func NewNoReferenceError(cause error) error {
	return errors.Wrap(cause, "no reference path matches the vehicle pose")
}

// NewPlannerFailedError wraps a failure of one planning stage.
func NewPlannerFailedError(stage string, cause error) error {
	return errors.Wrapf(cause, "local planner failed to %s", stage)
}
