// Package config defines the planning parameters and how they are loaded from disk.
package config

import (
	"fmt"

	"go.uber.org/multierr"
)

// PlanningParams holds the tunables shared by every planning algorithm. Values are read only once
// handed to the planner.
type PlanningParams struct {
	MaxSpeed          float64 `json:"max_speed" yaml:"max_speed"`
	MinSpeed          float64 `json:"min_speed" yaml:"min_speed"`
	PlanningDistance  float64 `json:"planning_distance" yaml:"planning_distance"`
	MicroPlanDistance float64 `json:"micro_plan_distance" yaml:"micro_plan_distance"`

	CarTipMargin      float64 `json:"car_tip_margin" yaml:"car_tip_margin"`
	RollInMargin      float64 `json:"roll_in_margin" yaml:"roll_in_margin"`
	RollInSpeedFactor float64 `json:"roll_in_speed_factor" yaml:"roll_in_speed_factor"`
	PathDensity       float64 `json:"path_density" yaml:"path_density"`
	RollOutDensity    float64 `json:"roll_out_density" yaml:"roll_out_density"`
	RollOutNumber     int     `json:"roll_out_number" yaml:"roll_out_number"`

	HorizonDistance      float64 `json:"horizon_distance" yaml:"horizon_distance"`
	MinFollowingDistance float64 `json:"min_following_distance" yaml:"min_following_distance"`
	MinDistanceToAvoid   float64 `json:"min_distance_to_avoid" yaml:"min_distance_to_avoid"`
	MaxDistanceToAvoid   float64 `json:"max_distance_to_avoid" yaml:"max_distance_to_avoid"`
	SpeedProfileFactor   float64 `json:"speed_profile_factor" yaml:"speed_profile_factor"`

	SmoothingDataWeight     float64 `json:"smoothing_data_weight" yaml:"smoothing_data_weight"`
	SmoothingSmoothWeight   float64 `json:"smoothing_smooth_weight" yaml:"smoothing_smooth_weight"`
	SmoothingToleranceError float64 `json:"smoothing_tolerance_error" yaml:"smoothing_tolerance_error"`

	VerticalSafetyDistance   float64 `json:"vertical_safety_distance" yaml:"vertical_safety_distance"`
	HorizontalSafetyDistance float64 `json:"horizontal_safety_distance" yaml:"horizontal_safety_distance"`

	EnableLaneChange           bool `json:"enable_lane_change" yaml:"enable_lane_change"`
	EnableSwerving             bool `json:"enable_swerving" yaml:"enable_swerving"`
	EnableFollowing            bool `json:"enable_following" yaml:"enable_following"`
	EnableHeadingSmoothing     bool `json:"enable_heading_smoothing" yaml:"enable_heading_smoothing"`
	EnableTrafficLightBehavior bool `json:"enable_traffic_light_behavior" yaml:"enable_traffic_light_behavior"`
	EnableStopSignBehavior     bool `json:"enable_stop_sign_behavior" yaml:"enable_stop_sign_behavior"`
	EnableTrajectoryVelocities bool `json:"enable_trajectory_velocities" yaml:"enable_trajectory_velocities"`
}

// DefaultPlanningParams returns the parameter set used when nothing is configured.
func DefaultPlanningParams() PlanningParams {
	return PlanningParams{
		MaxSpeed:                3,
		MinSpeed:                0,
		PlanningDistance:        10000,
		MicroPlanDistance:       30,
		CarTipMargin:            4,
		RollInMargin:            12,
		RollInSpeedFactor:       0.25,
		PathDensity:             0.25,
		RollOutDensity:          0.5,
		RollOutNumber:           4,
		HorizonDistance:         120,
		MinFollowingDistance:    35,
		MinDistanceToAvoid:      15,
		MaxDistanceToAvoid:      5,
		SpeedProfileFactor:      1,
		SmoothingDataWeight:     0.45,
		SmoothingSmoothWeight:   0.3,
		SmoothingToleranceError: 0.05,
	}
}

// Validate ensures the parameters are usable. Inconsistent but workable settings are returned as
// warnings rather than errors.
func (p *PlanningParams) Validate(path string) ([]string, error) {
	var errs error
	switch {
	case p.MaxSpeed == 0:
		errs = multierr.Append(errs, NewConfigValidationFieldRequiredError(path, "max_speed"))
	case p.MaxSpeed < 0:
		errs = multierr.Append(errs, NewConfigValidationFieldRangeError(path, "max_speed", p.MaxSpeed, "> 0"))
	}
	if p.MinSpeed < 0 || p.MinSpeed > p.MaxSpeed {
		errs = multierr.Append(errs, NewConfigValidationFieldRangeError(path, "min_speed", p.MinSpeed, "within [0, max_speed]"))
	}
	switch {
	case p.PathDensity == 0:
		errs = multierr.Append(errs, NewConfigValidationFieldRequiredError(path, "path_density"))
	case p.PathDensity < 0:
		errs = multierr.Append(errs, NewConfigValidationFieldRangeError(path, "path_density", p.PathDensity, "> 0"))
	}
	if p.RollOutNumber < 0 {
		errs = multierr.Append(errs, NewConfigValidationFieldRangeError(path, "roll_out_number", p.RollOutNumber, ">= 0"))
	}
	if p.RollOutDensity < 0 {
		errs = multierr.Append(errs, NewConfigValidationFieldRangeError(path, "roll_out_density", p.RollOutDensity, ">= 0"))
	}
	if p.SmoothingDataWeight <= 0 || p.SmoothingDataWeight >= 1 {
		errs = multierr.Append(errs,
			NewConfigValidationFieldRangeError(path, "smoothing_data_weight", p.SmoothingDataWeight, "within (0, 1)"))
	}
	if p.SmoothingSmoothWeight <= 0 || p.SmoothingSmoothWeight >= 1 {
		errs = multierr.Append(errs,
			NewConfigValidationFieldRangeError(path, "smoothing_smooth_weight", p.SmoothingSmoothWeight, "within (0, 1)"))
	}
	if p.SmoothingToleranceError <= 0 {
		errs = multierr.Append(errs,
			NewConfigValidationFieldRangeError(path, "smoothing_tolerance_error", p.SmoothingToleranceError, "> 0"))
	}
	if p.CarTipMargin < 0 {
		errs = multierr.Append(errs, NewConfigValidationFieldRangeError(path, "car_tip_margin", p.CarTipMargin, ">= 0"))
	}
	if p.RollInMargin < 0 {
		errs = multierr.Append(errs, NewConfigValidationFieldRangeError(path, "roll_in_margin", p.RollInMargin, ">= 0"))
	}
	if errs != nil {
		return nil, errs
	}

	var warnings []string
	if !(p.MaxDistanceToAvoid < p.MinDistanceToAvoid && p.MinDistanceToAvoid < p.MinFollowingDistance) {
		warnings = append(warnings, fmt.Sprintf(
			"%s: expected max_distance_to_avoid (%v) < min_distance_to_avoid (%v) < min_following_distance (%v)",
			path, p.MaxDistanceToAvoid, p.MinDistanceToAvoid, p.MinFollowingDistance))
	}
	if p.MicroPlanDistance <= p.CarTipMargin {
		warnings = append(warnings, fmt.Sprintf(
			"%s: micro_plan_distance (%v) does not exceed car_tip_margin (%v), roll outs will have no tail",
			path, p.MicroPlanDistance, p.CarTipMargin))
	}
	return warnings, nil
}
