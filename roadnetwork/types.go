// Package roadnetwork models the static lane graph the planner drives on. A RoadNetwork owns every
// lane and waypoint; links between waypoints are stored as NodeRef indices into that arena and are
// resolved by a Builder once all lanes are known.
package roadnetwork

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/opplanner/spatialmath"
)

type (
	// WayPointID identifies a waypoint within the map.
	WayPointID int
	// LaneID identifies a lane. Zero means no lane.
	LaneID int
	// RoadID identifies a road segment.
	RoadID int
	// StopLineID identifies a stop line. Negative means none.
	StopLineID int
	// TrafficLightID identifies a traffic light.
	TrafficLightID int
)

// NoStopLine marks a waypoint without a stop line.
const NoStopLine StopLineID = -1

// DirectionType is the maneuver tag attached to a waypoint after path reconstruction.
type DirectionType int

// The maneuver directions.
const (
	Forward DirectionType = iota
	ForwardLeft
	ForwardRight
	Backward
	BackwardLeft
	BackwardRight
	Standstill
)

func (d DirectionType) String() string {
	switch d {
	case Forward:
		return "forward"
	case ForwardLeft:
		return "forward_left"
	case ForwardRight:
		return "forward_right"
	case Backward:
		return "backward"
	case BackwardLeft:
		return "backward_left"
	case BackwardRight:
		return "backward_right"
	case Standstill:
		return "standstill"
	default:
		return "unknown"
	}
}

// ActionType is a driving action an edge cost can be attributed to.
type ActionType int

// The driving actions.
const (
	ForwardAction ActionType = iota
	BackwardAction
	StopAction
	LeftTurnAction
	RightTurnAction
	UTurnAction
	SwerveAction
	OvertakeAction
)

// ActionCost is an extra cost paid when leaving a waypoint with the given action.
type ActionCost struct {
	Action ActionType
	Cost   float64
}

// LaneType classifies a lane.
type LaneType int

// The lane types.
const (
	NormalLane LaneType = iota
	MergeLane
	ExitLane
	BusLane
	BusStopLane
	EmergencyLane
)

// RoadSegmentType classifies a road segment.
type RoadSegmentType int

// The road segment types.
const (
	NormalRoad RoadSegmentType = iota
	IntersectionRoad
	UTurnRoad
	ExitRoad
	MergeRoad
	HighwayRoad
)

// TrafficSignType classifies a traffic sign.
type TrafficSignType int

// The traffic sign types.
const (
	UnknownSign TrafficSignType = iota
	StopSign
	MaxSpeedSign
	MinSpeedSign
)

// TrafficLightState is the observed state of a traffic light.
type TrafficLightState int

// The traffic light states.
const (
	UnknownLight TrafficLightState = iota
	RedLight
	GreenLight
	YellowLight
	LeftGreen
	ForwardGreen
	RightGreen
	FlashYellow
	FlashRed
)

// NodeRef addresses a waypoint in a RoadNetwork: the lane's arena index and the waypoint's index
// within that lane.
type NodeRef struct {
	Lane  int
	Index int
}

// Valid reports whether the reference can point at a waypoint.
func (r NodeRef) Valid() bool {
	return r.Lane >= 0 && r.Index >= 0
}

// WayPoint is a sample along a lane, or along any derived trajectory. Derived trajectories are
// value copies; their graph links keep pointing into the map arena.
type WayPoint struct {
	Pos spatialmath.Point
	// Rot is the heading of Pos as a rotation about z. Builder fills it for every map waypoint.
	Rot quat.Number

	V              float64
	Cost           float64
	TimeCost       float64
	TotalReward    float64
	CollisionCost  float64
	LaneChangeCost float64

	ID          WayPointID
	LaneID      LaneID
	LeftLaneID  LaneID
	RightLaneID LaneID
	StopLineID  StopLineID
	Dir         DirectionType

	ActionCosts []ActionCost
	ToIDs       []WayPointID
	FromIDs     []WayPointID

	// Lane is the arena index of the owning lane, or -1.
	Lane int
	// Left and Right are nil when there is no adjacent waypoint.
	Left   *NodeRef
	Right  *NodeRef
	Fronts []NodeRef
	Backs  []NodeRef
}

// NewWayPoint returns an unlinked waypoint at the given pose.
func NewWayPoint(x, y, z, a float64) WayPoint {
	return WayPoint{
		Pos:        spatialmath.NewPoint(x, y, z, a),
		Rot:        HeadingRotation(a),
		StopLineID: NoStopLine,
		Lane:       -1,
	}
}

// HeadingRotation returns the unit quaternion rotating by heading radians about z.
func HeadingRotation(heading float64) quat.Number {
	return quat.Number{Real: math.Cos(heading / 2), Kmag: math.Sin(heading / 2)}
}

// RotationTo returns the unsigned angle in [0, pi] between the waypoint's orientation and of.
func (wp *WayPoint) RotationTo(of quat.Number) float64 {
	rel := quat.Mul(quat.Conj(wp.Rot), of)
	norm := quat.Abs(rel)
	if norm == 0 {
		return 0
	}
	return 2 * math.Acos(math.Min(1, math.Abs(rel.Real)/norm))
}

// TotalActionCost returns the sum of all action costs on the waypoint.
func (wp *WayPoint) TotalActionCost() float64 {
	var sum float64
	for _, ac := range wp.ActionCosts {
		sum += ac.Cost
	}
	return sum
}

// StopLine is a line across one lane where the vehicle may have to stop.
type StopLine struct {
	ID             StopLineID
	LaneID         LaneID
	RoadID         RoadID
	TrafficLightID TrafficLightID
	StopSignID     int
	Points         []spatialmath.Point

	// Lane is the arena index of the lane the stop line belongs to, or -1.
	Lane int
}

// WaitingLine is a line across a lane where the vehicle waits before entering a conflict zone.
type WaitingLine struct {
	ID     int
	LaneID LaneID
	RoadID RoadID
	Points []spatialmath.Point
}

// TrafficSign is a sign attached to a lane.
type TrafficSign struct {
	ID        int
	LaneID    LaneID
	RoadID    RoadID
	Pos       spatialmath.Point
	Type      TrafficSignType
	Value     float64
	FromValue float64
	ToValue   float64
	StrValue  string
}

// TrafficLight controls one or more lanes.
type TrafficLight struct {
	ID               TrafficLightID
	Pos              spatialmath.Point
	State            TrafficLightState
	StoppingDistance float64
	LaneIDs          []LaneID

	// Lanes are the arena indices of the controlled lanes.
	Lanes []int
}

// ControlsLane reports whether the light controls the given lane.
func (tl *TrafficLight) ControlsLane(id LaneID) bool {
	for _, l := range tl.LaneIDs {
		if l == id {
			return true
		}
	}
	return false
}

// Lane is an ordered sequence of waypoints, linked to the lanes before, after and beside it.
type Lane struct {
	ID         LaneID
	RoadID     RoadID
	AreaID     int
	FromAreaID int
	ToAreaID   int
	FromIDs    []LaneID
	ToIDs      []LaneID
	// Num is the lane number in the road segment counted from the left.
	Num    int
	Speed  float64
	Length float64
	Dir    float64
	Type   LaneType

	// LeftLaneID and RightLaneID apply to every waypoint that doesn't name its own neighbour.
	LeftLaneID  LaneID
	RightLaneID LaneID

	Points        []WayPoint
	Signs         []TrafficSign
	TrafficLights []TrafficLightID
	StopLines     []StopLineID
	WaitingLine   WaitingLine

	// Arena indices resolved by the Builder. -1 means none.
	FromLanes []int
	ToLanes   []int
	LeftLane  int
	RightLane int
	Road      int
}

// RoadSegment groups the lanes of a road.
type RoadSegment struct {
	ID      RoadID
	Type    RoadSegmentType
	FromIDs []RoadID
	ToIDs   []RoadID

	// Lanes, FromRoads and ToRoads are arena indices resolved by the Builder.
	Lanes     []int
	FromRoads []int
	ToRoads   []int
}
