package roadnetwork

import (
	"math"

	"github.com/tidwall/rtree"

	"go.viam.com/opplanner/spatialmath"
)

const initialSearchRadius = 2.0

// Index answers closest-waypoint queries against a RoadNetwork.
type Index struct {
	net  *RoadNetwork
	tree rtree.RTreeG[NodeRef]
}

// NewIndex builds a spatial index over every waypoint of net.
func NewIndex(net *RoadNetwork) *Index {
	ix := &Index{net: net}
	for l := range net.Lanes {
		for i := range net.Lanes[l].Points {
			pos := net.Lanes[l].Points[i].Pos
			pt := [2]float64{pos.X, pos.Y}
			ix.tree.Insert(pt, pt, NodeRef{Lane: l, Index: i})
		}
	}
	return ix
}

// Len returns the number of indexed waypoints.
func (ix *Index) Len() int {
	return ix.tree.Len()
}

// Closest returns the waypoint closest to p within maxDistance metres.
func (ix *Index) Closest(p spatialmath.Point, maxDistance float64) (NodeRef, bool) {
	return ix.closest(p, maxDistance, nil)
}

// ClosestAligned is like Closest but only considers waypoints whose heading differs from p's heading
// by less than maxAngle radians.
func (ix *Index) ClosestAligned(p spatialmath.Point, maxDistance, maxAngle float64) (NodeRef, bool) {
	heading := HeadingRotation(p.A)
	return ix.closest(p, maxDistance, func(wp *WayPoint) bool {
		return wp.RotationTo(heading) < maxAngle
	})
}

// closest grows a square search window around p until it holds a candidate, then widens it once
// more to the candidate's distance so that a closer waypoint in a window corner cannot be missed.
func (ix *Index) closest(p spatialmath.Point, maxDistance float64, accept func(*WayPoint) bool) (NodeRef, bool) {
	if ix.tree.Len() == 0 || maxDistance <= 0 {
		return NodeRef{}, false
	}
	radius := math.Min(initialSearchRadius, maxDistance)
	for {
		ref, d, found := ix.searchBox(p, radius, accept)
		if found && d <= radius {
			return ref, d <= maxDistance
		}
		if found {
			// the best hit lies outside the inscribed circle, widen to it and search again
			ref, d, _ = ix.searchBox(p, d, accept)
			return ref, d <= maxDistance
		}
		if radius >= maxDistance {
			return NodeRef{}, false
		}
		radius = math.Min(radius*2, maxDistance)
	}
}

func (ix *Index) searchBox(p spatialmath.Point, radius float64, accept func(*WayPoint) bool) (NodeRef, float64, bool) {
	var best NodeRef
	bestD := math.Inf(1)
	found := false
	ix.tree.Search(
		[2]float64{p.X - radius, p.Y - radius},
		[2]float64{p.X + radius, p.Y + radius},
		func(_, _ [2]float64, ref NodeRef) bool {
			wp := ix.net.WayPoint(ref)
			if accept != nil && !accept(wp) {
				return true
			}
			if d := spatialmath.Distance(wp.Pos, p); d < bestD {
				bestD = d
				best = ref
				found = true
			}
			return true
		},
	)
	return best, bestD, found
}
