package spatialmath

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrDegenerateGeometry is returned by primitives whose result is undefined for the given input, such as a
// line through two coincident points. Callers are expected to substitute a documented fallback value.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Transform is a planar rigid transform stored as a 3x3 homogeneous matrix.
// The zero value is not usable; construct transforms with Identity, NewRotation or NewTranslation.
type Transform struct {
	m *mat.Dense
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})}
}

// NewRotation returns a transform rotating points counter-clockwise by angle radians about the origin.
func NewRotation(angle float64) Transform {
	c, s := math.Cos(angle), math.Sin(angle)
	return Transform{m: mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})}
}

// NewTranslation returns a transform translating points by (dx, dy).
func NewTranslation(dx, dy float64) Transform {
	return Transform{m: mat.NewDense(3, 3, []float64{
		1, 0, dx,
		0, 1, dy,
		0, 0, 1,
	})}
}

// Compose returns the transform that applies other first and then t.
func (t Transform) Compose(other Transform) Transform {
	var out mat.Dense
	out.Mul(t.m, other.m)
	return Transform{m: &out}
}

// Apply transforms the planar position of p. All other fields of p, including its heading, are carried unchanged.
func (t Transform) Apply(p Point) Point {
	in := mat.NewVecDense(3, []float64{p.X, p.Y, 1})
	var out mat.VecDense
	out.MulVec(t.m, in)
	p.X = out.AtVec(0)
	p.Y = out.AtVec(1)
	return p
}

// Inverse returns the inverse of a rigid transform, computed in closed form as [R^T | -R^T t].
func (t Transform) Inverse() Transform {
	r00, r01, tx := t.m.At(0, 0), t.m.At(0, 1), t.m.At(0, 2)
	r10, r11, ty := t.m.At(1, 0), t.m.At(1, 1), t.m.At(1, 2)
	return Transform{m: mat.NewDense(3, 3, []float64{
		r00, r10, -(r00*tx + r10*ty),
		r01, r11, -(r01*tx + r11*ty),
		0, 0, 1,
	})}
}

// BodyFrame returns the transform re-expressing map points in a frame centred on origin whose x axis points
// along heading: translate by -origin, then rotate by -heading.
func BodyFrame(origin Point, heading float64) Transform {
	return NewRotation(-heading).Compose(NewTranslation(-origin.X, -origin.Y))
}

// SegmentOffset evaluates the line through p0 and p1 at x = 0 and returns its y value. With both points
// expressed in a body frame this is the signed perpendicular offset of the line from the frame origin.
// If the line is undefined (coincident points) or vertical, ErrDegenerateGeometry is returned alongside 0.
func SegmentOffset(p0, p1 Point) (float64, error) {
	m := (p1.Y - p0.Y) / (p1.X - p0.X)
	d := p1.Y - m*p1.X
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, ErrDegenerateGeometry
	}
	return d, nil
}
