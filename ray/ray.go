package ray

import (
	"math"

	"whitted/affinetransform"
	"whitted/vmath/vec3"
)

type Span struct {
	Lo, Hi float64
}

func NaNSpan() Span {
	return Span{math.NaN(), math.NaN()}
}

func SpanOverlaps(a, b Span) bool {
	return !(a.Lo > b.Hi || a.Hi <= b.Lo)
}

func MinContainingSpan(a, b Span) Span {
	lo := a.Lo
	if b.Lo < a.Lo {
		lo = b.Lo
	}

	hi := a.Hi
	if b.Hi > a.Hi {
		hi = b.Hi
	}

	return Span{lo, hi}
}

func (s Span) IsFinite() bool {
	return !math.IsInf(s.Lo, 0) && !math.IsInf(s.Hi, 0)
}

func (s Span) IsNaN() bool {
	return math.IsNaN(s.Lo) || math.IsNaN(s.Hi)
}

// Ray is a parametric line Point + t*Slope.  Slope need not be unit length;
// a ray mapped into another frame keeps the same t for the same point.
type Ray struct {
	Point vec3.T
	Slope vec3.T
}

func (r Ray) Eval(t float64) vec3.T {
	return vec3.T{
		r.Point[0] + t*r.Slope[0],
		r.Point[1] + t*r.Slope[1],
		r.Point[2] + t*r.Slope[2],
	}
}

// Transform maps the point as a point and the slope as a vector.  The slope is
// not renormalized.
func (r Ray) Transform(a affinetransform.AffineTransform) Ray {
	return Ray{
		Point: affinetransform.TransformPoint(a, r.Point),
		Slope: affinetransform.TransformVector(a, r.Slope),
	}
}
