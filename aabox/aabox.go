package aabox

import (
	"math"

	"whitted/affinetransform"
	"whitted/ray"
	"whitted/vmath/vec3"
)

type AABox struct {
	X, Y, Z ray.Span
}

// AccumZeroAABox is the empty box, suitable as the start of a
// MinContainingAABox fold.
func AccumZeroAABox() AABox {
	return AABox{
		X: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Y: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Z: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
	}
}

func MinContainingAABox(a, b AABox) AABox {
	return AABox{
		X: ray.MinContainingSpan(a.X, b.X),
		Y: ray.MinContainingSpan(a.Y, b.Y),
		Z: ray.MinContainingSpan(a.Z, b.Z),
	}
}

func (a AABox) IsFinite() bool {
	return a.X.IsFinite() && a.Y.IsFinite() && a.Z.IsFinite()
}

func (a AABox) IsEmpty() bool {
	return a.X.Lo > a.X.Hi || a.Y.Lo > a.Y.Hi || a.Z.Lo > a.Z.Hi
}

// Pad grows the box by d on every side.
func (a AABox) Pad(d float64) AABox {
	return AABox{
		X: ray.Span{Lo: a.X.Lo - d, Hi: a.X.Hi + d},
		Y: ray.Span{Lo: a.Y.Lo - d, Hi: a.Y.Hi + d},
		Z: ray.Span{Lo: a.Z.Lo - d, Hi: a.Z.Hi + d},
	}
}

func (a AABox) axis(i int) ray.Span {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

// Transform returns the smallest axis-aligned box containing the image of a.
func (a AABox) Transform(t affinetransform.AffineTransform) AABox {
	result := AccumZeroAABox()
	for corner := 0; corner < 8; corner++ {
		p := vec3.T{a.X.Lo, a.Y.Lo, a.Z.Lo}
		if corner&1 != 0 {
			p[0] = a.X.Hi
		}
		if corner&2 != 0 {
			p[1] = a.Y.Hi
		}
		if corner&4 != 0 {
			p[2] = a.Z.Hi
		}

		q := affinetransform.TransformPoint(t, p)
		result = MinContainingAABox(result, AABox{
			X: ray.Span{Lo: q[0], Hi: q[0]},
			Y: ray.Span{Lo: q[1], Hi: q[1]},
			Z: ray.Span{Lo: q[2], Hi: q[2]},
		})
	}
	return result
}

// RayTestAABox returns the parameter span over which r is inside b, or a NaN
// span if it never is.  The span is not clipped to t >= 0.
func RayTestAABox(r ray.Ray, b AABox) ray.Span {
	cover := ray.Span{Lo: math.Inf(-1), Hi: math.Inf(1)}

	for i := 0; i < 3; i++ {
		slab := b.axis(i)

		var c ray.Span
		if r.Slope[i] == 0 {
			// Parallel to the slab: either always inside or never.
			if r.Point[i] < slab.Lo || r.Point[i] > slab.Hi {
				return ray.NaNSpan()
			}
			continue
		}

		c = ray.Span{
			Lo: (slab.Lo - r.Point[i]) / r.Slope[i],
			Hi: (slab.Hi - r.Point[i]) / r.Slope[i],
		}
		if c.Hi < c.Lo {
			c.Lo, c.Hi = c.Hi, c.Lo
		}
		if !ray.SpanOverlaps(cover, c) {
			return ray.NaNSpan()
		}
		if c.Lo > cover.Lo {
			cover.Lo = c.Lo
		}
		if c.Hi < cover.Hi {
			cover.Hi = c.Hi
		}
	}

	return cover
}
