package geometry

import (
	"math"

	"whitted/aabox"
	"whitted/ray"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// faceTolerance decides which faces a point on the cube lies on.
const faceTolerance = 0.001

// Box is the unit cube [-0.5, 0.5]^3.  By default a single texture is laid out
// as a cross-shaped atlas over all six faces; with OneSide every face maps the
// whole texture.
type Box struct {
	OneSide bool
}

func (Box) GetAABox() aabox.AABox {
	return aabox.AABox{
		X: ray.Span{Lo: -0.5, Hi: 0.5},
		Y: ray.Span{Lo: -0.5, Hi: 0.5},
		Z: ray.Span{Lo: -0.5, Hi: 0.5},
	}
}

func (b Box) RayHits(r ray.Ray) []Hit {
	span := aabox.RayTestAABox(r, b.GetAABox())
	if span.IsNaN() || !span.IsFinite() || span.Lo > span.Hi {
		return nil
	}

	result := make([]Hit, 0, 2)
	for _, t := range [2]float64{span.Lo, span.Hi} {
		p := r.Eval(t)
		hit := Hit{T: t, N: boxNormal(p)}
		if b.OneSide {
			hit.UV = boxFaceUV(p)
		} else {
			hit.UV = boxAtlasUV(p)
		}
		result = append(result, hit)
	}
	return result
}

func onFace(x, side float64) bool {
	return math.Abs(x-side) <= faceTolerance
}

// boxNormal sums the normals of every face p lies on, so edges and corners
// get a blended normal.
func boxNormal(p vec3.T) vec3.T {
	n := vec3.T{}
	for i := 0; i < 3; i++ {
		if onFace(p[i], 0.5) {
			n[i] = 1
		} else if onFace(p[i], -0.5) {
			n[i] = -1
		}
	}
	return n
}

func boxAtlasUV(p vec3.T) vec2.T {
	x, y, z := p[0]+0.5, p[1]+0.5, p[2]+0.5
	var u, v float64
	switch {
	case onFace(p[0], 0.5): // right
		u, v = 0.5+0.25*z, 0.25+0.25*y
	case onFace(p[0], -0.5): // left
		u, v = 0.25-0.25*z, 0.25+0.25*y
	case onFace(p[1], 0.5): // top
		u, v = 0.25+0.25*x, 0.5+0.25*z
	case onFace(p[1], -0.5): // bottom
		u, v = 0.25+0.25*x, 0.25-0.25*z
	case onFace(p[2], 0.5): // front
		u, v = 1-0.25*x, 0.25+0.25*y
	case onFace(p[2], -0.5): // back
		u, v = 0.25+0.25*x, 0.25+0.25*y
	}
	return vec2.T{u, 1 - v}
}

func boxFaceUV(p vec3.T) vec2.T {
	switch {
	case onFace(p[0], 0.5):
		return vec2.T{0.5 + p[2], 0.5 + p[1]}
	case onFace(p[0], -0.5):
		return vec2.T{0.5 - p[2], 0.5 + p[1]}
	case onFace(p[1], 0.5):
		return vec2.T{0.5 + p[0], 0.5 - p[2]}
	case onFace(p[1], -0.5):
		return vec2.T{0.5 + p[0], 0.5 + p[2]}
	case onFace(p[2], 0.5):
		return vec2.T{0.5 + p[0], 0.5 + p[1]}
	case onFace(p[2], -0.5):
		return vec2.T{0.5 - p[0], 0.5 + p[1]}
	}
	return vec2.T{}
}
