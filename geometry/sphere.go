package geometry

import (
	"math"

	"whitted/aabox"
	"whitted/ray"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// Near-tangent rays with a slightly negative discriminant still count as a
// single touching hit.
const discTolerance = 0.001

// insideNudge pushes sphere-inside contacts off the surface, toward the center.
const insideNudge = 0.1

// Sphere is the unit sphere at the origin.
type Sphere struct{}

func (Sphere) GetAABox() aabox.AABox {
	return aabox.AABox{
		X: ray.Span{Lo: -1.0, Hi: 1.0},
		Y: ray.Span{Lo: -1.0, Hi: 1.0},
		Z: ray.Span{Lo: -1.0, Hi: 1.0},
	}
}

func (Sphere) RayHits(r ray.Ray) []Hit {
	a := vec3.IProd(r.Slope, r.Slope)
	b := 2 * vec3.IProd(r.Point, r.Slope)
	c := vec3.IProd(r.Point, r.Point) - 1.0
	if a == 0 {
		return nil
	}

	disc := b*b - 4*a*c
	if math.IsNaN(disc) || disc < -discTolerance {
		return nil
	}
	if disc < 0 {
		disc = 0
	}
	sq := math.Sqrt(disc)

	result := make([]Hit, 0, 2)
	for _, t := range [2]float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
		if math.IsNaN(t) {
			continue
		}
		p := r.Eval(t)
		result = append(result, Hit{T: t, N: p, UV: sphereUV(p)})
	}
	return result
}

func sphereUV(p vec3.T) vec2.T {
	y := math.Max(-1, math.Min(1, p[1]))
	phi := math.Asin(-y)
	theta := math.Atan2(p[2], -p[0])
	return vec2.T{turns(theta), phi/math.Pi + 0.5}
}

// SphereInside is a unit sphere meant to be seen from within, such as a sky
// dome.  Its normals face the center.
type SphereInside struct{}

func (SphereInside) GetAABox() aabox.AABox {
	return Sphere{}.GetAABox()
}

func (SphereInside) RayHits(r ray.Ray) []Hit {
	hits := Sphere{}.RayHits(r)
	for i := range hits {
		hits[i].Inverted = true
		hits[i].Nudge = insideNudge
	}
	return hits
}
