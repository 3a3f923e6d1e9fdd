// Package tracer turns ray-cast results into colors: local Phong shading
// gated by shadow rays, plus recursive mirror reflection and refraction.
package tracer

import (
	"math"

	"whitted/contact"
	"whitted/light"
	"whitted/ray"
	"whitted/texture"
	"whitted/vmath/vec3"
	"whitted/xfstack"
)

// DefaultBound is the default number of reflection/refraction bounces.
const DefaultBound = 5

const (
	// hitEpsilon rejects contacts at or just in front of a ray's origin, which
	// are almost always the surface the ray was spawned from.
	hitEpsilon = 0.01
	// grazingCosine is the smallest |cos| between normal and light direction
	// at which a surface can still be lit.
	grazingCosine = 0.001
	// shadowNudge moves shadow ray origins toward the light.
	shadowNudge = 0.005
	// refractNudge moves refracted ray origins through the surface.
	refractNudge = 0.001
	// straightThroughSine below which refraction does not bend the ray.
	straightThroughSine = 0.001
)

var black = vec3.T{0, 0, 0}

// Caster answers ray queries against a scene.  *scene.Scene implements it.
type Caster interface {
	RayCast(stack xfstack.Stack, r ray.Ray) []contact.Contact
}

// Tracer is not safe for concurrent use, since it counts the casts it makes.
// Use one per goroutine; they may share a Caster.
type Tracer struct {
	Caster Caster
	Bound  int

	// Casts is the number of ray casts issued so far.
	Casts int64
}

func New(c Caster, bound int) *Tracer {
	return &Tracer{Caster: c, Bound: bound}
}

func (t *Tracer) cast(stack xfstack.Stack, r ray.Ray) []contact.Contact {
	t.Casts++
	return t.Caster.RayCast(stack, r)
}

// Trace casts r and returns the color it sees, using the tracer's bound.
func (t *Tracer) Trace(stack xfstack.Stack, r ray.Ray, lights []light.Instance) vec3.T {
	return t.Combine(t.cast(stack, r), lights, stack, r.Point, t.Bound)
}

// Combine picks the nearest contact in front of from and mixes its local,
// reflected and refracted contributions by the material's weights.  Every
// channel of the result is in [0, 1]; no contact yields black.
func (t *Tracer) Combine(hits []contact.Contact, lights []light.Instance, stack xfstack.Stack, from vec3.T, bound int) vec3.T {
	hit, ok := contact.Nearest(hits, hitEpsilon)
	if !ok {
		return black
	}

	m := hit.Mtl
	rgb := vec3.MulVS(t.Shade(hit, lights, stack), m.Absorption)
	if m.Reflection > 0 {
		rgb = vec3.AddVV(rgb, vec3.MulVS(t.Reflect(hit, lights, stack, from, bound), m.Reflection))
	}
	if transmission := m.Transmission(); transmission > 0 {
		rgb = vec3.AddVV(rgb, vec3.MulVS(t.Refract(hit, lights, stack, from, bound), transmission))
	}
	return vec3.Clamp01(rgb)
}

// Shade is the Phong color at hit, summed over the lights that can see it and
// modulated by the surface texture.  There is no ambient term independent of
// visibility: a point no light can see is black.
func (t *Tracer) Shade(hit contact.Contact, lights []light.Instance, stack xfstack.Stack) vec3.T {
	m := hit.Mtl
	color := vec3.T{}

	for _, li := range lights {
		visibility := t.ShadowVisibility(hit, li, stack)
		if visibility == 0 {
			continue
		}

		l := li.Light
		pos := li.ViewPosition()
		var lightVec, spotAxis vec3.T
		if pos.IsDirection() {
			lightVec = vec3.Normalize(vec3.Neg(pos.XYZ()))
			spotAxis = vec3.Normalize(pos.XYZ())
		} else {
			lightVec = vec3.Normalize(vec3.SubVV(pos.XYZ(), hit.P))
			spotAxis = li.ViewSpotDirection()
			if spotAxis.Norm() != 0 {
				spotAxis = vec3.Normalize(spotAxis)
			}
		}

		if spotAxis.Norm() != 0 && !(vec3.IProd(vec3.Neg(spotAxis), lightVec) > l.SpotCutoff) {
			continue
		}

		nDotL := nonNegative(vec3.IProd(hit.N, lightVec))
		reflectVec := vec3.Normalize(vec3.Reflect(vec3.Neg(lightVec), hit.N))
		viewVec := vec3.Normalize(vec3.Neg(hit.P))
		rDotV := nonNegative(vec3.IProd(reflectVec, viewVec))

		ambient := vec3.MulVV(m.Ambient, l.Ambient)
		diffuse := vec3.MulVS(vec3.MulVV(m.Diffuse, l.Diffuse), nDotL)
		specular := vec3.T{}
		if nDotL > 0 {
			specular = vec3.MulVS(vec3.MulVV(m.Specular, l.Specular), math.Pow(rDotV, m.Shininess))
		}

		term := vec3.AddVV(ambient, vec3.AddVV(diffuse, specular))
		color = vec3.AddVV(color, vec3.MulVS(term, visibility))
	}

	return vec3.Clamp01(vec3.MulVV(color, texture.SampleOrWhite(hit.Tex, hit.UV)))
}

// ShadowVisibility is the fraction of li's light reaching hit: 1 when
// unobstructed, the product of blocker transmissions otherwise, and 0 when
// the light grazes the surface.
func (t *Tracer) ShadowVisibility(hit contact.Contact, li light.Instance, stack xfstack.Stack) float64 {
	pos := li.ViewPosition()

	var dir vec3.T
	var limit float64
	if pos.IsDirection() {
		dir = vec3.Normalize(vec3.Neg(pos.XYZ()))
		limit = math.Inf(1)
	} else {
		// Unnormalized, so the light itself sits at t = 1.
		dir = vec3.SubVV(pos.XYZ(), hit.P)
		limit = 1
	}

	unit := vec3.Normalize(dir)
	cos := vec3.IProd(hit.N, unit)
	if math.IsNaN(cos) || math.Abs(cos) < grazingCosine {
		return 0
	}

	shadowRay := ray.Ray{
		Point: vec3.AddVV(hit.P, vec3.MulVS(unit, shadowNudge)),
		Slope: dir,
	}

	transparency := 1.0
	for _, blocker := range t.cast(stack, shadowRay) {
		if blocker.T > hitEpsilon && blocker.T < limit {
			transparency *= blocker.Mtl.Transmission()
		}
	}
	return transparency
}

// Reflect is the color seen in the mirror direction at hit, for a ray that
// arrived from from.
func (t *Tracer) Reflect(hit contact.Contact, lights []light.Instance, stack xfstack.Stack, from vec3.T, bound int) vec3.T {
	if bound <= 0 {
		return black
	}

	inDir := vec3.Normalize(vec3.SubVV(hit.P, from))
	reflected := ray.Ray{
		Point: hit.P,
		Slope: vec3.Reflect(inDir, hit.N),
	}
	return t.Combine(t.cast(stack, reflected), lights, stack, hit.P, bound-1)
}

// Refract is the color seen through the surface at hit by Snell's law.  Past
// the critical angle it falls back to Reflect.  With no bounces left it is
// the local shade.
func (t *Tracer) Refract(hit contact.Contact, lights []light.Instance, stack xfstack.Stack, from vec3.T, bound int) vec3.T {
	if bound <= 0 {
		return t.Shade(hit, lights, stack)
	}

	n := hit.N
	if hit.Flip {
		n = vec3.Neg(n)
	}

	inDir := vec3.Normalize(vec3.SubVV(hit.P, from))
	cosIn := -vec3.IProd(inDir, n)
	sinIn := math.Sqrt(math.Max(0, 1-cosIn*cosIn))
	sinOut := sinIn * hit.FromIndex / hit.ToIndex
	if sinOut > 1 {
		return t.Reflect(hit, lights, stack, from, bound)
	}
	cosOut := math.Sqrt(1 - sinOut*sinOut)

	var dir vec3.T
	if math.Abs(sinIn) < straightThroughSine {
		dir = vec3.Neg(n)
	} else {
		tangent := vec3.MulVS(vec3.AddVV(inDir, vec3.MulVS(n, cosIn)), sinOut/sinIn)
		dir = vec3.AddVV(tangent, vec3.MulVS(n, -cosOut))
	}

	spawn := vec3.AddVV(hit.P, vec3.MulVS(n, -refractNudge))
	refracted := ray.Ray{Point: spawn, Slope: dir}
	return t.Combine(t.cast(stack, refracted), lights, stack, spawn, bound-1)
}

func nonNegative(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	return x
}
