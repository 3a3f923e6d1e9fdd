// Package geometry intersects rays with the canonical primitives.
//
// Every primitive lives in its own object space (unit sphere at the origin,
// unit cube centered at the origin, unit cylinder and cone standing on y=0).
// Intersect maps a view-space ray into that space, solves there, and hands
// back contacts in view space.
package geometry

import (
	"math"
	"sync"

	"github.com/golang/glog"

	"whitted/aabox"
	"whitted/affinetransform"
	"whitted/contact"
	"whitted/material"
	"whitted/ray"
	"whitted/texture"
	"whitted/vmath/mat33"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

type Kind string

const (
	KindSphere       Kind = "sphere"
	KindSphereInside Kind = "sphere-inside"
	KindBox          Kind = "box"
	KindBoxOneSide   Kind = "box-one-side"
	KindCylinder     Kind = "cylinder"
	KindCone         Kind = "cone"
)

var kindAliases = map[string]Kind{
	"sphereInside": KindSphereInside,
	"boxOneSide":   KindBoxOneSide,
}

// ParseKind canonicalizes a kind name.  Names that are not known kinds are
// returned unchanged; Intersect treats them as invisible.
func ParseKind(name string) Kind {
	if k, ok := kindAliases[name]; ok {
		return k
	}
	return Kind(name)
}

// Hit is a root found in object space.
type Hit struct {
	T float64
	// N is the outward object-space normal.  It need not be unit length.
	N  vec3.T
	UV vec2.T
	// Nudge displaces the view-space point along the view-space normal.
	Nudge float64
	// Inverted surfaces report the negated normal.  Refraction is still
	// classified against the outward one.
	Inverted bool
}

type Geometry interface {
	GetAABox() aabox.AABox
	RayHits(r ray.Ray) []Hit
}

var registry = map[Kind]Geometry{
	KindSphere:       Sphere{},
	KindSphereInside: SphereInside{},
	KindBox:          Box{},
	KindBoxOneSide:   Box{OneSide: true},
	KindCylinder:     Cylinder{},
	KindCone:         Cone{},
}

func Lookup(k Kind) (Geometry, bool) {
	g, ok := registry[k]
	return g, ok
}

// Kinds lists every registered kind.
func Kinds() []Kind {
	return []Kind{KindSphere, KindSphereInside, KindBox, KindBoxOneSide, KindCylinder, KindCone}
}

var warnedKinds sync.Map

// Intersect returns every contact between r and the primitive of the given
// kind placed in view space by objectToView.  Contacts carry m and tex.  The
// result is unsorted and may include contacts behind the ray origin.
func Intersect(kind Kind, r ray.Ray, objectToView affinetransform.AffineTransform, m material.Material, tex texture.Sampler) []contact.Contact {
	g, ok := Lookup(kind)
	if !ok {
		if _, loaded := warnedKinds.LoadOrStore(kind, true); !loaded {
			glog.Warningf("Unknown primitive kind %q; it will not be rendered", kind)
		}
		return nil
	}

	mdl := r.Transform(objectToView.Invert())
	hits := g.RayHits(mdl)
	if len(hits) == 0 {
		return nil
	}

	nm := objectToView.NormalTransformMat()
	result := make([]contact.Contact, 0, len(hits))
	for _, h := range hits {
		if math.IsNaN(h.T) {
			continue
		}

		c := contact.Contact{
			T:   h.T,
			P:   r.Eval(h.T),
			N:   vec3.Normalize(mat33.MulMV(nm, h.N)),
			Mtl: m,
			Tex: tex,
			UV:  h.UV,
		}
		c.ClassifyRefraction(r.Slope)
		if h.Inverted {
			c.N = vec3.Neg(c.N)
		}
		if h.Nudge != 0 {
			c.P = vec3.AddVV(c.P, vec3.MulVS(c.N, h.Nudge))
		}

		result = append(result, c)
	}
	return result
}

// boundsPad keeps the bounding-box pre-test looser than any solver tolerance.
const boundsPad = 0.01

func solveQuadratic(a, b, c float64) (float64, float64, bool) {
	delta := b*b - 4*a*c
	if math.IsNaN(delta) || delta < 0 || a == 0 {
		return math.NaN(), math.NaN(), false
	}
	sq := math.Sqrt(delta)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}

func turns(theta float64) float64 {
	return theta/(2*math.Pi) + 0.5
}
