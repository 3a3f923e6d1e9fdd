package contact

import (
	"math"

	"whitted/material"
	"whitted/texture"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// ExitCosine is the threshold on dot(slope, normal) above which a ray is
// treated as leaving the surface's medium.
const ExitCosine = 0.001

// Contact records where a ray met a surface.  P and N are in the frame of the
// ray that produced the contact; N is unit length and faces out of the
// object.
type Contact struct {
	T float64
	P vec3.T
	N vec3.T

	Mtl material.Material
	Tex texture.Sampler
	UV  vec2.T

	// FromIndex and ToIndex are the refractive indices on the incoming and
	// outgoing side.  Flip is set when the ray is exiting, so N points the
	// same way as the ray.
	FromIndex float64
	ToIndex   float64
	Flip      bool
}

func ContactNaN() Contact {
	return Contact{
		T: math.NaN(),
	}
}

// ClassifyRefraction fills in the refraction bookkeeping for a ray with the
// given slope arriving at c.
func (c *Contact) ClassifyRefraction(slope vec3.T) {
	if vec3.IProd(vec3.Normalize(slope), c.N) >= ExitCosine {
		c.FromIndex = c.Mtl.RefractiveIndex
		c.ToIndex = 1
		c.Flip = true
		return
	}
	c.FromIndex = 1
	c.ToIndex = c.Mtl.RefractiveIndex
	c.Flip = false
}

// Nearest returns the contact with the smallest T strictly greater than
// minT.  NaN parameters are never selected.
func Nearest(cs []Contact, minT float64) (Contact, bool) {
	best := ContactNaN()
	found := false
	for _, c := range cs {
		if math.IsNaN(c.T) || !(c.T > minT) {
			continue
		}
		if !found || c.T < best.T {
			best = c
			found = true
		}
	}
	return best, found
}
