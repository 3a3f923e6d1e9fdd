// Package texture provides color lookups keyed by surface (u, v) coordinates.
package texture

import (
	"math"

	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// Sampler maps surface coordinates to an RGB color in [0, 1].
type Sampler interface {
	Sample(uv vec2.T) vec3.T
}

var White = vec3.T{1, 1, 1}

// SampleOrWhite treats a nil sampler as an untextured (white) surface.
func SampleOrWhite(s Sampler, uv vec2.T) vec3.T {
	if s == nil {
		return White
	}
	return s.Sample(uv)
}

// Solid is a constant color.
type Solid vec3.T

func (s Solid) Sample(uv vec2.T) vec3.T {
	return vec3.T(s)
}

// Checkerboard alternates between Even and Odd on a grid of the given period
// in (u, v).
type Checkerboard struct {
	Period    float64
	Even, Odd vec3.T
}

func (c *Checkerboard) Sample(uv vec2.T) vec3.T {
	parity := 0
	for i := 0; i < 2; i++ {
		q := uv[i] / c.Period
		if q-math.Floor(q) > 0.5 {
			parity ^= 1
		}
	}

	if parity == 1 {
		return c.Odd
	}
	return c.Even
}

// Table resolves texture names used by scene descriptions.
type Table map[string]Sampler

// Lookup returns the sampler named name.  The empty name, "white" and unknown
// names all resolve to nil (untextured).
func (t Table) Lookup(name string) (Sampler, bool) {
	if name == "" || name == "white" {
		return nil, true
	}
	s, ok := t[name]
	return s, ok
}
