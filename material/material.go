// Package material describes how a surface splits incoming energy between
// local Phong shading, mirror reflection and refraction.
package material

import (
	"fmt"

	"whitted/vmath/vec3"
)

type Material struct {
	Ambient  vec3.T
	Diffuse  vec3.T
	Specular vec3.T

	Shininess float64

	// Absorption weights local shading, Reflection weights the mirror
	// contribution.  What remains is transmitted.
	Absorption      float64
	Reflection      float64
	RefractiveIndex float64
}

// Opaque returns a non-reflective, non-transmissive material with the given
// diffuse color.
func Opaque(diffuse vec3.T) Material {
	return Material{
		Ambient:         vec3.MulVS(diffuse, 0.1),
		Diffuse:         diffuse,
		Specular:        vec3.T{0.2, 0.2, 0.2},
		Shininess:       10,
		Absorption:      1,
		RefractiveIndex: 1,
	}
}

// Transmission is the fraction of energy carried by the refracted ray.
func (m Material) Transmission() float64 {
	return 1 - m.Absorption - m.Reflection
}

// Validate reports the first constraint m violates.
func (m Material) Validate() error {
	if m.Absorption < 0 || m.Absorption > 1 {
		return fmt.Errorf("absorption %v out of [0, 1]", m.Absorption)
	}
	if m.Reflection < 0 || m.Reflection > 1 {
		return fmt.Errorf("reflection %v out of [0, 1]", m.Reflection)
	}
	if m.Absorption+m.Reflection > 1 {
		return fmt.Errorf("absorption %v + reflection %v exceeds 1", m.Absorption, m.Reflection)
	}
	if !(m.RefractiveIndex > 0) {
		return fmt.Errorf("refractive index %v must be positive", m.RefractiveIndex)
	}
	if m.Shininess < 0 {
		return fmt.Errorf("shininess %v must not be negative", m.Shininess)
	}
	return nil
}
