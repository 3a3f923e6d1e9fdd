// Package light describes Phong light sources and their placement in a
// scene.
package light

import (
	"math"

	"whitted/affinetransform"
	"whitted/vmath/vec3"
	"whitted/vmath/vec4"
)

type Light struct {
	// Position has w = 0 for a directional light, in which case xyz is the
	// direction the light travels.
	Position vec4.T

	Ambient  vec3.T
	Diffuse  vec3.T
	Specular vec3.T

	// SpotDirection is ignored when its xyz is zero.
	SpotDirection vec4.T
	// SpotCutoff is the cosine of the spot half-angle.
	SpotCutoff float64
}

// Point returns an omnidirectional white light at p.
func Point(p vec3.T) Light {
	return Light{
		Position:   vec4.Point(p),
		Ambient:    vec3.T{0.2, 0.2, 0.2},
		Diffuse:    vec3.T{1, 1, 1},
		Specular:   vec3.T{1, 1, 1},
		SpotCutoff: -1,
	}
}

// CutoffFromAngle converts a spot half-angle in degrees into a cutoff cosine.
func CutoffFromAngle(degrees float64) float64 {
	return math.Cos(degrees * math.Pi / 180)
}

func (l Light) IsDirectional() bool {
	return l.Position.IsDirection()
}

// Instance is a light paired with the transform taking its own frame to the
// frame rays are cast in.
type Instance struct {
	Light       Light
	LightToView affinetransform.AffineTransform
}

// ViewPosition is the light's position (or travel direction) in view space.
func (li Instance) ViewPosition() vec4.T {
	return affinetransform.TransformHomogeneous(li.LightToView, li.Light.Position)
}

// ViewSpotDirection is the spot axis in view space, always a direction.
func (li Instance) ViewSpotDirection() vec3.T {
	d := li.Light.SpotDirection
	d[3] = 0
	return affinetransform.TransformHomogeneous(li.LightToView, d).XYZ()
}
