package camera

import (
	"math"

	"whitted/affinetransform"
	"whitted/ray"
	"whitted/vmath/mat33"
	"whitted/vmath/vec3"
)

const DefaultFOVDegrees = 60

// Pinhole casts primary rays from the view-space origin through a virtual
// screen one pixel per unit, at the distance that spans FOVDegrees vertically.
type Pinhole struct {
	FOVDegrees float64
}

// Distance from the eye to the screen, in pixels.
func (c Pinhole) Distance(imgRows int) float64 {
	return 0.5 * float64(imgRows) / math.Tan(c.FOVDegrees*math.Pi/360)
}

// ImageToRay returns the view-space ray through pixel (curRow, curCol), with
// row 0 at the top of the image.  The slope is not normalized.
func (c Pinhole) ImageToRay(curRow, imgRows, curCol, imgCols int) ray.Ray {
	return ray.Ray{
		Point: vec3.T{0, 0, 0},
		Slope: vec3.T{
			-0.5*float64(imgCols) + float64(curCol),
			0.5*float64(imgRows) - float64(curRow),
			-c.Distance(imgRows),
		},
	}
}

// LookAt returns the world-to-view transform of an eye at eye looking at
// center.  View space has the eye at the origin looking down -z with +y up.
func LookAt(eye, center, up vec3.T) affinetransform.AffineTransform {
	forward := vec3.Normalize(vec3.SubVV(center, eye))
	side := vec3.Normalize(vec3.CProd(forward, up))
	upright := vec3.CProd(side, forward)

	linear := mat33.T{
		side[0], side[1], side[2],
		upright[0], upright[1], upright[2],
		-forward[0], -forward[1], -forward[2],
	}
	return affinetransform.AffineTransform{
		Linear: linear,
		Offset: vec3.Neg(mat33.MulMV(linear, eye)),
	}
}

// View is a camera placement as written in a scene description.
type View struct {
	Eye        vec3.T
	Center     vec3.T
	Up         vec3.T
	FOVDegrees float64
}

// DefaultView sits at the origin looking down -z, which makes WorldToView the
// identity.
func DefaultView() View {
	return View{
		Eye:        vec3.T{0, 0, 0},
		Center:     vec3.T{0, 0, -1},
		Up:         vec3.T{0, 1, 0},
		FOVDegrees: DefaultFOVDegrees,
	}
}

func (v View) WorldToView() affinetransform.AffineTransform {
	return LookAt(v.Eye, v.Center, v.Up)
}

func (v View) Pinhole() Pinhole {
	return Pinhole{FOVDegrees: v.FOVDegrees}
}
