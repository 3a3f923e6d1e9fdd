// Package vec4 holds homogeneous coordinates.  W is 1 for points and 0 for
// directions.
package vec4

import "whitted/vmath/vec3"

type T [4]float64

// Point lifts p to homogeneous coordinates with w = 1.
func Point(p vec3.T) T {
	return T{p[0], p[1], p[2], 1}
}

// Direction lifts d to homogeneous coordinates with w = 0.
func Direction(d vec3.T) T {
	return T{d[0], d[1], d[2], 0}
}

func (v T) XYZ() vec3.T {
	return vec3.T{v[0], v[1], v[2]}
}

func (v T) IsDirection() bool {
	return v[3] == 0
}
