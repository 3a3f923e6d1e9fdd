package mat44

import (
	"math"

	"whitted/vmath/vec4"
)

// T is a row-major 4x4 matrix.
type T [16]float64

func Identity() T {
	return T{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

func MulMM(a, b T) T {
	result := T{}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				result[i*4+j] += a[i*4+k] * b[k*4+j]
			}
		}
	}
	return result
}

func MulMV(a T, b vec4.T) vec4.T {
	result := vec4.T{}
	for r := 0; r < 4; r++ {
		result[r] = a[r*4+0]*b[0] + a[r*4+1]*b[1] + a[r*4+2]*b[2] + a[r*4+3]*b[3]
	}
	return result
}

func swapRows(m *T, i, j int) {
	for c := 0; c < 4; c++ {
		m[i*4+c], m[j*4+c] = m[j*4+c], m[i*4+c]
	}
}

// SolveInplace solves m * x = a by Gauss-Jordan elimination with partial
// pivoting, leaving x in a and the identity in m.  A singular m fills a with
// non-finite values.
func SolveInplace(m, a *T) {
	for col := 0; col < 4; col++ {
		pivotRow := col
		for r := col + 1; r < 4; r++ {
			if math.Abs(m[r*4+col]) > math.Abs(m[pivotRow*4+col]) {
				pivotRow = r
			}
		}
		swapRows(m, col, pivotRow)
		swapRows(a, col, pivotRow)

		inv := 1 / m[col*4+col]
		for c := 0; c < 4; c++ {
			m[col*4+c] *= inv
			a[col*4+c] *= inv
		}

		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			f := m[r*4+col]
			if f == 0 {
				continue
			}
			for c := 0; c < 4; c++ {
				m[r*4+c] -= f * m[col*4+c]
				a[r*4+c] -= f * a[col*4+c]
			}
		}
	}
}

func Inverse(m T) T {
	a := Identity()
	SolveInplace(&m, &a)
	return a
}
