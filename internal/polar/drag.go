package polar

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/alexiusacademia/gorotor/internal/aero"
)

// seedDrag replaces the drag parameters of x with the least squares solution
// for the lift curve already in x. With the lift parameters fixed the drag
// polar Cd - StallOffsetCd = c0 + c1 Cl + c2 Cl² is linear in its
// coefficients, and
//
//	DCdDCl2 = c2, ClCdMin = -c1/(2 c2), CdMin = c0 - c2 ClCdMin²
//
// The result is clipped into the box. It reports false and leaves x unchanged
// when the lift parameters are invalid or the system is singular.
func seedDrag(x []float64, t Table, base aero.Params) bool {
	p := base
	unpack(&p, x)
	sec, err := aero.NewSection(p)
	if err != nil {
		return false
	}

	n := t.Len()
	a := mat.NewDense(n, 3, nil)
	b := mat.NewVecDense(n, nil)
	for i, alpha := range t.Alpha {
		cl := sec.Cl(alpha)
		a.Set(i, 0, 1)
		a.Set(i, 1, cl)
		a.Set(i, 2, cl*cl)
		b.SetVec(i, t.Cd[i]-sec.StallOffsetCd(alpha))
	}

	var c mat.VecDense
	if err := c.SolveVec(a, b); err != nil {
		return false
	}

	// A non-convex fit has no minimum drag point; start from a flat polar
	cdMin, clCdMin, k := c.AtVec(0), 0.0, 0.0
	if c2 := c.AtVec(2); c2 > 0 {
		k = c2
		clCdMin = -c.AtVec(1) / (2 * c2)
		cdMin -= k * clCdMin * clCdMin
	}

	drag := [...]float64{cdMin, clCdMin, k}
	for _, v := range drag {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for i, v := range drag {
		x[numLift+i] = Bounds[numLift+i].clip(v)
	}
	return true
}
