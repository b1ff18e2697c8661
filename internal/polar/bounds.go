package polar

import (
	"math"

	"github.com/alexiusacademia/gorotor/internal/aero"
)

// Bound is a closed interval a fitted parameter is confined to
type Bound struct {
	Name string
	Lo   float64
	Hi   float64
}

// Bounds of the free parameters, in the order they are packed into the
// optimizer vector. These keep the fit in a physically sensible and
// well-conditioned region and are not configurable.
var Bounds = [NumFree]Bound{
	{"A0", -10, 10},
	{"DClDa", 1, 20},
	{"ClMax", 0, 3},
	{"ClMin", -3, 0},
	{"DClDaStall", -2, 2},
	{"DClStall", 0.1, 0.3},
	{"CdMin", 0, 0.5},
	{"ClCdMin", -1, 1},
	{"DCdDCl2", 0, 1},
}

// NumFree is the number of parameters determined by the optimizer
const NumFree = 9

// pack writes the free parameters of p into x
func pack(x []float64, p aero.Params) {
	x[0] = p.A0
	x[1] = p.DClDa
	x[2] = p.ClMax
	x[3] = p.ClMin
	x[4] = p.DClDaStall
	x[5] = p.DClStall
	x[6] = p.CdMin
	x[7] = p.ClCdMin
	x[8] = p.DCdDCl2
}

// unpack overwrites the free parameters of p with x
func unpack(p *aero.Params, x []float64) {
	p.A0 = x[0]
	p.DClDa = x[1]
	p.ClMax = x[2]
	p.ClMin = x[3]
	p.DClDaStall = x[4]
	p.DClStall = x[5]
	p.CdMin = x[6]
	p.ClCdMin = x[7]
	p.DCdDCl2 = x[8]
}

// Free parameter groups. The lift curve depends only on the first numLift
// parameters, the drag polar adds the remaining ones.
const numLift = 6

// toBox maps unconstrained optimizer coordinates u into the box of bounds:
// x = lo + (hi-lo)(1 + sin u)/2
func toBox(x, u []float64, bounds []Bound) {
	for i, b := range bounds {
		x[i] = b.Lo + (b.Hi-b.Lo)*(1+math.Sin(u[i]))/2
	}
}

// fromBox is the inverse of toBox for x inside the box. Values outside are
// clipped to the nearest bound first.
func fromBox(u, x []float64, bounds []Bound) {
	for i, b := range bounds {
		t := 2*(x[i]-b.Lo)/(b.Hi-b.Lo) - 1
		u[i] = math.Asin(math.Max(-1, math.Min(1, t)))
	}
}

// clip returns v limited to the bound
func (b Bound) clip(v float64) float64 {
	return math.Max(b.Lo, math.Min(b.Hi, v))
}

// atBounds returns the names of the parameters in x lying on a bound
func atBounds(x []float64) []string {
	var names []string
	for i, b := range Bounds {
		tol := 1e-6 * (b.Hi - b.Lo)
		if x[i]-b.Lo <= tol || b.Hi-x[i] <= tol {
			names = append(names, b.Name)
		}
	}
	return names
}
