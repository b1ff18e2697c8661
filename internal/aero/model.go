package aero

import "math"

const degToRad = math.Pi / 180

// LinearCl returns the lift coefficient of the linear range at alpha (deg)
func (s Section) LinearCl(alpha float64) float64 {
	return (alpha - s.p.A0) * degToRad * s.p.DClDa
}

// StallOffsetCl returns the smooth stall blend offset at alpha (deg).
//
//	dCl_stall * ln((1 + exp((Cl_lin - Cl_max)/dCl_stall)) / (1 + exp((Cl_min - Cl_lin)/dCl_stall)))
//
// Far from stall both logistic terms vanish and the offset is ~0. Past ClMax the
// first term dominates, below ClMin the second one does.
func (s Section) StallOffsetCl(alpha float64) float64 {
	cl := s.LinearCl(alpha)
	w := s.p.DClStall
	return w * (softplus((cl-s.p.ClMax)/w) - softplus((s.p.ClMin-cl)/w))
}

// Cl returns the lift coefficient at alpha (deg)
func (s Section) Cl(alpha float64) float64 {
	return s.LinearCl(alpha) - s.stallFactor*s.StallOffsetCl(alpha)
}

// LinearCd returns the parabolic drag polar value at alpha (deg)
func (s Section) LinearCd(alpha float64) float64 {
	d := s.Cl(alpha) - s.p.ClCdMin
	return s.p.CdMin + s.p.DCdDCl2*d*d
}

// StallOffsetCd returns the drag increment caused by the stall lift deficit at alpha (deg)
func (s Section) StallOffsetCd(alpha float64) float64 {
	d := s.stallFactor * s.StallOffsetCl(alpha) / s.p.DClDa
	return 2 * d * d
}

// Cd returns the drag coefficient at alpha (deg)
func (s Section) Cd(alpha float64) float64 {
	return s.LinearCd(alpha) + s.StallOffsetCd(alpha)
}

// LinearCls evaluates LinearCl for every angle in alpha.
// If dst is nil a new slice is allocated, otherwise dst must have the
// length of alpha and is returned.
func (s Section) LinearCls(dst, alpha []float64) []float64 {
	return apply(dst, alpha, s.LinearCl)
}

// StallOffsetCls evaluates StallOffsetCl for every angle in alpha. See LinearCls for dst.
func (s Section) StallOffsetCls(dst, alpha []float64) []float64 {
	return apply(dst, alpha, s.StallOffsetCl)
}

// Cls evaluates Cl for every angle in alpha. See LinearCls for dst.
func (s Section) Cls(dst, alpha []float64) []float64 {
	return apply(dst, alpha, s.Cl)
}

// LinearCds evaluates LinearCd for every angle in alpha. See LinearCls for dst.
func (s Section) LinearCds(dst, alpha []float64) []float64 {
	return apply(dst, alpha, s.LinearCd)
}

// StallOffsetCds evaluates StallOffsetCd for every angle in alpha. See LinearCls for dst.
func (s Section) StallOffsetCds(dst, alpha []float64) []float64 {
	return apply(dst, alpha, s.StallOffsetCd)
}

// Cds evaluates Cd for every angle in alpha. See LinearCls for dst.
func (s Section) Cds(dst, alpha []float64) []float64 {
	return apply(dst, alpha, s.Cd)
}

func apply(dst, alpha []float64, f func(float64) float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(alpha))
	}
	if len(dst) != len(alpha) {
		panic("aero: slice length mismatch")
	}
	for i, a := range alpha {
		dst[i] = f(a)
	}
	return dst
}

// softplus computes ln(1 + exp(x)) without overflowing for large x
func softplus(x float64) float64 {
	return math.Max(x, 0) + math.Log1p(math.Exp(-math.Abs(x)))
}
