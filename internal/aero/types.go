package aero

import (
	"fmt"
	"math"
)

// Params holds the full parameter set of a section coefficient model.
// Angles are in degrees, lift-curve slopes are per radian.
type Params struct {
	// Lift curve
	A0         float64 // Zero-lift angle of attack (deg)
	DClDa      float64 // Lift-curve slope in the linear range (1/rad)
	ClMax      float64 // Lift coefficient at positive stall
	ClMin      float64 // Lift coefficient at negative stall
	DClDaStall float64 // Lift-curve slope past stall (1/rad)
	DClStall   float64 // Width of the stall blend, must be positive

	// Drag polar
	CdMin   float64 // Minimum drag coefficient
	ClCdMin float64 // Lift coefficient at minimum drag
	DCdDCl2 float64 // Quadratic drag polar coefficient, d(Cd)/d(Cl^2)

	// Moment and compressibility
	CmConst float64 // Pitching moment coefficient in the linear range
	MCrit   float64 // Critical Mach number

	// Reynolds number correction, carried through unchanged
	ReRef float64 // Reference Reynolds number
	ReExp float64 // Reynolds number correction exponent
}

// DefaultParams returns the classic XROTOR section defaults.
func DefaultParams() Params {
	return Params{
		A0:         0,
		DClDa:      6.28,
		ClMax:      1.5,
		ClMin:      -0.5,
		DClDaStall: 0.1,
		DClStall:   0.1,
		CdMin:      0.013,
		ClCdMin:    0.5,
		DCdDCl2:    0.004,
		CmConst:    -0.1,
		MCrit:      0.8,
		ReRef:      200000,
		ReExp:      -0.4,
	}
}

// Validate checks the parameter invariants the model relies on
func (p Params) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"A0", p.A0}, {"DClDa", p.DClDa}, {"ClMax", p.ClMax}, {"ClMin", p.ClMin},
		{"DClDaStall", p.DClDaStall}, {"DClStall", p.DClStall}, {"CdMin", p.CdMin},
		{"ClCdMin", p.ClCdMin}, {"DCdDCl2", p.DCdDCl2}, {"CmConst", p.CmConst},
		{"MCrit", p.MCrit}, {"ReRef", p.ReRef}, {"ReExp", p.ReExp},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ValidationError{msg: fmt.Sprintf("%s must be finite, got %v", f.name, f.value)}
		}
	}

	if p.DClStall <= 0 {
		return &ValidationError{msg: fmt.Sprintf("DClStall must be positive, got %g", p.DClStall)}
	}
	if p.DClDa == 0 {
		return &ValidationError{"DClDa must be non-zero"}
	}
	if p.ClMax < p.ClMin {
		return &ValidationError{msg: fmt.Sprintf("ClMax (%g) must not be below ClMin (%g)", p.ClMax, p.ClMin)}
	}
	if p.MCrit <= 0 {
		return &ValidationError{msg: fmt.Sprintf("MCrit must be positive, got %g", p.MCrit)}
	}
	return nil
}

// Section is an immutable aerodynamic section coefficient model.
// The zero value is not usable; construct with NewSection.
type Section struct {
	p Params

	// Derived once at construction
	stallFactor float64 // 1 - DClDaStall/DClDa
}

// NewSection validates the parameters and returns a ready to evaluate section
func NewSection(p Params) (Section, error) {
	if err := p.Validate(); err != nil {
		return Section{}, err
	}
	return Section{
		p:           p,
		stallFactor: 1 - p.DClDaStall/p.DClDa,
	}, nil
}

// MustNewSection is like NewSection but panics on invalid parameters.
// Intended for parameter sets known at compile time.
func MustNewSection(p Params) Section {
	s, err := NewSection(p)
	if err != nil {
		panic(err)
	}
	return s
}

// Params returns a copy of the section parameters
func (s Section) Params() Params {
	return s.p
}

func (s Section) String() string {
	p := s.p
	return fmt.Sprintf("a0=%.3f° dCl/da=%.4f Cl=[%.3f, %.3f] dCl/da(stall)=%.4f dCl(stall)=%.4f "+
		"Cd,min=%.5f Cl(Cd,min)=%.3f dCd/dCl²=%.5f Cm=%.4f Mcrit=%.3f",
		p.A0, p.DClDa, p.ClMin, p.ClMax, p.DClDaStall, p.DClStall,
		p.CdMin, p.ClCdMin, p.DCdDCl2, p.CmConst, p.MCrit)
}

// ValidationError represents an invalid section parameter set
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return "invalid section parameters: " + e.msg
}
