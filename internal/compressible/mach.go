package compressible

import (
	"errors"
	"fmt"
	"math"
)

// Ratio of specific heats for air
const gamma = 1.4

// Newton iteration defaults
const (
	DefaultInitialMach   = 1.0
	DefaultMaxIterations = 50
	DefaultTolerance     = 1e-12
)

// ErrNotConverged is returned when the critical Mach solve does not converge
var ErrNotConverged = errors.New("critical Mach iteration did not converge")

// CriticalPressureCoefficient returns the pressure coefficient at which the
// local flow becomes sonic for free-stream Mach number m (isentropic relation).
//
//	Cp* = 2/(γ M²) * (((γ+1) / (2(1 + (γ-1)/2 M²)))^(γ/(1-γ)) - 1)
func CriticalPressureCoefficient(m float64) float64 {
	r := (gamma + 1) / (2 * (1 + 0.5*(gamma-1)*m*m))
	return 2 / (gamma * m * m) * (math.Pow(r, gamma/(1-gamma)) - 1)
}

// CriticalPressureCoefficientDerivative returns d(Cp*)/dM at m
func CriticalPressureCoefficientDerivative(m float64) float64 {
	q := 1 + 0.5*(gamma-1)*m*m
	r := (gamma + 1) / (2 * q)
	e := gamma / (1 - gamma)

	// d/dM of the 2/(γM²) prefactor
	a := -4 / (gamma * m * m * m) * (math.Pow(r, e) - 1)

	// chain rule through r(M)
	dr := -(gamma + 1) * (gamma - 1) * m / (2 * q * q)
	b := 2 / (gamma * m * m) * e * math.Pow(r, e-1) * dr

	return a + b
}

// NewtonOptions controls the critical Mach root-find
type NewtonOptions struct {
	Initial       float64 // Starting Mach number
	MaxIterations int     // Iteration budget
	Tolerance     float64 // Step size at convergence, relative to M
}

// DefaultNewtonOptions returns the options used when fitting polars
func DefaultNewtonOptions() NewtonOptions {
	return NewtonOptions{
		Initial:       DefaultInitialMach,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// NewtonError describes a failed critical Mach solve
type NewtonError struct {
	Cp0        float64 // Target pressure coefficient
	Mach       float64 // Last iterate
	Iterations int     // Iterations performed
	Reason     string
}

func (e *NewtonError) Error() string {
	return fmt.Sprintf("critical Mach for Cp0=%.4f: %s after %d iterations (M=%g)",
		e.Cp0, e.Reason, e.Iterations, e.Mach)
}

func (e *NewtonError) Unwrap() error {
	return ErrNotConverged
}

// CriticalMach solves CriticalPressureCoefficient(M) = cp0 for M with Newton's
// method. It returns the Mach number and the number of iterations used.
//
// The relation is even in M, so an iterate that overshoots below zero is
// reflected back to |M|.
func CriticalMach(cp0 float64, opts NewtonOptions) (float64, int, error) {
	if opts.Initial <= 0 {
		opts.Initial = DefaultInitialMach
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}

	m := opts.Initial
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		f := CriticalPressureCoefficient(m) - cp0
		df := CriticalPressureCoefficientDerivative(m)
		if df == 0 || math.IsNaN(df) {
			return m, iter, &NewtonError{Cp0: cp0, Mach: m, Iterations: iter, Reason: "zero derivative"}
		}

		step := f / df
		m = math.Abs(m - step)
		if math.IsNaN(m) || math.IsInf(m, 0) || m == 0 {
			return m, iter, &NewtonError{Cp0: cp0, Mach: m, Iterations: iter, Reason: "diverged"}
		}

		if math.Abs(step) <= opts.Tolerance*math.Max(1, m) {
			return m, iter, nil
		}
	}

	return m, opts.MaxIterations, &NewtonError{
		Cp0:        cp0,
		Mach:       m,
		Iterations: opts.MaxIterations,
		Reason:     "iteration budget exhausted",
	}
}
