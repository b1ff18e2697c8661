package polar

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/alexiusacademia/gorotor/internal/aero"
	"github.com/alexiusacademia/gorotor/internal/compressible"
)

// Fitting defaults
const (
	MinRows              = NumFree + 1 // More rows than free parameters
	DefaultMaxIterations = 20000       // Major iterations per simplex run
	DefaultMaxRestarts   = 8           // Simplex restarts from the best point, per stage
	DefaultSimplexSize   = 0.5         // Initial simplex edge in optimizer coordinates
	DefaultTolerance     = 1e-10       // Absolute objective improvement that still counts
	DefaultCriticalMach  = 0.6         // Used when the polar has no pressure data

	// Major iterations without improvement before a simplex run is considered converged
	stallIterations = 100
)

// Options controls a polar fit. Start from DefaultOptions and override fields.
type Options struct {
	MaxIterations int     // Iteration budget of each simplex run
	MaxRestarts   int     // Maximum number of simplex runs per stage
	SimplexSize   float64 // Initial simplex size
	Tolerance     float64 // Objective improvement below which a run has converged

	// Accept tables with MinRows or fewer rows. The parameters of such a fit
	// are not unique; only the reproduced curves are meaningful.
	AllowUnderdetermined bool

	// Critical Mach root-find
	Newton compressible.NewtonOptions

	// Reynolds number correction copied into the fitted section
	ReRef float64
	ReExp float64

	Logger logr.Logger
}

// DefaultOptions returns the options used for routine fits
func DefaultOptions() Options {
	d := aero.DefaultParams()
	return Options{
		MaxIterations: DefaultMaxIterations,
		MaxRestarts:   DefaultMaxRestarts,
		SimplexSize:   DefaultSimplexSize,
		Tolerance:     DefaultTolerance,
		Newton:        compressible.DefaultNewtonOptions(),
		ReRef:         d.ReRef,
		ReExp:         d.ReExp,
		Logger:        logr.Discard(),
	}
}

// Result holds a fitted section and diagnostics of the fit
type Result struct {
	Section aero.Section

	// Goodness of fit
	Error float64 // ClRMS + CdRMS, the minimised objective
	ClRMS float64 // RMS lift coefficient error
	CdRMS float64 // RMS drag coefficient error

	// Optimizer diagnostics
	Status      string   // Termination status of the last simplex run
	Iterations  int      // Major iterations over all runs
	Evaluations int      // Objective evaluations over all runs
	Restarts    int      // Simplex runs performed over all stages
	AtBounds    []string // Fitted parameters that ended on a bound

	// Critical Mach
	PressureDerived  bool    // MCrit was solved from pressure data
	Cp0              float64 // Interpolated pressure coefficient at alpha = 0
	NewtonIterations int
}

// stage is one restarted simplex minimisation over a contiguous group of
// free parameters
type stage struct {
	name     string
	from, to int  // Free parameters, indices into Bounds
	lift     bool // Objective includes the lift error
	drag     bool // Objective includes the drag error
}

// The lift curve does not depend on the drag parameters and is fitted first.
// The drag parameters are then seeded by least squares and fitted alone, and a
// last stage over all parameters minimises the combined error.
var stages = [...]stage{
	{name: StageLift, from: 0, to: numLift, lift: true},
	{name: StageDrag, from: numLift, to: NumFree, drag: true},
	{name: StageJoint, from: 0, to: NumFree, lift: true, drag: true},
}

// Fit determines the section parameters that best reproduce the polar.
//
// Malformed tables are rejected with a *ValidationError and a nil Result.
// If the optimizer or the critical Mach solve stop early, the best estimate is
// returned together with an error matching ErrNotConverged.
func Fit(t Table, opts Options) (*Result, error) {
	opts = withDefaults(opts)
	minRows := MinRows
	if opts.AllowUnderdetermined {
		minRows = 1
	}
	if err := t.Validate(minRows); err != nil {
		return nil, err
	}
	logger := opts.Logger

	base := aero.DefaultParams()
	base.ReRef = opts.ReRef
	base.ReExp = opts.ReExp

	// All-ones start, clipped into the box
	x := make([]float64, NumFree)
	for i, b := range Bounds {
		x[i] = b.clip(1)
	}

	result := &Result{}
	var errs []error
	for _, s := range stages {
		if s.name == StageDrag && !seedDrag(x, t, base) {
			logger.V(1).Info("Drag polar seed unavailable, keeping start point")
		}
		if err := minimize(s, t, base, x, opts, result); err != nil {
			errs = append(errs, err)
		}
	}

	p := base
	unpack(&p, x)
	p.CmConst = stat.Mean(t.Cm, nil)
	p.MCrit = DefaultCriticalMach

	if t.HasPressure() {
		cp0, err := zeroLiftCp(t.Alpha, t.Cp)
		if err != nil {
			return nil, err
		}
		result.Cp0 = cp0
		m, iters, err := compressible.CriticalMach(cp0, opts.Newton)
		result.NewtonIterations = iters
		if err != nil {
			errs = append(errs, &ConvergenceError{
				Stage:      StageCriticalMach,
				Status:     StatusNotConverged,
				Iterations: iters,
				Err:        err,
			})
		} else {
			p.MCrit = m
			result.PressureDerived = true
		}
	}

	sec, err := aero.NewSection(p)
	if err != nil {
		return nil, fmt.Errorf("polar fit produced invalid section: %w", err)
	}
	result.Section = sec
	result.ClRMS, result.CdRMS = residuals(sec, t)
	result.Error = result.ClRMS + result.CdRMS
	result.AtBounds = atBounds(x)

	if len(result.AtBounds) > 0 {
		logger.V(1).Info("Fitted parameters on bounds", "parameters", result.AtBounds)
	}
	logger.V(1).Info("Polar fit complete", "rows", t.Len(), "error", result.Error,
		"restarts", result.Restarts, "mcrit", p.MCrit, "pressureDerived", result.PressureDerived)

	return result, errors.Join(errs...)
}

// minimize runs Nelder-Mead over the free parameters of s, restarting from the
// best point until a run no longer improves the objective, and writes the best
// point back into x.
func minimize(s stage, t Table, base aero.Params, x []float64, opts Options, result *Result) error {
	bounds := Bounds[s.from:s.to]
	obj := newObjective(t, base, x, s)
	u := make([]float64, len(bounds))
	fromBox(u, x[s.from:s.to], bounds)

	settings := &optimize.Settings{
		MajorIterations: opts.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   opts.Tolerance,
			Iterations: stallIterations,
		},
	}

	var cerr error
	best := math.Inf(1)
	for restart := 0; restart < opts.MaxRestarts; restart++ {
		res, err := optimize.Minimize(optimize.Problem{Func: obj.value}, u, settings,
			&optimize.NelderMead{SimplexSize: opts.SimplexSize})
		if res == nil {
			return &ConvergenceError{Stage: s.name, Status: optimize.Failure.String(), Err: err}
		}

		result.Restarts++
		result.Iterations += res.MajorIterations
		result.Evaluations += res.FuncEvaluations
		result.Status = res.Status.String()

		opts.Logger.V(1).Info("Simplex run finished", "stage", s.name, "restart", restart,
			"objective", res.F, "iterations", res.MajorIterations, "status", result.Status)

		improvement := best - res.F
		if res.F < best {
			best = res.F
			copy(u, res.X)
		}

		if err == nil && res.Status.Early() {
			err = res.Status.Err()
		}
		if err != nil {
			cerr = &ConvergenceError{
				Stage:      s.name,
				Status:     result.Status,
				Iterations: res.MajorIterations,
				Err:        err,
			}
			break
		}
		if restart > 0 && improvement <= opts.Tolerance {
			break
		}
	}

	toBox(x[s.from:s.to], u, bounds)
	return cerr
}

func withDefaults(opts Options) Options {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.MaxRestarts <= 0 {
		opts.MaxRestarts = DefaultMaxRestarts
	}
	if opts.SimplexSize <= 0 {
		opts.SimplexSize = DefaultSimplexSize
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	return opts
}

// objective evaluates the error terms of a stage for optimizer coordinates of
// its free parameters. It reuses its buffers and is not safe for concurrent use.
type objective struct {
	t    Table
	s    stage
	base aero.Params // Parameters not determined by the optimizer
	x    []float64   // All free parameters; the stage group is overwritten per evaluation
	cl   []float64
	cd   []float64
}

func newObjective(t Table, base aero.Params, x []float64, s stage) *objective {
	return &objective{
		t:    t,
		s:    s,
		base: base,
		x:    append([]float64(nil), x...),
		cl:   make([]float64, t.Len()),
		cd:   make([]float64, t.Len()),
	}
}

func (o *objective) value(u []float64) float64 {
	toBox(o.x[o.s.from:o.s.to], u, Bounds[o.s.from:o.s.to])
	p := o.base
	unpack(&p, o.x)
	sec, err := aero.NewSection(p)
	if err != nil {
		return math.Inf(1)
	}

	var f float64
	if o.s.lift {
		f += rms(sec.Cls(o.cl, o.t.Alpha), o.t.Cl)
	}
	if o.s.drag {
		f += rms(sec.Cds(o.cd, o.t.Alpha), o.t.Cd)
	}
	return f
}

// residuals returns the RMS lift and drag coefficient errors of sec against t
func residuals(sec aero.Section, t Table) (clRMS, cdRMS float64) {
	return rms(sec.Cls(nil, t.Alpha), t.Cl), rms(sec.Cds(nil, t.Alpha), t.Cd)
}

func rms(predicted, measured []float64) float64 {
	return floats.Distance(predicted, measured, 2) / math.Sqrt(float64(len(measured)))
}
