package blade

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/alexiusacademia/gorotor/internal/polar"
)

// FitSections fits a section to the polar of every station and assembles the
// blade. Fits run concurrently, at most GOMAXPROCS at a time, and log through
// the logger carried by ctx.
//
// A single fit cannot be interrupted. Once ctx is cancelled, or any fit fails,
// no further fits are started and the first error is returned. Non-convergence
// of a station is treated as a failure; use polar.Fit directly to accept a
// best-effort section.
func FitSections(ctx context.Context, polars map[float64]polar.Table, opts polar.Options) (*Blade, map[float64]*polar.Result, error) {
	logger := logr.FromContextOrDiscard(ctx)

	radii := make([]float64, 0, len(polars))
	for r := range polars {
		if err := checkRadius(r); err != nil {
			return nil, nil, err
		}
		radii = append(radii, r)
	}
	if len(radii) == 0 {
		return nil, nil, fmt.Errorf("no station polars to fit")
	}
	sort.Float64s(radii)

	results := make([]*polar.Result, len(radii))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range radii {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			o := opts
			o.Logger = logger.WithValues("station", r)
			res, err := polar.Fit(polars[r], o)
			if err != nil {
				return fmt.Errorf("station r/R=%.4f: %w", r, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	b := New()
	byStation := make(map[float64]*polar.Result, len(radii))
	for i, r := range radii {
		b.Sections[r] = results[i].Section
		byStation[r] = results[i]
	}

	logger.Info("Fitted blade sections", "stations", len(radii))
	return b, byStation, nil
}
