package polar

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// zeroLiftCp estimates the pressure coefficient at alpha = 0 by linear
// interpolation of the (alpha, cp) samples. Repeated angles keep their first
// sample. Outside the sampled range the nearest end value is used.
func zeroLiftCp(alpha, cp []float64) (float64, error) {
	if len(alpha) == 0 || len(alpha) != len(cp) {
		return 0, &ValidationError{msg: fmt.Sprintf("pressure column has %d rows, alpha has %d", len(cp), len(alpha))}
	}

	seen := make(map[float64]bool, len(alpha))
	xs := make([]float64, 0, len(alpha))
	var first []float64
	for i, a := range alpha {
		if seen[a] {
			continue
		}
		seen[a] = true
		xs = append(xs, a)
		first = append(first, cp[i])
	}

	inds := make([]int, len(xs))
	floats.Argsort(xs, inds)
	ys := make([]float64, len(xs))
	for i, j := range inds {
		ys[i] = first[j]
	}

	if len(xs) == 1 {
		return ys[0], nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return 0, &ValidationError{msg: fmt.Sprintf("pressure column: %v", err)}
	}
	return pl.Predict(0), nil
}
