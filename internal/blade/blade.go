package blade

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/alexiusacademia/gorotor/internal/aero"
)

// Rows of the aerodynamic data matrix handed to the performance solver.
// Column i of the matrix describes the i-th station in ascending radius.
const (
	RowRadius = iota
	RowA0
	RowClMax
	RowClMin
	RowDClDa
	RowDClDaStall
	RowDClStall
	RowCdMin
	RowClCdMin
	RowDCdDCl2
	RowCmConst
	RowMCrit
	RowReRef
	RowReExp

	NumAeroRows
)

// Blade holds the aerodynamic sections of a propeller blade, keyed by
// normalised radial position (r/R).
type Blade struct {
	Sections map[float64]aero.Section
}

// New returns an empty blade
func New() *Blade {
	return &Blade{Sections: make(map[float64]aero.Section)}
}

// Len returns the number of aerodynamic sections
func (b *Blade) Len() int {
	return len(b.Sections)
}

// Stations returns the radial positions of the sections in ascending order
func (b *Blade) Stations() []float64 {
	radii := make([]float64, 0, len(b.Sections))
	for r := range b.Sections {
		radii = append(radii, r)
	}
	sort.Float64s(radii)
	return radii
}

// Validate checks that every station lies on the blade
func (b *Blade) Validate() error {
	if len(b.Sections) == 0 {
		return fmt.Errorf("blade has no aerodynamic sections")
	}
	for r := range b.Sections {
		if err := checkRadius(r); err != nil {
			return err
		}
	}
	return nil
}

// AeroData returns the NumAeroRows x Len() matrix of section data consumed by
// the performance solver, one column per station in ascending radius.
func (b *Blade) AeroData() (*mat.Dense, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	stations := b.Stations()
	data := mat.NewDense(NumAeroRows, len(stations), nil)
	col := make([]float64, NumAeroRows)
	for j, r := range stations {
		p := b.Sections[r].Params()
		col[RowRadius] = r
		col[RowA0] = p.A0
		col[RowClMax] = p.ClMax
		col[RowClMin] = p.ClMin
		col[RowDClDa] = p.DClDa
		col[RowDClDaStall] = p.DClDaStall
		col[RowDClStall] = p.DClStall
		col[RowCdMin] = p.CdMin
		col[RowClCdMin] = p.ClCdMin
		col[RowDCdDCl2] = p.DCdDCl2
		col[RowCmConst] = p.CmConst
		col[RowMCrit] = p.MCrit
		col[RowReRef] = p.ReRef
		col[RowReExp] = p.ReExp
		data.SetCol(j, col)
	}
	return data, nil
}

func checkRadius(r float64) error {
	if math.IsNaN(r) || r < 0 || r > 1 {
		return fmt.Errorf("station r/R=%g is outside [0, 1]", r)
	}
	return nil
}
