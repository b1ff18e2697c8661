package polar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gorotor/internal/aero"
)

// dragTable tabulates the lift curve of x from -20 to 25 degrees with the drag
// polar cd(cl) added to the stall offset drag
func dragTable(t *testing.T, x []float64, cd func(cl float64) float64) Table {
	t.Helper()

	p := aero.DefaultParams()
	unpack(&p, x)
	sec, err := aero.NewSection(p)
	require.NoError(t, err)

	var table Table
	for a := -20.0; a <= 25; a++ {
		cl := sec.Cl(a)
		table.Alpha = append(table.Alpha, a)
		table.Cl = append(table.Cl, cl)
		table.Cd = append(table.Cd, cd(cl)+sec.StallOffsetCd(a))
		table.Cm = append(table.Cm, 0)
	}
	return table
}

func TestSeedDrag(t *testing.T) {
	lift := []float64{-4, 5.5, 1.6, -1, -1, 0.2}

	tests := []struct {
		name string
		cd   func(cl float64) float64
		want []float64 // CdMin, ClCdMin, DCdDCl2
	}{
		{
			name: "convex polar",
			cd:   func(cl float64) float64 { return 0.01 + 0.02*(cl-0.6)*(cl-0.6) },
			want: []float64{0.01, 0.6, 0.02},
		},
		{
			name: "minimum drag at negative lift",
			cd:   func(cl float64) float64 { return 0.02 + 0.05*(cl+0.1)*(cl+0.1) },
			want: []float64{0.02, -0.1, 0.05},
		},
		{
			name: "minimum drag clipped into the box",
			cd:   func(cl float64) float64 { return 0.6 + 0.02*(cl-0.3)*(cl-0.3) },
			want: []float64{Bounds[6].Hi, 0.3, 0.02},
		},
		{
			name: "concave polar starts flat",
			cd:   func(cl float64) float64 { return 0.05 - 0.01*cl*cl },
			want: []float64{0.05, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := append(append([]float64(nil), lift...), 0.3, 0.9, 0.7)
			table := dragTable(t, x, tt.cd)

			require.True(t, seedDrag(x, table, aero.DefaultParams()))
			assert.Equal(t, lift, x[:numLift], "lift parameters are not touched")
			if diff := cmp.Diff(tt.want, x[numLift:], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("drag parameters mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSeedDragInvalidLift(t *testing.T) {
	valid := []float64{-4, 5.5, 1.6, -1, -1, 0.2, 0.3, 0.9, 0.7}
	table := dragTable(t, valid, func(cl float64) float64 { return 0.01 + 0.02*cl*cl })

	// ClMax below ClMin
	x := []float64{-4, 5.5, -0.5, 0.5, -1, 0.2, 0.3, 0.9, 0.7}
	want := append([]float64(nil), x...)

	assert.False(t, seedDrag(x, table, aero.DefaultParams()))
	assert.Equal(t, want, x)
}
