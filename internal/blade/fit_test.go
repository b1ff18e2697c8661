package blade

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gorotor/internal/aero"
	"github.com/alexiusacademia/gorotor/internal/polar"
)

// Station sections, set over the defaults
var (
	rootSection = func(p *aero.Params) {
		p.A0, p.DClDa = -4, 5.5
		p.ClMax, p.ClMin = 1.6, -1
		p.DClDaStall, p.DClStall = -1, 0.2
		p.CdMin, p.ClCdMin, p.DCdDCl2 = 0.01, 0.6, 0.02
	}
	midSection = func(p *aero.Params) {
		p.A0 = -2
		p.ClMax, p.ClMin = 1.2, -0.8
		p.DClDaStall, p.DClStall = -0.5, 0.15
		p.CdMin, p.ClCdMin, p.DCdDCl2 = 0.008, 0.3, 0.01
	}
	tipSection = func(p *aero.Params) {
		p.A0, p.DClDa = 3, 8
		p.ClMax, p.ClMin = 0.9, -0.4
		p.DClDaStall, p.DClStall = 0.5, 0.12
		p.CdMin, p.ClCdMin, p.DCdDCl2 = 0.02, -0.1, 0.05
	}
)

// stationPolar tabulates a section from -20 to 25 degrees
func stationPolar(t *testing.T, set func(*aero.Params)) polar.Table {
	t.Helper()

	p := aero.DefaultParams()
	set(&p)
	sec, err := aero.NewSection(p)
	require.NoError(t, err)

	var table polar.Table
	for a := -20.0; a <= 25; a++ {
		table.Alpha = append(table.Alpha, a)
		table.Cl = append(table.Cl, sec.Cl(a))
		table.Cd = append(table.Cd, sec.Cd(a))
		table.Cm = append(table.Cm, -0.1)
	}
	return table
}

func TestFitSections(t *testing.T) {
	tests := []struct {
		name   string
		polars map[float64]polar.Table
	}{
		{
			name: "one section",
			polars: map[float64]polar.Table{
				0.25: stationPolar(t, midSection),
				0.75: stationPolar(t, midSection),
			},
		},
		{
			name: "root to tip",
			polars: map[float64]polar.Table{
				0.25: stationPolar(t, rootSection),
				0.75: stationPolar(t, tipSection),
			},
		},
		{
			name: "tip inboard of root",
			polars: map[float64]polar.Table{
				0.25: stationPolar(t, tipSection),
				0.75: stationPolar(t, rootSection),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				mu    sync.Mutex
				lines []string
			)
			logger := funcr.New(func(prefix, args string) {
				mu.Lock()
				defer mu.Unlock()
				lines = append(lines, args)
			}, funcr.Options{Verbosity: 1})
			ctx := logr.NewContext(context.Background(), logger)

			b, results, err := FitSections(ctx, tt.polars, polar.DefaultOptions())
			require.NoError(t, err)

			assert.Equal(t, []float64{0.25, 0.75}, b.Stations())
			require.Len(t, results, 2)
			for r, res := range results {
				assert.Less(t, res.ClRMS, 1e-2, "station %v", r)
				assert.Less(t, res.CdRMS, 1e-2, "station %v", r)
				assert.Equal(t, res.Section, b.Sections[r])
				assert.Equal(t, polar.DefaultCriticalMach, res.Section.Params().MCrit)
			}

			data, err := b.AeroData()
			require.NoError(t, err)
			assert.Equal(t, 0.25, data.At(RowRadius, 0))
			assert.Equal(t, 0.75, data.At(RowRadius, 1))

			out := strings.Join(lines, "\n")
			assert.Contains(t, out, "Fitted blade sections")
			assert.Contains(t, out, `"station"=0.75`)
			assert.Contains(t, out, `"station"=0.25`)
		})
	}
}

func TestFitSectionsErrors(t *testing.T) {
	good := stationPolar(t, midSection)
	short := polar.Table{
		Alpha: []float64{0, 5},
		Cl:    []float64{0.2, 0.7},
		Cd:    []float64{0.01, 0.012},
		Cm:    []float64{0, 0},
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		polars  map[float64]polar.Table
		wantErr string
		wantIs  error
	}{
		{
			name:    "no stations",
			ctx:     context.Background(),
			polars:  map[float64]polar.Table{},
			wantErr: "no station polars",
		},
		{
			name:    "station off the blade",
			ctx:     context.Background(),
			polars:  map[float64]polar.Table{0.5: good, 1.5: good},
			wantErr: "r/R=1.5",
		},
		{
			name:    "malformed station polar",
			ctx:     context.Background(),
			polars:  map[float64]polar.Table{0.5: short},
			wantErr: "station r/R=0.5000",
			wantIs:  polar.ErrMalformedPolar,
		},
		{
			name:   "cancelled",
			ctx:    cancelled,
			polars: map[float64]polar.Table{0.3: good, 0.6: good},
			wantIs: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, results, err := FitSections(tt.ctx, tt.polars, polar.DefaultOptions())
			require.Error(t, err)
			assert.Nil(t, b)
			assert.Nil(t, results)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}
