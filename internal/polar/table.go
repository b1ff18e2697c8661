package polar

import (
	"fmt"
	"math"
)

// Table is a tabulated airfoil polar. All columns are parallel and indexed by row.
type Table struct {
	Alpha []float64 // Angle of attack (deg)
	Cl    []float64 // Lift coefficient
	Cd    []float64 // Drag coefficient
	Cm    []float64 // Moment coefficient

	// Pressure coefficient, optional. Nil when the polar carries no pressure data.
	Cp []float64
}

// FromRows builds a Table from row-major data. Each row holds
// alpha, cl, cd, cm and optionally cp, and all rows must have the same width.
func FromRows(rows [][]float64) (Table, error) {
	if len(rows) == 0 {
		return Table{}, &ValidationError{msg: "polar has no rows"}
	}

	width := len(rows[0])
	if width != 4 && width != 5 {
		return Table{}, &ValidationError{msg: fmt.Sprintf("polar rows must have 4 or 5 columns, got %d", width)}
	}

	n := len(rows)
	t := Table{
		Alpha: make([]float64, n),
		Cl:    make([]float64, n),
		Cd:    make([]float64, n),
		Cm:    make([]float64, n),
	}
	if width == 5 {
		t.Cp = make([]float64, n)
	}

	for i, row := range rows {
		if len(row) != width {
			return Table{}, &ValidationError{msg: fmt.Sprintf("row %d has %d columns, expected %d", i+1, len(row), width)}
		}
		t.Alpha[i] = row[0]
		t.Cl[i] = row[1]
		t.Cd[i] = row[2]
		t.Cm[i] = row[3]
		if width == 5 {
			t.Cp[i] = row[4]
		}
	}

	return t, nil
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Alpha)
}

// HasPressure reports whether the table carries a pressure coefficient column
func (t Table) HasPressure() bool {
	return t.Cp != nil
}

// Validate checks that the table is well formed and has at least minRows rows
func (t Table) Validate(minRows int) error {
	n := len(t.Alpha)
	if n == 0 {
		return &ValidationError{msg: "polar has no rows"}
	}

	columns := []column{
		{"alpha", t.Alpha}, {"cl", t.Cl}, {"cd", t.Cd}, {"cm", t.Cm},
	}
	if t.Cp != nil {
		columns = append(columns, column{"cp", t.Cp})
	}

	for _, c := range columns {
		if len(c.values) != n {
			return &ValidationError{msg: fmt.Sprintf("column %s has %d rows, alpha has %d", c.name, len(c.values), n)}
		}
		for i, v := range c.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &ValidationError{msg: fmt.Sprintf("column %s row %d is not finite", c.name, i+1)}
			}
		}
	}

	if n < minRows {
		return &ValidationError{msg: fmt.Sprintf("polar has %d rows, at least %d are needed for a well-posed fit", n, minRows)}
	}
	return nil
}

type column struct {
	name   string
	values []float64
}
