// Package obs provides entity x time observation matrices whose entries
// are either present numeric values or explicitly missing.
package obs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Value is a single observation: either a present number or missing.
// The zero value is missing.
type Value struct {
	val float64
	ok  bool
}

// Present returns observed value v.
func Present(v float64) Value {
	return Value{val: v, ok: true}
}

// Missing returns missing value.
func Missing() Value {
	return Value{}
}

// Get returns the observed number and true, or 0 and false if v is missing.
func (v Value) Get() (float64, bool) {
	if !v.ok {
		return 0, false
	}
	return v.val, true
}

// IsMissing returns true if v carries no observation.
func (v Value) IsMissing() bool {
	return !v.ok
}

// String implements the Stringer interface.
func (v Value) String() string {
	if !v.ok {
		return "NA"
	}
	return strconv.FormatFloat(v.val, 'g', -1, 64)
}

// Parse parses token into Value.
// Tokens equal to missing (case-insensitive) or blank are missing.
// It returns error if token is neither missing nor a finite number.
func Parse(token, missing string) (Value, error) {
	token = strings.TrimSpace(token)
	if token == "" || strings.EqualFold(token, missing) {
		return Missing(), nil
	}

	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid observation %q: %w", token, err)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("non-finite observation %q", token)
	}

	return Present(f), nil
}

// Matrix is an immutable entity x time matrix of observations.
// Rows are entities, columns are time steps.
type Matrix struct {
	// rows stores observations in entity-major order
	rows [][]Value
	// names are optional entity labels
	names []string
	// steps is number of columns
	steps int
}

// NewMatrix creates new observation matrix from rows and returns it.
// Each row holds observations of one entity across all time steps.
// It returns error if rows is empty, rows have different lengths or
// a present value is not finite.
func NewMatrix(rows [][]Value) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty observation matrix")
	}

	steps := len(rows[0])
	data := make([][]Value, len(rows))
	for i, row := range rows {
		if len(row) != steps {
			return nil, fmt.Errorf("invalid row %d length: %d != %d", i, len(row), steps)
		}
		for t, v := range row {
			if v.ok && (math.IsNaN(v.val) || math.IsInf(v.val, 0)) {
				return nil, fmt.Errorf("non-finite observation of entity %d at step %d: %v", i, t+1, v.val)
			}
		}
		data[i] = make([]Value, steps)
		copy(data[i], row)
	}

	return &Matrix{
		rows:  data,
		steps: steps,
	}, nil
}

// NewNamedMatrix creates new observation matrix with entity labels.
// It returns error if the number of names does not match the number of rows.
func NewNamedMatrix(names []string, rows [][]Value) (*Matrix, error) {
	m, err := NewMatrix(rows)
	if err != nil {
		return nil, err
	}

	if len(names) != len(rows) {
		return nil, fmt.Errorf("invalid number of names: %d != %d", len(names), len(rows))
	}

	m.names = make([]string, len(names))
	copy(m.names, names)

	return m, nil
}

// Dims returns number of entities and number of time steps.
func (m *Matrix) Dims() (entities, steps int) {
	return len(m.rows), m.steps
}

// At returns observation of entity i at time step t (both 0-based).
// It panics if either index is out of range.
func (m *Matrix) At(i, t int) Value {
	return m.rows[i][t]
}

// Names returns entity labels.
// If the matrix was created without labels it returns "0", "1", ...
func (m *Matrix) Names() []string {
	names := make([]string, len(m.rows))
	if m.names != nil {
		copy(names, m.names)
		return names
	}

	for i := range names {
		names[i] = strconv.Itoa(i)
	}

	return names
}

// Observed returns the ordered indices of entities observed at time step t
// together with their observed values.
// The index slice is empty and the vector nil if nothing was observed at t.
// It panics if t is out of range.
func (m *Matrix) Observed(t int) ([]int, *mat.VecDense) {
	if t < 0 || t >= m.steps {
		panic(fmt.Sprintf("obs: step %d out of range [0, %d)", t, m.steps))
	}

	idx := make([]int, 0, len(m.rows))
	vals := make([]float64, 0, len(m.rows))
	for i, row := range m.rows {
		if v, ok := row[t].Get(); ok {
			idx = append(idx, i)
			vals = append(vals, v)
		}
	}

	if len(idx) == 0 {
		return idx, nil
	}

	return idx, mat.NewVecDense(len(vals), vals)
}

// Count returns the number of present observations.
func (m *Matrix) Count() int {
	var n int
	for _, row := range m.rows {
		for _, v := range row {
			if !v.IsMissing() {
				n++
			}
		}
	}

	return n
}
