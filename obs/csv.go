package obs

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// DefaultMissing is the token used for missing observations in CSV input.
const DefaultMissing = "NA"

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	// Comma is field delimiter; defaults to ','
	Comma rune
	// Missing is the missing value token; defaults to DefaultMissing
	Missing string
	// Header skips the first record (time step labels) if set
	Header bool
}

// ReadCSV reads entity x time observations from r.
// Every record holds the entity label in its first field followed by
// one field per time step. Blank fields and fields equal to the missing
// token are missing observations.
// It returns error if the input is empty, malformed or records differ in length.
func ReadCSV(r io.Reader, opts CSVOptions) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	missing := opts.Missing
	if missing == "" {
		missing = DefaultMissing
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}

	if opts.Header && len(records) > 0 {
		records = records[1:]
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no observation records")
	}

	names := make([]string, len(records))
	rows := make([][]Value, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("record %d: no observations", i+1)
		}
		names[i] = strings.TrimSpace(rec[0])
		rows[i] = make([]Value, len(rec)-1)
		for t, field := range rec[1:] {
			v, err := Parse(field, missing)
			if err != nil {
				return nil, fmt.Errorf("record %d, step %d: %w", i+1, t+1, err)
			}
			rows[i][t] = v
		}
	}

	return NewNamedMatrix(names, rows)
}

// WriteCSV writes m to w in the format read by ReadCSV.
func WriteCSV(w io.Writer, m *Matrix) error {
	cw := csv.NewWriter(w)
	names := m.Names()
	for i, row := range m.rows {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, names[i])
		for _, v := range row {
			rec = append(rec, v.String())
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
