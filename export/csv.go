package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	filter "github.com/milosgajdos/go-assimilate"
	"github.com/milosgajdos/go-assimilate/estimate"
	"github.com/milosgajdos/go-assimilate/kalman/kf"
)

const (
	// Forecast marks forecast rows
	Forecast = "forecast"
	// Analysis marks analysis rows
	Analysis = "analysis"
	// Smoothed marks smoothed rows
	Smoothed = "smoothed"
)

// Exporter defines an export interface.
type Exporter interface {
	Write(*kf.Result) error
}

// CSV exports filter results as CSV: one row per forecast and analysis
// holding the mean of every entity and its confidence band.
type CSV struct {
	w     *csv.Writer
	names []string
	z     float64
}

// NewCSV creates new CSV exporter which writes to w.
// names label the entities and z is the number of standard deviations
// of the confidence band.
func NewCSV(w io.Writer, names []string, z float64) *CSV {
	n := make([]string, len(names))
	copy(n, names)

	return &CSV{
		w:     csv.NewWriter(w),
		names: n,
		z:     z,
	}
}

// Header returns CSV header: step, kind and three columns per entity.
func (e *CSV) Header() []string {
	hdr := make([]string, 2, 2+len(e.names)*3)
	hdr[0], hdr[1] = "step", "kind"
	for _, name := range e.names {
		hdr = append(hdr, name, name+"_lo", name+"_hi")
	}

	return hdr
}

// Write writes the header followed by the forecast and analysis of every step of res
// and the final forecast.
// It returns error if res is nil, its estimates do not have one value per name
// or writing fails.
func (e *CSV) Write(res *kf.Result) error {
	if res == nil {
		return fmt.Errorf("invalid filter result: nil")
	}

	if err := e.w.Write(e.Header()); err != nil {
		return err
	}

	fc := res.Forecasts()
	for t, an := range res.Analyses() {
		if err := e.write(t+1, Forecast, fc[t]); err != nil {
			return err
		}
		if err := e.write(t+1, Analysis, an); err != nil {
			return err
		}
	}

	if err := e.write(len(fc), Forecast, fc[len(fc)-1]); err != nil {
		return err
	}

	e.w.Flush()

	return e.w.Error()
}

// WriteEstimates writes the header followed by one row of the given kind
// per estimate in est. Rows are numbered from 1.
func (e *CSV) WriteEstimates(kind string, est []filter.Estimate) error {
	if err := e.w.Write(e.Header()); err != nil {
		return err
	}

	for t, x := range est {
		if err := e.write(t+1, kind, x); err != nil {
			return err
		}
	}

	e.w.Flush()

	return e.w.Error()
}

func (e *CSV) write(step int, kind string, est filter.Estimate) error {
	if est.Val().Len() != len(e.names) {
		return fmt.Errorf("invalid estimate length: %d != %d: %w", est.Val().Len(), len(e.names), filter.ErrDimensionMismatch)
	}

	lo, hi := estimate.Band(est, e.z)

	rec := make([]string, 2, 2+len(e.names)*3)
	rec[0], rec[1] = strconv.Itoa(step), kind
	for i := range e.names {
		rec = append(rec,
			formatFloat(est.Val().AtVec(i)),
			formatFloat(lo[i]),
			formatFloat(hi[i]))
	}

	return e.w.Write(rec)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
