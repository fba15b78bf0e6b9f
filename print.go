package hdrhistogram

import (
	"fmt"
	"io"
)

// PrintFormat selects the percentile report rendering.
type PrintFormat int

const (
	// Classic renders a fixed-width text table with a summary footer.
	Classic PrintFormat = iota
	// CSV renders comma-separated rows, no footer.
	CSV
)

// PercentilePrinter renders human-readable percentile distributions.
type PercentilePrinter struct {
	w          io.Writer
	valueScale float64
}

// NewPercentilePrinter builds a printer writing to w. valueScale divides
// every printed value — e.g. pass 1000 to report microsecond-valued
// histograms in milliseconds.
func NewPercentilePrinter(w io.Writer, valueScale float64) *PercentilePrinter {
	if valueScale == 0 {
		valueScale = 1
	}
	return &PercentilePrinter{w: w, valueScale: valueScale}
}

// Print renders h's percentile distribution in the given format, walking a
// percentile iterator with the given ticksPerHalfDistance.
func (p *PercentilePrinter) Print(h *Histogram, format PrintFormat, ticksPerHalfDistance int32) error {
	precision := int(h.significantFigures)

	if format == CSV {
		return p.printCSV(h, ticksPerHalfDistance, precision)
	}
	return p.printClassic(h, ticksPerHalfDistance, precision)
}

func (p *PercentilePrinter) printClassic(h *Histogram, ticks int32, precision int) error {
	if _, err := fmt.Fprintf(p.w, "%12s %14s %10s %14s\n\n", "Value", "Percentile", "TotalCount", "1/(1-Percentile)"); err != nil {
		return err
	}

	it := h.percentileIterator(ticks)
	for it.Next() {
		value := float64(it.Value()) / p.valueScale
		fraction := it.Percentile() / 100.0
		if _, err := fmt.Fprintf(p.w, "%12.*f %1.12f %10d %14s\n",
			precision, value, fraction, it.CountToIndex(), formatInverse(it.InversePercentile())); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(p.w,
		"#[Mean    = %.*f, StdDeviation   = %.*f]\n#[Max     = %.*f, TotalCount     = %d]\n#[Buckets = %d, SubBuckets     = %d]\n",
		precision, h.Mean()/p.valueScale,
		precision, h.StdDev()/p.valueScale,
		precision, float64(h.Max())/p.valueScale, h.TotalCount(),
		h.bucketCount, h.subBucketCount)
	return err
}

func (p *PercentilePrinter) printCSV(h *Histogram, ticks int32, precision int) error {
	if _, err := fmt.Fprintf(p.w, "Value,Percentile,TotalCount,1/(1-Percentile)\n"); err != nil {
		return err
	}

	it := h.percentileIterator(ticks)
	for it.Next() {
		value := float64(it.Value()) / p.valueScale
		fraction := it.Percentile() / 100.0
		if _, err := fmt.Fprintf(p.w, "%.*f,%.12f,%d,%s\n",
			precision, value, fraction, it.CountToIndex(), formatInverse(it.InversePercentile())); err != nil {
			return err
		}
	}
	return nil
}

func formatInverse(v float64) string {
	if v > 1e15 {
		return "Infinity"
	}
	return fmt.Sprintf("%.2f", v)
}
