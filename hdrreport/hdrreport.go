package hdrreport

import (
	"fmt"
	"io"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/buoyantio/ringstack/ring"
)

// DayInMs is the highest latency, in milliseconds, tracked by New.
const DayInMs int64 = 24 * 60 * 60 * 1000

// New returns a histogram tracking millisecond latencies up to a day.
func New() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, DayInMs, 3)
}

// Merge combines every histogram retained in history into a new one.
func Merge(history *ring.Stack[*hdrhistogram.Histogram]) *hdrhistogram.Histogram {
	merged := New()
	for hist := range history.Values() {
		merged.Merge(hist)
	}
	return merged
}

func WriteReportCSV(w io.Writer, hist *hdrhistogram.Histogram) error {
	for _, bar := range hist.Distribution() {
		if _, err := io.WriteString(w, bar.String()); err != nil {
			return fmt.Errorf("write latency bar: %w", err)
		}
	}
	return nil
}

var summaryRanges = [][2]int64{
	{0, 2}, {2, 8}, {8, 32}, {32, 64}, {64, 128}, {128, 256},
	{256, 512}, {512, 1024}, {1024, 4096}, {4096, 16384},
}

func PrintLatencySummary(w io.Writer, hist *hdrhistogram.Histogram) {
	bars := hist.Distribution()
	fmt.Fprintf(w, "FROM    TO #REQUESTS\n")
	for _, r := range summaryRanges {
		fmt.Fprintf(w, "%4d %5d %d\n", r[0], r[1], SumBars(r[0], r[1], bars))
	}
}

// Given a sorted `[]hdrhistogram.Bar`, return the sum of every `Bar` in the
// Range of (from, to]. Inclusive of from, exclusive of to.
func SumBars(from int64, to int64, bars []hdrhistogram.Bar) int64 {
	count := int64(0)
	for _, bar := range bars {
		if bar.To >= to {
			// short circuit if we've passed the item
			// we're interested in.
			break
		}
		if bar.From >= from && bar.To < to {
			count = count + bar.Count
		}
	}
	return count
}
