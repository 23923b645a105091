// Package latency keeps a bounded history of latency reporting intervals.
//
// A Recorder collects millisecond samples into the current interval. Each
// Rotate closes that interval and pushes it onto a ring.Stack, so only the
// most recent intervals are retained.
package latency

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/buoyantio/ringstack/hdrreport"
	"github.com/buoyantio/ringstack/ring"
	"github.com/buoyantio/ringstack/window"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrInvalidDepth is returned by NewRecorder for a depth below 1.
var ErrInvalidDepth = errors.New("latency: depth must be at least 1")

// Interval summarizes one closed reporting interval.
type Interval struct {
	At     time.Time
	Count  int64
	Min    int64
	Max    int64
	P50    int64
	P95    int64
	P99    int64
	P999   int64
	Change string
}

// Recorder is not safe for concurrent use.
type Recorder struct {
	current   *hdrhistogram.Histogram
	global    *hdrhistogram.Histogram
	summaries *ring.Stack[Interval]
	hists     *ring.Stack[*hdrhistogram.Histogram]
	p99s      *ring.Stack[int]
	metrics   *recorderMetrics
}

type options struct {
	registerer prometheus.Registerer
	namespace  string
}

// Option configures a Recorder.
type Option func(*options)

// WithMetrics exports the recorder's activity to reg under namespace.
// A nil reg is ignored.
func WithMetrics(reg prometheus.Registerer, namespace string) Option {
	return func(o *options) {
		o.registerer = reg
		o.namespace = namespace
	}
}

// NewRecorder returns a Recorder keeping the last depth intervals.
func NewRecorder(depth int, opts ...Option) (*Recorder, error) {
	if depth < 1 {
		return nil, ErrInvalidDepth
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := &Recorder{
		current:   hdrreport.New(),
		global:    hdrreport.New(),
		summaries: ring.New[Interval](depth),
		hists:     ring.New[*hdrhistogram.Histogram](depth),
		p99s:      ring.New[int](depth),
	}
	if o.registerer != nil {
		m, err := newRecorderMetrics(o.registerer, o.namespace)
		if err != nil {
			return nil, err
		}
		r.metrics = m
	}
	return r, nil
}

// Record adds a latency sample to the current interval.
func (r *Recorder) Record(ms int64) error {
	if err := r.current.RecordValue(ms); err != nil {
		return fmt.Errorf("record latency %dms: %w", ms, err)
	}
	if err := r.global.RecordValue(ms); err != nil {
		return fmt.Errorf("record global latency %dms: %w", ms, err)
	}
	if r.metrics != nil {
		r.metrics.recordSample(ms)
	}
	return nil
}

// Rotate closes the current interval and starts a new one.
func (r *Recorder) Rotate(at time.Time) Interval {
	hist := r.current
	r.current = hdrreport.New()

	summary := Interval{
		At:    at,
		Count: hist.TotalCount(),
		P50:   hist.ValueAtQuantile(50),
		P95:   hist.ValueAtQuantile(95),
		P99:   hist.ValueAtQuantile(99),
		P999:  hist.ValueAtQuantile(99.9),
	}
	if summary.Count > 0 {
		summary.Min = hist.Min()
		summary.Max = hist.Max()
	}

	// The change indicator is based on how far the current value is
	// from what we've seen historically, so compare before pushing.
	lastP99 := int(summary.P99)
	summary.Change = window.CalculateChangeIndicator(r.p99s, lastP99)
	r.p99s.Push(lastP99)

	evicted := r.hists.Len() == r.hists.Cap()
	r.summaries.Push(summary)
	r.hists.Push(hist)
	if r.metrics != nil {
		r.metrics.recordRotate(r.hists.Len(), evicted)
	}
	return summary
}

// Intervals yields the retained interval summaries, newest first.
func (r *Recorder) Intervals() iter.Seq2[int, Interval] {
	return r.summaries.All()
}

// Latest returns the most recently closed interval.
func (r *Recorder) Latest() (Interval, bool) {
	return r.summaries.Peek()
}

// Recent merges the histograms of the retained intervals.
func (r *Recorder) Recent() *hdrhistogram.Histogram {
	return hdrreport.Merge(r.hists)
}

// Global returns a histogram of every sample recorded so far.
func (r *Recorder) Global() *hdrhistogram.Histogram {
	return r.global
}
