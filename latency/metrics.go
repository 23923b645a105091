package latency

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// recorderMetrics holds the Prometheus collectors for a Recorder.
type recorderMetrics struct {
	samples   prometheus.Counter
	intervals prometheus.Counter
	evicted   prometheus.Counter
	retained  prometheus.Gauge
	latency   prometheus.Histogram
}

func newRecorderMetrics(reg prometheus.Registerer, namespace string) (*recorderMetrics, error) {
	m := &recorderMetrics{
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Number of latency samples recorded",
		}),
		intervals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intervals_total",
			Help:      "Number of reporting intervals closed",
		}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evicted_intervals_total",
			Help:      "Number of intervals dropped from the history",
		}),
		retained: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "retained_intervals",
			Help:      "Number of intervals currently kept in the history",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "latency_ms",
			Help:      "Latency distributions in milliseconds.",
			// 50 exponential buckets ranging from 0.5 ms to 3 minutes
			Buckets: prometheus.ExponentialBuckets(0.5, 1.3, 50),
		}),
	}

	collectors := []prometheus.Collector{m.samples, m.intervals, m.evicted, m.retained, m.latency}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			// Leave reg as it was so the caller can retry.
			for _, prev := range collectors[:i] {
				reg.Unregister(prev)
			}
			return nil, fmt.Errorf("register latency metrics: %w", err)
		}
	}
	return m, nil
}

func (m *recorderMetrics) recordSample(ms int64) {
	m.samples.Inc()
	m.latency.Observe(float64(ms))
}

func (m *recorderMetrics) recordRotate(retained int, evicted bool) {
	m.intervals.Inc()
	if evicted {
		m.evicted.Inc()
	}
	m.retained.Set(float64(retained))
}
