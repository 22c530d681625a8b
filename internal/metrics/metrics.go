package metrics

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const namespace = "hotlist"

// Cycle outcome label values.
const (
	OutcomePublished = "published"
	OutcomeSkipped   = "skipped"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and
// records nothing, so components can be used without a registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	cycles        *prometheus.CounterVec
	fetchDur      prometheus.Histogram
	fetchFailures prometheus.Counter
	eventsSkipped prometheus.Counter
	snapshotItems prometheus.Gauge
	lastPublish   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Refresh cycles by outcome",
		}, []string{"outcome"}),
		fetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching the upstream event list",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Upstream fetches that produced no usable event list",
		}),
		eventsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_skipped_total",
			Help:      "Malformed upstream events dropped before ranking",
		}),
		snapshotItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_items",
			Help:      "Number of events in the published snapshot",
		}),
		lastPublish: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_publish_timestamp_seconds",
			Help:      "Unix timestamp of the last published snapshot",
		}),
	}
	m.cycles.WithLabelValues(OutcomePublished)
	m.cycles.WithLabelValues(OutcomeSkipped)

	reg.MustRegister(
		m.cycles, m.fetchDur, m.fetchFailures,
		m.eventsSkipped, m.snapshotItems, m.lastPublish,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveFetch records one upstream fetch.
func (m *Metrics) ObserveFetch(d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.fetchDur.Observe(d.Seconds())
	if !ok {
		m.fetchFailures.Inc()
	}
}

// EventsSkipped adds n dropped events.
func (m *Metrics) EventsSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.eventsSkipped.Add(float64(n))
}

// Cycle counts one finished cycle with the given outcome.
func (m *Metrics) Cycle(outcome string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(outcome).Inc()
}

// Published records a newly published snapshot.
func (m *Metrics) Published(items int, at time.Time) {
	if m == nil {
		return
	}
	m.snapshotItems.Set(float64(items))
	m.lastPublish.Set(float64(at.Unix()))
}

// Dump writes every family gathered from g to w in the text format.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Totals gathers from g and returns, per family name, the sum of all counter,
// gauge and untyped samples. Histograms report their sample count.
func Totals(g prometheus.Gatherer) (map[string]float64, error) {
	mfs, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("metrics: gather: %w", err)
	}
	out := make(map[string]float64, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = sumFamily(mf)
	}
	return out, nil
}

// sumFamily adds up all values in a MetricFamily. Returns 0 if mf is nil.
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		case m.Histogram != nil:
			total += float64(m.Histogram.GetSampleCount())
		}
	}
	return total
}
