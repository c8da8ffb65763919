package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gt-go/internal/config"
	"gt-go/internal/gt"
)

// Provider records what the watch loop observes.
type Provider interface {
	// Instrument wraps a scheduler so every callback run is timed.
	Instrument(s gt.Scheduler) gt.Scheduler
	ObserveTick(err error)
	SetStatus(st gt.Status)
	// Handler serves the exposition format, or nil when metrics are off.
	Handler() http.Handler
}

// PrometheusProvider keeps its collectors on a private registry so several
// providers can coexist in one process.
type PrometheusProvider struct {
	registry      *prometheus.Registry
	resin         prometheus.Gauge
	notifications *prometheus.GaugeVec
	ticks         *prometheus.CounterVec
	tickDuration  prometheus.Histogram
}

func NewPrometheusProvider() *PrometheusProvider {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusProvider{
		registry: reg,
		resin: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gt_resin_current",
			Help: "Current resin amount",
		}),
		notifications: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gt_notifications_active",
			Help: "Active notifications by severity",
		}, []string{"severity"}),
		ticks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gt_ticks_total",
			Help: "Total number of ticks by result",
		}, []string{"result"}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gt_tick_duration_seconds",
			Help:    "Tick duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (p *PrometheusProvider) Instrument(s gt.Scheduler) gt.Scheduler {
	return &timedScheduler{next: s, observe: p.tickDuration}
}

func (p *PrometheusProvider) ObserveTick(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.ticks.WithLabelValues(result).Inc()
}

// SetStatus updates the gauges from a status snapshot. Every severity is
// written so a resolved alert drops back to zero.
func (p *PrometheusProvider) SetStatus(st gt.Status) {
	p.resin.Set(float64(st.Resin.Amount))

	counts := map[gt.Severity]int{
		gt.SeverityInfo:    0,
		gt.SeverityWarning: 0,
		gt.SeverityDanger:  0,
	}
	for _, n := range st.Notifications {
		counts[n.Severity]++
	}
	for severity, n := range counts {
		p.notifications.WithLabelValues(string(severity)).Set(float64(n))
	}
}

func (p *PrometheusProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

type timedScheduler struct {
	next    gt.Scheduler
	observe prometheus.Observer
}

func (t *timedScheduler) Schedule(interval time.Duration, fn func()) func() {
	return t.next.Schedule(interval, func() {
		timer := prometheus.NewTimer(t.observe)
		defer timer.ObserveDuration()
		fn()
	})
}

// NewProviderFromConfig returns a prometheus provider when metrics are
// enabled and a no-op one otherwise.
func NewProviderFromConfig(cfg config.MetricsConfig) Provider {
	if !cfg.Enabled {
		return &noopProvider{}
	}
	return NewPrometheusProvider()
}

// noopProvider is used when metrics are disabled.
type noopProvider struct{}

func (n *noopProvider) Instrument(s gt.Scheduler) gt.Scheduler { return s }
func (n *noopProvider) ObserveTick(_ error)                    {}
func (n *noopProvider) SetStatus(_ gt.Status)                  {}
func (n *noopProvider) Handler() http.Handler                  { return nil }
