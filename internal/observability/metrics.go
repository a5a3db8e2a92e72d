package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for the impact simulation. It
// satisfies core.MetricsRecorder so the simulation can drive it directly.
type SimCollector struct {
	gatherer prometheus.Gatherer

	RunsStarted   prometheus.Counter
	RunsDiscarded prometheus.Counter
	RunsCompleted prometheus.Counter
	Reports       prometheus.Counter
	RayMisses     prometheus.Counter
	ActiveRuns    prometheus.Gauge
	FrameDeltas   prometheus.Histogram
	ImpactEnergy  prometheus.Histogram

	CatalogAsteroids prometheus.Gauge
}

// NewSimCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &SimCollector{gatherer: gatherer}
	var err error

	counters := []struct {
		dst  *prometheus.Counter
		name string
		help string
	}{
		{&c.RunsStarted, "impact_runs_started_total", "Impact runs started by a click on the planet."},
		{&c.RunsDiscarded, "impact_runs_discarded_total", "Impact runs discarded before their effect finished fading."},
		{&c.RunsCompleted, "impact_runs_completed_total", "Impact runs whose effect faded out completely."},
		{&c.Reports, "impact_reports_total", "Impact reports produced when a projectile reached the surface."},
		{&c.RayMisses, "impact_ray_misses_total", "Clicks whose ray did not intersect the planet."},
	}
	for _, ct := range counters {
		*ct.dst, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: ct.name,
			Help: ct.help,
		}), ct.name)
		if err != nil {
			return nil, err
		}
	}

	c.ActiveRuns, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "impact_active_runs",
		Help: "Number of impact runs currently animating (0 or 1).",
	}), "impact_active_runs")
	if err != nil {
		return nil, err
	}

	c.CatalogAsteroids, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_asteroids",
		Help: "Number of asteroid profiles loaded from the catalog.",
	}), "catalog_asteroids")
	if err != nil {
		return nil, err
	}

	c.FrameDeltas, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "impact_frame_delta_seconds",
		Help:    "Elapsed time delivered to the simulation per frame.",
		Buckets: []float64{0.004, 0.008, 0.016, 0.033, 0.05, 0.1, 0.25, 0.5, 1},
	}), "impact_frame_delta_seconds")
	if err != nil {
		return nil, err
	}

	c.ImpactEnergy, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "impact_energy_kilotons",
		Help:    "Kinetic energy of reported impacts in kilotons of TNT.",
		Buckets: prometheus.ExponentialBuckets(1, 10, 10),
	}), "impact_energy_kilotons")
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *SimCollector) RunStarted() {
	if c != nil && c.RunsStarted != nil {
		c.RunsStarted.Inc()
	}
}

func (c *SimCollector) RunDiscarded() {
	if c != nil && c.RunsDiscarded != nil {
		c.RunsDiscarded.Inc()
	}
}

func (c *SimCollector) RunCompleted() {
	if c != nil && c.RunsCompleted != nil {
		c.RunsCompleted.Inc()
	}
}

func (c *SimCollector) ReportGenerated(energyKt float64) {
	if c == nil {
		return
	}
	if c.Reports != nil {
		c.Reports.Inc()
	}
	if c.ImpactEnergy != nil {
		c.ImpactEnergy.Observe(energyKt)
	}
}

func (c *SimCollector) RayMissed() {
	if c != nil && c.RayMisses != nil {
		c.RayMisses.Inc()
	}
}

func (c *SimCollector) FrameObserved(dt time.Duration) {
	if c != nil && c.FrameDeltas != nil {
		c.FrameDeltas.Observe(dt.Seconds())
	}
}

func (c *SimCollector) SetActiveRuns(n int) {
	if c != nil && c.ActiveRuns != nil {
		c.ActiveRuns.Set(float64(n))
	}
}

// SetCatalogSize records how many asteroids the catalog holds.
func (c *SimCollector) SetCatalogSize(n int) {
	if c != nil && c.CatalogAsteroids != nil {
		c.CatalogAsteroids.Set(float64(n))
	}
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
