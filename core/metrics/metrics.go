package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the catalog feature reports to.
type Recorder interface {
	RecordSync(outcome string, duration time.Duration)
	RecordItems(stage string, count int)
	RecordMatchStatus(status string, count int)
	RecordOperation(opType, outcome string)
}

// Sync pass outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeUnreachable = "unreachable"
	OutcomeError       = "error"
)

// Item pipeline stages.
const (
	StageFetched   = "fetched"
	StageCollapsed = "collapsed"
	StageUpserted  = "upserted"
	StagePruned    = "pruned"
)

// Collector records catalog metrics in Prometheus.
type Collector struct {
	syncs       *prometheus.CounterVec
	syncLatency prometheus.Histogram
	items       *prometheus.CounterVec
	matches     *prometheus.CounterVec
	operations  *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emby_tagger_sync_passes_total",
			Help: "Reconciliation passes by outcome.",
		}, []string{"outcome"}),
		syncLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "emby_tagger_sync_duration_seconds",
			Help:    "Duration of reconciliation passes.",
			Buckets: prometheus.DefBuckets,
		}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emby_tagger_sync_items_total",
			Help: "Remote items seen by a reconciliation pass, by stage.",
		}, []string{"stage"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emby_tagger_match_results_total",
			Help: "Match results by status.",
		}, []string{"status"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emby_tagger_mapping_operations_total",
			Help: "Mapping operations by type and outcome.",
		}, []string{"type", "outcome"}),
	}

	reg.MustRegister(
		c.syncs,
		c.syncLatency,
		c.items,
		c.matches,
		c.operations,
	)

	return c
}

// RecordSync counts a pass and observes its latency.
func (c *Collector) RecordSync(outcome string, duration time.Duration) {
	c.syncs.WithLabelValues(outcome).Inc()
	c.syncLatency.Observe(duration.Seconds())
}

// RecordItems adds count items to a pipeline stage.
func (c *Collector) RecordItems(stage string, count int) {
	c.items.WithLabelValues(stage).Add(float64(count))
}

// RecordMatchStatus adds count results with the given status.
func (c *Collector) RecordMatchStatus(status string, count int) {
	c.matches.WithLabelValues(status).Add(float64(count))
}

// RecordOperation counts one mapping operation.
func (c *Collector) RecordOperation(opType, outcome string) {
	c.operations.WithLabelValues(opType, outcome).Inc()
}

// Handler returns a fiber handler serving the gatherer in the Prometheus
// exposition format.
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordSync(string, time.Duration) {}
func (Nop) RecordItems(string, int)          {}
func (Nop) RecordMatchStatus(string, int)    {}
func (Nop) RecordOperation(string, string)   {}
