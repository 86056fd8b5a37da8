package mediabridge

import "github.com/prometheus/client_golang/prometheus"

// StatsSource yields delivery metrics for a collector. *Session satisfies
// it.
type StatsSource interface {
	Stats() BroadcasterStats
}

// StatsCollector exposes broadcaster delivery metrics as Prometheus
// metrics. Register it with a prometheus.Registerer; each scrape takes a
// fresh snapshot from the source.
type StatsCollector struct {
	source StatsSource

	published *prometheus.Desc
	dropped   *prometheus.Desc
	delivered *prometheus.Desc
	evicted   *prometheus.Desc
}

// NewStatsCollector creates a collector over one stats source.
func NewStatsCollector(source StatsSource) *StatsCollector {
	return &StatsCollector{
		source: source,
		published: prometheus.NewDesc(
			"mediabridge_events_published_total",
			"Mapped events fanned out to subscriptions.",
			nil, nil,
		),
		dropped: prometheus.NewDesc(
			"mediabridge_events_unmapped_total",
			"Raw engine records dropped for lack of a mapped representation.",
			nil, nil,
		),
		delivered: prometheus.NewDesc(
			"mediabridge_events_delivered_total",
			"Events placed into a subscription buffer.",
			[]string{"subscription"}, nil,
		),
		evicted: prometheus.NewDesc(
			"mediabridge_events_evicted_total",
			"Buffered events evicted in favor of newer ones.",
			[]string{"subscription"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.published
	ch <- c.dropped
	ch <- c.delivered
	ch <- c.evicted
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()

	ch <- prometheus.MustNewConstMetric(c.published, prometheus.CounterValue, float64(stats.Published))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(stats.Dropped))

	for id, sub := range stats.Subscriptions {
		label := id.String()
		ch <- prometheus.MustNewConstMetric(c.delivered, prometheus.CounterValue, float64(sub.Delivered), label)
		ch <- prometheus.MustNewConstMetric(c.evicted, prometheus.CounterValue, float64(sub.Evicted), label)
	}
}
