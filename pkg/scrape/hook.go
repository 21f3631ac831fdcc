package scrape

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Gatherer runs a scrape round on every Gather call before delegating to
// next, so the served families reflect the round that was just triggered.
func (o *Orchestrator) Gatherer(next prometheus.Gatherer) prometheus.Gatherer {
	return prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) {
		o.Scrape()
		return next.Gather()
	})
}
