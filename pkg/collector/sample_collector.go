package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/plugin-exporter/pkg/registers"
)

const sampleCollectorName = "sample"

func init() {
	registers.Register(sampleCollectorName, NewSampleCollector)
}

// SampleCollector 示例采集器：把抓取超时（秒）写入 sample_metric
type SampleCollector struct {
	value  float64
	gauge  *prometheus.GaugeVec
	logger *zap.Logger
}

func NewSampleCollector(deps registers.Deps) (registers.Collector, error) {
	return &SampleCollector{
		value:  deps.Config.Scrape.Timeout.Seconds(),
		gauge:  deps.Metrics.NewSampleMetric(),
		logger: unitLogger(deps, sampleCollectorName),
	}, nil
}

func (s *SampleCollector) Name() string { return sampleCollectorName }

func (s *SampleCollector) Collect() error {
	s.gauge.WithLabelValues("test").Set(s.value)
	s.logger.Debug("sample metric updated", zap.Float64("value", s.value))
	return nil
}
