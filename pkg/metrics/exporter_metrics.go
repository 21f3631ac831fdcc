package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ScrapeMetrics 编排器写入的全部指标（每个采集器一条 label 序列）
type ScrapeMetrics struct {
	Failures      *prometheus.CounterVec
	Timeouts      *prometheus.CounterVec
	Duration      *prometheus.GaugeVec
	Up            *prometheus.GaugeVec
	LastSuccess   *prometheus.GaugeVec
	Loaded        *prometheus.GaugeVec
	RoundDuration prometheus.Histogram
}

// NewScrapeMetrics 创建并注册编排器指标
func (f *MetricFactory) NewScrapeMetrics() *ScrapeMetrics {
	return &ScrapeMetrics{
		Failures:      f.NewCollectorFailuresTotal(),
		Timeouts:      f.NewCollectorTimeoutsTotal(),
		Duration:      f.NewCollectorDurationSeconds(),
		Up:            f.NewCollectorUp(),
		LastSuccess:   f.NewCollectorLastSuccessTimestamp(),
		Loaded:        f.NewCollectorLoaded(),
		RoundDuration: f.NewScrapeDurationSeconds(),
	}
}

// Init 为每个已加载的采集器预先创建序列：计数器从0开始，loaded 置1
func (m *ScrapeMetrics) Init(names []string) {
	for _, name := range names {
		m.Failures.WithLabelValues(name)
		m.Timeouts.WithLabelValues(name)
		m.Loaded.WithLabelValues(name).Set(1)
	}
}

// NewCollectorFailuresTotal 采集器执行失败次数（返回错误或 panic）
func (f *MetricFactory) NewCollectorFailuresTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "collector_failures_total",
			Help:      "Number of collector runs that returned an error or panicked.",
		},
		[]string{"collector"},
	)
}

// NewCollectorTimeoutsTotal 采集器在本轮截止时间前未完成的次数
func (f *MetricFactory) NewCollectorTimeoutsTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "collector_timeouts_total",
			Help:      "Number of collector runs that did not finish before the scrape timeout.",
		},
		[]string{"collector"},
	)
}

// NewCollectorDurationSeconds 最近一次成功执行的耗时（从本轮开始计时）
// 失败或超时不会更新该值
func (f *MetricFactory) NewCollectorDurationSeconds() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "collector_duration_seconds",
			Help:      "Seconds from scrape start until the collector last finished successfully.",
		},
		[]string{"collector"},
	)
}

// NewCollectorUp 最近一轮结果：1 成功，0 失败或超时
func (f *MetricFactory) NewCollectorUp() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "collector_up",
			Help:      "Whether the collector succeeded in the last scrape (1) or failed/timed out (0).",
		},
		[]string{"collector"},
	)
}

// NewCollectorLastSuccessTimestamp 最近一次成功的 Unix 时间，用于判断 duration 是否过期
func (f *MetricFactory) NewCollectorLastSuccessTimestamp() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "collector_last_success_timestamp_seconds",
			Help:      "Unix time of the collector's last successful run.",
		},
		[]string{"collector"},
	)
}

// NewCollectorLoaded 已加载的采集器（进程信息序列，值恒为1）
func (f *MetricFactory) NewCollectorLoaded() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "collector_loaded",
			Help:      "Collectors loaded at startup.",
		},
		[]string{"collector"},
	)
}

// NewScrapeDurationSeconds 整轮抓取耗时分布
// 分桶覆盖 10ms ~ 约 80s
func (f *MetricFactory) NewScrapeDurationSeconds() prometheus.Histogram {
	return promauto.With(f.reg).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Wall time of whole scrape rounds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)
}
