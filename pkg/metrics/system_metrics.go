package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// -------------------------- sample 采集器指标 --------------------------

func (f *MetricFactory) NewSampleMetric() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sample_metric",
			Help: "Sample gauge set to the configured scrape timeout in seconds.",
		},
		[]string{"mylabel"},
	)
}

// -------------------------- CPU指标 --------------------------

func (f *MetricFactory) NewCPUUsageRatio() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_cpu_usage_ratio",
			Help: "CPU usage ratio (0-1) per core or total",
		},
		[]string{"cpu"}, // 标签：cpu0/cpu1/.../total
	)
}

func (f *MetricFactory) NewCPULoad1() prometheus.Gauge {
	return promauto.With(f.reg).NewGauge(prometheus.GaugeOpts{
		Name: "system_cpu_load_1",
		Help: "CPU 1-minute load average",
	})
}

func (f *MetricFactory) NewCPULoad5() prometheus.Gauge {
	return promauto.With(f.reg).NewGauge(prometheus.GaugeOpts{
		Name: "system_cpu_load_5",
		Help: "CPU 5-minute load average",
	})
}

func (f *MetricFactory) NewCPULoad15() prometheus.Gauge {
	return promauto.With(f.reg).NewGauge(prometheus.GaugeOpts{
		Name: "system_cpu_load_15",
		Help: "CPU 15-minute load average",
	})
}

// NewCPUModeRatio 各模式（user/system/idle...）时间占比，基于两次采集的差值
func (f *MetricFactory) NewCPUModeRatio() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_cpu_mode_ratio",
			Help: "Share of CPU time spent in each mode since the previous collection",
		},
		[]string{"cpu", "mode"},
	)
}

// NewCPUInfo CPU 静态信息，值恒为1
func (f *MetricFactory) NewCPUInfo() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_cpu_info",
			Help: "CPU model and core counts",
		},
		[]string{"model_name", "physical_cores", "logical_cores"},
	)
}

// -------------------------- 内存指标 --------------------------

func (f *MetricFactory) NewMemoryBytes() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_memory_bytes",
			Help: "Virtual memory in bytes by state (total, available, used)",
		},
		[]string{"state"},
	)
}

func (f *MetricFactory) NewMemoryUsageRatio() prometheus.Gauge {
	return promauto.With(f.reg).NewGauge(prometheus.GaugeOpts{
		Name: "system_memory_usage_ratio",
		Help: "Memory usage ratio (used / total)",
	})
}

// -------------------------- 磁盘指标 --------------------------

func (f *MetricFactory) NewDiskUsageRatio() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_disk_usage_ratio",
			Help: "Disk usage ratio (used / total)",
		},
		[]string{"device", "mountpoint"},
	)
}

func (f *MetricFactory) NewDiskUsedBytes() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_disk_used_bytes",
			Help: "Disk used space in bytes",
		},
		[]string{"device", "mountpoint"},
	)
}

func (f *MetricFactory) NewDiskFreeBytes() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_disk_free_bytes",
			Help: "Disk free space in bytes",
		},
		[]string{"device", "mountpoint"},
	)
}

// -------------------------- 网络指标 --------------------------

func (f *MetricFactory) NewNetworkTransmitBytesTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "system_network_transmit_bytes_total",
			Help: "Total bytes transmitted over the network interface",
		},
		[]string{"interface"},
	)
}

func (f *MetricFactory) NewNetworkReceiveBytesTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "system_network_receive_bytes_total",
			Help: "Total bytes received over the network interface",
		},
		[]string{"interface"},
	)
}

func (f *MetricFactory) NewNetworkTransmitErrorsTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "system_network_transmit_errors_total",
			Help: "Total transmit errors over the network interface",
		},
		[]string{"interface"},
	)
}

func (f *MetricFactory) NewNetworkReceiveErrorsTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "system_network_receive_errors_total",
			Help: "Total receive errors over the network interface",
		},
		[]string{"interface"},
	)
}
