package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/plugin-exporter/pkg/logger"
	"github.com/plugin-exporter/pkg/metrics"
	"github.com/plugin-exporter/pkg/registers"
)

// -------------------------- CPU采集器指标结构体 --------------------------
type cpuMetrics struct {
	usageRatio *prometheus.GaugeVec // CPU使用率（0-1）
	modeRatio  *prometheus.GaugeVec // 各模式时间占比（0-1）
	info       *prometheus.GaugeVec // 型号/核心数
	load1      prometheus.Gauge     // 1分钟负载
	load5      prometheus.Gauge     // 5分钟负载
	load15     prometheus.Gauge     // 15分钟负载
}

func newCPUMetrics(f *metrics.MetricFactory) cpuMetrics {
	return cpuMetrics{
		usageRatio: f.NewCPUUsageRatio(),
		modeRatio:  f.NewCPUModeRatio(),
		info:       f.NewCPUInfo(),
		load1:      f.NewCPULoad1(),
		load5:      f.NewCPULoad5(),
		load15:     f.NewCPULoad15(),
	}
}

// -------------------------- 内存采集器指标结构体 --------------------------
type memoryMetrics struct {
	bytes      *prometheus.GaugeVec // total/available/used（字节）
	usageRatio prometheus.Gauge     // 内存使用率（0-1）
}

func newMemoryMetrics(f *metrics.MetricFactory) memoryMetrics {
	return memoryMetrics{
		bytes:      f.NewMemoryBytes(),
		usageRatio: f.NewMemoryUsageRatio(),
	}
}

// -------------------------- 磁盘采集器指标结构体 --------------------------
type diskMetrics struct {
	usageRatio *prometheus.GaugeVec // 磁盘使用率（0-1）
	usedBytes  *prometheus.GaugeVec // 已用空间（字节）
	freeBytes  *prometheus.GaugeVec // 空闲空间（字节）
}

func newDiskMetrics(f *metrics.MetricFactory) diskMetrics {
	return diskMetrics{
		usageRatio: f.NewDiskUsageRatio(),
		usedBytes:  f.NewDiskUsedBytes(),
		freeBytes:  f.NewDiskFreeBytes(),
	}
}

// -------------------------- 网络采集器指标结构体 --------------------------
type networkMetrics struct {
	transmitBytes  *prometheus.CounterVec // 发送字节数（累计）
	receiveBytes   *prometheus.CounterVec // 接收字节数（累计）
	transmitErrors *prometheus.CounterVec // 发送错误数（累计）
	receiveErrors  *prometheus.CounterVec // 接收错误数（累计）
}

func newNetworkMetrics(f *metrics.MetricFactory) networkMetrics {
	return networkMetrics{
		transmitBytes:  f.NewNetworkTransmitBytesTotal(),
		receiveBytes:   f.NewNetworkReceiveBytesTotal(),
		transmitErrors: f.NewNetworkTransmitErrorsTotal(),
		receiveErrors:  f.NewNetworkReceiveErrorsTotal(),
	}
}

// toSet 忽略列表转集合
func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// unitLogger 采集器专用 logger，未注入时退回全局 logger
func unitLogger(deps registers.Deps, name string) *zap.Logger {
	if deps.Logger == nil {
		return logger.ForCollector(name)
	}
	return deps.Logger.With(zap.String("collector", name))
}
