package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace 导出器自身指标的命名空间
const Namespace = "exporter"

// MetricFactory 指标工厂，用于统一创建并注册指标（counter/gauge/histogram）。
// 进程启动时创建一次，显式传递给编排器与各采集器（不依赖全局注册器）。
type MetricFactory struct {
	reg Registers
}

// NewMetricFactory 创建指标工厂
func NewMetricFactory(reg Registers) *MetricFactory {
	return &MetricFactory{reg: reg}
}

// Registry 返回底层注册器（HTTP 暴露与测试使用）
func (m *MetricFactory) Registry() Registers {
	return m.reg
}

// Register 注册任意 prometheus.Collector（如进程指标、构建信息）
func (m *MetricFactory) Register(c prometheus.Collector) error {
	return m.reg.Register(c)
}
