package collector

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/plugin-exporter/pkg/registers"
)

const memoryCollectorName = "memory"

func init() {
	registers.Register(memoryCollectorName, NewMemoryCollector)
}

// MemoryCollector 虚拟内存采集器
type MemoryCollector struct {
	metrics memoryMetrics
	logger  *zap.Logger
}

func NewMemoryCollector(deps registers.Deps) (registers.Collector, error) {
	return &MemoryCollector{
		metrics: newMemoryMetrics(deps.Metrics),
		logger:  unitLogger(deps, memoryCollectorName),
	}, nil
}

func (m *MemoryCollector) Name() string { return memoryCollectorName }

func (m *MemoryCollector) Collect() error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Errorf("get virtual memory: %w", err)
	}
	m.metrics.bytes.WithLabelValues("total").Set(float64(vm.Total))
	m.metrics.bytes.WithLabelValues("available").Set(float64(vm.Available))
	m.metrics.bytes.WithLabelValues("used").Set(float64(vm.Used))
	if vm.Total > 0 {
		m.metrics.usageRatio.Set(float64(vm.Used) / float64(vm.Total))
	}
	m.logger.Debug("collected memory metrics",
		zap.Uint64("total", vm.Total),
		zap.Uint64("available", vm.Available))
	return nil
}
