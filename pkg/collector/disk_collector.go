package collector

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"github.com/plugin-exporter/pkg/registers"
)

const diskCollectorName = "disk"

func init() {
	registers.Register(diskCollectorName, NewDiskCollector)
}

// DiskCollector 文件系统容量采集器
// 挂载点不可达时 Usage 可能长时间阻塞，由编排器的超时兜底
type DiskCollector struct {
	metrics           diskMetrics
	logger            *zap.Logger
	ignoreMountpoints map[string]struct{}
	ignoreFSTypes     map[string]struct{}
}

func NewDiskCollector(deps registers.Deps) (registers.Collector, error) {
	cfg := deps.Config.Scrape.Collectors.Disk
	return &DiskCollector{
		metrics:           newDiskMetrics(deps.Metrics),
		logger:            unitLogger(deps, diskCollectorName),
		ignoreMountpoints: toSet(cfg.IgnoreMountpoints),
		ignoreFSTypes:     toSet(cfg.IgnoreFSTypes),
	}, nil
}

func (d *DiskCollector) Name() string { return diskCollectorName }

func (d *DiskCollector) Collect() error {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return fmt.Errorf("list partitions: %w", err)
	}

	var collected, failed int
	for _, p := range partitions {
		if d.ignored(p) {
			continue
		}
		usage, err := disk.Usage(p.Mountpoint)
		if err != nil {
			failed++
			d.logger.Debug("get disk usage failed", zap.String("mountpoint", p.Mountpoint), zap.Error(err))
			continue
		}
		d.metrics.usedBytes.WithLabelValues(p.Device, p.Mountpoint).Set(float64(usage.Used))
		d.metrics.freeBytes.WithLabelValues(p.Device, p.Mountpoint).Set(float64(usage.Free))
		if usage.Total > 0 {
			d.metrics.usageRatio.WithLabelValues(p.Device, p.Mountpoint).Set(float64(usage.Used) / float64(usage.Total))
		}
		collected++
	}

	// 全部挂载点都失败才算本次采集失败
	if collected == 0 && failed > 0 {
		return fmt.Errorf("get disk usage: all %d mountpoints failed", failed)
	}
	return nil
}

func (d *DiskCollector) ignored(p disk.PartitionStat) bool {
	if _, ok := d.ignoreMountpoints[p.Mountpoint]; ok {
		return true
	}
	_, ok := d.ignoreFSTypes[p.Fstype]
	return ok
}
