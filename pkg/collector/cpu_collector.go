package collector

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	cload "github.com/shirou/gopsutil/v3/load"
	"go.uber.org/zap"

	"github.com/plugin-exporter/pkg/registers"
)

const cpuCollectorName = "cpu"

func init() {
	registers.Register(cpuCollectorName, NewCPUCollector)
}

// CPUCollector CPU采集器：使用率、负载、各模式占比以及静态信息
type CPUCollector struct {
	perCore bool
	metrics cpuMetrics
	logger  *zap.Logger

	// 超时被放弃的上一轮可能仍在运行，状态访问需加锁
	mu                 sync.Mutex
	cpuInfoInitialized bool                     // 防止重复采集 CPU 静态信息
	lastCPUTimes       map[string]cpu.TimesStat // 上一次的CPU时间，用于计算各模式占比
}

// NewCPUCollector 创建CPU采集器
func NewCPUCollector(deps registers.Deps) (registers.Collector, error) {
	// 预检查CPU可用性
	if _, err := cpu.Counts(true); err != nil {
		return nil, fmt.Errorf("get cpu counts: %w", err)
	}
	return &CPUCollector{
		perCore:      deps.Config.Scrape.Collectors.CPU.PerCore,
		metrics:      newCPUMetrics(deps.Metrics),
		logger:       unitLogger(deps, cpuCollectorName),
		lastCPUTimes: make(map[string]cpu.TimesStat),
	}, nil
}

// Name 返回采集器名称
func (c *CPUCollector) Name() string { return cpuCollectorName }

// Collect 执行指标采集
func (c *CPUCollector) Collect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 1. CPU使用率 整体/每核
	usageList, err := cpu.Percent(0, c.perCore)
	if err != nil {
		return fmt.Errorf("get cpu usage: %w", err)
	}
	if len(usageList) == 0 {
		return fmt.Errorf("get cpu usage: no samples")
	}
	if c.perCore {
		for i, usage := range usageList {
			c.metrics.usageRatio.WithLabelValues(fmt.Sprintf("cpu%d", i)).Set(usage / 100)
		}
	} else {
		c.metrics.usageRatio.WithLabelValues("total").Set(usageList[0] / 100)
	}

	// 2. CPU负载
	load, err := cload.Avg()
	if err != nil {
		return fmt.Errorf("get load average: %w", err)
	}
	c.metrics.load1.Set(load.Load1)
	c.metrics.load5.Set(load.Load5)
	c.metrics.load15.Set(load.Load15)
	c.logger.Debug("collected CPU load",
		zap.Float64("load1", load.Load1),
		zap.Float64("load5", load.Load5),
		zap.Float64("load15", load.Load15))

	// 3. 各模式占比
	if err := c.collectModes(); err != nil {
		return err
	}

	// 4. 静态信息（仅成功一次）
	return c.collectInfo()
}

// collectModes 按两次采集的累计时间差计算各模式占比
// 首次采集仅记录基准，不输出占比
func (c *CPUCollector) collectModes() error {
	timesList, err := cpu.Times(c.perCore)
	if err != nil {
		return fmt.Errorf("get cpu times: %w", err)
	}
	for _, times := range timesList {
		cpuID := times.CPU
		if cpuID == "cpu-total" || cpuID == "" {
			cpuID = "total" // 总览统一标签
		}
		last, exists := c.lastCPUTimes[cpuID]
		c.lastCPUTimes[cpuID] = times
		if !exists {
			c.logger.Debug("first collect CPU times (skip mode calc)", zap.String("cpu", cpuID))
			continue
		}

		deltas := map[string]float64{
			"user":    times.User - last.User,
			"nice":    times.Nice - last.Nice,
			"system":  times.System - last.System,
			"idle":    times.Idle - last.Idle,
			"iowait":  times.Iowait - last.Iowait,
			"irq":     times.Irq - last.Irq,
			"softirq": times.Softirq - last.Softirq,
			"steal":   times.Steal - last.Steal,
		}
		var deltaTotal float64
		for _, d := range deltas {
			deltaTotal += d
		}
		// 两次采集间隔过短时总时间可能不变
		if deltaTotal <= 0 {
			continue
		}
		for mode, delta := range deltas {
			c.metrics.modeRatio.WithLabelValues(cpuID, mode).Set(delta / deltaTotal)
		}
	}
	return nil
}

// collectInfo CPU 型号与核心数，成功后不再重复采集
func (c *CPUCollector) collectInfo() error {
	if c.cpuInfoInitialized {
		return nil
	}
	infos, err := cpu.Info()
	if err != nil {
		return fmt.Errorf("get cpu info: %w", err)
	}
	physical, err := cpu.Counts(false)
	if err != nil {
		return fmt.Errorf("get physical cpu count: %w", err)
	}
	logical, err := cpu.Counts(true)
	if err != nil {
		return fmt.Errorf("get logical cpu count: %w", err)
	}

	model := "unknown"
	if len(infos) > 0 && infos[0].ModelName != "" {
		model = infos[0].ModelName
	}
	c.metrics.info.WithLabelValues(model, strconv.Itoa(physical), strconv.Itoa(logical)).Set(1)
	c.cpuInfoInitialized = true
	c.logger.Info("CPU static info collection completed",
		zap.String("model_name", model),
		zap.Int("physical_cores", physical),
		zap.Int("logical_cores", logical))
	return nil
}
