package collector

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"

	"github.com/plugin-exporter/pkg/registers"
)

const networkCollectorName = "network"

func init() {
	registers.Register(networkCollectorName, NewNetworkCollector)
}

// NetworkCollector 网卡流量采集器
// 内核计数器是累计值，Prometheus Counter 只能增加，按两次采集的差值累加
type NetworkCollector struct {
	metrics          networkMetrics
	logger           *zap.Logger
	ignoreInterfaces map[string]struct{}

	mu   sync.Mutex
	last map[string]net.IOCountersStat
}

func NewNetworkCollector(deps registers.Deps) (registers.Collector, error) {
	return &NetworkCollector{
		metrics:          newNetworkMetrics(deps.Metrics),
		logger:           unitLogger(deps, networkCollectorName),
		ignoreInterfaces: toSet(deps.Config.Scrape.Collectors.Network.IgnoreInterfaces),
		last:             make(map[string]net.IOCountersStat),
	}, nil
}

func (n *NetworkCollector) Name() string { return networkCollectorName }

func (n *NetworkCollector) Collect() error {
	counters, err := net.IOCounters(true)
	if err != nil {
		return fmt.Errorf("get network io counters: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, cur := range counters {
		if _, skip := n.ignoreInterfaces[cur.Name]; skip {
			continue
		}
		prev := n.last[cur.Name]
		n.last[cur.Name] = cur

		addDelta(n.metrics.transmitBytes.WithLabelValues(cur.Name), prev.BytesSent, cur.BytesSent)
		addDelta(n.metrics.receiveBytes.WithLabelValues(cur.Name), prev.BytesRecv, cur.BytesRecv)
		addDelta(n.metrics.transmitErrors.WithLabelValues(cur.Name), prev.Errout, cur.Errout)
		addDelta(n.metrics.receiveErrors.WithLabelValues(cur.Name), prev.Errin, cur.Errin)
	}
	n.logger.Debug("collected network counters", zap.Int("interfaces", len(counters)))
	return nil
}

// addDelta 按增量累加；计数器回绕或网卡重建时当前值即为增量
func addDelta(c prometheus.Counter, prev, cur uint64) {
	if cur >= prev {
		c.Add(float64(cur - prev))
		return
	}
	c.Add(float64(cur))
}
