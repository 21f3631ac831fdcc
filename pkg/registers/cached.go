package registers

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// cachedCollector 在 ttl 内跳过重复采集，指标保留上一次成功的值
type cachedCollector struct {
	Collector
	ttl   time.Duration
	clock clockwork.Clock

	mu          sync.Mutex
	lastSuccess time.Time
}

// Cached 包装采集器：距上一次成功不足 ttl 时直接返回成功，不再调用底层 Collect。
// 失败结果不缓存，下一轮会重新执行。
func Cached(c Collector, ttl time.Duration, clock clockwork.Clock) Collector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &cachedCollector{Collector: c, ttl: ttl, clock: clock}
}

func (c *cachedCollector) Collect() error {
	c.mu.Lock()
	fresh := !c.lastSuccess.IsZero() && c.clock.Since(c.lastSuccess) < c.ttl
	c.mu.Unlock()
	if fresh {
		return nil
	}

	if err := c.Collector.Collect(); err != nil {
		return err
	}

	c.mu.Lock()
	c.lastSuccess = c.clock.Now()
	c.mu.Unlock()
	return nil
}
