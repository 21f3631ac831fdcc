package registers

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/plugin-exporter/pkg/config"
	"github.com/plugin-exporter/pkg/metrics"
)

var (
	// ErrNoCollectorsEnabled 过滤后没有任何采集器可用（启动期致命错误）
	ErrNoCollectorsEnabled = errors.New("no collectors enabled")
	// ErrDuplicateCollector 同名采集器重复出现
	ErrDuplicateCollector = errors.New("duplicate collector name")
)

// Deps 采集器工厂的依赖（启动时构建一次，只读）
type Deps struct {
	Config  *config.Config
	Metrics *metrics.MetricFactory
	Logger  *zap.Logger
	Clock   clockwork.Clock
}

// Factory 采集器创建函数
type Factory func(deps Deps) (Collector, error)

// Catalog 可发现的采集器表（名称 -> 工厂）
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

var defaultCatalog = NewCatalog()

// NewCatalog 创建空的采集器表
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Default 返回内置采集器在 init() 中注册的默认表
func Default() *Catalog {
	return defaultCatalog
}

// Register 向默认表注册采集器，供各采集器包的 init() 调用
func Register(name string, factory Factory) {
	defaultCatalog.Register(name, factory)
}

// Register 注册采集器工厂；空名称、空工厂或重名直接 panic
func (c *Catalog) Register(name string, factory Factory) {
	if name == "" {
		panic("registers: collector name is empty")
	}
	if factory == nil {
		panic("registers: nil factory for collector " + name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.factories[name]; exists {
		panic(fmt.Sprintf("registers: %v: %s", ErrDuplicateCollector, name))
	}
	c.factories[name] = factory
}

// Names 返回所有已发现的采集器名称（有序）
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.namesLocked()
}

// Build 取"已发现"与"已启用"的交集构建 Registry
// 启用但未发现的名称仅告警；交集为空返回 ErrNoCollectorsEnabled
func (c *Catalog) Build(enabled []string, cacheTTL map[string]time.Duration, deps Deps) (*Registry, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	units := make([]Collector, 0, len(enabled))
	for _, name := range enabled {
		factory, ok := c.factories[name]
		if !ok {
			deps.Logger.Warn("enabled collector not found, skip",
				zap.String("collector", name),
				zap.Strings("available", c.namesLocked()))
			continue
		}
		unit, err := factory(deps)
		if err != nil {
			return nil, fmt.Errorf("create collector %s: %w", name, err)
		}
		if unit.Name() != name {
			return nil, fmt.Errorf("collector registered as %q reports name %q", name, unit.Name())
		}
		if ttl := cacheTTL[name]; ttl > 0 {
			unit = Cached(unit, ttl, deps.Clock)
			deps.Logger.Debug("collector results cached", zap.String("collector", name), zap.Duration("ttl", ttl))
		}
		units = append(units, unit)
		deps.Logger.Debug("registered collector", zap.String("collector", name))
	}

	registry, err := NewRegistry(units...)
	if err != nil {
		return nil, err
	}
	deps.Logger.Info("all enabled collectors registered", zap.Strings("enabled_collectors", registry.Names()))
	return registry, nil
}

func (c *Catalog) namesLocked() []string {
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
