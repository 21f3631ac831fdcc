package registers

import (
	"fmt"
	"sort"
)

// Registry 采集器注册表：名称 -> 采集器，构建后只读，可被多轮抓取并发读取
type Registry struct {
	names []string
	units map[string]Collector
}

// NewRegistry 直接由采集器实例构建注册表（名称必须唯一且至少一个）
func NewRegistry(units ...Collector) (*Registry, error) {
	if len(units) == 0 {
		return nil, ErrNoCollectorsEnabled
	}
	r := &Registry{
		names: make([]string, 0, len(units)),
		units: make(map[string]Collector, len(units)),
	}
	for _, u := range units {
		if u == nil {
			return nil, fmt.Errorf("registers: nil collector")
		}
		name := u.Name()
		if _, exists := r.units[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCollector, name)
		}
		r.units[name] = u
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Names 返回采集器名称（有序副本）
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get 按名称获取采集器
func (r *Registry) Get(name string) (Collector, bool) {
	u, ok := r.units[name]
	return u, ok
}

// Len 采集器数量
func (r *Registry) Len() int {
	return len(r.names)
}
