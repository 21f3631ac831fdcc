package registers

// Collector 采集单元接口（所有采集器必须实现）
// Collect 无参数，通过返回值报告失败；panic 由编排器的 Runner 兜底
type Collector interface {
	Name() string   // 采集器名称（唯一标识）
	Collect() error // 执行一次采集（更新自身指标）
}

// funcCollector 函数适配器
type funcCollector struct {
	name string
	fn   func() error
}

// Func 将普通函数包装为 Collector
func Func(name string, fn func() error) Collector {
	return &funcCollector{name: name, fn: fn}
}

func (f *funcCollector) Name() string   { return f.name }
func (f *funcCollector) Collect() error { return f.fn() }
