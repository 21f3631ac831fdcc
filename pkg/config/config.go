package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀（EXPORTER_SCRAPE_TIMEOUT -> scrape.timeout）
const EnvPrefix = "EXPORTER"

var valid = validator.New()

// Config 全局配置结构体（进程启动时加载一次，之后只读）
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server" comment:"HTTP服务配置"`
	Scrape ScrapeConfig `yaml:"scrape" mapstructure:"scrape" comment:"抓取编排配置"`
	Log    ZapLogConfig `yaml:"log" mapstructure:"log" comment:"日志配置"`
}

// ServerConfig HTTP服务配置（超时统一为time.Duration，支持"30s"解析）
type ServerConfig struct {
	Addr                string        `yaml:"addr" mapstructure:"addr" validate:"required,hostname_port" comment:"HTTP监听地址（格式：ip:port）"`
	ReadTimeout         time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"required,gt=0" comment:"读取超时时间"`
	WriteTimeout        time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"required,gt=0" comment:"写入超时时间，必须大于scrape.timeout"`
	IdleTimeout         time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"required,gt=0" comment:"空闲连接超时时间"`
	MaxRequestsInFlight int           `yaml:"max_requests_in_flight" mapstructure:"max_requests_in_flight" validate:"gte=0" comment:"/metrics 最大并发请求数（0为不限制）"`
}

// ScrapeConfig 抓取编排配置
type ScrapeConfig struct {
	Timeout           time.Duration            `yaml:"timeout" mapstructure:"timeout" validate:"required,gt=0" comment:"单轮抓取超时（从本轮开始计时）"`
	EnabledCollectors []string                 `yaml:"enabled_collectors" mapstructure:"enabled_collectors" validate:"required,min=1,unique,dive,required" comment:"启用的采集器名称"`
	CacheTTL          map[string]time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl" comment:"按采集器名称配置的结果缓存时间"`
	Collectors        CollectorConfig          `yaml:"collectors" mapstructure:"collectors" comment:"各内置采集器配置"`
}

// CollectorConfig 内置采集器配置
type CollectorConfig struct {
	CPU     CPUConfig     `yaml:"cpu" mapstructure:"cpu"`
	Disk    DiskConfig    `yaml:"disk" mapstructure:"disk"`
	Network NetworkConfig `yaml:"network" mapstructure:"network"`
}

// CPUConfig cpu 采集器配置
type CPUConfig struct {
	PerCore bool `yaml:"per_core" mapstructure:"per_core" comment:"是否按每核心采集CPU使用率"`
}

// DiskConfig disk 采集器配置
type DiskConfig struct {
	IgnoreMountpoints []string `yaml:"ignore_mountpoints" mapstructure:"ignore_mountpoints" comment:"忽略的挂载点"`
	IgnoreFSTypes     []string `yaml:"ignore_fs_types" mapstructure:"ignore_fs_types" comment:"忽略的文件系统类型"`
}

// NetworkConfig network 采集器配置
type NetworkConfig struct {
	IgnoreInterfaces []string `yaml:"ignore_interfaces" mapstructure:"ignore_interfaces" comment:"忽略的网络接口（如lo）"`
}

// ZapLogConfig 日志配置
type ZapLogConfig struct {
	Level     string `yaml:"level" mapstructure:"level" validate:"required,oneof=debug info warn error" comment:"日志级别"`
	Format    string `yaml:"format" mapstructure:"format" validate:"required,oneof=json console" comment:"控制台日志格式（json/console）"`
	Path      string `yaml:"path" mapstructure:"path" comment:"日志文件目录，为空时只输出到控制台"`
	MaxSize   int    `yaml:"max_size" mapstructure:"max_size" validate:"gte=0" comment:"单个日志文件最大大小（MB）"`
	MaxBackup int    `yaml:"max_backup" mapstructure:"max_backup" validate:"gte=0" comment:"日志文件最大备份数（与max_age互斥）"`
	MaxAge    int    `yaml:"max_age" mapstructure:"max_age" validate:"gte=0" comment:"日志文件最大保存天数"`
}

// NewDefaultConfig 创建默认配置（所有字段兜底，避免空指针/非法值）
// EnabledCollectors 没有默认值：必须显式启用
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                ":8000",
			ReadTimeout:         5 * time.Second,
			WriteTimeout:        30 * time.Second,
			IdleTimeout:         60 * time.Second,
			MaxRequestsInFlight: 1,
		},
		Scrape: ScrapeConfig{
			Timeout:  10 * time.Second,
			CacheTTL: map[string]time.Duration{},
			Collectors: CollectorConfig{
				Disk: DiskConfig{
					IgnoreMountpoints: []string{},
					IgnoreFSTypes:     []string{"tmpfs", "devtmpfs", "overlay", "squashfs"},
				},
				Network: NetworkConfig{
					IgnoreInterfaces: []string{"lo"},
				},
			},
		},
		Log: ZapLogConfig{
			Level:   "info",
			Format:  "console",
			Path:    "./logs",
			MaxSize: 100,
			MaxAge:  7,
		},
	}
}

// Load 加载配置（优先级：已修改的 Flags > ENV > YAML > 默认值）
// flags 可以为 nil（测试或无命令行场景）
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := NewDefaultConfig()
	v := viper.New()

	// 1. 绑定 Cobra Flags → Viper
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	// 2. 解析配置文件
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	// 3. 绑定环境变量 EXPORTER_SERVER_ADDR -> server.addr
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. 解码到结构体（支持 time.Duration 与逗号分隔的切片）
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// 5. 校验配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate 配置校验
func (c *Config) Validate() error {
	if err := valid.Struct(c); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Scrape.Validate(); err != nil {
		return err
	}
	// 抓取请求必须能在 HTTP 写超时之前返回
	if c.Server.WriteTimeout <= c.Scrape.Timeout {
		return fmt.Errorf("server.write_timeout (%s) must be greater than scrape.timeout (%s)",
			c.Server.WriteTimeout, c.Scrape.Timeout)
	}
	return c.Log.Validate()
}
