package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// Validate HTTP服务配置校验
func (h *ServerConfig) Validate() error {
	if err := valid.Struct(h); err != nil {
		return err
	}
	// 用net包解析地址，验证格式合法性（":port" 或 "ip:port"）
	if _, err := net.ResolveTCPAddr("tcp", h.Addr); err != nil {
		return fmt.Errorf("server.addr format invalid (expected: :port or ip:port), got %s: %w", h.Addr, err)
	}
	return nil
}

// Validate 抓取配置校验
func (s *ScrapeConfig) Validate() error {
	if err := valid.Struct(s); err != nil {
		return err
	}
	for _, name := range s.EnabledCollectors {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " \t\r\n") {
			return fmt.Errorf("scrape.enabled_collectors: invalid collector name %q", name)
		}
	}
	for name, ttl := range s.CacheTTL {
		if ttl < 0 {
			return fmt.Errorf("scrape.cache_ttl.%s must not be negative, got %s", name, ttl)
		}
	}
	return s.Collectors.validate()
}

// validate 忽略列表不能包含空字符串或重复项
func (col *CollectorConfig) validate() error {
	lists := map[string][]string{
		"scrape.collectors.disk.ignore_mountpoints":   col.Disk.IgnoreMountpoints,
		"scrape.collectors.disk.ignore_fs_types":      col.Disk.IgnoreFSTypes,
		"scrape.collectors.network.ignore_interfaces": col.Network.IgnoreInterfaces,
	}
	for key, list := range lists {
		seen := map[string]bool{}
		for _, item := range list {
			if strings.TrimSpace(item) == "" {
				return fmt.Errorf("%s cannot contain empty string", key)
			}
			if seen[item] {
				return fmt.Errorf("%s duplicated entry: %q", key, item)
			}
			seen[item] = true
		}
	}
	return nil
}

// Validate 日志配置校验
func (l *ZapLogConfig) Validate() error {
	if err := valid.Struct(l); err != nil {
		return fmt.Errorf("log config invalid: %w", err)
	}
	// rotatelogs 不允许同时设置 MaxAge 与 RotationCount
	if l.MaxAge > 0 && l.MaxBackup > 0 {
		return errors.New("log.max_age and log.max_backup are mutually exclusive")
	}
	if l.Path == "" {
		return nil
	}
	abs, err := filepath.Abs(l.Path)
	if err != nil {
		return fmt.Errorf("log.path failed to parse %s: %w", l.Path, err)
	}
	if err := ensureDir(abs); err != nil {
		return fmt.Errorf("log.path directory is not writable %s: %w", l.Path, err)
	}
	return nil
}

func ensureDir(path string) error {
	stat, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	if err != nil {
		return err
	}
	if !stat.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
