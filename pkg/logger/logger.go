package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/plugin-exporter/pkg/config"
)

type Logger = zap.Logger

const timeLayout = "2006-01-02 15:04:05.000 -07:00"

var (
	baseLogger = zap.NewNop()
	mu         sync.RWMutex
)

// New 根据配置构建 zap.Logger：控制台(console/json) + 按天/按大小滚动的 JSON 文件
func New(cfg config.ZapLogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEncoder(cfg.Format), zapcore.Lock(os.Stdout), level),
	}

	if cfg.Path != "" {
		writer, err := newRotateWriter(cfg)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder(), zapcore.AddSync(writer), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// Init 初始化全局日志（替换 zap 全局 logger）
func Init(cfg config.ZapLogConfig) (*zap.Logger, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	baseLogger = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
	return l, nil
}

func newRotateWriter(cfg config.ZapLogConfig) (*rotatelogs.RotateLogs, error) {
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	opts := []rotatelogs.Option{
		rotatelogs.WithRotationTime(24 * time.Hour),
	}
	if cfg.MaxSize > 0 {
		opts = append(opts, rotatelogs.WithRotationSize(int64(cfg.MaxSize)*1024*1024))
	}
	// MaxAge 与 RotationCount 只能二选一
	switch {
	case cfg.MaxAge > 0:
		opts = append(opts, rotatelogs.WithMaxAge(time.Duration(cfg.MaxAge)*24*time.Hour))
	case cfg.MaxBackup > 0:
		opts = append(opts, rotatelogs.WithRotationCount(uint(cfg.MaxBackup)))
	}
	writer, err := rotatelogs.New(filepath.Join(cfg.Path, "exporter-%Y%m%d.log"), opts...)
	if err != nil {
		return nil, fmt.Errorf("create rotate writer: %w", err)
	}
	return writer, nil
}

func stdoutEncoder(format string) zapcore.Encoder {
	if format == "json" {
		return jsonEncoder()
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.ConsoleSeparator = " "
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	// Caller 两级路径
	encCfg.EncodeCaller = func(c zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		rel := filepath.Join(filepath.Base(filepath.Dir(c.File)), filepath.Base(c.File))
		enc.AppendString(fmt.Sprintf("%s:%d", rel, c.Line))
	}
	return zapcore.NewConsoleEncoder(encCfg)
}

func jsonEncoder() zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(encCfg)
}

// L 返回全局 logger，未初始化时为 Nop
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return baseLogger
}

// ForCollector 返回带 collector 字段的子 logger
func ForCollector(name string) *zap.Logger {
	return L().With(zap.String("collector", name))
}

func Debug(msg string, fields ...zap.Field) { L().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { L().WithOptions(zap.AddCallerSkip(1)).Fatal(msg, fields...) }

// Sync 刷盘（忽略 stdout 不支持 sync 的错误）
func Sync() error {
	err := L().Sync()
	if err != nil && isStdoutSyncErr(err) {
		return nil
	}
	return err
}

func isStdoutSyncErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "/dev/stdout") ||
		strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "inappropriate ioctl")
}
