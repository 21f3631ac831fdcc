package agent

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/common/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plugin-exporter/cmd/server"
	_ "github.com/plugin-exporter/pkg/collector"
	"github.com/plugin-exporter/pkg/config"
	"github.com/plugin-exporter/pkg/logger"
	"github.com/plugin-exporter/pkg/metrics"
	"github.com/plugin-exporter/pkg/registers"
	"github.com/plugin-exporter/pkg/scrape"
	"github.com/plugin-exporter/pkg/signal"
	"github.com/plugin-exporter/pkg/util"
)

const (
	appName     = "plugin-exporter"
	bannerColor = "blue" // 整体统一颜色
)

var noBanner bool

var rootCmd = &cobra.Command{
	Use:          appName + " <config-file>",
	Short:        "Prometheus exporter running pluggable collectors concurrently on every scrape",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0], cmd.Flags())
		if err != nil {
			// 统一输出错误到 stderr，不返回给 cobra
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := runServer(cmd.Context(), cfg); err != nil {
			fmt.Fprintf(os.Stderr, "服务启动失败: %v\n", err)
			os.Exit(1)
		}
		return nil
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.Version = version.Info()
	rootCmd.SetVersionTemplate(version.Print(appName) + "\n")
	rootCmd.Flags().BoolVar(&noBanner, "no-banner", false, "不打印启动 banner")
	// 注册分组 flag（名称与配置键一致，由 config.Load 绑定到 viper）
	initServerFlags(rootCmd)
	initScrapeFlags(rootCmd)
	initLogFlags(rootCmd)
}

func runServer(ctx context.Context, cfg *config.Config) error {
	log, err := logger.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("日志初始化失败: %w", err)
	}
	// 程序退出时刷盘
	defer func() { _ = logger.Sync() }()

	if !noBanner {
		util.PrintBanner(os.Stdout, appName, bannerColor)
	}
	log.Info("log initialization successful",
		zap.String("path", cfg.Log.Path),
		zap.String("level", cfg.Log.Level),
		zap.String("format", cfg.Log.Format))
	log.Info("starting "+appName,
		zap.String("version", version.Info()),
		zap.String("build_context", version.BuildContext()))

	// 自定义注册器：进程指标 + 构建信息，不注册 Go 运行时指标
	promRegistry := prometheus.NewRegistry()
	factory := metrics.NewMetricFactory(metrics.NewPromRegistry(promRegistry))
	if err := factory.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return fmt.Errorf("register process collector: %w", err)
	}
	if err := factory.Register(versioncollector.NewCollector("plugin_exporter")); err != nil {
		return fmt.Errorf("register build info: %w", err)
	}

	registry, err := registers.Default().Build(cfg.Scrape.EnabledCollectors, cfg.Scrape.CacheTTL, registers.Deps{
		Config:  cfg,
		Metrics: factory,
		Logger:  log,
	})
	if errors.Is(err, registers.ErrNoCollectorsEnabled) {
		log.Fatal("no collectors enabled after filtering",
			zap.Strings("enabled_collectors", cfg.Scrape.EnabledCollectors),
			zap.Strings("available", registers.Default().Names()))
	}
	if err != nil {
		return fmt.Errorf("build collectors: %w", err)
	}

	orchestrator, err := scrape.New(registry, cfg.Scrape.Timeout, factory.NewScrapeMetrics(),
		scrape.WithLogger(log.Named("scrape")))
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}

	httpServer := server.NewHTTPServer(cfg.Server, log.Named("http"), orchestrator.Gatherer(promRegistry),
		promRegistry, orchestrator.Names())
	if err := httpServer.Start(); err != nil {
		return fmt.Errorf("start HTTP server failed: %w", err)
	}
	log.Info("exporter started",
		zap.String("addr", httpServer.Addr()),
		zap.Duration("scrape_timeout", orchestrator.Timeout()),
		zap.Strings("collectors", orchestrator.Names()))

	signal.WaitForShutdown(ctx, log, signal.DefaultShutdownTimeout, func(ctx context.Context) error {
		if err := httpServer.Shutdown(ctx); err != nil {
			return err
		}
		log.Info("all services shutdown successfully")
		return nil
	})
	return nil
}
