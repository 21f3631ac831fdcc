package agent

import (
	"github.com/spf13/cobra"

	"github.com/plugin-exporter/pkg/config"
)

var defaultCfg = config.NewDefaultConfig()

func initServerFlags(root *cobra.Command) {
	f := root.Flags()

	f.String("server.addr", defaultCfg.Server.Addr, "-> HTTP listening address (HTTP监听地址)")
	f.Duration("server.read_timeout", defaultCfg.Server.ReadTimeout, "-> Read timeout duration (读取超时时间)")
	f.Duration("server.write_timeout", defaultCfg.Server.WriteTimeout, "-> Write timeout duration, must exceed scrape.timeout (写入超时时间)")
	f.Duration("server.idle_timeout", defaultCfg.Server.IdleTimeout, "-> Idle connection timeout duration (空闲连接超时时间)")
	f.Int("server.max_requests_in_flight", defaultCfg.Server.MaxRequestsInFlight, "-> Concurrent /metrics requests, 0 for unlimited (最大并发抓取数)")
}
