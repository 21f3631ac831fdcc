package agent

import (
	"github.com/spf13/cobra"
)

func initScrapeFlags(root *cobra.Command) {
	f := root.Flags()

	f.Duration("scrape.timeout", defaultCfg.Scrape.Timeout, "-> Scrape-wide deadline measured from round start (单轮抓取超时)")
	f.StringSlice("scrape.enabled_collectors", defaultCfg.Scrape.EnabledCollectors, "-> Collectors to run on every scrape (启用的采集器)")
}
