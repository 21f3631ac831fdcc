package util

import (
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// 支持的 banner 颜色
var bannerColors = map[string]color.Attribute{
	"red":    color.FgRed,
	"green":  color.FgGreen,
	"yellow": color.FgYellow,
	"blue":   color.FgBlue,
	"cyan":   color.FgCyan,
}

// PrintBanner 打印整体统一颜色的 ASCII banner，未知颜色按无色输出
func PrintBanner(w io.Writer, text string, colorName string) {
	fig := figure.NewFigure(text, "", true)

	c := color.New(color.Reset)
	if attr, ok := bannerColors[colorName]; ok {
		c = color.New(attr, color.Bold)
	}
	for _, line := range fig.Slicify() {
		_, _ = c.Fprintln(w, line)
	}
}
