package util_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/plugin-exporter/pkg/util"
)

func TestPrintBanner(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	util.PrintBanner(&buf, "exp", "blue")

	out := buf.String()
	assert.NotEmpty(t, strings.TrimSpace(out))
	assert.Greater(t, strings.Count(out, "\n"), 1)
	assert.NotContains(t, out, "\x1b[")
}
