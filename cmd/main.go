package main

import (
	"github.com/plugin-exporter/cmd/agent"
)

func main() {
	agent.Execute()
}
