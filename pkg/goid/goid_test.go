package goid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plugin-exporter/pkg/goid"
)

func TestGetDistinctPerGoroutine(t *testing.T) {
	main := goid.Get()
	assert.NotZero(t, main)
	assert.Equal(t, main, goid.Get())

	ch := make(chan uint64)
	go func() { ch <- goid.Get() }()
	other := <-ch

	assert.NotZero(t, other)
	assert.NotEqual(t, main, other)
}
