package collector

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/stretchr/testify/assert"
)

func TestAddDelta(t *testing.T) {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})

	addDelta(c, 0, 100)
	assert.Equal(t, float64(100), testutil.ToFloat64(c))

	addDelta(c, 100, 150)
	assert.Equal(t, float64(150), testutil.ToFloat64(c))

	// 计数器重置
	addDelta(c, 150, 20)
	assert.Equal(t, float64(170), testutil.ToFloat64(c))
}

func TestDiskIgnored(t *testing.T) {
	d := &DiskCollector{
		ignoreMountpoints: toSet([]string{"/boot"}),
		ignoreFSTypes:     toSet([]string{"tmpfs"}),
	}
	assert.True(t, d.ignored(disk.PartitionStat{Mountpoint: "/boot", Fstype: "ext4"}))
	assert.True(t, d.ignored(disk.PartitionStat{Mountpoint: "/run", Fstype: "tmpfs"}))
	assert.False(t, d.ignored(disk.PartitionStat{Mountpoint: "/", Fstype: "ext4"}))
}
