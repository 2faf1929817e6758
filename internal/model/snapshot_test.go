package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercent(-5))
	assert.Equal(t, 0.0, ClampPercent(0))
	assert.Equal(t, 42.5, ClampPercent(42.5))
	assert.Equal(t, 100.0, ClampPercent(100))
	assert.Equal(t, 100.0, ClampPercent(240))
}

func TestNonNegative(t *testing.T) {
	assert.Equal(t, 0.0, NonNegative(-1.5))
	assert.Equal(t, 3.25, NonNegative(3.25))
}

func TestNormalizeClampsPercentFields(t *testing.T) {
	s := ResourceSnapshot{
		CPU:    CPUStat{UsagePercent: 140},
		Memory: MemoryStat{UsagePercent: -3, SwapPercent: 101},
		GPU: []GPUStat{
			{LoadPercent: 250, MemoryPercent: -1},
		},
		Disk: DiskStat{
			ReadSpeedMBps:  -2,
			WriteSpeedMBps: 5,
			Partitions:     []PartitionStat{{UsagePercent: 110, UsedGB: -1}},
		},
		Network:   NetworkStat{UploadSpeedKbps: -8},
		Processes: []ProcessStat{{CPUPercent: 101, MemoryPercent: -0.5}},
		System:    SystemStat{UptimeHours: -1},
	}

	s.Normalize()

	assert.Equal(t, 100.0, s.CPU.UsagePercent)
	assert.Equal(t, 0.0, s.Memory.UsagePercent)
	assert.Equal(t, 100.0, s.Memory.SwapPercent)
	assert.Equal(t, 100.0, s.GPU[0].LoadPercent)
	assert.Equal(t, 0.0, s.GPU[0].MemoryPercent)
	assert.Equal(t, 0.0, s.Disk.ReadSpeedMBps)
	assert.Equal(t, 5.0, s.Disk.WriteSpeedMBps)
	assert.Equal(t, 100.0, s.Disk.Partitions[0].UsagePercent)
	assert.Equal(t, 0.0, s.Disk.Partitions[0].UsedGB)
	assert.Equal(t, 0.0, s.Network.UploadSpeedKbps)
	assert.Equal(t, 100.0, s.Processes[0].CPUPercent)
	assert.Equal(t, 0.0, s.Processes[0].MemoryPercent)
	assert.Equal(t, 0.0, s.System.UptimeHours)
}

func TestNormalizeReplacesNilSlices(t *testing.T) {
	var s ResourceSnapshot
	s.Normalize()

	assert.NotNil(t, s.GPU)
	assert.NotNil(t, s.Disk.Partitions)
	assert.NotNil(t, s.Processes)
	assert.Empty(t, s.GPU)
	assert.Empty(t, s.Disk.Partitions)
	assert.Empty(t, s.Processes)
}
