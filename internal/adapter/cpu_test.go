package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCPU() *CPU {
	a := NewCPU()
	a.counts = func(ctx context.Context, logical bool) (int, error) { return 0, errors.New("off") }
	a.info = func(ctx context.Context) ([]cpu.InfoStat, error) { return nil, errors.New("off") }
	a.temps = func(ctx context.Context) ([]host.TemperatureStat, error) { return nil, errors.New("off") }
	return a
}

func TestCPUUsageFromTimesDelta(t *testing.T) {
	a := newTestCPU()

	reads := [][]cpu.TimesStat{
		{{CPU: "cpu-total", User: 100, System: 50, Idle: 800, Iowait: 50}},
		{{CPU: "cpu-total", User: 200, System: 100, Idle: 850, Iowait: 50}},
	}
	i := 0
	a.times = func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error) {
		r := reads[i]
		i++
		return r, nil
	}

	// First read only primes the counters.
	stat, err := a.Collect(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stat.UsagePercent)

	// Delta: total +200, idle +50 -> 75% busy.
	stat, err = a.Collect(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 75.0, stat.UsagePercent, 0.01)
}

func TestCPUOptionalFields(t *testing.T) {
	a := newTestCPU()
	a.times = func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error) {
		return []cpu.TimesStat{{CPU: "cpu-total", User: 1, Idle: 9}}, nil
	}
	a.counts = func(ctx context.Context, logical bool) (int, error) { return 8, nil }
	a.info = func(ctx context.Context) ([]cpu.InfoStat, error) {
		return []cpu.InfoStat{{Mhz: 3200}}, nil
	}
	a.temps = func(ctx context.Context) ([]host.TemperatureStat, error) {
		return []host.TemperatureStat{
			{SensorKey: "acpitz", Temperature: 40},
			{SensorKey: "coretemp_package", Temperature: 55},
		}, nil
	}

	stat, err := a.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, stat.LogicalCores)
	assert.Equal(t, 3200.0, stat.FrequencyMHz)
	assert.True(t, stat.HasTemperature)
	assert.Equal(t, 55.0, stat.TemperatureC)
}

func TestCPUNoTemperatureSensor(t *testing.T) {
	a := newTestCPU()
	a.times = func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error) {
		return []cpu.TimesStat{{CPU: "cpu-total", User: 1, Idle: 9}}, nil
	}
	a.temps = func(ctx context.Context) ([]host.TemperatureStat, error) {
		return []host.TemperatureStat{{SensorKey: "nvme_composite", Temperature: 35}}, nil
	}

	stat, err := a.Collect(context.Background())
	require.NoError(t, err)
	assert.False(t, stat.HasTemperature)
	assert.Zero(t, stat.TemperatureC)
}

func TestCPUCollectErrors(t *testing.T) {
	a := newTestCPU()
	a.times = func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error) {
		return nil, errors.New("proc unavailable")
	}
	_, err := a.Collect(context.Background())
	assert.Error(t, err)

	a.times = func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error) {
		return []cpu.TimesStat{}, nil
	}
	_, err = a.Collect(context.Background())
	assert.Error(t, err)
}
