package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/syswatch/syswatch/internal/model"
)

// CPU samples aggregate processor usage from the times delta between two
// reads, the way top does. Frequency, core count, and temperature are
// best-effort extras.
type CPU struct {
	mu        sync.Mutex
	prevTotal float64
	prevIdle  float64

	times  func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error)
	counts func(ctx context.Context, logical bool) (int, error)
	info   func(ctx context.Context) ([]cpu.InfoStat, error)
	temps  func(ctx context.Context) ([]host.TemperatureStat, error)
}

func NewCPU() *CPU {
	return &CPU{
		times:  cpu.TimesWithContext,
		counts: cpu.CountsWithContext,
		info:   cpu.InfoWithContext,
		temps:  host.SensorsTemperaturesWithContext,
	}
}

func (a *CPU) Name() string { return "cpu" }

func (a *CPU) Collect(ctx context.Context) (model.CPUStat, error) {
	times, err := a.times(ctx, false)
	if err != nil {
		return model.CPUStat{}, fmt.Errorf("cpu times: %w", err)
	}
	if len(times) == 0 {
		return model.CPUStat{}, fmt.Errorf("cpu times: empty result")
	}

	cur := times[0]
	curTotal := cur.Total()
	curIdle := cur.Idle + cur.Iowait

	a.mu.Lock()
	var usage float64
	if a.prevTotal > 0 {
		dt := curTotal - a.prevTotal
		di := curIdle - a.prevIdle
		if dt > 0 {
			usage = 100 * (1 - di/dt)
		}
	}
	a.prevTotal, a.prevIdle = curTotal, curIdle
	a.mu.Unlock()

	stat := model.CPUStat{UsagePercent: round2(usage)}

	// The remaining fields are decoration; a failed read leaves them zero.
	if cores, err := a.counts(ctx, true); err == nil {
		stat.LogicalCores = cores
	}
	if infos, err := a.info(ctx); err == nil && len(infos) > 0 {
		stat.FrequencyMHz = infos[0].Mhz
	}
	if temp, ok := a.temperature(ctx); ok {
		stat.TemperatureC = temp
		stat.HasTemperature = true
	}
	return stat, nil
}

// temperature picks the first sensor that looks like a CPU package or core
// reading. Many hosts expose none, which is not an error.
func (a *CPU) temperature(ctx context.Context) (float64, bool) {
	sensors, err := a.temps(ctx)
	if err != nil {
		return 0, false
	}
	for _, s := range sensors {
		key := strings.ToLower(s.SensorKey)
		if strings.Contains(key, "coretemp") ||
			strings.Contains(key, "k10temp") ||
			strings.Contains(key, "cpu") {
			if s.Temperature > 0 {
				return s.Temperature, true
			}
		}
	}
	return 0, false
}
