// Package report turns a completed tracking session's buffer into a
// report-ready projection: per-series min/max/average statistics plus the raw
// snapshot sequence in chronological order. Building is a pure function of
// its input, so it can run while a new session is already capturing.
package report

import (
	"errors"
	"math"
	"time"

	"github.com/syswatch/syswatch/internal/model"
)

// ErrEmptySession is returned when a report is requested for a session that
// captured no samples.
var ErrEmptySession = errors.New("session has no data points")

// Stats summarizes one metric series.
type Stats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Data is the full report projection handed to the rendering collaborator.
type Data struct {
	GeneratedAt time.Time     `json:"generated_at"`
	StartedAt   time.Time     `json:"started_at"`
	EndedAt     time.Time     `json:"ended_at"`
	Duration    time.Duration `json:"duration_ns"`
	DataPoints  int           `json:"data_points"`

	CPUUsage       Stats `json:"cpu_usage_percent"`
	CPUTemperature Stats `json:"cpu_temperature_c"`
	MemoryUsage    Stats `json:"memory_usage_percent"`
	MemoryUsed     Stats `json:"memory_used_gb"`
	NetworkUpload  Stats `json:"network_upload_kbps"`
	NetworkDown    Stats `json:"network_download_kbps"`
	DiskRead       Stats `json:"disk_read_mbps"`
	DiskWrite      Stats `json:"disk_write_mbps"`

	HasGPU         bool  `json:"has_gpu"`
	GPULoad        Stats `json:"gpu_load_percent"`
	GPUMemory      Stats `json:"gpu_memory_percent"`
	GPUTemperature Stats `json:"gpu_temperature_c"`

	Snapshots []model.ResourceSnapshot `json:"snapshots"`
}

// Build computes the report projection over the buffered snapshots.
func Build(snaps []model.ResourceSnapshot) (*Data, error) {
	if len(snaps) == 0 {
		return nil, ErrEmptySession
	}

	d := &Data{
		GeneratedAt: time.Now(),
		StartedAt:   snaps[0].Timestamp,
		EndedAt:     snaps[len(snaps)-1].Timestamp,
		DataPoints:  len(snaps),
		Snapshots:   snaps,
	}
	d.Duration = d.EndedAt.Sub(d.StartedAt)

	d.CPUUsage = calc(snaps, func(s model.ResourceSnapshot) float64 { return s.CPU.UsagePercent })
	d.MemoryUsage = calc(snaps, func(s model.ResourceSnapshot) float64 { return s.Memory.UsagePercent })
	d.MemoryUsed = calc(snaps, func(s model.ResourceSnapshot) float64 { return s.Memory.UsedGB })
	d.NetworkUpload = calc(snaps, func(s model.ResourceSnapshot) float64 { return s.Network.UploadSpeedKbps })
	d.NetworkDown = calc(snaps, func(s model.ResourceSnapshot) float64 { return s.Network.DownloadSpeedKbps })
	d.DiskRead = calc(snaps, func(s model.ResourceSnapshot) float64 { return s.Disk.ReadSpeedMBps })
	d.DiskWrite = calc(snaps, func(s model.ResourceSnapshot) float64 { return s.Disk.WriteSpeedMBps })

	// Temperature readings of zero mean "unknown" and are excluded, so a
	// host with no sensor reports 0/0/0 rather than dragging the minimum
	// down.
	d.CPUTemperature = calcPositive(snaps, func(s model.ResourceSnapshot) float64 {
		if !s.CPU.HasTemperature {
			return 0
		}
		return s.CPU.TemperatureC
	})

	for _, s := range snaps {
		if len(s.GPU) > 0 {
			d.HasGPU = true
			break
		}
	}
	if d.HasGPU {
		d.GPULoad = calc(snaps, firstGPU(func(g model.GPUStat) float64 { return g.LoadPercent }))
		d.GPUMemory = calc(snaps, firstGPU(func(g model.GPUStat) float64 { return g.MemoryPercent }))
		d.GPUTemperature = calcPositive(snaps, firstGPU(func(g model.GPUStat) float64 { return g.TemperatureC }))
	}

	return d, nil
}

// firstGPU projects a series from the primary GPU, zero when a snapshot has
// none.
func firstGPU(f func(model.GPUStat) float64) func(model.ResourceSnapshot) float64 {
	return func(s model.ResourceSnapshot) float64 {
		if len(s.GPU) == 0 {
			return 0
		}
		return f(s.GPU[0])
	}
}

func calc(snaps []model.ResourceSnapshot, f func(model.ResourceSnapshot) float64) Stats {
	values := make([]float64, len(snaps))
	for i, s := range snaps {
		values[i] = f(s)
	}
	return summarize(values)
}

// calcPositive summarizes only the positive values in the series.
func calcPositive(snaps []model.ResourceSnapshot, f func(model.ResourceSnapshot) float64) Stats {
	var values []float64
	for _, s := range snaps {
		if v := f(s); v > 0 {
			values = append(values, v)
		}
	}
	return summarize(values)
}

func summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	st := Stats{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
		sum += v
	}
	st.Avg = round2(sum / float64(len(values)))
	st.Min = round2(st.Min)
	st.Max = round2(st.Max)
	return st
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
