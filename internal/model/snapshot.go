package model

import "time"

// CPUStat aggregates instantaneous CPU usage for the whole machine.
type CPUStat struct {
	UsagePercent   float64 `json:"usage_percent"`
	TemperatureC   float64 `json:"temperature_c"`
	HasTemperature bool    `json:"has_temperature"`
	FrequencyMHz   float64 `json:"frequency_mhz"`
	LogicalCores   int     `json:"logical_cores"`
}

// MemoryStat captures RAM and swap usage.
type MemoryStat struct {
	UsagePercent float64 `json:"usage_percent"`
	UsedGB       float64 `json:"used_gb"`
	TotalGB      float64 `json:"total_gb"`
	AvailableGB  float64 `json:"available_gb"`
	SwapPercent  float64 `json:"swap_percent"`
}

// GPUStat holds a single device reading. The slice in ResourceSnapshot is
// empty (never nil) when no GPU is present.
type GPUStat struct {
	Name          string  `json:"name"`
	LoadPercent   float64 `json:"load_percent"`
	TemperatureC  float64 `json:"temperature_c"`
	MemoryUsedMB  float64 `json:"memory_used_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	MemoryPercent float64 `json:"memory_percent"`
}

// PartitionStat describes usage of one mounted filesystem.
type PartitionStat struct {
	Device       string  `json:"device"`
	Mountpoint   string  `json:"mountpoint"`
	UsedGB       float64 `json:"used_gb"`
	TotalGB      float64 `json:"total_gb"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskStat holds throughput derived from counter deltas plus per-partition usage.
type DiskStat struct {
	ReadSpeedMBps  float64         `json:"read_speed_mbps"`
	WriteSpeedMBps float64         `json:"write_speed_mbps"`
	Partitions     []PartitionStat `json:"partitions"`
}

// NetworkStat holds throughput derived from counter deltas plus lifetime totals.
type NetworkStat struct {
	UploadSpeedKbps   float64 `json:"upload_speed_kbps"`
	DownloadSpeedKbps float64 `json:"download_speed_kbps"`
	TotalSentGB       float64 `json:"total_sent_gb"`
	TotalRecvGB       float64 `json:"total_recv_gb"`
}

// ProcessStat is one top-N entry, ordered by CPU usage.
type ProcessStat struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// SystemStat carries host-level info.
type SystemStat struct {
	UptimeHours float64 `json:"uptime_hours"`
}

// ResourceSnapshot is the composite reading assembled once per sampling tick
// and fanned out to every consumer. Field names match the stats_update wire
// payload.
type ResourceSnapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	Monotonic time.Duration `json:"monotonic_ns"`
	CPU       CPUStat       `json:"cpu"`
	Memory    MemoryStat    `json:"memory"`
	GPU       []GPUStat     `json:"gpu"`
	Disk      DiskStat      `json:"disk"`
	Network   NetworkStat   `json:"network"`
	Processes []ProcessStat `json:"processes"`
	System    SystemStat    `json:"system"`
}

// ClampPercent bounds a percentage reading to [0, 100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// NonNegative floors a reading at zero. Counter wraps and device resets are
// handled upstream, so anything negative here is a defect being papered over.
func NonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Normalize enforces the snapshot invariants in place: percent fields in
// [0,100], speeds and totals >= 0, and slices empty rather than nil so JSON
// consumers never see null.
func (s *ResourceSnapshot) Normalize() {
	s.CPU.UsagePercent = ClampPercent(s.CPU.UsagePercent)
	s.CPU.FrequencyMHz = NonNegative(s.CPU.FrequencyMHz)

	s.Memory.UsagePercent = ClampPercent(s.Memory.UsagePercent)
	s.Memory.SwapPercent = ClampPercent(s.Memory.SwapPercent)
	s.Memory.UsedGB = NonNegative(s.Memory.UsedGB)
	s.Memory.TotalGB = NonNegative(s.Memory.TotalGB)
	s.Memory.AvailableGB = NonNegative(s.Memory.AvailableGB)

	if s.GPU == nil {
		s.GPU = []GPUStat{}
	}
	for i := range s.GPU {
		s.GPU[i].LoadPercent = ClampPercent(s.GPU[i].LoadPercent)
		s.GPU[i].MemoryPercent = ClampPercent(s.GPU[i].MemoryPercent)
		s.GPU[i].MemoryUsedMB = NonNegative(s.GPU[i].MemoryUsedMB)
		s.GPU[i].MemoryTotalMB = NonNegative(s.GPU[i].MemoryTotalMB)
	}

	s.Disk.ReadSpeedMBps = NonNegative(s.Disk.ReadSpeedMBps)
	s.Disk.WriteSpeedMBps = NonNegative(s.Disk.WriteSpeedMBps)
	if s.Disk.Partitions == nil {
		s.Disk.Partitions = []PartitionStat{}
	}
	for i := range s.Disk.Partitions {
		s.Disk.Partitions[i].UsagePercent = ClampPercent(s.Disk.Partitions[i].UsagePercent)
		s.Disk.Partitions[i].UsedGB = NonNegative(s.Disk.Partitions[i].UsedGB)
		s.Disk.Partitions[i].TotalGB = NonNegative(s.Disk.Partitions[i].TotalGB)
	}

	s.Network.UploadSpeedKbps = NonNegative(s.Network.UploadSpeedKbps)
	s.Network.DownloadSpeedKbps = NonNegative(s.Network.DownloadSpeedKbps)
	s.Network.TotalSentGB = NonNegative(s.Network.TotalSentGB)
	s.Network.TotalRecvGB = NonNegative(s.Network.TotalRecvGB)

	if s.Processes == nil {
		s.Processes = []ProcessStat{}
	}
	for i := range s.Processes {
		s.Processes[i].CPUPercent = ClampPercent(s.Processes[i].CPUPercent)
		s.Processes[i].MemoryPercent = ClampPercent(s.Processes[i].MemoryPercent)
	}

	s.System.UptimeHours = NonNegative(s.System.UptimeHours)
}
