package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/syswatch/syswatch/internal/model"
)

// Disk samples per-partition usage and derives aggregate read/write speeds
// from I/O counter deltas. The counter state is owned here and guarded so a
// timed-out collect racing the next tick cannot corrupt it.
type Disk struct {
	mu     sync.Mutex
	prev   map[string]disk.IOCountersStat
	prevAt time.Time

	ioCounters func(ctx context.Context, names ...string) (map[string]disk.IOCountersStat, error)
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
	now        func() time.Time
}

func NewDisk() *Disk {
	return &Disk{
		prev:       make(map[string]disk.IOCountersStat),
		ioCounters: disk.IOCountersWithContext,
		partitions: disk.PartitionsWithContext,
		usage:      disk.UsageWithContext,
		now:        time.Now,
	}
}

func (a *Disk) Name() string { return "disk" }

func (a *Disk) Collect(ctx context.Context) (model.DiskStat, error) {
	counters, err := a.ioCounters(ctx)
	if err != nil {
		return model.DiskStat{}, fmt.Errorf("disk io counters: %w", err)
	}

	readSpeed, writeSpeed := a.speeds(counters)

	stat := model.DiskStat{
		ReadSpeedMBps:  readSpeed,
		WriteSpeedMBps: writeSpeed,
		Partitions:     []model.PartitionStat{},
	}

	parts, err := a.partitions(ctx, false)
	if err != nil {
		// Speeds are still valid; partition listing alone failed.
		return stat, nil
	}
	for _, p := range parts {
		u, err := a.usage(ctx, p.Mountpoint)
		if err != nil {
			// Unreadable mountpoints (permissions, stale mounts) are skipped.
			continue
		}
		stat.Partitions = append(stat.Partitions, model.PartitionStat{
			Device:       p.Device,
			Mountpoint:   p.Mountpoint,
			UsedGB:       toGB(u.Used),
			TotalGB:      toGB(u.Total),
			UsagePercent: round2(u.UsedPercent),
		})
	}
	return stat, nil
}

// speeds folds the counter deltas into MB/s. A counter that decreased since
// the last read (wrap or device reset) contributes a zero delta.
func (a *Disk) speeds(counters map[string]disk.IOCountersStat) (readMBps, writeMBps float64) {
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	var readDelta, writeDelta uint64
	first := a.prevAt.IsZero()
	for name, cur := range counters {
		if strings.HasPrefix(name, "loop") {
			continue
		}
		prev, ok := a.prev[name]
		if ok {
			if cur.ReadBytes > prev.ReadBytes {
				readDelta += cur.ReadBytes - prev.ReadBytes
			}
			if cur.WriteBytes > prev.WriteBytes {
				writeDelta += cur.WriteBytes - prev.WriteBytes
			}
		}
	}
	a.prev = counters
	prevAt := a.prevAt
	a.prevAt = now

	if first {
		return 0, 0
	}
	dt := elapsedSeconds(prevAt, now)
	readMBps = round2(float64(readDelta) / bytesPerMB / dt)
	writeMBps = round2(float64(writeDelta) / bytesPerMB / dt)
	return readMBps, writeMBps
}
