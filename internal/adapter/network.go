package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/syswatch/syswatch/internal/model"
)

// Network samples machine-wide traffic: lifetime byte totals plus up/down
// speeds derived from the counter delta since the previous read.
type Network struct {
	mu       sync.Mutex
	prevSent uint64
	prevRecv uint64
	prevAt   time.Time
	primed   bool

	ioCounters func(ctx context.Context, pernic bool) ([]net.IOCountersStat, error)
	now        func() time.Time
}

func NewNetwork() *Network {
	return &Network{
		ioCounters: net.IOCountersWithContext,
		now:        time.Now,
	}
}

func (a *Network) Name() string { return "network" }

func (a *Network) Collect(ctx context.Context) (model.NetworkStat, error) {
	counters, err := a.ioCounters(ctx, false)
	if err != nil {
		return model.NetworkStat{}, fmt.Errorf("net io counters: %w", err)
	}
	if len(counters) == 0 {
		return model.NetworkStat{}, fmt.Errorf("net io counters: empty result")
	}

	cur := counters[0]
	now := a.now()

	a.mu.Lock()
	var upBytes, downBytes uint64
	if a.primed {
		// A decreased counter means a reset; treat the delta as zero.
		if cur.BytesSent > a.prevSent {
			upBytes = cur.BytesSent - a.prevSent
		}
		if cur.BytesRecv > a.prevRecv {
			downBytes = cur.BytesRecv - a.prevRecv
		}
	}
	prevAt := a.prevAt
	primed := a.primed
	a.prevSent, a.prevRecv, a.prevAt, a.primed = cur.BytesSent, cur.BytesRecv, now, true
	a.mu.Unlock()

	stat := model.NetworkStat{
		TotalSentGB: toGB(cur.BytesSent),
		TotalRecvGB: toGB(cur.BytesRecv),
	}
	if primed {
		dt := elapsedSeconds(prevAt, now)
		stat.UploadSpeedKbps = round2(float64(upBytes) * 8 / bytesPerKB / dt)
		stat.DownloadSpeedKbps = round2(float64(downBytes) * 8 / bytesPerKB / dt)
	}
	return stat, nil
}
