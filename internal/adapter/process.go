package adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/syswatch/syswatch/internal/model"
)

// Processes samples the top-N processes by CPU usage.
type Processes struct {
	topN int
	list func(ctx context.Context) ([]*process.Process, error)
}

func NewProcesses(topN int) *Processes {
	return &Processes{
		topN: topN,
		list: process.ProcessesWithContext,
	}
}

func (a *Processes) Name() string { return "processes" }

func (a *Processes) Collect(ctx context.Context) ([]model.ProcessStat, error) {
	procs, err := a.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("process list: %w", err)
	}

	entries := []model.ProcessStat{}
	for _, p := range procs {
		// Processes can exit mid-walk; skip anything we cannot read.
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		cpuPct, _ := p.CPUPercentWithContext(ctx)
		memPct, _ := p.MemoryPercentWithContext(ctx)
		entries = append(entries, model.ProcessStat{
			PID:           p.Pid,
			Name:          name,
			CPUPercent:    round2(cpuPct),
			MemoryPercent: round2(float64(memPct)),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].CPUPercent > entries[j].CPUPercent })
	if a.topN >= 0 && len(entries) > a.topN {
		entries = entries[:a.topN]
	}
	return entries, nil
}
