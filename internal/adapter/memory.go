package adapter

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/syswatch/syswatch/internal/model"
)

// Memory samples RAM and swap usage. No counter state: every read is absolute.
type Memory struct {
	virtual func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	swap    func(ctx context.Context) (*mem.SwapMemoryStat, error)
}

func NewMemory() *Memory {
	return &Memory{
		virtual: mem.VirtualMemoryWithContext,
		swap:    mem.SwapMemoryWithContext,
	}
}

func (a *Memory) Name() string { return "memory" }

func (a *Memory) Collect(ctx context.Context) (model.MemoryStat, error) {
	vm, err := a.virtual(ctx)
	if err != nil {
		return model.MemoryStat{}, fmt.Errorf("virtual memory: %w", err)
	}

	stat := model.MemoryStat{
		UsagePercent: round2(vm.UsedPercent),
		UsedGB:       toGB(vm.Used),
		TotalGB:      toGB(vm.Total),
		AvailableGB:  toGB(vm.Available),
	}

	// Swap is optional; hosts without it report zero.
	if sw, err := a.swap(ctx); err == nil {
		stat.SwapPercent = round2(sw.UsedPercent)
	}
	return stat, nil
}
