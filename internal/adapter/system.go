package adapter

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/syswatch/syswatch/internal/model"
)

// System samples host-level info, currently just uptime.
type System struct {
	uptime func(ctx context.Context) (uint64, error)
}

func NewSystem() *System {
	return &System{uptime: host.UptimeWithContext}
}

func (a *System) Name() string { return "system" }

func (a *System) Collect(ctx context.Context) (model.SystemStat, error) {
	secs, err := a.uptime(ctx)
	if err != nil {
		return model.SystemStat{}, fmt.Errorf("host uptime: %w", err)
	}
	return model.SystemStat{UptimeHours: round2(float64(secs) / 3600)}, nil
}
