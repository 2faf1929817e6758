package adapter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/syswatch/syswatch/internal/model"
)

// GPU probes NVIDIA devices through nvidia-smi. A host without the binary
// has no GPU and yields an empty slice with no error; a failing probe on a
// host that should have one is a degraded read and surfaces as an error.
type GPU struct {
	run func(ctx context.Context, name string, args ...string) (string, error)
}

func NewGPU() *GPU {
	return &GPU{run: runCommand}
}

func (a *GPU) Name() string { return "gpu" }

func (a *GPU) Collect(ctx context.Context) ([]model.GPUStat, error) {
	out, err := a.run(ctx, "nvidia-smi",
		"--query-gpu=name,utilization.gpu,memory.used,memory.total,temperature.gpu",
		"--format=csv,noheader,nounits")
	if err != nil {
		if isAbsent(err) {
			return []model.GPUStat{}, nil
		}
		return nil, fmt.Errorf("nvidia-smi: %w", err)
	}

	gpus := []model.GPUStat{}
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		parts := strings.Split(sc.Text(), ",")
		if len(parts) < 5 {
			continue
		}
		memUsed := parseFloat(parts[2])
		memTotal := parseFloat(parts[3])
		var memPct float64
		if memTotal > 0 {
			memPct = round2(memUsed / memTotal * 100)
		}
		gpus = append(gpus, model.GPUStat{
			Name:          strings.TrimSpace(parts[0]),
			LoadPercent:   parseFloat(parts[1]),
			MemoryUsedMB:  memUsed,
			MemoryTotalMB: memTotal,
			MemoryPercent: memPct,
			TemperatureC:  parseFloat(parts[4]),
		})
	}
	return gpus, nil
}

// isAbsent reports whether the probe failed because there is nothing to
// probe, as opposed to a device that failed to answer.
func isAbsent(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
