package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syswatch/syswatch/internal/model"
)

func snapSeq(cpu ...float64) []model.ResourceSnapshot {
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	snaps := make([]model.ResourceSnapshot, len(cpu))
	for i, v := range cpu {
		snaps[i] = model.ResourceSnapshot{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			CPU:       model.CPUStat{UsagePercent: v},
			GPU:       []model.GPUStat{},
			Processes: []model.ProcessStat{},
		}
	}
	return snaps
}

func TestBuildRejectsEmptySession(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrEmptySession)

	_, err = Build([]model.ResourceSnapshot{})
	assert.ErrorIs(t, err, ErrEmptySession)
}

func TestBuildSeriesStats(t *testing.T) {
	snaps := snapSeq(10, 50, 30)

	d, err := Build(snaps)
	require.NoError(t, err)

	assert.Equal(t, 3, d.DataPoints)
	assert.Equal(t, snaps[0].Timestamp, d.StartedAt)
	assert.Equal(t, snaps[2].Timestamp, d.EndedAt)
	assert.Equal(t, 2*time.Second, d.Duration)

	assert.Equal(t, 10.0, d.CPUUsage.Min)
	assert.Equal(t, 50.0, d.CPUUsage.Max)
	assert.Equal(t, 30.0, d.CPUUsage.Avg)

	assert.Len(t, d.Snapshots, 3)
}

func TestBuildAverageRoundsToTwoDecimals(t *testing.T) {
	d, err := Build(snapSeq(10, 10, 11))
	require.NoError(t, err)
	assert.Equal(t, 10.33, d.CPUUsage.Avg)
}

func TestBuildSkipsUnknownTemperatures(t *testing.T) {
	snaps := snapSeq(10, 20, 30)
	snaps[0].CPU.HasTemperature = true
	snaps[0].CPU.TemperatureC = 60
	snaps[2].CPU.HasTemperature = true
	snaps[2].CPU.TemperatureC = 70
	// snaps[1] has no sensor reading and must not pull the minimum to zero.

	d, err := Build(snaps)
	require.NoError(t, err)
	assert.Equal(t, 60.0, d.CPUTemperature.Min)
	assert.Equal(t, 70.0, d.CPUTemperature.Max)
	assert.Equal(t, 65.0, d.CPUTemperature.Avg)
}

func TestBuildNoTemperatureSensorGivesZeroStats(t *testing.T) {
	d, err := Build(snapSeq(10, 20))
	require.NoError(t, err)
	assert.Equal(t, Stats{}, d.CPUTemperature)
}

func TestBuildWithoutGPU(t *testing.T) {
	d, err := Build(snapSeq(10, 20))
	require.NoError(t, err)
	assert.False(t, d.HasGPU)
	assert.Equal(t, Stats{}, d.GPULoad)
}

func TestBuildWithGPU(t *testing.T) {
	snaps := snapSeq(10, 20)
	snaps[0].GPU = []model.GPUStat{{Name: "RTX 3080", LoadPercent: 40, MemoryPercent: 50, TemperatureC: 60}}
	snaps[1].GPU = []model.GPUStat{{Name: "RTX 3080", LoadPercent: 80, MemoryPercent: 70, TemperatureC: 64}}

	d, err := Build(snaps)
	require.NoError(t, err)
	assert.True(t, d.HasGPU)
	assert.Equal(t, 40.0, d.GPULoad.Min)
	assert.Equal(t, 80.0, d.GPULoad.Max)
	assert.Equal(t, 60.0, d.GPULoad.Avg)
	assert.Equal(t, 62.0, d.GPUTemperature.Avg)
}

func TestFilenameFormat(t *testing.T) {
	ts := time.Date(2026, 8, 31, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, "syswatch_report_20260831_140509.json", Filename(ts))
}

func TestWriteJSONRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	d, err := Build(snapSeq(10, 50, 30))
	require.NoError(t, err)

	path, err := WriteJSON(d, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, Filename(d.GeneratedAt)), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var back Data
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, d.DataPoints, back.DataPoints)
	assert.Equal(t, d.CPUUsage, back.CPUUsage)
	assert.Len(t, back.Snapshots, 3)
}
