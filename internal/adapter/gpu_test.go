package adapter

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUParsesProbeOutput(t *testing.T) {
	a := NewGPU()
	a.run = func(ctx context.Context, name string, args ...string) (string, error) {
		return "NVIDIA GeForce RTX 3080, 45, 2048, 10240, 65\n", nil
	}

	gpus, err := a.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, gpus, 1)
	assert.Equal(t, "NVIDIA GeForce RTX 3080", gpus[0].Name)
	assert.Equal(t, 45.0, gpus[0].LoadPercent)
	assert.Equal(t, 2048.0, gpus[0].MemoryUsedMB)
	assert.Equal(t, 10240.0, gpus[0].MemoryTotalMB)
	assert.Equal(t, 20.0, gpus[0].MemoryPercent)
	assert.Equal(t, 65.0, gpus[0].TemperatureC)
}

func TestGPUMultipleDevicesKeepOrder(t *testing.T) {
	a := NewGPU()
	a.run = func(ctx context.Context, name string, args ...string) (string, error) {
		return "RTX 4090, 10, 1000, 24000, 50\nRTX 3060, 90, 6000, 12000, 70\n", nil
	}

	gpus, err := a.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, gpus, 2)
	assert.Equal(t, "RTX 4090", gpus[0].Name)
	assert.Equal(t, "RTX 3060", gpus[1].Name)
}

func TestGPUAbsentIsNotAnError(t *testing.T) {
	a := NewGPU()
	a.run = func(ctx context.Context, name string, args ...string) (string, error) {
		return "", &exec.Error{Name: "nvidia-smi", Err: exec.ErrNotFound}
	}

	gpus, err := a.Collect(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, gpus)
	assert.Empty(t, gpus)
}

func TestGPUProbeFailureIsDegraded(t *testing.T) {
	a := NewGPU()
	a.run = func(ctx context.Context, name string, args ...string) (string, error) {
		return "", errors.New("driver wedged")
	}

	_, err := a.Collect(context.Background())
	assert.Error(t, err)
}

func TestGPUSkipsMalformedLines(t *testing.T) {
	a := NewGPU()
	a.run = func(ctx context.Context, name string, args ...string) (string, error) {
		return "garbage line\nRTX 3060, 12, 100, 1000, 40\n", nil
	}

	gpus, err := a.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, gpus, 1)
	assert.Equal(t, "RTX 3060", gpus[0].Name)
}
