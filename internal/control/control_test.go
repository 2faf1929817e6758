package control

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syswatch/syswatch/internal/model"
	"github.com/syswatch/syswatch/internal/session"
)

func newController(t *testing.T) (*Controller, *session.Manager) {
	t.Helper()
	m := session.NewManager(5*time.Minute, nil)
	return New(m, t.TempDir()), m
}

func feed(m *session.Manager, n int) {
	for i := 0; i < n; i++ {
		m.OnSnapshot(model.ResourceSnapshot{
			Timestamp: time.Now(),
			CPU:       model.CPUStat{UsagePercent: float64(i)},
		})
	}
}

func TestStartTracking(t *testing.T) {
	c, _ := newController(t)

	resp := c.StartTracking()
	assert.Equal(t, "started", resp.Status)
	assert.Equal(t, 300.0, resp.DurationSeconds)
	assert.True(t, c.Status().IsTracking)
}

func TestStartTrackingTwice(t *testing.T) {
	c, _ := newController(t)

	c.StartTracking()
	resp := c.StartTracking()
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "already tracking", resp.Message)
}

func TestStopTracking(t *testing.T) {
	c, m := newController(t)

	c.StartTracking()
	feed(m, 3)

	resp := c.StopTracking()
	assert.Equal(t, "stopped", resp.Status)
	assert.Equal(t, 3, resp.DataPoints)
	assert.False(t, c.Status().IsTracking)
}

func TestStopTrackingWhenIdle(t *testing.T) {
	c, _ := newController(t)

	resp := c.StopTracking()
	assert.Equal(t, "not_tracking", resp.Status)
}

func TestGenerateReportWithoutSession(t *testing.T) {
	c, _ := newController(t)

	resp := c.GenerateReport()
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Message, "no completed tracking session")
}

func TestGenerateReportNeedsEnoughPoints(t *testing.T) {
	c, m := newController(t)

	c.StartTracking()
	feed(m, 4)
	c.StopTracking()

	resp := c.GenerateReport()
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Message, "not enough data")
	assert.Equal(t, 4, resp.DataPoints)
}

func TestGenerateReportWritesFile(t *testing.T) {
	c, m := newController(t)

	c.StartTracking()
	feed(m, 12)
	c.StopTracking()

	resp := c.GenerateReport()
	require.Equal(t, "success", resp.Status)
	assert.Equal(t, 12, resp.DataPoints)

	info, err := os.Stat(resp.Filename)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGenerateReportWhileNewSessionRuns(t *testing.T) {
	c, m := newController(t)

	c.StartTracking()
	feed(m, 12)
	c.StopTracking()

	// A new capture does not block reporting the finished one, but it does
	// replace the completed buffer, so report first.
	resp := c.GenerateReport()
	assert.Equal(t, "success", resp.Status)

	c.StartTracking()
	resp = c.GenerateReport()
	assert.Equal(t, "error", resp.Status)
}
