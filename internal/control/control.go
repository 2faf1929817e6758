// Package control is the command facade between the tracking core and
// whatever request layer drives it (CLI today, a socket server in the larger
// deployment). It maps session and report operations onto the status
// payloads that layer returns to users; nothing here is fatal.
package control

import (
	"errors"
	"fmt"

	"github.com/syswatch/syswatch/internal/report"
	"github.com/syswatch/syswatch/internal/session"
)

// minReportPoints is the smallest capture worth a report file. Shorter
// captures are rejected with a hint instead of producing a useless report.
const minReportPoints = 10

// TrackingResponse is the payload for start/stop commands.
type TrackingResponse struct {
	Status          string  `json:"status"`
	Message         string  `json:"message"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	DataPoints      int     `json:"data_points,omitempty"`
}

// ReportResponse is the payload for report generation.
type ReportResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Filename   string `json:"filename,omitempty"`
	DataPoints int    `json:"data_points,omitempty"`
}

// Controller binds the session manager and report output directory.
type Controller struct {
	sessions  *session.Manager
	reportDir string
}

func New(sessions *session.Manager, reportDir string) *Controller {
	return &Controller{sessions: sessions, reportDir: reportDir}
}

// StartTracking begins a capture window.
func (c *Controller) StartTracking() TrackingResponse {
	limit, err := c.sessions.Start()
	if err != nil {
		if errors.Is(err, session.ErrAlreadyTracking) {
			return TrackingResponse{Status: "error", Message: "already tracking"}
		}
		return TrackingResponse{Status: "error", Message: err.Error()}
	}
	return TrackingResponse{
		Status:          "started",
		Message:         fmt.Sprintf("Tracking started for %s.", limit),
		DurationSeconds: limit.Seconds(),
	}
}

// StopTracking ends the capture window if one is running.
func (c *Controller) StopTracking() TrackingResponse {
	res := c.sessions.Stop()
	if !res.Stopped {
		return TrackingResponse{
			Status:     "not_tracking",
			Message:    "No tracking session is running.",
			DataPoints: res.DataPoints,
		}
	}
	return TrackingResponse{
		Status:     "stopped",
		Message:    fmt.Sprintf("Tracking stopped with %d data points.", res.DataPoints),
		DataPoints: res.DataPoints,
	}
}

// Status reports the live session status.
func (c *Controller) Status() session.Status {
	return c.sessions.Status()
}

// GenerateReport builds the report projection from the completed session and
// writes it as a JSON file for the rendering collaborator.
func (c *Controller) GenerateReport() ReportResponse {
	snaps, ok := c.sessions.Data()
	if !ok {
		return ReportResponse{Status: "error", Message: "no completed tracking session"}
	}
	if len(snaps) < minReportPoints {
		return ReportResponse{
			Status:     "error",
			Message:    fmt.Sprintf("not enough data: %d points captured, %d required", len(snaps), minReportPoints),
			DataPoints: len(snaps),
		}
	}

	data, err := report.Build(snaps)
	if err != nil {
		return ReportResponse{Status: "error", Message: err.Error()}
	}
	path, err := report.WriteJSON(data, c.reportDir)
	if err != nil {
		return ReportResponse{Status: "error", Message: err.Error()}
	}
	return ReportResponse{
		Status:     "success",
		Message:    "Report generated.",
		Filename:   path,
		DataPoints: data.DataPoints,
	}
}
