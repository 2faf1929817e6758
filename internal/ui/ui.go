// Package ui renders the live dashboard: one consumer of the broker feed
// with keyboard control over tracking sessions. It tolerates missing
// snapshots by design; the broker drops frames for it rather than slowing
// the sampler.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/syswatch/syswatch/internal/broker"
	"github.com/syswatch/syswatch/internal/control"
	"github.com/syswatch/syswatch/internal/model"
	"github.com/syswatch/syswatch/internal/session"
)

// Model renders live snapshots and the tracking session state.
type Model struct {
	sub  *broker.Subscription
	ctrl *control.Controller

	latest   model.ResourceSnapshot
	status   session.Status
	notice   string
	progress progress.Model
	width    int
	height   int
}

func New(sub *broker.Subscription, ctrl *control.Controller) *Model {
	return &Model{
		sub:      sub,
		ctrl:     ctrl,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		width:    120,
		height:   40,
	}
}

// Messages
type (
	tickMsg     struct{}
	completeMsg session.Completion
)

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "t":
			resp := m.ctrl.StartTracking()
			m.notice = resp.Message
		case "s":
			resp := m.ctrl.StopTracking()
			m.notice = resp.Message
		case "g":
			resp := m.ctrl.GenerateReport()
			if resp.Status == "success" {
				m.notice = fmt.Sprintf("Report written to %s", resp.Filename)
			} else {
				m.notice = resp.Message
			}
		}
	case completeMsg:
		m.notice = msg.Message
	case tickMsg:
		// Drain whatever the feed has; keep only the newest frame.
		for {
			select {
			case snap, ok := <-m.sub.C:
				if !ok {
					return m, tea.Quit
				}
				m.latest = snap
			default:
				m.status = m.ctrl.Status()
				return m, tickCmd()
			}
		}
	}
	return m, nil
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	s := m.latest
	header := titleStyle.Render("syswatch") + "  " +
		subtleStyle.Render(s.Timestamp.Format("Mon Jan 2 15:04:05 2006")) + "  " +
		subtleStyle.Render("[t]rack  [s]top  [g]enerate report  [q]uit")

	cpuCard := card("CPU", fmt.Sprintf("%s\n%d cores @ %.0f MHz%s",
		gaugeBar(s.CPU.UsagePercent, 28),
		s.CPU.LogicalCores, s.CPU.FrequencyMHz, cpuTemp(s.CPU)))

	memCard := card("Memory", fmt.Sprintf("%s\n%.1f/%.1f GB | swap %3.0f%%",
		gaugeBar(s.Memory.UsagePercent, 28),
		s.Memory.UsedGB, s.Memory.TotalGB, s.Memory.SwapPercent))

	ioCard := card("Disk / Net", fmt.Sprintf(
		"R/W: %.1f / %.1f MB/s\nUp/Down: %.1f / %.1f Kbps\nSent/Recv: %.1f / %.1f GB",
		s.Disk.ReadSpeedMBps, s.Disk.WriteSpeedMBps,
		s.Network.UploadSpeedKbps, s.Network.DownloadSpeedKbps,
		s.Network.TotalSentGB, s.Network.TotalRecvGB))

	sysCard := card("System", fmt.Sprintf("up %.1f h", s.System.UptimeHours))

	gpuCard := ""
	if len(s.GPU) > 0 {
		lines := make([]string, 0, len(s.GPU))
		for _, g := range s.GPU {
			lines = append(lines, fmt.Sprintf("%s %4.0f%% mem %4.0f/%-4.0fMB %2.0f°C",
				truncate(g.Name, 12), g.LoadPercent, g.MemoryUsedMB, g.MemoryTotalMB, g.TemperatureC))
		}
		gpuCard = card("GPU", strings.Join(lines, "\n"))
	}

	procCard := card("Top processes", renderProcs(s.Processes))
	trackCard := card("Tracking", m.trackingView())

	columns := []string{cpuCard, memCard, ioCard, sysCard}
	if gpuCard != "" {
		columns = append(columns, gpuCard)
	}

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	line2 := lipgloss.JoinHorizontal(lipgloss.Top, procCard, trackCard)

	out := lipgloss.JoinVertical(lipgloss.Left, header, line1, line2)
	if m.notice != "" {
		out = lipgloss.JoinVertical(lipgloss.Left, out, noticeStyle.Render(m.notice))
	}
	return out
}

func (m *Model) trackingView() string {
	st := m.status
	if !st.IsTracking {
		if st.DataPoints > 0 {
			return fmt.Sprintf("idle, %d points buffered from last session", st.DataPoints)
		}
		return "idle, press t to start a capture"
	}
	return fmt.Sprintf("%s\n%d points | %ds elapsed, %ds left",
		m.progress.ViewAs(st.ProgressPercent/100),
		st.DataPoints, st.ElapsedSeconds, st.RemainingSeconds)
}

func cpuTemp(c model.CPUStat) string {
	if !c.HasTemperature {
		return ""
	}
	return fmt.Sprintf(" | %.0f°C", c.TemperatureC)
}

// Helpers
func gaugeBar(pct float64, width int) string {
	pct = model.ClampPercent(pct)
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

func card(title, body string) string {
	return cardStyle.Render(labelStyle.Render(title) + "\n" + body)
}

func renderProcs(procs []model.ProcessStat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-7s %6s %6s\n", "name", "pid", "cpu", "mem")
	for _, p := range procs {
		fmt.Fprintf(&b, "%-20s %-7d %5.1f%% %5.1f%%\n",
			truncate(p.Name, 20), p.PID, p.CPUPercent, p.MemoryPercent)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the dashboard program against a live broker feed and wires the
// completion notification into the message loop.
func Run(b *broker.Broker, ctrl *control.Controller, sessions *session.Manager) error {
	sub := b.Subscribe(8)
	defer sub.Close()

	prog := tea.NewProgram(New(sub, ctrl), tea.WithAltScreen())
	sessions.OnComplete(func(c session.Completion) {
		prog.Send(completeMsg(c))
	})
	defer sessions.OnComplete(nil)

	_, err := prog.Run()
	return err
}
