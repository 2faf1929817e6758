// Package session owns the lifecycle of a bounded-duration tracking capture:
// Idle until started, Active while buffering snapshots, Completed on explicit
// stop or when the duration limit elapses. At most one session is Active at a
// time and a completed session fires its notification exactly once, no matter
// how stop and timeout race.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syswatch/syswatch/internal/logger"
	"github.com/syswatch/syswatch/internal/model"
)

// ErrAlreadyTracking is returned by Start while a session is Active. The
// running session and its buffer are unaffected.
var ErrAlreadyTracking = errors.New("tracking session already active")

// State is the lifecycle phase of the current session.
type State int

const (
	Idle State = iota
	Active
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is a point-in-time view of the session, safe to request from any
// state.
type Status struct {
	IsTracking       bool    `json:"is_tracking"`
	ProgressPercent  float64 `json:"progress_percent"`
	ElapsedSeconds   int     `json:"elapsed_seconds"`
	RemainingSeconds int     `json:"remaining_seconds"`
	DataPoints       int     `json:"data_points"`
}

// StopResult reports what an explicit stop did. Stopping when nothing is
// running is informational, not an error.
type StopResult struct {
	Stopped    bool
	DataPoints int
}

// Completion describes a finished session, delivered to the completion
// callback exactly once whether the session timed out or was stopped.
type Completion struct {
	Message    string
	DataPoints int
	ByTimeout  bool
}

// Manager is the process-wide owner of the single tracking session slot.
type Manager struct {
	mu        sync.Mutex
	state     State
	startedAt time.Time
	buffer    []model.ResourceSnapshot

	limit      time.Duration
	onComplete func(Completion)
	now        func() time.Time
	log        logger.Logger
}

// NewManager creates a Manager in Idle with the given duration limit.
func NewManager(limit time.Duration, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Noop()
	}
	return &Manager{
		state: Idle,
		limit: limit,
		now:   time.Now,
		log:   log,
	}
}

// OnComplete registers the completion callback. It runs outside the session
// lock, on whichever goroutine triggered completion.
func (m *Manager) OnComplete(fn func(Completion)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onComplete = fn
}

// Limit returns the fixed session duration.
func (m *Manager) Limit() time.Duration {
	return m.limit
}

// Start begins a new capture window with a fresh buffer. Fails with
// ErrAlreadyTracking while a session is Active.
func (m *Manager) Start() (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Active {
		return 0, ErrAlreadyTracking
	}

	m.buffer = nil
	m.startedAt = m.now()
	m.state = Active
	m.log.Info("tracking started, limit=%s", m.limit)
	return m.limit, nil
}

// Stop completes an Active session immediately. When nothing is running it
// reports Stopped=false and leaves any Completed buffer alone.
func (m *Manager) Stop() StopResult {
	m.mu.Lock()
	if m.state != Active {
		res := StopResult{Stopped: false, DataPoints: len(m.buffer)}
		m.mu.Unlock()
		return res
	}
	done := m.completeLocked(false)
	res := StopResult{Stopped: true, DataPoints: len(m.buffer)}
	m.mu.Unlock()

	m.fire(done)
	return res
}

// OnSnapshot is the broker sink: appends while Active and auto-completes
// once the elapsed time reaches the limit. Called in strict tick order on
// the sampler goroutine.
func (m *Manager) OnSnapshot(snap model.ResourceSnapshot) {
	m.mu.Lock()
	if m.state != Active {
		m.mu.Unlock()
		return
	}

	m.buffer = append(m.buffer, snap)

	var done *Completion
	if m.now().Sub(m.startedAt) >= m.limit {
		done = m.completeLocked(true)
	}
	m.mu.Unlock()

	m.fire(done)
}

// completeLocked transitions Active -> Completed. Callers hold m.mu and are
// responsible for firing the returned completion after unlocking. The state
// check in every caller makes a second completion impossible.
func (m *Manager) completeLocked(byTimeout bool) *Completion {
	m.state = Completed
	points := len(m.buffer)

	msg := fmt.Sprintf("Tracking stopped with %d data points.", points)
	if byTimeout {
		msg = fmt.Sprintf("Tracking completed after %s with %d data points.", m.limit, points)
	}
	m.log.Info("tracking completed (timeout=%v, points=%d)", byTimeout, points)
	return &Completion{Message: msg, DataPoints: points, ByTimeout: byTimeout}
}

func (m *Manager) fire(done *Completion) {
	if done == nil {
		return
	}
	m.mu.Lock()
	fn := m.onComplete
	m.mu.Unlock()
	if fn != nil {
		fn(*done)
	}
}

// Status reports progress, capped at 100 percent, from any state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{DataPoints: len(m.buffer)}
	if m.state != Active {
		return st
	}

	elapsed := m.now().Sub(m.startedAt)
	remaining := m.limit - elapsed
	if remaining < 0 {
		remaining = 0
	}
	progress := float64(elapsed) / float64(m.limit) * 100
	if progress > 100 {
		progress = 100
	}

	st.IsTracking = true
	st.ProgressPercent = progress
	st.ElapsedSeconds = int(elapsed.Seconds())
	st.RemainingSeconds = int(remaining.Seconds())
	return st
}

// State returns the current lifecycle phase.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Data returns a copy of the buffer and true when the session is Completed.
// The copy keeps report building independent of a subsequent Start reusing
// the slot.
func (m *Manager) Data() ([]model.ResourceSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Completed {
		return nil, false
	}
	out := make([]model.ResourceSnapshot, len(m.buffer))
	copy(out, m.buffer)
	return out, true
}
