// Package sampler drives the resource adapters on a steady tick, assembles
// composite snapshots, and publishes them. One slow or failing adapter never
// delays the tick or the other resource classes.
package sampler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/syswatch/syswatch/internal/adapter"
	"github.com/syswatch/syswatch/internal/config"
	"github.com/syswatch/syswatch/internal/logger"
	"github.com/syswatch/syswatch/internal/model"
)

// ErrAlreadyRunning is returned by Start when the tick loop is already live.
var ErrAlreadyRunning = errors.New("sampler already running")

// maxConsecutiveFailures is how many failed reads a resource class gets
// before its last known values are discarded in favor of zero defaults.
const maxConsecutiveFailures = 3

// Sink receives every assembled snapshot. Publish must not block.
type Sink interface {
	Publish(model.ResourceSnapshot)
}

// Sampler owns the tick loop and the per-class degrade policy.
type Sampler struct {
	interval       time.Duration
	adapterTimeout time.Duration
	gpuEnabled     bool
	sink           Sink
	log            logger.Logger

	cpu   *adapter.CPU
	mem   *adapter.Memory
	gpu   *adapter.GPU
	disk  *adapter.Disk
	net   *adapter.Network
	procs *adapter.Processes
	sys   *adapter.System

	// Fallback state is only touched from the tick goroutine.
	cpuFB  fallback[model.CPUStat]
	memFB  fallback[model.MemoryStat]
	gpuFB  fallback[[]model.GPUStat]
	diskFB fallback[model.DiskStat]
	netFB  fallback[model.NetworkStat]
	procFB fallback[[]model.ProcessStat]
	sysFB  fallback[model.SystemStat]

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
}

func New(cfg config.Config, sink Sink, log logger.Logger) *Sampler {
	if log == nil {
		log = logger.Noop()
	}
	return &Sampler{
		interval:       cfg.Interval,
		adapterTimeout: cfg.AdapterTimeout,
		gpuEnabled:     cfg.EnableGPU,
		sink:           sink,
		log:            log,
		cpu:            adapter.NewCPU(),
		mem:            adapter.NewMemory(),
		gpu:            adapter.NewGPU(),
		disk:           adapter.NewDisk(),
		net:            adapter.NewNetwork(),
		procs:          adapter.NewProcesses(cfg.TopProcesses),
		sys:            adapter.NewSystem(),
	}
}

// Start begins the tick loop. Idempotent: a second Start reports
// ErrAlreadyRunning instead of creating another ticker.
func (s *Sampler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.startedAt = time.Now()
	s.running = true

	go s.run(ctx, s.done)
	s.log.Debug("started, interval=%s adapter_timeout=%s", s.interval, s.adapterTimeout)
	return nil
}

// Stop cancels in-flight adapter reads and waits for the loop to exit.
// Safe to call when not running.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
	s.log.Debug("stopped")
}

// Running reports whether the tick loop is live.
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sampler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	// time.Ticker drops ticks a slow assembly misses, which is exactly the
	// best-effort cadence wanted here: no backlog, next tick as scheduled.
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			snap := s.assemble(ctx, t)
			if ctx.Err() != nil {
				return
			}
			s.sink.Publish(snap)
		}
	}
}

// SampleOnce assembles a single snapshot outside the tick loop. Speed fields
// need a primed counter state, so one-shot callers should sample twice with a
// pause in between.
func (s *Sampler) SampleOnce(ctx context.Context) model.ResourceSnapshot {
	return s.assemble(ctx, time.Now())
}

// assemble collects every resource class concurrently, each bounded by the
// adapter timeout, then applies the degrade policy and snapshot invariants.
func (s *Sampler) assemble(ctx context.Context, now time.Time) model.ResourceSnapshot {
	var (
		wg sync.WaitGroup

		cpuV  model.CPUStat
		memV  model.MemoryStat
		gpuV  []model.GPUStat
		diskV model.DiskStat
		netV  model.NetworkStat
		procV []model.ProcessStat
		sysV  model.SystemStat

		cpuErr, memErr, gpuErr, diskErr, netErr, procErr, sysErr error
	)

	wg.Add(6)
	go func() { defer wg.Done(); cpuV, cpuErr = collect(ctx, s.adapterTimeout, s.cpu.Collect) }()
	go func() { defer wg.Done(); memV, memErr = collect(ctx, s.adapterTimeout, s.mem.Collect) }()
	go func() { defer wg.Done(); diskV, diskErr = collect(ctx, s.adapterTimeout, s.disk.Collect) }()
	go func() { defer wg.Done(); netV, netErr = collect(ctx, s.adapterTimeout, s.net.Collect) }()
	go func() { defer wg.Done(); procV, procErr = collect(ctx, s.adapterTimeout, s.procs.Collect) }()
	go func() { defer wg.Done(); sysV, sysErr = collect(ctx, s.adapterTimeout, s.sys.Collect) }()
	if s.gpuEnabled {
		wg.Add(1)
		go func() { defer wg.Done(); gpuV, gpuErr = collect(ctx, s.adapterTimeout, s.gpu.Collect) }()
	} else {
		gpuV = []model.GPUStat{}
	}
	wg.Wait()

	var monotonic time.Duration
	s.mu.Lock()
	if !s.startedAt.IsZero() {
		monotonic = now.Sub(s.startedAt)
	}
	s.mu.Unlock()

	snap := model.ResourceSnapshot{
		Timestamp: now,
		Monotonic: monotonic,
		CPU:       s.cpuFB.resolve("cpu", cpuV, cpuErr, s.log),
		Memory:    s.memFB.resolve("memory", memV, memErr, s.log),
		GPU:       s.gpuFB.resolve("gpu", gpuV, gpuErr, s.log),
		Disk:      s.diskFB.resolve("disk", diskV, diskErr, s.log),
		Network:   s.netFB.resolve("network", netV, netErr, s.log),
		Processes: s.procFB.resolve("processes", procV, procErr, s.log),
		System:    s.sysFB.resolve("system", sysV, sysErr, s.log),
	}
	snap.Normalize()
	return snap
}

// collect runs one adapter read bounded by timeout. When the deadline fires
// the read's goroutine is abandoned; adapters guard their counter state, so a
// late completion cannot corrupt the next tick.
func collect[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(cctx)
		ch <- result{v, err}
	}()

	select {
	case <-cctx.Done():
		var zero T
		return zero, cctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}

// fallback keeps a resource class's last good value and how many reads in a
// row have failed. Short outages reuse the last value; a persistent outage
// degrades to zero defaults so stale data does not masquerade as fresh.
type fallback[T any] struct {
	last     T
	failures int
}

func (f *fallback[T]) resolve(name string, v T, err error, log logger.Logger) T {
	if err == nil {
		f.last = v
		f.failures = 0
		return v
	}

	f.failures++
	log.Debug("%s adapter failed (%d consecutive): %v", name, f.failures, err)
	if f.failures == maxConsecutiveFailures {
		log.Warn("%s adapter degraded to defaults after %d failures: %v", name, f.failures, err)
	}
	if f.failures >= maxConsecutiveFailures {
		var zero T
		f.last = zero
		return zero
	}
	return f.last
}
