// Package adapter holds one collector per resource class. Each adapter
// produces its slice of a composite snapshot on demand and owns whatever
// running counter state it needs to derive speeds from deltas. Adapters
// report transient unavailability as an error and let the sampler decide
// how to degrade; they never panic.
package adapter

import (
	"context"
	"math"
	"os/exec"
	"time"
)

const (
	bytesPerKB = 1024
	bytesPerMB = 1024 * 1024
	bytesPerGB = 1024 * 1024 * 1024
)

// round2 matches the two-decimal precision the wire payload carries.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toGB(b uint64) float64 {
	return round2(float64(b) / bytesPerGB)
}

// runCommand executes a probe binary under ctx and returns its combined
// output. Used by the GPU adapter; injectable for tests.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return string(out), err
}

// elapsedSeconds guards the delta divisor: a zero or negative window (first
// sample, clock weirdness) falls back to one second rather than dividing by
// zero or inflating speeds.
func elapsedSeconds(from, to time.Time) float64 {
	dt := to.Sub(from).Seconds()
	if dt <= 0 {
		return 1
	}
	return dt
}
