// Package throttle rate-limits sweep summaries so sustained suppression does not flood
// the log.
package throttle

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sparroh/disablefloatingtext/internal/model"
)

// DefaultWindow is the minimum gap between two summaries.
const DefaultWindow = 3 * time.Second

// Reporter writes at most one clearance summary per window.
type Reporter struct {
	logger *slog.Logger
	window time.Duration

	verbose atomic.Bool
	dedupe  atomic.Bool

	mu       sync.Mutex
	lastEmit time.Time
}

// New creates a Reporter. A non-positive window uses DefaultWindow.
func New(logger *slog.Logger, window time.Duration) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Reporter{logger: logger, window: window}
}

// SetVerbose turns the target type list on or off.
func (r *Reporter) SetVerbose(v bool) { r.verbose.Store(v) }

// Verbose reports whether type lists are collected.
func (r *Reporter) Verbose() bool { return r.verbose.Load() }

// SetDedupe collapses repeated type labels in verbose output.
func (r *Reporter) SetDedupe(v bool) { r.dedupe.Store(v) }

// Report logs a summary of res when it cleared something and either the window has
// passed or this is the first clearance since the counter was reset. Returns whether a
// line was written.
func (r *Reporter) Report(res model.SweepResult, now time.Time) bool {
	if res.ClearedCount <= 0 {
		return false
	}

	r.mu.Lock()
	first := res.ClearedTotal == uint64(res.ClearedCount)
	if !first && !r.lastEmit.IsZero() && now.Sub(r.lastEmit) <= r.window {
		r.mu.Unlock()
		return false
	}
	r.lastEmit = now
	r.mu.Unlock()

	r.logger.Info(r.Format(res), "cleared", res.ClearedCount, "total", res.ClearedTotal)
	return true
}

// Format renders the summary line for res.
func (r *Reporter) Format(res model.SweepResult) string {
	msg := fmt.Sprintf("Runtime clearance: hidden %d enemy texts (total: %d).", res.ClearedCount, res.ClearedTotal)
	if !r.verbose.Load() || len(res.ClearedTypes) == 0 {
		return msg
	}
	types := res.ClearedTypes
	if r.dedupe.Load() {
		types = dedupe(types)
	}
	return msg + " Types: " + strings.Join(types, ", ")
}

// dedupe keeps the first occurrence of each label.
func dedupe(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
