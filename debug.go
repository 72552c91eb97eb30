package reel

import (
	"time"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'reel'.
func tracer() tracing.Trace {
	return tracing.Select("reel")
}

// frameStats holds per-frame timing and item metrics.
// Only populated when Composition.debug is true.
type frameStats struct {
	evaluateTime time.Duration
	sortTime     time.Duration
	submitTime   time.Duration
	itemCount    int
	renderCount  int
	pendingLoads int
}

// debugLog traces timing and item stats.
func (c *Composition) debugLog(stats frameStats) {
	if !c.debug {
		return
	}
	total := stats.evaluateTime + stats.sortTime + stats.submitTime
	tracer().Debugf("reel: evaluate: %v | sort: %v | submit: %v | total: %v",
		stats.evaluateTime, stats.sortTime, stats.submitTime, total)
	tracer().Debugf("reel: items: %d | rendered: %d | pending loads: %d",
		stats.itemCount, stats.renderCount, stats.pendingLoads)
}
