package health

import (
	"context"
	"fmt"
	"runtime"
)

// RuntimeCheckerConfig configures the process runtime checker.
type RuntimeCheckerConfig struct {
	// HeapWarning is the heap usage ratio that reports degraded.
	// Value in (0, 1). Default: 0.8
	HeapWarning float64

	// HeapCritical is the heap usage ratio that reports unhealthy.
	// Value in (0, 1). Default: 0.95
	HeapCritical float64

	// MaxHeap is the heap budget in bytes the ratios are measured
	// against. When zero, the runtime's current Sys figure is used.
	MaxHeap uint64

	// GoroutineWarning reports degraded when the process holds at least
	// this many goroutines. Calls queued behind an exhausted rate limit
	// each park a goroutine, so a sustained high count usually means the
	// upstream windows are not keeping up with demand. Zero disables
	// the check.
	GoroutineWarning int
}

// RuntimeChecker reports on the process hosting the connectors: heap
// pressure and goroutine count.
type RuntimeChecker struct {
	config RuntimeCheckerConfig
}

// NewRuntimeChecker creates a runtime checker, applying defaults for
// unset or out-of-range thresholds.
func NewRuntimeChecker(config RuntimeCheckerConfig) *RuntimeChecker {
	if config.HeapWarning <= 0 || config.HeapWarning >= 1 {
		config.HeapWarning = 0.8
	}
	if config.HeapCritical <= 0 || config.HeapCritical >= 1 {
		config.HeapCritical = 0.95
	}
	if config.HeapCritical < config.HeapWarning {
		config.HeapCritical = config.HeapWarning
	}

	return &RuntimeChecker{config: config}
}

// Name returns "runtime".
func (c *RuntimeChecker) Name() string {
	return "runtime"
}

// Check samples runtime memory statistics and the goroutine count.
func (c *RuntimeChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	goroutines := runtime.NumGoroutine()

	maxHeap := c.config.MaxHeap
	if maxHeap == 0 {
		maxHeap = stats.Sys
	}

	details := map[string]any{
		"heap_alloc_bytes": stats.HeapAlloc,
		"heap_sys_bytes":   stats.HeapSys,
		"max_heap_bytes":   maxHeap,
		"gc_runs":          stats.NumGC,
		"goroutines":       goroutines,
	}

	if maxHeap == 0 {
		return Healthy("runtime stats unavailable").WithDetails(details)
	}

	usage := float64(stats.HeapAlloc) / float64(maxHeap)
	details["heap_usage_percent"] = usage * 100

	if usage >= c.config.HeapCritical {
		return Unhealthy(
			fmt.Sprintf("heap usage critical: %.1f%%", usage*100),
			ErrCheckFailed,
		).WithDetails(details)
	}

	if usage >= c.config.HeapWarning {
		return Degraded(
			fmt.Sprintf("heap usage high: %.1f%%", usage*100),
		).WithDetails(details)
	}

	if c.config.GoroutineWarning > 0 && goroutines >= c.config.GoroutineWarning {
		return Degraded(
			fmt.Sprintf("goroutine count high: %d", goroutines),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("heap usage normal: %.1f%%", usage*100),
	).WithDetails(details)
}
