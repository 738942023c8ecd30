// Package health provides health checking primitives for connector
// deployments.
//
// This package implements a generic health checking framework used to
// monitor the components that sit between a service and its upstream
// APIs: circuit breakers, rate limiters, and the process itself. It
// provides interfaces for defining health checks, aggregating results
// from multiple checkers, and exposing health status via HTTP endpoints.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy.
//
// # Basic Usage
//
//	// Watch a circuit breaker
//	cbCheck := health.NewBreakerChecker("github", breaker)
//
//	result := cbCheck.Check(ctx)
//	if result.Status == health.StatusUnhealthy {
//	    log.Printf("circuit open: %s", result.Message)
//	}
//
// # Aggregating Health Checks
//
// Use Aggregator to combine multiple health checks into a single composite check:
//
//	agg := health.NewAggregator()
//	agg.Register("github-breaker", health.NewBreakerChecker("github", breaker))
//	agg.Register("github-limiter", health.NewLimiterChecker("github", limiter))
//	agg.Register("runtime", health.NewRuntimeChecker(health.RuntimeCheckerConfig{}))
//
//	// Check all components
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common health check patterns:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness probe with component checks
//	http.Handle("/readyz", health.ReadinessHandler(aggregator))
//
//	// Full JSON report
//	http.Handle("/health", health.ReportHandler(aggregator))
package health
