// Package observe provides observability primitives for connector calls.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into an executor via
// CallListener or wrap individual calls with Middleware.
package observe
