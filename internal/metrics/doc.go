// Package metrics provides an observability framework for docserver
// operational metrics.
//
// # Design Philosophy
//
// This package implements the Null Object pattern to enable metrics
// collection without requiring explicit nil checks throughout the
// codebase. By default, components use NoopRecorder which implements
// the Recorder interface with no-op methods that inline to nothing.
//
// # Architecture
//
// The metrics system has three components:
//
//  1. Recorder interface - Defines all metrics operations
//  2. NoopRecorder - Default implementation that does nothing
//  3. PrometheusRecorder - Registers collectors under the "docserver" namespace
//
// # Usage Pattern
//
// Components receive a Recorder through dependency injection:
//
//	lib := content.NewLibrary(cfg, content.WithRecorder(metrics.NoopRecorder{}))
//
// When Prometheus is configured, swap in the real implementation:
//
//	reg := prometheus.NewRegistry()
//	lib := content.NewLibrary(cfg, content.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// All PrometheusRecorder methods are additionally nil-safe, so callers
// may hold a nil *PrometheusRecorder without guarding calls.
package metrics
