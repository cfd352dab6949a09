// Package metrics exposes catalog sync and mapping metrics to Prometheus.
//
// Collector implements Recorder. Features depend on Recorder so tests can
// pass Nop. Handler mounts the registry on a fiber route, usually /metrics.
package metrics
