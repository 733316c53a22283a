// Package prometheus renders attendance engine metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts an [attendance.Engine] and exposes an
// [net/http.Handler] that renders all counters and histograms. Counter names
// are prefixed attendance_*_total; the single histogram is
// attendance_check_batch_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
