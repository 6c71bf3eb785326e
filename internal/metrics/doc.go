// Package metrics records pipeline observability data.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default, so callers never nil-check:
//
//	runner := pipeline.NewRunner(pipeline.WithRecorder(metrics.NoopRecorder{}))
//
// The watch command swaps in a PrometheusRecorder when --metrics-addr is set
// and serves the registry through Serve.
package metrics
