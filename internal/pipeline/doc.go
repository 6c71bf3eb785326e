// Package pipeline sequences the build steps of a wallet target.
//
// Steps run strictly in order; the first failure aborts the run. Every run
// gets a build ID, and step timings and outcomes are logged and recorded
// through a metrics.Recorder.
package pipeline
