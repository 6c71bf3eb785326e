package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel enumerates final pipeline outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for pipeline and step metrics.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStepResult(step string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	AddFilesWritten(step string, n int)
	IncWatchTrigger(cause string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)        {}
func (NoopRecorder) IncStepResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)         {}
func (NoopRecorder) AddFilesWritten(string, int)               {}
func (NoopRecorder) IncWatchTrigger(string)                    {}
