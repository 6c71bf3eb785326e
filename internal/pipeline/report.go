package pipeline

import (
	"time"

	"git.home.luguber.info/inful/walletbuilder/internal/metrics"
)

// StepReport is the record of one executed step.
type StepReport struct {
	Name     StepName
	Result   StepResult
	Duration time.Duration
	Files    int
	Err      error
}

// Report summarizes one pipeline run.
type Report struct {
	BuildID   string
	Target    string
	BuildType string
	Start     time.Time
	End       time.Time
	Steps     []StepReport
	Outcome   metrics.BuildOutcomeLabel
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Files is the total number of files written by all steps.
func (r *Report) Files() int {
	total := 0
	for _, s := range r.Steps {
		total += s.Files
	}
	return total
}

// Step returns the report for name, if that step ran.
func (r *Report) Step(name StepName) (StepReport, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepReport{}, false
}

func resultLabel(r StepResult) metrics.ResultLabel {
	switch r {
	case StepResultSuccess:
		return metrics.ResultSuccess
	case StepResultCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFailed
	}
}
