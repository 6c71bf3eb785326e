package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/walletbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/walletbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/walletbuilder/internal/logfields"
	"git.home.luguber.info/inful/walletbuilder/internal/metrics"
)

// Runner executes step sequences.
type Runner struct {
	recorder metrics.Recorder
	logger   *slog.Logger
	newID    func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder sets the metrics recorder. The default records nothing.
func WithRecorder(r metrics.Recorder) Option {
	return func(rn *Runner) {
		if r != nil {
			rn.recorder = r
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(rn *Runner) {
		if l != nil {
			rn.logger = l
		}
	}
}

// NewRunner returns a Runner with the given options applied.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes defs in order against cfg, stopping at the first failure.
// The returned report is never nil. A failed step is returned as a build
// error wrapping a *StepError; cancellation as a runtime error.
func (r *Runner) Run(ctx context.Context, cfg *config.Config, defs []StepDef) (*Report, error) {
	report := &Report{
		BuildID:   r.newID(),
		Target:    string(cfg.Target),
		BuildType: string(cfg.BuildType),
		Start:     time.Now(),
		Steps:     make([]StepReport, 0, len(defs)),
	}
	log := r.logger.With(
		logfields.BuildID(report.BuildID),
		logfields.Target(report.Target),
		logfields.BuildType(report.BuildType),
	)
	log.Info("Build started", slog.Int("steps", len(defs)))

	err := r.runSteps(ctx, cfg, defs, report, log)

	report.End = time.Now()
	r.recorder.ObserveBuildDuration(report.Duration())
	r.recorder.IncBuildOutcome(report.Outcome)

	if err != nil {
		log.Error("Build failed",
			logfields.Result(string(report.Outcome)),
			logfields.Duration(report.Duration()),
			logfields.Error(err))
		return report, err
	}
	log.Info("Build finished",
		logfields.Files(report.Files()),
		logfields.Duration(report.Duration()))
	return report, nil
}

func (r *Runner) runSteps(ctx context.Context, cfg *config.Config, defs []StepDef, report *Report, log *slog.Logger) error {
	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return r.abort(report, def.Name, 0, err)
		}

		log.Debug("Step started", logfields.Step(string(def.Name)))
		t0 := time.Now()
		n, err := def.Fn(ctx, cfg)
		dur := time.Since(t0)

		r.recorder.ObserveStepDuration(string(def.Name), dur)
		if n > 0 {
			r.recorder.AddFilesWritten(string(def.Name), n)
		}

		if err != nil {
			return r.abort(report, def.Name, dur, err)
		}

		report.Steps = append(report.Steps, StepReport{Name: def.Name, Result: StepResultSuccess, Duration: dur, Files: n})
		r.recorder.IncStepResult(string(def.Name), metrics.ResultSuccess)
		log.Info("Step finished",
			logfields.Step(string(def.Name)),
			logfields.Files(n),
			logfields.Duration(dur))
	}
	report.Outcome = metrics.BuildOutcomeSuccess
	return nil
}

func (r *Runner) abort(report *Report, name StepName, dur time.Duration, err error) error {
	canceled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	se := &StepError{Step: name, Err: err, Canceled: canceled}

	result := StepResultFailed
	report.Outcome = metrics.BuildOutcomeFailed
	if canceled {
		result = StepResultCanceled
		report.Outcome = metrics.BuildOutcomeCanceled
	}
	report.Steps = append(report.Steps, StepReport{Name: name, Result: result, Duration: dur, Err: se})
	r.recorder.IncStepResult(string(name), resultLabel(result))

	fields := ferrors.ErrorContext{"build_id": report.BuildID, "step": string(name)}
	if canceled {
		return ferrors.WrapError(se, ferrors.CategoryRuntime, "build canceled").
			Warning().
			WithContextMap(fields).
			Build()
	}
	return ferrors.BuildError("build failed").
		WithCause(se).
		WithContextMap(fields).
		Build()
}
