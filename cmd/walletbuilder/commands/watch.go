package commands

import (
	"context"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/walletbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/walletbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/walletbuilder/internal/metrics"
	"git.home.luguber.info/inful/walletbuilder/internal/pipeline"
	"git.home.luguber.info/inful/walletbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Target      string `short:"t" help:"Target platform (${build_targets})" placeholder:"TARGET"`
	MetricsAddr string `name:"metrics-addr" help:"Serve Prometheus metrics on this address, for example :9464"`
}

// Help is shown by 'watch --help' below the command summary.
func (w *WatchCmd) Help() string {
	return "Only src/ and build/ are watched. The project file (" + config.DefaultProjectFile +
		" by default) and the .env files are read once at startup: restart watch after editing them."
}

func (w *WatchCmd) Run(ctx context.Context, root *CLI) error {
	cfg, err := root.resolve(config.TaskWatch, w.Target)
	if err != nil {
		return err
	}
	root.logger.Info("Watching sources; restart to apply configuration changes",
		slog.Any("paths", cfg.WatchPaths()),
		slog.String("config", root.Config),
		slog.Any("env_files", config.DotEnvFiles()))

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		if _, err := metrics.Serve(ctx, w.MetricsAddr, reg); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "serve metrics on "+w.MetricsAddr).Build()
		}
	}

	runner := pipeline.NewRunner(pipeline.WithRecorder(recorder), pipeline.WithLogger(root.logger))
	steps := pipeline.StepsFor(cfg.Task)

	return watch.Run(ctx, watch.Options{
		Root:        cfg.Root,
		Paths:       cfg.WatchPaths(),
		QuietWindow: cfg.Project.Watch.QuietWindow,
		MaxDelay:    cfg.Project.Watch.MaxDelay,
		Ignore:      cfg.Project.Watch.Ignore,
		Recorder:    recorder,
		Logger:      root.logger,
	}, func(ctx context.Context) error {
		_, err := runner.Run(ctx, cfg, steps)
		return err
	})
}
