package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/walletbuilder/internal/config"
	"git.home.luguber.info/inful/walletbuilder/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Target string `short:"t" help:"Target platform (${build_targets})" placeholder:"TARGET"`
}

func (b *BuildCmd) Run(ctx context.Context, root *CLI) error {
	cfg, err := root.resolve(config.TaskBuild, b.Target)
	if err != nil {
		return err
	}

	report, err := pipeline.NewRunner(pipeline.WithLogger(root.logger)).Run(ctx, cfg, pipeline.BuildSteps())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(root.stdout, "Built %s into %s (%d files, %s)\n",
		cfg.Target, cfg.BuildType.OutputDir(), report.Files(), report.Duration().Round(time.Millisecond))
	return nil
}
