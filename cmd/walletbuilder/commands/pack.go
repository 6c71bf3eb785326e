package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/walletbuilder/internal/config"
	"git.home.luguber.info/inful/walletbuilder/internal/pipeline"
)

// PackCmd implements the 'pack' command.
type PackCmd struct {
	Target string `short:"t" help:"Extension target (${pack_targets})" placeholder:"TARGET"`
}

func (p *PackCmd) Run(ctx context.Context, root *CLI) error {
	cfg, err := root.resolve(config.TaskPack, p.Target)
	if err != nil {
		return err
	}

	report, err := pipeline.NewRunner(pipeline.WithLogger(root.logger)).Run(ctx, cfg, pipeline.PackSteps())
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(cfg.Root, cfg.ArchivePath())
	if err != nil {
		rel = cfg.ArchivePath()
	}
	_, _ = fmt.Fprintf(root.stdout, "Packed %s (%s)\n", filepath.ToSlash(rel), report.Duration().Round(time.Millisecond))
	return nil
}
