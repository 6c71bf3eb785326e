package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/walletbuilder/internal/assets"
	"git.home.luguber.info/inful/walletbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/walletbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/walletbuilder/internal/htmltpl"
	"git.home.luguber.info/inful/walletbuilder/internal/logfields"
	"git.home.luguber.info/inful/walletbuilder/internal/pack"
	"git.home.luguber.info/inful/walletbuilder/internal/scripts"
	"git.home.luguber.info/inful/walletbuilder/internal/styles"
)

// BuildSteps is the ordered build sequence: clean, copy, styles, scripts, html.
func BuildSteps() []StepDef {
	return NewPipeline().
		Add(StepClean, Clean).
		Add(StepCopy, CopyAssets).
		Add(StepStyles, CompileStyles).
		Add(StepScripts, BundleScripts).
		Add(StepHTML, RenderHTML).
		Build()
}

// PackSteps is the build sequence followed by archiving the output directory.
func PackSteps() []StepDef {
	p := &Pipeline{Defs: BuildSteps()}
	return p.Add(StepPack, Pack).Build()
}

// StepsFor returns the sequence a task runs. Watch reruns the build sequence.
func StepsFor(task config.Task) []StepDef {
	if task == config.TaskPack {
		return PackSteps()
	}
	return BuildSteps()
}

// Clean removes the output directory of the configured build type. A missing
// directory is not an error.
func Clean(ctx context.Context, cfg *config.Config) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dir := cfg.OutputDir()
	if err := guardOutputDir(cfg.Root, dir); err != nil {
		return 0, ferrors.FileSystemError("refusing to clean").
			WithCause(err).
			WithContext("path", dir).
			Fatal().
			Build()
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, ferrors.FileSystemError("remove output directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	slog.Debug("Cleaned output directory", logfields.Path(dir))
	return 0, nil
}

// guardOutputDir accepts only the fixed output directories under root.
func guardOutputDir(root, dir string) error {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)
	allowed := []string{
		config.BuildTypeWeb.OutputDir(),
		config.BuildTypeV3.OutputDir(),
		config.BuildTypeV2.OutputDir(),
	}
	if !slices.Contains(allowed, rel) {
		return fmt.Errorf("%s is not a build output directory", dir)
	}
	info, err := os.Lstat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%s is a symlink", dir)
	}
	return nil
}

// CopyAssets stages the static files selected for the build type and target.
func CopyAssets(ctx context.Context, cfg *config.Config) (int, error) {
	n, err := assets.Copy(ctx, cfg.OutputDir(), assets.PlanFor(cfg))
	if err != nil {
		return n, ferrors.FileSystemError("copy assets").WithCause(err).Build()
	}
	return n, nil
}

// CompileStyles minifies src/css into the output css directory.
func CompileStyles(ctx context.Context, cfg *config.Config) (int, error) {
	n, err := styles.Compile(ctx, filepath.Join(cfg.SourceDir(), "css"), filepath.Join(cfg.OutputDir(), "css"))
	if err != nil {
		return n, ferrors.BundleError("compile styles").WithCause(err).Build()
	}
	return n, nil
}

// BundleScripts bundles the controller and view with the API keys injected.
func BundleScripts(ctx context.Context, cfg *config.Config) (int, error) {
	res, err := scripts.Bundle(ctx, scripts.Options{
		WorkDir: cfg.Root,
		Entries: scripts.DefaultEntries(),
		OutDir:  filepath.Join(cfg.OutputDir(), "js"),
		Defines: cfg.Env.Defines(),
	})
	if err != nil {
		return 0, ferrors.BundleError("bundle scripts").WithCause(err).Build()
	}
	if res.Warnings > 0 {
		slog.Warn("Script bundle produced warnings", slog.Int("warnings", res.Warnings))
	}
	return len(res.Files), nil
}

// RenderHTML writes the entry document for the build type.
func RenderHTML(ctx context.Context, cfg *config.Config) (int, error) {
	_, err := htmltpl.Emit(ctx,
		filepath.Join(cfg.SourceDir(), htmltpl.FileName),
		cfg.OutputDir(),
		cfg.Env.WalletVersion,
		cfg.BuildType.IsExtension(),
	)
	if err != nil {
		return 0, ferrors.BuildError("render html").WithCause(err).Build()
	}
	return 1, nil
}

// Pack archives the output directory into dist/. Only chromium and firefox
// builds can be packed.
func Pack(ctx context.Context, cfg *config.Config) (int, error) {
	if _, ok := config.ParseTarget(config.TaskPack, string(cfg.Target)); !ok {
		return 0, ferrors.ValidationError("Pass one of possible target values: "+config.TargetNames(config.TaskPack)).
			WithContext("target", string(cfg.Target)).
			Build()
	}
	res, err := pack.Archive(ctx, cfg.OutputDir(), cfg.ArchivePath())
	if err != nil {
		return 0, ferrors.ArchiveError("pack").
			WithCause(err).
			WithContext("path", cfg.ArchivePath()).
			Build()
	}
	slog.Info("Packed extension",
		logfields.Path(res.Path),
		logfields.Files(res.Files),
		logfields.Bytes(res.Bytes))
	return 1, nil
}
