package config

import (
	"errors"
	"fmt"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/walletbuilder/internal/foundation/errors"
)

// Config is the immutable configuration resolved once at startup and passed
// to every pipeline step.
type Config struct {
	Root      string
	Task      Task
	Target    Target
	BuildType BuildType
	Env       Environment
	Project   Project
}

// Options are the raw inputs Resolve validates.
type Options struct {
	Root        string
	ProjectFile string
	Task        string
	Target      string
	// Lookup defaults to os.LookupEnv.
	Lookup LookupFunc
	// SkipDotEnv disables loading .env files into the process environment.
	SkipDotEnv bool
}

// Resolve validates the task, the target for that task and the environment, in
// that order, and returns the resulting Config. It never touches the output or
// distribution directories, so a failed validation leaves no partial state.
func Resolve(opts Options) (*Config, error) {
	task, ok := ParseTask(opts.Task)
	if !ok {
		return nil, ferrors.ValidationError("Pass one of possible task names: "+TaskNames()).
			WithContext("task", opts.Task).
			Build()
	}

	target, ok := ParseTarget(task, opts.Target)
	if !ok {
		return nil, ferrors.ValidationError("Pass one of possible target values: "+TargetNames(task)).
			WithContext("task", string(task)).
			WithContext("target", opts.Target).
			Build()
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "resolve project root").Fatal().Build()
	}

	if !opts.SkipDotEnv {
		if _, err := LoadDotEnv(root); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "load .env files").Fatal().Build()
		}
	}

	env, err := LoadEnvironment(opts.Lookup)
	if err != nil {
		var missing *MissingEnvError
		if errors.As(err, &missing) {
			return nil, ferrors.ConfigError(missing.Error()).WithCause(missing).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read environment").Fatal().Build()
	}

	projectFile := opts.ProjectFile
	if projectFile == "" {
		projectFile = DefaultProjectFile
	}
	if !filepath.IsAbs(projectFile) {
		projectFile = filepath.Join(root, projectFile)
	}
	project, err := LoadProject(projectFile)
	if err != nil {
		return nil, ferrors.ConfigError(err.Error()).WithCause(err).Build()
	}

	return &Config{
		Root:      root,
		Task:      task,
		Target:    target,
		BuildType: target.BuildType(),
		Env:       env,
		Project:   project,
	}, nil
}

// Path joins elem onto the project root.
func (c *Config) Path(elem ...string) string {
	return filepath.Join(append([]string{c.Root}, elem...)...)
}

// OutputDir is the absolute output directory of the configured build type.
func (c *Config) OutputDir() string { return c.Path(filepath.FromSlash(c.BuildType.OutputDir())) }

// SourceDir holds the application sources (src/).
func (c *Config) SourceDir() string { return c.Path("src") }

// BuildDir holds build inputs such as manifest templates (build/).
func (c *Config) BuildDir() string { return c.Path("build") }

// ManifestDir holds the v2/v3 manifest templates.
func (c *Config) ManifestDir() string { return c.Path("build", "manifest") }

// DistDir is where pack artifacts are written.
func (c *Config) DistDir() string { return c.Path("dist") }

// ArchiveName is the pack artifact name, <target>-<product>-<version>.zip.
func (c *Config) ArchiveName() string {
	return fmt.Sprintf("%s-%s-%s.zip", c.Target, c.Project.Product, c.Env.WalletVersion)
}

// ArchivePath is the absolute path of the pack artifact.
func (c *Config) ArchivePath() string { return filepath.Join(c.DistDir(), c.ArchiveName()) }

// WatchPaths are the roots the watch task observes.
func (c *Config) WatchPaths() []string { return []string{c.SourceDir(), c.BuildDir()} }
