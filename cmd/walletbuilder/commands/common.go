package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/walletbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/walletbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/walletbuilder/internal/logfields"
	"git.home.luguber.info/inful/walletbuilder/internal/version"
)

// envLogLevel selects the log level when -v is not given.
const envLogLevel = "WALLETBUILDER_LOG_LEVEL"

// CLI definition & global flags.
type CLI struct {
	Root    string           `help:"Project root directory" default:"." type:"path"`
	Config  string           `short:"c" help:"Project file, relative to the root" default:"walletbuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the selected target once"`
	Watch WatchCmd `cmd:"" help:"Build the selected target and rebuild on source changes"`
	Pack  PackCmd  `cmd:"" help:"Build the selected extension target and zip it into dist/"`

	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	c.logger = newLogger(c.stderr, logLevel(c.Verbose, os.Getenv(envLogLevel)))
	slog.SetDefault(c.logger)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// logLevel gives -v precedence over the environment variable.
func logLevel(verbose bool, env string) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolve validates the task, target and environment into a build configuration.
func (c *CLI) resolve(task config.Task, target string) (*config.Config, error) {
	cfg, err := config.Resolve(config.Options{
		Root:        c.Root,
		ProjectFile: c.Config,
		Task:        string(task),
		Target:      target,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Resolved configuration",
		logfields.Task(string(cfg.Task)),
		logfields.Target(string(cfg.Target)),
		logfields.BuildType(string(cfg.BuildType)),
		logfields.Path(cfg.Root),
		slog.Any("env", cfg.Env))
	return cfg, nil
}

// Execute parses args, runs the selected task and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli := &CLI{stdout: stdout, stderr: stderr, logger: newLogger(stderr, slog.LevelInfo)}

	exitCode := -1
	parser, err := kong.New(cli,
		kong.Name("walletbuilder"),
		kong.Description("Builds the TON wallet web app and browser extensions."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			if exitCode < 0 {
				exitCode = code
			}
		}),
		kong.Vars{
			"version":       version.String(),
			"build_targets": config.TargetNames(config.TaskBuild),
			"pack_targets":  config.TargetNames(config.TaskPack),
		},
	)
	if err != nil {
		return handleError(cli, ferrors.InternalError("build command line").WithCause(err).Build())
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		return handleError(cli, usageError(args, err))
	}

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(cli); err != nil {
		return handleError(cli, err)
	}
	return ferrors.ExitOK
}

// usageError names the valid tasks when none was recognized, otherwise it
// passes the parser's message through.
func usageError(args []string, err error) error {
	for _, a := range args {
		if _, ok := config.ParseTask(a); ok {
			return ferrors.ValidationError(err.Error()).WithCause(err).Build()
		}
	}
	return ferrors.ValidationError("Pass one of possible task names: " + config.TaskNames()).
		WithCause(err).
		Build()
}

func handleError(cli *CLI, err error) int {
	code := ferrors.ExitOK
	ferrors.NewCLIErrorAdapter(cli.Verbose, cli.logger).
		WithOutput(cli.stderr).
		WithExit(func(c int) { code = c }).
		HandleError(err)
	return code
}
