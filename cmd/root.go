// Package cmd implements the CLI command structure for taskman.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/nibzard/taskman/internal/config"
	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/task"
)

// Version is set via ldflags at build time.
var Version = "dev"

// ErrUsage marks errors caused by malformed command lines.
var ErrUsage = errors.New("usage error")

// Exit codes returned by ExitCode.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitCode maps an error returned by Run to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	default:
		return ExitFailure
	}
}

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// Option configures a Run invocation.
type Option func(*app)

// WithStdout redirects command output.
func WithStdout(w io.Writer) Option {
	return func(a *app) { a.stdout = w }
}

// WithStderr redirects diagnostics and log output.
func WithStderr(w io.Writer) Option {
	return func(a *app) { a.stderr = w }
}

// WithClock replaces the time source used to stamp tasks.
func WithClock(now func() time.Time) Option {
	return func(a *app) { a.now = now }
}

// WithWorkDir sets the directory used for project config lookup and
// relative path resolution.
func WithWorkDir(dir string) Option {
	return func(a *app) { a.workDir = dir }
}

// WithoutUserConfig ignores the user-level config file.
func WithoutUserConfig() Option {
	return func(a *app) { a.skipUserConfig = true }
}

// app carries the per-invocation state shared by every command.
type app struct {
	stdout         io.Writer
	stderr         io.Writer
	now            func() time.Time
	workDir        string
	skipUserConfig bool

	cfg    *config.Config
	logger *log.Logger
}

func newApp(opts ...Option) *app {
	a := &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the taskman CLI. args includes the program name.
func Run(ctx context.Context, args []string, opts ...Option) error {
	return NewRootCommand(opts...).Run(ctx, args)
}

// NewRootCommand returns the top-level CLI command.
func NewRootCommand(opts ...Option) *cli.Command {
	a := newApp(opts...)
	root := &cli.Command{
		Name:      "taskman",
		Usage:     "Keep a small to-do list in a JSON file",
		Version:   Version,
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Path to the task file (default: tasks.json)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug|info|warn|error)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			a.addCommand(),
			a.listCommand(),
			a.statusCommand("complete", "Mark a task as completed", task.StatusCompleted),
			a.statusCommand("pending", "Mark a task as pending again", task.StatusPending),
			a.statusCommand("cancel", "Cancel a task", task.StatusCanceled),
			a.removeCommand(),
			a.showCommand(),
			a.updateCommand(),
			a.validateCommand(),
			a.tuiCommand(),
			a.configCommand(),
		},
		Action: a.runRoot,
		ExitErrHandler: func(context.Context, *cli.Command, error) {
			// Exit codes are decided by main through ExitCode.
		},
	}
	setUsageErrorHandler(root)
	return root
}

func setUsageErrorHandler(cmd *cli.Command) {
	cmd.OnUsageError = func(_ context.Context, _ *cli.Command, err error, _ bool) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	for _, sub := range cmd.Commands {
		setUsageErrorHandler(sub)
	}
}

// runRoot prints the usage summary when no command is given.
func (a *app) runRoot(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		printUsage(a.stderr)
		return usageErrorf("unknown command %q", cmd.Args().First())
	}
	printUsage(a.stdout)
	return nil
}

// setup loads configuration and the logger for a command invocation.
func (a *app) setup(cmd *cli.Command) error {
	root := cmd.Root()
	cfg, err := config.Load(config.LoadOptions{
		WorkDir:        a.workDir,
		ConfigFile:     root.String("config"),
		SkipUserConfig: a.skipUserConfig,
		Overrides: config.Overrides{
			TasksFile: root.String("file"),
			LogLevel:  root.String("log-level"),
		},
	})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if root.Bool("debug") {
		cfg.LogLevel = "debug"
		cfg.Sources[config.FieldLogLevel] = config.SourceFlag
	}

	a.cfg = cfg
	a.logger = logging.NewFromConfig(a.stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	for _, w := range cfg.Warnings {
		a.logger.Warn("config", "warning", w)
	}
	a.logger.Debug("config loaded", "tasks_file", cfg.TasksFile, "files", cfg.Files)
	return nil
}

// loadStore reads the task file named by the configuration.
func (a *app) loadStore() (*task.Manager, error) {
	m, err := task.Load(a.cfg.TasksFile, task.WithClock(a.now))
	if err != nil {
		return nil, fmt.Errorf("loading task file: %w", err)
	}
	a.logger.Debug("store loaded", "path", a.cfg.TasksFile, "tasks", m.Len(), "next_id", m.NextID)
	return m, nil
}

// saveStore writes the store back to the configured task file.
func (a *app) saveStore(m *task.Manager) error {
	if err := m.Save(a.cfg.TasksFile); err != nil {
		return fmt.Errorf("saving task file: %w", err)
	}
	a.logger.Debug("store saved", "path", a.cfg.TasksFile, "tasks", m.Len())
	return nil
}

// printUsage prints the summary shown when taskman runs without a command.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Task Manager")
	fmt.Fprintln(w, "Use 'taskman --help' to see all available commands")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Main commands:")
	fmt.Fprintln(w, "  add <description>     Add a new task")
	fmt.Fprintln(w, "  list                  List all tasks")
	fmt.Fprintln(w, "  complete <id>         Mark a task as completed")
	fmt.Fprintln(w, "  pending <id>          Mark a task as pending")
	fmt.Fprintln(w, "  cancel <id>           Cancel a task")
	fmt.Fprintln(w, "  remove <id>           Remove a task")
	fmt.Fprintln(w, "  show <id>             Show task details")
	fmt.Fprintln(w, "  update <id> <desc>    Update a task description")
}
