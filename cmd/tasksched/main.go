// Command tasksched is a kong-based CLI over the scheduler facade: one-shot
// operator verbs (create, update, delete, get, list, count, schedule,
// unschedule, execute) against a local sqlite store, plus serve, which runs
// the engine under signal-driven graceful shutdown, and status.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/siegeon/tasksched/internal/foundation/errors"
)

// Set at build time with: -ldflags "-X main.version=1.0.0"
var version = "dev"

// CLI is the root command tree and global flags.
type CLI struct {
	Config  string           `short:"c" default:"config.yaml" env:"TASKSCHED_CONFIG" help:"Configuration file path"`
	Verbose bool             `short:"v" env:"TASKSCHED_VERBOSE" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Create     CreateCmd     `cmd:"" help:"Create a task, optionally bundling a schedule"`
	Update     UpdateCmd     `cmd:"" help:"Update a task's payload and/or description"`
	Delete     DeleteCmd     `cmd:"" help:"Delete a task and its schedules"`
	Get        GetCmd        `cmd:"" help:"Show a task"`
	List       ListCmd       `cmd:"" help:"List tasks"`
	Count      CountCmd      `cmd:"" help:"Count tasks"`
	Schedule   ScheduleCmd   `cmd:"" help:"Attach a schedule to a task"`
	Unschedule UnscheduleCmd `cmd:"" help:"Remove a schedule"`
	Execute    ExecuteCmd    `cmd:"" help:"Run a task's payload directly, bypassing the scheduler"`
	Serve      ServeCmd      `cmd:"" help:"Run the engine until a shutdown signal is received"`
	Status     StatusCmd     `cmd:"" help:"Show engine state and the next due schedule"`
}

// Global carries shared state into every command's Run method.
type Global struct {
	Logger *slog.Logger
}

// AfterApply installs a basic stderr logger before any command runs; each
// command refines level/format once it has loaded the config file.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func main() {
	cli := &CLI{}
	parser := kong.Parse(cli,
		kong.Description("tasksched: a persistent, database-backed task scheduler."),
		kong.Vars{"version": version},
	)

	logger := slog.Default()
	errorAdapter := errors.NewCLIErrorAdapter(cli.Verbose, logger)
	globals := &Global{Logger: logger}

	if err := parser.Run(globals, cli); err != nil {
		errorAdapter.HandleError(err)
	}
}
