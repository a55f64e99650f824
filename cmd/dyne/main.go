// Command dyne runs, validates and inspects windowed signal pipelines.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/kbukum/dyne/config"
	"github.com/kbukum/dyne/logger"
)

const (
	successExitCode = 0
	errorExitCode   = 1
	usageExitCode   = 2
)

// command is one dyne subcommand.
type command interface {
	Name() string
	Help() string
	Register(fs *pflag.FlagSet)
	Run(ctx context.Context, app *app) error
}

// app carries what every command needs once flags and config are loaded.
type app struct {
	cfg    *AppConfig
	log    *logger.Logger
	stdout io.Writer
	stderr io.Writer
}

// cli dispatches arguments to commands.
type cli struct {
	commands []command
	stdout   io.Writer
	stderr   io.Writer
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{
		commands: []command{&runCommand{}, &validateCommand{}, &pipesCommand{}, &runsCommand{}},
		stdout:   stdout,
		stderr:   stderr,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newCLI(os.Stdout, os.Stderr).run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func (c *cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		c.usage()
		if len(args) == 0 {
			return usageExitCode
		}
		return successExitCode
	}

	cmd := c.find(args[0])
	if cmd == nil {
		fmt.Fprintf(c.stderr, "unknown command %q\n\n", args[0])
		c.usage()
		return usageExitCode
	}

	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(c.stderr)
	configFile := fs.String("config", "", "config file (yaml or json)")
	envFile := fs.String("env-file", "", ".env file to load")
	registerConfigFlags(fs)
	cmd.Register(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return successExitCode
		}
		return usageExitCode
	}

	cfg := &AppConfig{}
	opts := []config.LoaderOption{config.WithFlags(fs)}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	if err := config.LoadConfig("dyne", cfg, opts...); err != nil {
		fmt.Fprintf(c.stderr, "config: %v\n", err)
		return errorExitCode
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	a := &app{cfg: cfg, log: log, stdout: c.stdout, stderr: c.stderr}
	if err := cmd.Run(ctx, a); err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", cmd.Name(), err)
		return errorExitCode
	}
	return successExitCode
}

func (c *cli) find(name string) command {
	for _, cmd := range c.commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func (c *cli) usage() {
	fmt.Fprintln(c.stderr, "dyne runs windowed multivariate signal pipelines")
	fmt.Fprintln(c.stderr)
	fmt.Fprintln(c.stderr, "Usage: dyne <command> [flags]")
	fmt.Fprintln(c.stderr)
	fmt.Fprintln(c.stderr, "Commands:")
	for _, cmd := range c.commands {
		fmt.Fprintf(c.stderr, "\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}

// registerConfigFlags adds flags named after the config keys they override.
func registerConfigFlags(fs *pflag.FlagSet) {
	fs.String("working_path", "", "root directory of records and cache entries")
	fs.String("model_name", "", "model namespace")
	fs.String("dataset_name", "", "dataset namespace")
	fs.String("logging.level", "", "log level (debug, info, warn, error)")
	fs.String("logging.format", "", "log format (console or json)")
	fs.String("storage.provider", "", "cache store (local, s3, redis, memory)")
	fs.String("run_log", "", "run log backend (jsonl or sql)")
}
