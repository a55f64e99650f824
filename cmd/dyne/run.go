package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/dyne"
	"github.com/kbukum/dyne/definition"
	"github.com/kbukum/dyne/engine"
	"github.com/kbukum/dyne/kafka"
	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/server"
	"github.com/kbukum/dyne/sse"
)

type runCommand struct {
	definition string
	quiet      bool
}

func (cmd *runCommand) Name() string { return "run" }

func (cmd *runCommand) Help() string { return "Run a pipeline definition to completion" }

func (cmd *runCommand) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&cmd.definition, "definition", "d", "", "pipeline definition file (required)")
	fs.BoolVarP(&cmd.quiet, "quiet", "q", false, "do not log per-window progress")
	fs.Bool("server.enabled", false, "serve the status API while running")
	fs.Int("server.port", 0, "status API port (0 picks a free port)")
	fs.Bool("server.no_events", false, "do not stream engine events on /events")
	fs.Bool("kafka.enabled", false, "publish engine events to Kafka")
}

func (cmd *runCommand) Run(ctx context.Context, a *app) error {
	if cmd.definition == "" {
		return fmt.Errorf("--definition is required")
	}
	def, err := definition.LoadFile(cmd.definition)
	if err != nil {
		return err
	}
	if err := a.cfg.Options.Validate(); err != nil {
		return err
	}

	in, err := startInfra(ctx, a, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.stop(ctx); err != nil {
			a.log.Warn("stopping components failed", logger.ErrorFields("stop", err))
		}
	}()

	runs, err := in.runLog(a)
	if err != nil {
		return err
	}
	tracker := server.NewStatusTracker()
	opts := []dyne.Option{
		dyne.WithLogger(a.log),
		dyne.WithStorage(in.storage.Storage()),
		dyne.WithRunLog(runs),
		dyne.WithSubscriber(tracker),
	}
	if !cmd.quiet {
		opts = append(opts, dyne.WithSubscriber(engine.NewProgressLogger(a.log)))
	}
	if in.kafka != nil {
		opts = append(opts, dyne.WithSubscriber(kafka.NewEventPublisher(in.kafka.Producer(), a.log)))
	}
	var hub *sse.Hub
	if a.cfg.Server.Enabled && !a.cfg.Server.NoEvents {
		hub = sse.NewHub(a.log)
		opts = append(opts, dyne.WithSubscriber(sse.NewEventStream(hub, false)))
	}

	p, err := dyne.New(ctx, def, a.cfg.Options, opts...)
	if err != nil {
		return err
	}

	if a.cfg.Server.Enabled {
		srv := server.New(a.cfg.Server, a.log)
		api := &server.API{
			Service: a.cfg.Name,
			Tracker: tracker,
			Runs:    runs,
			Stopper: p,
			Health:  in.registry.HealthAll,
			Events:  hub,
		}
		api.Register(srv.GinEngine())
		if err := in.registry.Register(server.NewComponent(srv)); err != nil {
			return err
		}
		// Registered after the server so open streams close before it drains.
		if hub != nil {
			if err := in.registry.Register(sse.NewComponent(hub)); err != nil {
				return err
			}
		}
		if err := in.registry.StartAll(ctx); err != nil {
			return err
		}
		fmt.Fprintf(a.stderr, "status API listening on http://%s\n", srv.Addr())
	}

	res, err := p.Run(ctx)
	printResult(a.stdout, res)
	return err
}

func printResult(w io.Writer, res engine.Result) {
	fmt.Fprintf(w, "run %s %s: %d/%d windows completed", res.RunID, res.State, res.Completed, res.Windows)
	if len(res.Skipped) > 0 {
		fmt.Fprintf(w, ", skipped %v", res.Skipped)
	}
	fmt.Fprintf(w, ", cache %d hits / %d misses, %s\n", res.CacheHits, res.CacheMisses, res.Duration.Round(time.Millisecond))
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", strings.TrimSpace(warning))
	}
}
