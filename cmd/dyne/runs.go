package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/runlog"
)

type runsCommand struct {
	all    bool
	asJSON bool
}

func (cmd *runsCommand) Name() string { return "runs" }

func (cmd *runsCommand) Help() string { return "List recorded runs of a model and dataset" }

func (cmd *runsCommand) Register(fs *pflag.FlagSet) {
	fs.BoolVar(&cmd.all, "all", false, "show start and end records instead of one line per run")
	fs.BoolVar(&cmd.asJSON, "json", false, "print records as JSON lines")
}

func (cmd *runsCommand) Run(ctx context.Context, a *app) error {
	if err := a.cfg.Options.Validate(); err != nil {
		return err
	}
	in, err := startInfra(ctx, a, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.stop(ctx); err != nil {
			a.log.Warn("stopping components failed", logger.ErrorFields("stop", err))
		}
	}()

	reg, err := in.runLog(a)
	if err != nil {
		return err
	}
	records, err := reg.List(ctx)
	if err != nil {
		return err
	}
	if !cmd.all {
		records = runlog.Latest(records)
	}

	if cmd.asJSON {
		enc := json.NewEncoder(a.stdout)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tPHASE\tSTATUS\tWINDOWS\tCOMPLETED\tSKIPPED\tSTARTED\tDURATION")
	for _, r := range records {
		duration := "-"
		if r.EndedAt != nil {
			duration = r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.RunID, r.Phase, r.Status, r.Windows, r.Completed, len(r.Skipped),
			r.StartedAt.Format(time.RFC3339), duration)
	}
	return tw.Flush()
}
