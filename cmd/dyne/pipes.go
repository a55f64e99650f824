package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/pipes"
)

type pipesCommand struct {
	links bool
}

func (cmd *pipesCommand) Name() string { return "pipes" }

func (cmd *pipesCommand) Help() string { return "List the registered pipes" }

func (cmd *pipesCommand) Register(fs *pflag.FlagSet) {
	fs.BoolVar(&cmd.links, "links", false, "also print which categories may follow each other")
}

func (cmd *pipesCommand) Run(_ context.Context, a *app) error {
	reg := pipes.NewRegistry()
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IDENTIFIER\tCATEGORY\tVERSION")
	for _, info := range reg.Describe() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.ID, info.Category, info.Version)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !cmd.links {
		return nil
	}

	rules := pipe.DefaultRules()
	fmt.Fprintln(a.stdout)
	for _, c := range pipe.Categories() {
		if targets := rules.Targets(c); len(targets) > 0 {
			fmt.Fprintf(a.stdout, "%s -> %v\n", c, targets)
		}
	}
	return nil
}
