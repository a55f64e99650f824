package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/kbukum/dyne/definition"
	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/pipes"
)

type validateCommand struct {
	definition string
}

func (cmd *validateCommand) Name() string { return "validate" }

func (cmd *validateCommand) Help() string { return "Check a pipeline definition without running it" }

func (cmd *validateCommand) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&cmd.definition, "definition", "d", "", "pipeline definition file (required)")
}

func (cmd *validateCommand) Run(_ context.Context, a *app) error {
	if cmd.definition == "" {
		return fmt.Errorf("--definition is required")
	}
	def, err := definition.LoadFile(cmd.definition)
	if err != nil {
		return err
	}
	chain, err := definition.NewLoader(pipes.NewRegistry(), nil, a.log).Build(def)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tNAME\tIDENTIFIER\tCATEGORY\tVERSION\tCACHE\tHASH")
	for _, s := range chain.Stages {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\t%s\n",
			s.Position, s.Name, s.ID, s.Category, pipe.VersionOf(s.Pipe), s.Cache, s.Hash[:16])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "definition ok: %d stages\n", chain.Len())
	return nil
}
