// Package dyne builds and runs windowed sensor-signal pipelines.
//
// A pipeline is an ordered definition of pipe identifiers and parameters.
// New resolves it against a pipe registry, checks every link, persists the
// options and definition records under working_path and returns an idle
// Pipeline:
//
//	def := definition.Definition{
//	    definition.NewEntry("source.Noise", pipe.Params{"duration": 10.0}),
//	    definition.NewEntry("adjacency.Correlation", pipe.Params{"cache": true}),
//	    definition.NewEntry("netviz.Console", nil),
//	}
//	p, err := dyne.New(ctx, def, cache.Options{
//	    WorkingPath: "/data/dyne", ModelName: "mouse", DatasetName: "s1",
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := p.Run(ctx)
//
// Start and Stop give asynchronous control. Stop is honoured at the next
// window boundary.
package dyne
