package main

import (
	"context"

	"github.com/kbukum/dyne/component"
	"github.com/kbukum/dyne/database"
	"github.com/kbukum/dyne/kafka"
	"github.com/kbukum/dyne/observability"
	"github.com/kbukum/dyne/runlog"
	"github.com/kbukum/dyne/storage"

	// Backends register their storage factories.
	_ "github.com/kbukum/dyne/redis"
	_ "github.com/kbukum/dyne/storage/local"
	_ "github.com/kbukum/dyne/storage/s3"
)

// infra holds the started backends of one command.
type infra struct {
	registry  *component.Registry
	storage   *storage.Component
	database  *database.Component
	kafka     *kafka.Component
	telemetry *observability.Component
}

// startInfra registers and starts the backends cfg asks for. withEvents
// adds telemetry and the Kafka publisher, which only runs need.
func startInfra(ctx context.Context, a *app, withEvents bool) (*infra, error) {
	cfg := a.cfg
	in := &infra{registry: component.NewRegistry(a.log)}

	if withEvents {
		in.telemetry = observability.NewComponent(cfg.Observability)
		if err := in.registry.Register(in.telemetry); err != nil {
			return nil, err
		}
	}
	in.storage = storage.NewComponent(cfg.Storage, cfg.providerConfig(), a.log)
	if err := in.registry.Register(in.storage); err != nil {
		return nil, err
	}
	if cfg.RunLog == runLogSQL {
		in.database = database.NewComponent(cfg.Database, a.log).WithAutoMigrate(runlog.Models()...)
		if err := in.registry.Register(in.database); err != nil {
			return nil, err
		}
	}
	if withEvents && cfg.Kafka.Enabled {
		in.kafka = kafka.NewComponent(cfg.Kafka, a.log)
		if err := in.registry.Register(in.kafka); err != nil {
			return nil, err
		}
	}

	if err := in.registry.StartAll(ctx); err != nil {
		return nil, err
	}
	return in, nil
}

// runLog returns the configured run log for the options in cfg.
func (in *infra) runLog(a *app) (runlog.Registry, error) {
	if in.database != nil {
		reg, err := runlog.NewSQL(in.database.DB(), a.cfg.Options)
		if err != nil {
			return nil, err
		}
		return reg, nil
	}
	return runlog.NewJSONL(in.storage.Storage(), a.cfg.Options), nil
}

// stop stops every started backend in reverse order.
func (in *infra) stop(ctx context.Context) error {
	return in.registry.StopAll(context.WithoutCancel(ctx))
}
