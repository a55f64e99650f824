package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/dyne/engine"
	apperrors "github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/runlog"
	"github.com/kbukum/dyne/server/endpoint"
	"github.com/kbukum/dyne/sse"
)

// Stopper is the run control used by POST /stop. *engine.Engine and
// *dyne.Pipeline satisfy it.
type Stopper interface {
	State() engine.State
	Stop()
}

// API exposes a running pipeline over HTTP.
type API struct {
	Service string
	Tracker *StatusTracker
	Runs    runlog.Registry
	Stopper Stopper
	Health  endpoint.HealthChecker
	// Events, when set, serves engine events on GET /events.
	Events *sse.Hub
}

// Register mounts the API routes on r.
func (a *API) Register(r gin.IRoutes) {
	service := a.Service
	if service == "" {
		service = "dyne"
	}
	r.GET("/health", endpoint.Health(service, a.Health))
	r.GET("/version", endpoint.Version())
	r.GET("/status", a.status)
	r.POST("/stop", a.stop)
	r.GET("/runs", a.runs)
	if a.Events != nil {
		r.GET("/events", sse.Handler(a.Events, nil))
	}
}

func (a *API) status(c *gin.Context) {
	if a.Tracker == nil {
		RespondWithError(c, apperrors.NotFound("status", "tracker"))
		return
	}
	RespondOK(c, a.Tracker.Snapshot())
}

func (a *API) stop(c *gin.Context) {
	if a.Stopper == nil {
		RespondWithError(c, apperrors.NotFound("run", "current"))
		return
	}
	if state := a.Stopper.State(); state != engine.StateRunning {
		RespondWithError(c, apperrors.InvalidState("stop", string(state)))
		return
	}
	a.Stopper.Stop()
	RespondAccepted(c, gin.H{"stopping": true})
}

// runs lists the run log. Without ?all=true each run is folded to its most
// recent record.
func (a *API) runs(c *gin.Context) {
	if a.Runs == nil {
		RespondWithError(c, apperrors.NotFound("runs", "registry"))
		return
	}
	records, err := a.Runs.List(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if c.Query("all") != "true" {
		records = runlog.Latest(records)
	}
	RespondList(c, records)
}
