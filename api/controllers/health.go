package controllers

import (
	"context"
	"net/http"

	"github.com/harborlane/storefront-backend/api/responses"
	pkgerrors "github.com/harborlane/storefront-backend/pkg/errors"
	"github.com/harborlane/storefront-backend/pkg/logger"
)

// Pinger is anything that can report reachability of a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name   string
	pinger Pinger
}

type HealthController struct {
	deps []dependency
	logg *logger.Logger
}

func NewHealthController(logg *logger.Logger) *HealthController {
	return &HealthController{logg: logg}
}

// Register adds a named dependency to the readiness check. Nil pingers are
// ignored so optional backends can be wired unconditionally.
func (h *HealthController) Register(name string, pinger Pinger) {
	if pinger == nil {
		return
	}
	h.deps = append(h.deps, dependency{name: name, pinger: pinger})
}

// Live reports process liveness only.
func (h *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, map[string]string{"status": "ok"})
}

// Ready pings every registered dependency and fails on the first refusal.
func (h *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	statuses := map[string]string{}
	for _, dep := range h.deps {
		if err := dep.pinger.Ping(ctx); err != nil {
			statuses[dep.name] = "unreachable"
			responses.WriteError(ctx, h.logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unreachable").
					WithDetails(statuses))
			return
		}
		statuses[dep.name] = "ok"
	}
	responses.WriteSuccess(w, statuses)
}
