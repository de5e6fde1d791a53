package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"signup-portal/pkg/core/signup/reference"
)

type HealthCheckHandler struct {
	reference reference.Provider
	timeout   time.Duration
}

func NewHealthCheckHandler(provider reference.Provider, timeout time.Duration) *HealthCheckHandler {
	return &HealthCheckHandler{reference: provider, timeout: timeout}
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components,omitempty"`
}

type ComponentStatus struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	IsCore  bool          `json:"is_core"`
	Latency time.Duration `json:"latency,omitempty"`
	Detail  string        `json:"detail,omitempty"`
	Error   string        `json:"error,omitempty"`
}

var startupTime = time.Now()

// AdvancedHealthCheck reports degraded when the reference data cannot be served.
func (h *HealthCheckHandler) AdvancedHealthCheck(ctx context.Context, c *app.RequestContext) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(startupTime).Round(time.Second).String(),
		Components: []ComponentStatus{
			h.checkReference(ctx),
		},
	}

	if hasCriticalErrors(status.Components) {
		status.Status = "degraded"
		c.JSON(consts.StatusServiceUnavailable, status)
		return
	}

	c.JSON(consts.StatusOK, status)
}

func (h *HealthCheckHandler) checkReference(ctx context.Context) ComponentStatus {
	comp := ComponentStatus{Name: "reference_data", IsCore: true}
	if h.reference == nil {
		comp.Status = "critical"
		comp.Error = "not configured"
		return comp
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	ref, err := h.reference.Reference(ctx)
	comp.Latency = time.Since(start)
	if err != nil {
		comp.Status = "error"
		comp.Error = err.Error()
		return comp
	}
	comp.Status = "ok"
	comp.Detail = fmt.Sprintf("%d occupations, %d states", len(ref.Occupations), len(ref.States))
	return comp
}

func hasCriticalErrors(components []ComponentStatus) bool {
	for _, comp := range components {
		if (comp.IsCore && comp.Status != "ok") || comp.Status == "critical" {
			return true
		}
	}
	return false
}
