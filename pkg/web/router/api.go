package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"signup-portal/pkg/common/config"
	"signup-portal/pkg/common/metrics"
	"signup-portal/pkg/web/handler"
	"signup-portal/pkg/web/middleware"
	"signup-portal/pkg/web/view"
)

// Dependencies are the handlers and collectors the routes are bound to.
type Dependencies struct {
	Signup  *handler.SignupHandler
	Health  *handler.HealthCheckHandler
	Metrics *metrics.Metrics
}

// RegisterAPIs installs the templates, middleware and routes on h.
func RegisterAPIs(h *server.Hertz, cfg *config.Config, deps Dependencies) error {
	if deps.Signup == nil || deps.Health == nil {
		return fmt.Errorf("router: signup and health handlers are required")
	}

	tmpl, err := view.Load()
	if err != nil {
		return fmt.Errorf("router: load templates: %w", err)
	}
	h.SetHTMLTemplate(tmpl)

	// Order matters: recovery wraps everything, CORS answers preflights early.
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.TimeoutMiddleware(cfg.Middleware.Timeout.RequestTimeout),
	)

	h.GET("/health", deps.Health.AdvancedHealthCheck)
	if deps.Metrics != nil {
		h.GET("/metrics", wrapHTTPHandler(deps.Metrics.Handler()))
	}

	// The sign-up page posts back to itself.
	h.GET("/", deps.Signup.Page)
	h.POST("/", deps.Signup.Submit)

	apiGroup := h.Group("/api/v1")
	{
		apiGroup.GET("/reference", deps.Signup.ReferenceData)
		apiGroup.POST("/signup", deps.Signup.SubmitJSON)
		apiGroup.OPTIONS("/*path", noContent)
	}
	return nil
}

// wrapHTTPHandler serves a net/http handler, such as promhttp, from hertz.
func wrapHTTPHandler(next http.Handler) app.HandlerFunc {
	return func(_ context.Context, c *app.RequestContext) {
		req, err := adaptor.GetCompatRequest(&c.Request)
		if err != nil {
			c.AbortWithStatus(consts.StatusInternalServerError)
			return
		}
		next.ServeHTTP(adaptor.GetCompatResponseWriter(&c.Response), req)
	}
}

func noContent(_ context.Context, c *app.RequestContext) {
	c.Status(consts.StatusNoContent)
}
