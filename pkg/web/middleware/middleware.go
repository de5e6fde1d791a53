package middleware

import (
	"context"
	"errors"
	"fmt"
	"html"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/hertz-contrib/cors"
	"github.com/microcosm-cc/bluemonday"

	"signup-portal/pkg/common/config"
)

// LoggerMiddleware writes one access log line per request.
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		latency := time.Since(start)

		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s | UA=%s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			ctx.GetHeader("User-Agent"),
		)
	}
}

// RecoveryMiddleware turns handler panics into 500 responses. Stack traces are
// only returned outside production.
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())

				hlog.CtxErrorf(c, "[PANIC RECOVERED] %v\n%s", err, stack)

				if cfg.IsProd() {
					ctx.AbortWithStatusJSON(500, utils.H{
						"code":    500,
						"message": "internal server error",
					})
				} else {
					ctx.AbortWithStatusJSON(500, utils.H{
						"code":  500,
						"error": fmt.Sprintf("%v", err),
						"stack": strings.Split(stack, "\n"),
					})
				}
			}
		}()
		ctx.Next(c)
	}
}

// CORSMiddleware lets browser clients on other origins use the JSON API.
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     corsConfig.AllowOrigins,
		AllowMethods:     corsConfig.AllowMethods,
		AllowHeaders:     corsConfig.AllowHeaders,
		ExposeHeaders:    corsConfig.ExposeHeaders,
		AllowCredentials: corsConfig.AllowCredentials,
		MaxAge:           corsConfig.MaxAge,
	}
	if len(corsConfig.TrustedDomains) > 0 {
		cfg.AllowOriginFunc = func(origin string) bool {
			for _, allowed := range corsConfig.AllowOrigins {
				if origin == allowed {
					return true
				}
			}
			for _, domain := range corsConfig.TrustedDomains {
				if strings.HasSuffix(origin, domain) {
					return true
				}
			}
			return false
		}
	}
	return cors.New(cfg)
}

// TimeoutMiddleware gives downstream handlers a deadline. Handlers that block
// on outbound calls observe it through the context they are given.
func TimeoutMiddleware(seconds int) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if seconds <= 0 {
			ctx.Next(c)
			return
		}
		timeoutCtx, cancel := context.WithTimeout(c, time.Duration(seconds)*time.Second)
		defer cancel()

		ctx.Next(timeoutCtx)

		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			hlog.CtxWarnf(c, "request exceeded %ds path=%s", seconds, ctx.Path())
		}
	}
}

// SecurityCheckMiddleware rejects requests without a User-Agent, oversized
// bodies and unexpected methods. Markup in query or form values is logged,
// never rejected.
func SecurityCheckMiddleware(security config.SecurityConfig) app.HandlerFunc {
	allowed := make(map[string]bool, len(security.AllowedMethods))
	for _, m := range security.AllowedMethods {
		allowed[strings.ToUpper(m)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		if isInvalidUserAgent(ctx) {
			securityResponse(c, ctx, 400001, "missing required header: User-Agent", 400)
			return
		}

		if security.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > security.MaxBodySize {
			securityResponse(c, ctx, 413001, "request body exceeds max size", 413)
			return
		}

		if len(allowed) > 0 && !allowed[string(ctx.Method())] {
			securityResponse(c, ctx, 405001, "method not allowed", 405)
			return
		}

		if hasMarkup(ctx) {
			hlog.CtxWarnf(c, "SecurityAlert[code=%d]: request contains markup path=%s", MarkupWarningCode, ctx.Path())
		}

		ctx.Next(c)
	}
}

// MarkupWarningCode tags the log line written for requests carrying markup.
const MarkupWarningCode = 422001

func isInvalidUserAgent(ctx *app.RequestContext) bool {
	return len(ctx.GetHeader("User-Agent")) == 0
}

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

func markupPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// ContainsMarkup reports whether the strict policy would strip anything from value.
func ContainsMarkup(value string) bool {
	if !strings.ContainsAny(value, "<>") {
		return false
	}
	return html.UnescapeString(markupPolicy().Sanitize(value)) != value
}

func hasMarkup(ctx *app.RequestContext) bool {
	found := false
	visitor := func(key, value []byte) {
		if found {
			return
		}
		if ContainsMarkup(string(key)) || ContainsMarkup(string(value)) {
			found = true
		}
	}

	ctx.QueryArgs().VisitAll(visitor)
	if found {
		return true
	}
	ctx.PostArgs().VisitAll(visitor)
	return found
}

func securityResponse(c context.Context, ctx *app.RequestContext, code int, msg string, status int) {
	hlog.CtxWarnf(c, "SecurityAlert[code=%d]: %s path=%s", code, msg, ctx.Path())
	ctx.AbortWithStatusJSON(status, utils.H{
		"code":    code,
		"message": msg,
	})
}
