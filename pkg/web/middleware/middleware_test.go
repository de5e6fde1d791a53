package middleware

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"

	"signup-portal/pkg/common/config"
)

const testUA = "middleware-test"

func newEngine(mw ...app.HandlerFunc) *server.Hertz {
	h := server.New()
	h.Use(mw...)
	ok := func(c context.Context, ctx *app.RequestContext) {
		ctx.String(200, "ok")
	}
	h.GET("/", ok)
	h.POST("/", ok)
	h.PUT("/", ok)
	h.OPTIONS("/", ok)
	h.GET("/panic", func(c context.Context, ctx *app.RequestContext) {
		panic("boom")
	})
	h.GET("/deadline", func(c context.Context, ctx *app.RequestContext) {
		_, has := c.Deadline()
		if has {
			ctx.String(200, "deadline")
			return
		}
		ctx.String(200, "none")
	})
	return h
}

func form(body string) *ut.Body {
	return &ut.Body{Body: bytes.NewBufferString(body), Len: len(body)}
}

var (
	uaHeader   = ut.Header{Key: "User-Agent", Value: testUA}
	formHeader = ut.Header{Key: "Content-Type", Value: "application/x-www-form-urlencoded"}
)

func TestSecurityCheck(t *testing.T) {
	h := newEngine(SecurityCheckMiddleware(config.SecurityConfig{
		MaxBodySize:    64,
		AllowedMethods: []string{"GET", "POST"},
	}))

	tests := []struct {
		name    string
		method  string
		url     string
		body    string
		headers []ut.Header
		status  int
	}{
		{"plain get", "GET", "/", "", []ut.Header{uaHeader}, 200},
		{"missing user agent", "GET", "/", "", nil, 400},
		{"markup in query passes", "GET", "/?name=%3Cscript%3Ealert(1)%3C%2Fscript%3E", "", []ut.Header{uaHeader}, 200},
		{"markup in form passes", "POST", "/", "name=%3Cb%3EJane%3C%2Fb%3E", []ut.Header{uaHeader, formHeader}, 200},
		{"comparison is not markup", "POST", "/", "name=a+%3C+b", []ut.Header{uaHeader, formHeader}, 200},
		{"body too large", "POST", "/", "name=" + string(bytes.Repeat([]byte("x"), 100)), []ut.Header{uaHeader, formHeader}, 413},
		{"method not allowed", "PUT", "/", "", []ut.Header{uaHeader}, 405},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *ut.Body
			if tt.body != "" {
				body = form(tt.body)
			}
			w := ut.PerformRequest(h.Engine, tt.method, tt.url, body, tt.headers...)
			assert.Equal(t, tt.status, w.Result().StatusCode())
		})
	}
}

func TestSecurityCheckLogsMarkup(t *testing.T) {
	var buf bytes.Buffer
	hlog.SetOutput(&buf)
	defer hlog.SetOutput(os.Stderr)

	h := newEngine(SecurityCheckMiddleware(config.SecurityConfig{AllowedMethods: []string{"POST"}}))

	w := ut.PerformRequest(h.Engine, "POST", "/", form("name=a%3Cb%3Ec"), uaHeader, formHeader)
	assert.Equal(t, 200, w.Result().StatusCode())
	assert.Equal(t, "ok", string(w.Result().Body()))
	assert.Contains(t, buf.String(), "request contains markup")

	buf.Reset()
	w = ut.PerformRequest(h.Engine, "POST", "/", form("name=Jane"), uaHeader, formHeader)
	assert.Equal(t, 200, w.Result().StatusCode())
	assert.NotContains(t, buf.String(), "request contains markup")
}

func TestContainsMarkup(t *testing.T) {
	assert.True(t, ContainsMarkup("<img src=x onerror=alert(1)>"))
	assert.True(t, ContainsMarkup("Jane<br>"))
	assert.False(t, ContainsMarkup("Jane & John"))
	assert.False(t, ContainsMarkup("3 < 4 > 2"))
	assert.False(t, ContainsMarkup(""))
}

func TestRecoveryHidesStackInProduction(t *testing.T) {
	prod := config.Default()
	prod.Env = "production"
	w := ut.PerformRequest(newEngine(RecoveryMiddleware(prod)).Engine, "GET", "/panic", nil)
	assert.Equal(t, 500, w.Result().StatusCode())
	assert.NotContains(t, string(w.Result().Body()), "stack")

	w = ut.PerformRequest(newEngine(RecoveryMiddleware(config.Default())).Engine, "GET", "/panic", nil)
	assert.Equal(t, 500, w.Result().StatusCode())
	assert.Contains(t, string(w.Result().Body()), "boom")
}

func TestTimeoutSetsDeadline(t *testing.T) {
	w := ut.PerformRequest(newEngine(TimeoutMiddleware(5)).Engine, "GET", "/deadline", nil)
	assert.Equal(t, "deadline", string(w.Result().Body()))

	w = ut.PerformRequest(newEngine(TimeoutMiddleware(0)).Engine, "GET", "/deadline", nil)
	assert.Equal(t, "none", string(w.Result().Body()))
}

func TestCORSPreflight(t *testing.T) {
	cfg := config.Default().Middleware.CORS
	cfg.MaxAge = time.Hour
	h := newEngine(CORSMiddleware(cfg))

	w := ut.PerformRequest(h.Engine, "OPTIONS", "/", nil,
		ut.Header{Key: "Origin", Value: "http://localhost:3000"},
		ut.Header{Key: "Access-Control-Request-Method", Value: "POST"},
	)
	resp := w.Result()
	assert.Equal(t, 204, resp.StatusCode())
	assert.Equal(t, "http://localhost:3000", string(resp.Header.Peek("Access-Control-Allow-Origin")))
}
