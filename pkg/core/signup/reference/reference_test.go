package reference

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signup-portal/pkg/common/client"
	serr "signup-portal/pkg/common/errors"
	"signup-portal/pkg/common/metrics"
	"signup-portal/pkg/core/signup/model"
)

const referenceBody = `{
  "occupations": ["Engineer", "Teacher"],
  "states": [{"name": "Ohio", "abbreviation": "OH"}, {"name": "Texas", "abbreviation": "TX"}]
}`

func respond(status int, body string) client.DoerFunc {
	return func(_ context.Context, req *protocol.Request, resp *protocol.Response) error {
		resp.SetStatusCode(status)
		resp.SetBody([]byte(body))
		return nil
	}
}

func TestRemoteFetch(t *testing.T) {
	var calls int
	var method, uri string
	doer := client.DoerFunc(func(ctx context.Context, req *protocol.Request, resp *protocol.Response) error {
		calls++
		method = string(req.Method())
		uri = req.URI().String()
		return respond(200, referenceBody)(ctx, req, resp)
	})

	m := metrics.New()
	r := NewRemote(doer, "http://reference.test/form", time.Second, m)
	data, err := r.Reference(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "GET", method)
	assert.Equal(t, "http://reference.test/form", uri)
	assert.Equal(t, []string{"Engineer", "Teacher"}, data.Occupations)
	assert.Equal(t, []model.State{{Name: "Ohio", Abbreviation: "OH"}, {Name: "Texas", Abbreviation: "TX"}}, data.States)
	count, err := testutil.GatherAndCount(m.Registry(), "signup_reference_fetch_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRemoteFetchFailures(t *testing.T) {
	tests := map[string]client.Doer{
		"status": respond(503, "unavailable"),
		"decode": respond(200, "{not json"),
		"transport": client.DoerFunc(func(context.Context, *protocol.Request, *protocol.Response) error {
			return errors.New("dial tcp: connection refused")
		}),
	}
	for name, doer := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := NewRemote(doer, "http://reference.test/form", 0, nil).Fetch(context.Background())
			assert.Nil(t, data)
			assert.ErrorIs(t, err, serr.ErrReferenceUnavailable)
		})
	}
}

func TestStatic(t *testing.T) {
	data := &model.ReferenceData{Occupations: []string{"Engineer"}}
	got, err := NewStatic(data).Reference(context.Background())
	require.NoError(t, err)
	assert.Same(t, data, got)

	_, err = NewStatic(nil).Reference(context.Background())
	assert.ErrorIs(t, err, serr.ErrReferenceUnavailable)
}

func TestRemoteFetchOverTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(referenceBody))
	}))
	defer srv.Close()

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	c, err := client.New(2*time.Second, 2*time.Second, &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12})
	require.NoError(t, err)

	data, err := NewRemote(c, srv.URL+"/form", 2*time.Second, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Engineer", "Teacher"}, data.Occupations)
	assert.Len(t, data.States, 2)
}
