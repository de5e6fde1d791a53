// Package reference loads the occupations and states offered by the form.
package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"signup-portal/pkg/common/client"
	serr "signup-portal/pkg/common/errors"
	"signup-portal/pkg/common/metrics"
	"signup-portal/pkg/core/signup/model"
)

// Provider supplies reference data for a page render.
type Provider interface {
	Reference(ctx context.Context) (*model.ReferenceData, error)
}

// Static serves data loaded once, before the server starts.
type Static struct {
	data *model.ReferenceData
}

func NewStatic(data *model.ReferenceData) *Static {
	return &Static{data: data}
}

func (s *Static) Reference(context.Context) (*model.ReferenceData, error) {
	if s.data == nil {
		return nil, serr.NewReferenceFailure(fmt.Errorf("not loaded"))
	}
	return s.data, nil
}

// Remote fetches the reference data with one GET per call. There is no retry
// and no fallback.
type Remote struct {
	doer    client.Doer
	url     string
	timeout time.Duration
	metrics *metrics.Metrics
}

func NewRemote(doer client.Doer, url string, timeout time.Duration, m *metrics.Metrics) *Remote {
	return &Remote{doer: doer, url: url, timeout: timeout, metrics: m}
}

func (r *Remote) Reference(ctx context.Context) (*model.ReferenceData, error) {
	return r.Fetch(ctx)
}

// Fetch performs the GET and decodes the body.
func (r *Remote) Fetch(ctx context.Context) (data *model.ReferenceData, err error) {
	start := time.Now()
	defer func() {
		r.metrics.ObserveReferenceFetch(time.Since(start), err)
	}()

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(r.url)
	req.SetMethod(consts.MethodGet)
	req.Header.Set("Accept", "application/json")
	if r.timeout > 0 {
		req.SetOptions(config.WithRequestTimeout(r.timeout))
	}

	if err := r.doer.Do(ctx, req, resp); err != nil {
		hlog.CtxErrorf(ctx, "reference fetch url=%s err=%v", r.url, err)
		return nil, serr.NewReferenceFailure(err)
	}

	if status := resp.StatusCode(); status < consts.StatusOK || status >= consts.StatusMultipleChoices {
		hlog.CtxErrorf(ctx, "reference fetch url=%s status=%d", r.url, status)
		return nil, serr.NewReferenceFailure(fmt.Errorf("unexpected status %d", status))
	}

	var out model.ReferenceData
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		hlog.CtxErrorf(ctx, "reference decode url=%s err=%v", r.url, err)
		return nil, serr.NewReferenceFailure(fmt.Errorf("decode: %w", err))
	}

	hlog.CtxInfof(ctx, "reference loaded occupations=%d states=%d in %v",
		len(out.Occupations), len(out.States), time.Since(start))
	return &out, nil
}
