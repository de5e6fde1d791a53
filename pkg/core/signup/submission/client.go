// Package submission forwards sign-ups to the remote form endpoint.
package submission

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"signup-portal/pkg/common/client"
	serr "signup-portal/pkg/common/errors"
	"signup-portal/pkg/core/signup/model"
)

// Result describes a post that reached the remote endpoint.
type Result struct {
	SubmissionID string
	StatusCode   int
}

// Created reports the only status treated as success.
func (r Result) Created() bool {
	return r.StatusCode == consts.StatusCreated
}

type Client struct {
	doer    client.Doer
	url     string
	timeout time.Duration
}

func NewClient(doer client.Doer, url string, timeout time.Duration) *Client {
	return &Client{doer: doer, url: url, timeout: timeout}
}

// Submit posts payload as JSON once. Anything but 201 Created is returned as a
// TransportError; nothing is retried.
func (c *Client) Submit(ctx context.Context, submissionID string, payload model.Payload) (Result, error) {
	result := Result{SubmissionID: submissionID}

	body, err := json.Marshal(payload)
	if err != nil {
		return result, serr.NewTransportFailure(submissionID, 0, err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.SetMethod(consts.MethodPost)
	req.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))
	req.SetBody(body)
	if c.timeout > 0 {
		req.SetOptions(config.WithRequestTimeout(c.timeout))
	}

	if err := c.doer.Do(ctx, req, resp); err != nil {
		hlog.CtxErrorf(ctx, "submission id=%s url=%s err=%v", submissionID, c.url, err)
		return result, serr.NewTransportFailure(submissionID, 0, err)
	}

	result.StatusCode = resp.StatusCode()
	if !result.Created() {
		hlog.CtxErrorf(ctx, "submission id=%s post failed status=%d", submissionID, result.StatusCode)
		return result, serr.NewTransportFailure(submissionID, result.StatusCode, nil)
	}

	hlog.CtxInfof(ctx, "submission id=%s post succeeded", submissionID)
	return result, nil
}
