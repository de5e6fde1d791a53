package service

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"

	serr "signup-portal/pkg/common/errors"
	"signup-portal/pkg/common/metrics"
	"signup-portal/pkg/core/signup/model"
	"signup-portal/pkg/core/signup/notify"
	"signup-portal/pkg/core/signup/submission"
	"signup-portal/pkg/core/signup/validation"
)

// Submitter forwards a payload to the remote endpoint.
type Submitter interface {
	Submit(ctx context.Context, submissionID string, payload model.Payload) (submission.Result, error)
}

type Options struct {
	// Timeout bounds each background post. Zero leaves it to the client.
	Timeout time.Duration
	// RequireValid skips forwarding forms that failed validation.
	RequireValid bool
	Timing       notify.Timing
}

// Outcome is what the page needs to know about one submit activation.
type Outcome struct {
	SubmissionID string
	Violations   []model.Violation
	Notification notify.Notification
	Dispatched   bool
	// Err is a public validation failure, nil when the form is valid.
	Err error
	// Skipped is ErrSubmissionSkipped when RequireValid held the post back.
	Skipped error
}

type SignupService struct {
	submitter Submitter
	metrics   *metrics.Metrics
	opts      Options
	newID     func() string

	wg sync.WaitGroup
}

func NewSignupService(submitter Submitter, m *metrics.Metrics, opts Options) *SignupService {
	if opts.Timing == (notify.Timing{}) {
		opts.Timing = notify.DefaultTiming
	}
	return &SignupService{
		submitter: submitter,
		metrics:   m,
		opts:      opts,
		newID:     uuid.NewString,
	}
}

// Handle validates values, notifies sink and forwards the payload. The
// validation result does not gate forwarding unless RequireValid is set.
func (s *SignupService) Handle(ctx context.Context, values model.FormValues, ref *model.ReferenceData, sink notify.Sink) Outcome {
	violations := validation.Validate(values, ref)
	s.metrics.ObserveValidation(len(violations) == 0)

	out := Outcome{
		SubmissionID: s.newID(),
		Violations:   violations,
		Notification: notify.FromViolations(violations, s.opts.Timing),
	}
	if verr := serr.NewValidationFailure(violations); verr != nil {
		out.Err = verr
	}
	if sink != nil {
		sink.Notify(ctx, out.Notification)
	}

	if len(violations) > 0 {
		if s.opts.RequireValid {
			out.Skipped = serr.ErrSubmissionSkipped
			hlog.CtxInfof(ctx, "submission id=%s: %v (%d violations)", out.SubmissionID, out.Skipped, len(violations))
			s.metrics.ObserveSubmission(metrics.OutcomeSkipped)
			return out
		}
		// Forwarded on purpose; see submission.requireValid.
		hlog.CtxWarnf(ctx, "submission id=%s forwarded although validation failed with %d violations",
			out.SubmissionID, len(violations))
	}

	s.Dispatch(ctx, out.SubmissionID, values.Payload())
	out.Dispatched = true
	return out
}

// Dispatch posts payload in the background. The request context is detached
// so the post outlives the page response.
func (s *SignupService) Dispatch(ctx context.Context, submissionID string, payload model.Payload) {
	detached := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.metrics.TrackInFlight()()

		postCtx := detached
		if s.opts.Timeout > 0 {
			var cancel context.CancelFunc
			postCtx, cancel = context.WithTimeout(detached, s.opts.Timeout)
			defer cancel()
		}

		res, err := s.submitter.Submit(postCtx, submissionID, payload)
		switch {
		case err == nil:
			s.metrics.ObserveSubmission(metrics.OutcomeCreated)
		case res.StatusCode != 0:
			s.metrics.ObserveSubmission(metrics.OutcomeRejected)
		default:
			s.metrics.ObserveSubmission(metrics.OutcomeTransport)
		}
	}()
}

// Wait blocks until in-flight posts finish or ctx is done.
func (s *SignupService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
