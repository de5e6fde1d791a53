package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"signup-portal/pkg/core/signup/notify"
	"signup-portal/pkg/core/signup/reference"
	"signup-portal/pkg/core/signup/service"
	"signup-portal/pkg/web/model"
	"signup-portal/pkg/web/view"
)

const (
	PageTitle          = "User Sign-up"
	unavailableMessage = "The sign-up form is unavailable right now. Please try again later."
)

type SignupHandler struct {
	Reference reference.Provider
	Service   *service.SignupService
}

func NewSignupHandler(provider reference.Provider, svc *service.SignupService) *SignupHandler {
	return &SignupHandler{
		Reference: provider,
		Service:   svc,
	}
}

// Page renders the empty form.
func (h *SignupHandler) Page(ctx context.Context, c *app.RequestContext) {
	ref, err := h.Reference.Reference(ctx)
	if err != nil {
		h.renderUnavailable(ctx, c, err)
		return
	}

	c.HTML(consts.StatusOK, view.SignupPage, model.PageData{
		Title:     PageTitle,
		Reference: ref,
	})
}

// Submit handles the native form post: validate, notify, forward, re-render.
func (h *SignupHandler) Submit(ctx context.Context, c *app.RequestContext) {
	ref, err := h.Reference.Reference(ctx)
	if err != nil {
		h.renderUnavailable(ctx, c, err)
		return
	}

	var req model.SignupReq
	if err := c.BindAndValidate(&req); err != nil {
		hlog.CtxWarnf(ctx, "signup form bind failed: %v", err)
		c.HTML(consts.StatusBadRequest, view.ErrorPage, model.ErrorPageData{
			Title:   PageTitle,
			Message: "The form could not be read.",
		})
		return
	}

	values := req.FormValues()
	queue := notify.NewQueue()
	h.Service.Handle(ctx, values, ref, queue)

	c.HTML(consts.StatusOK, view.SignupPage, model.PageData{
		Title:         PageTitle,
		Values:        values.Redacted(),
		Reference:     ref,
		Notifications: queue.Drain(),
	})
}

// SubmitJSON is the same contract for JSON clients.
func (h *SignupHandler) SubmitJSON(ctx context.Context, c *app.RequestContext) {
	var req model.SignupReq
	if err := c.BindAndValidate(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}

	ref, err := h.Reference.Reference(ctx)
	if err != nil {
		hlog.CtxErrorf(ctx, "reference data unavailable: %v", err)
		respondError(c, consts.StatusBadGateway, "reference data unavailable")
		return
	}

	out := h.Service.Handle(ctx, req.FormValues(), ref, nil)
	c.JSON(consts.StatusOK, model.SignupRes{
		SubmissionID: out.SubmissionID,
		Valid:        out.Err == nil,
		Forwarded:    out.Dispatched,
		Violations:   out.Violations,
		Notification: out.Notification,
	})
}

// ReferenceData exposes the occupations and states.
func (h *SignupHandler) ReferenceData(ctx context.Context, c *app.RequestContext) {
	ref, err := h.Reference.Reference(ctx)
	if err != nil {
		hlog.CtxErrorf(ctx, "reference data unavailable: %v", err)
		respondError(c, consts.StatusBadGateway, "reference data unavailable")
		return
	}
	c.JSON(consts.StatusOK, ref)
}

func (h *SignupHandler) renderUnavailable(ctx context.Context, c *app.RequestContext, err error) {
	hlog.CtxErrorf(ctx, "signup page render failed: %v", err)
	c.HTML(consts.StatusBadGateway, view.ErrorPage, model.ErrorPageData{
		Title:   PageTitle,
		Message: unavailableMessage,
	})
}

func respondError(c *app.RequestContext, code int, msg string) {
	c.JSON(code, model.ErrorRes{
		Code:    code,
		Message: msg,
	})
}
