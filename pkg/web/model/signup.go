package model

import (
	core "signup-portal/pkg/core/signup/model"
	"signup-portal/pkg/core/signup/notify"
)

// Request/response shapes of the web layer.
type (
	// SignupReq binds both the urlencoded page form and the JSON API body.
	SignupReq struct {
		Name          string `json:"name" form:"name"`
		Email         string `json:"email" form:"email"`
		Password      string `json:"password" form:"password"`
		PasswordCheck string `json:"password_check" form:"password_check"`
		Occupation    string `json:"occupation" form:"occupation"`
		State         string `json:"state" form:"state"`
	}

	SignupRes struct {
		SubmissionID string              `json:"submission_id"`
		Valid        bool                `json:"valid"`
		Forwarded    bool                `json:"forwarded"`
		Violations   []core.Violation    `json:"violations"`
		Notification notify.Notification `json:"notification"`
	}

	ErrorRes struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
)

// FormValues converts the bound request into the domain type.
func (r SignupReq) FormValues() core.FormValues {
	return core.FormValues{
		Name:          r.Name,
		Email:         r.Email,
		Password:      r.Password,
		PasswordCheck: r.PasswordCheck,
		Occupation:    r.Occupation,
		State:         r.State,
	}
}

// PageData feeds the signup template.
type PageData struct {
	Title         string
	Values        core.FormValues
	Reference     *core.ReferenceData
	Notifications []notify.Notification
}

type ErrorPageData struct {
	Title   string
	Message string
}
