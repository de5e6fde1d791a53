// Package validation checks submitted sign-up forms.
//
// Every rule is evaluated independently so a single submission reports every
// problem at once. Validation never decides whether a form is forwarded.
package validation

import (
	"signup-portal/pkg/core/signup/model"
)

const (
	MsgNameRequired          = "Please enter in a name."
	MsgEmailRequired         = "Please enter in an email address."
	MsgOccupationRequired    = "Please select an occupation."
	MsgStateRequired         = "Please select a state."
	MsgPasswordRequired      = "Please enter in a password."
	MsgPasswordCheckRequired = "Please enter in a verified password."
	MsgPasswordInvalid       = "Please enter in a valid password."
	MsgPasswordMismatch      = "Passwords don't match."
	MsgEmailInvalid          = "Please enter in a valid email address."
	MsgOccupationUnknown     = "Please select a valid occupation."
	MsgStateUnknown          = "Please select a valid state."
)

type rule struct {
	field   string
	message string
	failed  func(v model.FormValues, ref *model.ReferenceData) bool
}

// Order matters only for the order of the reported messages.
var rules = []rule{
	{"name", MsgNameRequired, func(v model.FormValues, _ *model.ReferenceData) bool {
		return v.Name == ""
	}},
	{"email", MsgEmailRequired, func(v model.FormValues, _ *model.ReferenceData) bool {
		return v.Email == ""
	}},
	{"occupation", MsgOccupationRequired, func(v model.FormValues, _ *model.ReferenceData) bool {
		return v.Occupation == ""
	}},
	{"state", MsgStateRequired, func(v model.FormValues, _ *model.ReferenceData) bool {
		return v.State == ""
	}},
	{"password", MsgPasswordRequired, func(v model.FormValues, _ *model.ReferenceData) bool {
		return v.Password == ""
	}},
	{"password_check", MsgPasswordCheckRequired, func(v model.FormValues, _ *model.ReferenceData) bool {
		return v.PasswordCheck == ""
	}},
	{"password", MsgPasswordInvalid, func(v model.FormValues, _ *model.ReferenceData) bool {
		return !IsStrongPassword(v.Password)
	}},
	{"password_check", MsgPasswordMismatch, func(v model.FormValues, _ *model.ReferenceData) bool {
		return v.PasswordCheck != v.Password
	}},
	{"email", MsgEmailInvalid, func(v model.FormValues, _ *model.ReferenceData) bool {
		return v.Email != "" && !IsValidEmail(v.Email)
	}},
	{"occupation", MsgOccupationUnknown, func(v model.FormValues, ref *model.ReferenceData) bool {
		return v.Occupation != "" && !IsKnownOccupation(ref, v.Occupation)
	}},
	{"state", MsgStateUnknown, func(v model.FormValues, ref *model.ReferenceData) bool {
		return v.State != "" && !IsKnownState(ref, v.State)
	}},
}

// Validate returns the violated rules for values, in rule order. A nil ref
// skips the reference membership checks.
func Validate(values model.FormValues, ref *model.ReferenceData) []model.Violation {
	var violations []model.Violation
	for _, r := range rules {
		if r.failed(values, ref) {
			violations = append(violations, model.Violation{Field: r.field, Message: r.message})
		}
	}
	return violations
}

// IsKnownOccupation accepts anything when no occupation list is available.
func IsKnownOccupation(ref *model.ReferenceData, occupation string) bool {
	if ref == nil || len(ref.Occupations) == 0 {
		return true
	}
	return ref.HasOccupation(occupation)
}

// IsKnownState accepts anything when no state list is available.
func IsKnownState(ref *model.ReferenceData, state string) bool {
	if ref == nil || len(ref.States) == 0 {
		return true
	}
	return ref.HasState(state)
}
