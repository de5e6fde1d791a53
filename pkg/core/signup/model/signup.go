package model

// FormValues holds the six fields of the sign-up form as submitted.
type FormValues struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	PasswordCheck string `json:"password_check"`
	Occupation    string `json:"occupation"`
	State         string `json:"state"`
}

// Payload is the body forwarded to the sign-up endpoint. password_check never leaves the service.
type Payload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Occupation string `json:"occupation"`
	State      string `json:"state"`
}

// Payload strips the confirmation field.
func (v FormValues) Payload() Payload {
	return Payload{
		Name:       v.Name,
		Email:      v.Email,
		Password:   v.Password,
		Occupation: v.Occupation,
		State:      v.State,
	}
}

// Redacted returns a copy safe to echo back into a rendered page.
func (v FormValues) Redacted() FormValues {
	v.Password = ""
	v.PasswordCheck = ""
	return v
}

type State struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// ReferenceData constrains the occupation and state selects. Read-only once loaded.
type ReferenceData struct {
	Occupations []string `json:"occupations"`
	States      []State  `json:"states"`
}

// HasOccupation reports whether name is one of the listed occupations.
func (r ReferenceData) HasOccupation(name string) bool {
	for _, o := range r.Occupations {
		if o == name {
			return true
		}
	}
	return false
}

// HasState matches against state names, not abbreviations.
func (r ReferenceData) HasState(name string) bool {
	for _, s := range r.States {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Empty reports whether neither list was supplied.
func (r ReferenceData) Empty() bool {
	return len(r.Occupations) == 0 && len(r.States) == 0
}

// Violation is a single failed validation rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
