// Package view holds the embedded page templates.
package view

import (
	"embed"
	"html/template"
	"strings"
)

const (
	SignupPage = "signup.html"
	ErrorPage  = "error.html"
)

//go:embed templates/*.html
var templates embed.FS

var funcs = template.FuncMap{
	"join": strings.Join,
	"selected": func(current, option string) bool {
		return current != "" && current == option
	},
}

// Load parses every embedded template. Template names are the file base names.
func Load() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templates, "templates/*.html")
}
