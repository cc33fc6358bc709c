package service

import (
	"embed"
	"strings"
	"text/template"
)

// Prompt text contains literal {{ and [[, hence the custom delimiters.
//
//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(
	template.New("prompts").Delims("<%", "%>").ParseFS(promptFS, "prompts/*.tmpl"),
)

const (
	queryPrompt   = "query.tmpl"
	summaryPrompt = "summary.tmpl"
)

func renderPrompt(name string, data any) (string, error) {
	var sb strings.Builder
	if err := prompts.ExecuteTemplate(&sb, name, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
