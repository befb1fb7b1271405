package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

// RenderHTML renders the named embedded template with data.
func RenderHTML(name string, data map[string]any) (string, error) {
	filename := name + ".html.tmpl"
	t, err := htmpl.ParseFS(FS, filename)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", filename, err)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, filename, data); err != nil {
		return "", fmt.Errorf("render %s: %w", filename, err)
	}
	return buf.String(), nil
}

// Subject returns the subject line for a known template name.
func Subject(name string) string {
	switch name {
	case "welcome":
		return "Welcome aboard"
	default:
		return "Notification"
	}
}
