// Package templ renders the URL templates of the lookup tables.
package templ

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"text/template"

	"github.com/rs/zerolog/log"
)

// URLRenderer renders URL templates such as "{{ .Path }}/{{ .FileName }}".
// Parsed templates are cached by their text, so one renderer serves every
// link of a run.
type URLRenderer struct {
	templates sync.Map // map[string]*template.Template
}

// NewURLRenderer creates an URLRenderer with an empty cache.
func NewURLRenderer() *URLRenderer {
	return &URLRenderer{}
}

// RenderURL executes text with data and checks that the result is an absolute
// http(s) URL. Fields missing from data are errors, never "<no value>".
func (r *URLRenderer) RenderURL(text string, data any) (string, error) {
	tmpl, err := r.parse(text)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %q: %w", text, err)
	}
	rendered := sb.String()

	u, err := url.Parse(rendered)
	if err != nil {
		return "", fmt.Errorf("render %q: %w", text, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("render %q: %q is not an absolute http(s) url", text, rendered)
	}

	log.Trace().Str("url", rendered).Msg("rendered url")
	return rendered, nil
}

func (r *URLRenderer) parse(text string) (*template.Template, error) {
	if cached, ok := r.templates.Load(text); ok {
		return cached.(*template.Template), nil
	}

	tmpl, err := template.New("url").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse url template %q: %w", text, err)
	}

	actual, _ := r.templates.LoadOrStore(text, tmpl)
	return actual.(*template.Template), nil
}
