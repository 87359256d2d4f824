package artifact

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrUnreachableArtifact is returned when a download link does not answer
// with a success status.
var ErrUnreachableArtifact = errors.New("unreachable artifact")

// LinkValidator checks that download links resolve.
type LinkValidator struct {
	client *http.Client
	bypass bool
}

// NewLinkValidator creates a validator. With bypass set, every link is accepted
// without a request, for environments without network egress.
func NewLinkValidator(client *http.Client, bypass bool) *LinkValidator {
	if client == nil {
		client = http.DefaultClient
	}
	return &LinkValidator{client: client, bypass: bypass}
}

// Validate issues a HEAD request for url and fails on any non-2xx status.
func (v *LinkValidator) Validate(ctx context.Context, url string) error {
	if v.bypass {
		log.Trace().Str("url", url).Msg("download link validation bypassed")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("creating http request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachableArtifact, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s: unexpected http status: %s", ErrUnreachableArtifact, url, resp.Status)
	}

	log.Debug().Str("url", url).Msg("download link is reachable")
	return nil
}

type linkRenderer interface {
	RenderURL(content string, data any) (string, error)
}

// Links renders download links from a URL template and validates them.
type Links struct {
	renderer  linkRenderer
	template  string
	validator *LinkValidator
}

// NewLinks creates a link builder. template is rendered with .Path and .FileName.
func NewLinks(renderer linkRenderer, template string, validator *LinkValidator) *Links {
	return &Links{renderer: renderer, template: template, validator: validator}
}

// Download returns the validated download link of fileName under the CDN path.
func (l *Links) Download(ctx context.Context, path, fileName string) (string, error) {
	url, err := l.renderer.RenderURL(l.template, struct {
		Path     string
		FileName string
	}{Path: path, FileName: fileName})
	if err != nil {
		return "", fmt.Errorf("download link for %s: %w", fileName, err)
	}

	if err := l.validator.Validate(ctx, url); err != nil {
		return "", err
	}
	return url, nil
}
