package pages

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrPageNotFound is returned when a source has no template for a page.
var ErrPageNotFound = errors.New("Page not found")

// TemplateSource fetches the template text of a page.
type TemplateSource interface {
	Fetch(ctx context.Context, page domain.Page) (string, error)
}

// EmbeddedSource serves the templates compiled into the binary.
type EmbeddedSource struct {
	fsys fs.FS
}

// NewEmbeddedSource returns the built-in template set.
func NewEmbeddedSource() *EmbeddedSource {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return &EmbeddedSource{fsys: sub}
}

// FS exposes the built-in templates, for serving them over HTTP.
func (s *EmbeddedSource) FS() fs.FS {
	return s.fsys
}

func (s *EmbeddedSource) Fetch(_ context.Context, page domain.Page) (string, error) {
	if !page.Valid() {
		return "", ErrPageNotFound
	}
	data, err := fs.ReadFile(s.fsys, page.Template())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrPageNotFound
		}
		return "", fmt.Errorf("read template %s: %w", page.Template(), err)
	}
	return string(data), nil
}

// HTTPSource fetches templates from <base>/pages/<page>.html.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource builds a source for cfg.BaseURL.
func NewHTTPSource(cfg config.PagesConfig, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, page domain.Page) (string, error) {
	url := fmt.Sprintf("%s/pages/%s", s.baseURL, page.Template())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build template request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch template %s: %w", page.Template(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrPageNotFound
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", page.Template(), err)
	}
	return string(data), nil
}

// NewSource selects the template source named by cfg.Source.
func NewSource(cfg config.PagesConfig, timeout time.Duration) TemplateSource {
	if cfg.Source == config.PagesHTTP {
		return NewHTTPSource(cfg, timeout)
	}
	return NewEmbeddedSource()
}
