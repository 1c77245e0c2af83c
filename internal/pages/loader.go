package pages

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// DashboardAPI is the part of the remote API pages read on load.
type DashboardAPI interface {
	Tasks(ctx context.Context, cleanerID string) ([]domain.Task, error)
	PendingRecords(ctx context.Context) ([]domain.CleaningRecord, error)
}

// ClaimsSource returns the identity of the current session.
type ClaimsSource interface {
	Current(ctx context.Context) (*domain.Claims, error)
}

// PageData is what templates execute against.
type PageData struct {
	Page   domain.Page
	Claims *domain.Claims
	Data   any
	// Error is shown inline when the page initializer failed.
	Error string
}

type initializer func(ctx context.Context, data *PageData) error

// Loader turns a page into rendered text.
type Loader struct {
	source TemplateSource
	api    DashboardAPI
	claims ClaimsSource
	logger *zap.Logger
	init   map[domain.Page]initializer
}

// NewLoader wires a loader. api and claims may be nil for pages that need
// neither.
func NewLoader(source TemplateSource, api DashboardAPI, claims ClaimsSource, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{source: source, api: api, claims: claims, logger: logger}
	l.init = map[domain.Page]initializer{
		domain.PageCleaner: l.loadTasks,
		domain.PageManager: l.loadApprovals,
	}
	return l
}

// Load fetches, parses and executes the template of page. A failing
// initializer is reported inside the page; only fetch, parse and execute
// failures are returned.
func (l *Loader) Load(ctx context.Context, page domain.Page) (string, error) {
	text, err := l.source.Fetch(ctx, page)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(page.Template()).Funcs(funcs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", page.Template(), err)
	}

	data := &PageData{Page: page}
	if l.claims != nil && page.Authenticated() {
		if claims, err := l.claims.Current(ctx); err == nil {
			data.Claims = claims
		}
	}
	if fn, ok := l.init[page]; ok {
		if err := fn(ctx, data); err != nil {
			l.logger.Warn("page initializer failed", zap.String("page", string(page)), zap.Error(err))
			data.Error = apperrors.UserMessage(err)
		}
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render %s: %w", page.Template(), err)
	}
	return out.String(), nil
}

func (l *Loader) loadTasks(ctx context.Context, data *PageData) error {
	if data.Claims == nil || l.api == nil {
		return nil
	}
	tasks, err := l.api.Tasks(ctx, data.Claims.UserID)
	if err != nil {
		return err
	}
	data.Data = tasks
	return nil
}

func (l *Loader) loadApprovals(ctx context.Context, data *PageData) error {
	if l.api == nil {
		return nil
	}
	records, err := l.api.PendingRecords(ctx)
	if err != nil {
		return err
	}
	data.Data = records
	return nil
}

var funcs = template.FuncMap{
	"date":     formatDate,
	"datetime": formatDateTime,
	"short":    shortID,
}

func formatDate(raw string) string {
	if len(raw) >= 10 {
		if t, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return raw
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
