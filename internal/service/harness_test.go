package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-hospital-client/internal/auth"
	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/events"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
	"github.com/spec-kit/smart-hospital-client/internal/repository"
	"github.com/spec-kit/smart-hospital-client/internal/router"
	"github.com/spec-kit/smart-hospital-client/internal/ui"
)

type pageRecorder struct {
	mu    sync.Mutex
	shown []domain.Page
}

func (p *pageRecorder) Show(_ context.Context, page domain.Page) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, page)
}

func (p *pageRecorder) pages() []domain.Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Page(nil), p.shown...)
}

func (p *pageRecorder) last() domain.Page {
	shown := p.pages()
	if len(shown) == 0 {
		return ""
	}
	return shown[len(shown)-1]
}

type harness struct {
	t         *testing.T
	queue     *events.Queue
	store     repository.TokenStore
	nav       *ui.Location
	view      *ui.Terminal
	pages     *pageRecorder
	router    *router.Router
	metrics   *observability.Metrics
	notifier  *NotificationService
	session   *SessionService
	dashboard *DashboardService
}

func newHarness(t *testing.T, authAPI AuthAPI, dashAPI DashboardAPI, hash domain.Hash) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		queue:   events.NewQueue(nil),
		store:   repository.NewMemoryTokenStore(),
		nav:     ui.NewLocation(hash),
		view:    ui.NewTerminal(&bytes.Buffer{}),
		pages:   &pageRecorder{},
		metrics: observability.NewMetrics(),
	}
	h.router = router.New(router.Dependencies{
		Store:   h.store,
		Decoder: auth.NewUnverifiedDecoder(),
		Nav:     h.nav,
		Chrome:  h.view,
		Pages:   h.pages,
		Metrics: h.metrics,
	})
	h.notifier = NewNotificationService(h.queue, h.view, nil, config.NotificationConfig{TTLSeconds: 60})
	h.notifier.RegisterHandlers()
	h.session = NewSessionService(SessionDependencies{
		Queue:    h.queue,
		API:      authAPI,
		Store:    h.store,
		Nav:      h.nav,
		Router:   h.router,
		Notifier: h.notifier,
		Metrics:  h.metrics,
	})
	h.session.RegisterHandlers()
	h.dashboard = NewDashboardService(DashboardDependencies{
		Queue:     h.queue,
		API:       dashAPI,
		Claims:    h.router,
		Epochs:    h.session,
		Router:    h.router,
		Notifier:  h.notifier,
		Metrics:   h.metrics,
		Downloads: config.DownloadsConfig{Dir: t.TempDir()},
	})
	h.dashboard.RegisterHandlers()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.queue.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	h.router.Route(context.Background())
	return h
}

func (h *harness) idle() {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(h.t, h.queue.WaitIdle(ctx))
}

func (h *harness) token() (string, bool) {
	h.t.Helper()
	token, ok, err := h.store.Get(context.Background())
	require.NoError(h.t, err)
	return token, ok
}

func (h *harness) notification() *domain.Notification {
	return h.view.Snapshot().Notification
}

func tokenFor(userID string, role domain.Role) string {
	payload := `{"user_id":"` + userID + `","role":"` + string(role) + `"}`
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".c2ln"
}
