package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/smart-hospital-client/internal/apiclient"
	"github.com/spec-kit/smart-hospital-client/internal/auth"
	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/events"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
	"github.com/spec-kit/smart-hospital-client/internal/pages"
	"github.com/spec-kit/smart-hospital-client/internal/repository"
	"github.com/spec-kit/smart-hospital-client/internal/router"
	"github.com/spec-kit/smart-hospital-client/internal/service"
	"github.com/spec-kit/smart-hospital-client/internal/ui"
	"github.com/spec-kit/smart-hospital-client/internal/worker"
)

// App is the assembled client: one event loop driving the router, the
// session and dashboard actions, and the view.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics

	Queue     *events.Queue
	Store     repository.TokenStore
	Nav       *ui.Location
	View      ui.View
	Router    *router.Router
	API       *apiclient.Client
	Notifier  *service.NotificationService
	Session   *service.SessionService
	Dashboard *service.DashboardService
}

// Dependencies are the parts of the client chosen by the caller.
type Dependencies struct {
	Config  *config.Config
	Store   repository.TokenStore
	View    ui.View
	Logger  *zap.Logger
	Metrics *observability.Metrics
	// Hash is the fragment the client starts on.
	Hash domain.Hash
	// Options are passed to the API client.
	Options []apiclient.Option
}

// New wires the client. Call Run to start the event loop and Start to show
// the first page.
func New(deps Dependencies) (*App, error) {
	if deps.Config == nil || deps.Store == nil || deps.View == nil {
		return nil, errors.New("app: config, store and view are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := deps.Config

	a := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: deps.Metrics,
		Queue:   events.NewQueue(logger.Named("events")),
		Store:   deps.Store,
		Nav:     ui.NewLocation(deps.Hash),
		View:    deps.View,
	}

	opts := append([]apiclient.Option{
		apiclient.WithTokenSource(a.token),
		apiclient.WithMetrics(deps.Metrics),
		apiclient.WithLogger(logger.Named("api")),
	}, deps.Options...)
	a.API = apiclient.New(cfg.API, opts...)

	presenter := &lazyPages{}
	a.Router = router.New(router.Dependencies{
		Store:   a.Store,
		Decoder: auth.NewUnverifiedDecoder(),
		Nav:     a.Nav,
		Chrome:  a.View,
		Pages:   presenter,
		Logger:  logger.Named("router"),
		Metrics: deps.Metrics,
	})
	loader := pages.NewLoader(pages.NewSource(cfg.Pages, cfg.API.RequestTimeout()), a.API, a.Router, logger.Named("pages"))
	presenter.target = pages.NewPresenter(loader, a.Queue, a.View, logger.Named("pages"), deps.Metrics)

	a.Notifier = service.NewNotificationService(a.Queue, a.View, logger.Named("notify"), cfg.Notification)
	a.Session = service.NewSessionService(service.SessionDependencies{
		Queue:    a.Queue,
		API:      a.API,
		Store:    a.Store,
		Nav:      a.Nav,
		Router:   a.Router,
		Notifier: a.Notifier,
		Logger:   logger.Named("session"),
		Metrics:  deps.Metrics,
	})
	a.Dashboard = service.NewDashboardService(service.DashboardDependencies{
		Queue:     a.Queue,
		API:       a.API,
		Claims:    a.Router,
		Epochs:    a.Session,
		Router:    a.Router,
		Notifier:  a.Notifier,
		Logger:    logger.Named("dashboard"),
		Metrics:   deps.Metrics,
		Downloads: cfg.Downloads,
	})

	worker.StartNotificationWorker(a.Notifier)
	worker.StartHandlers(a.Session, a.Dashboard)
	a.Queue.Subscribe(events.EventPageLoad, a.handleRoute)
	a.Queue.Subscribe(events.EventRouteRequested, a.handleRoute)
	a.Queue.Subscribe(events.EventHashChanged, a.handleHashChanged)

	return a, nil
}

// Run delivers events until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.Queue.Run(ctx)
}

// Start shows the first page.
func (a *App) Start(ctx context.Context) error {
	return a.Queue.Publish(ctx, events.New(events.EventPageLoad, nil))
}

// Navigate changes the fragment and routes again.
func (a *App) Navigate(ctx context.Context, hash domain.Hash) error {
	return a.Queue.Publish(ctx, events.New(events.EventHashChanged, events.HashChangedPayload{Hash: hash}))
}

// Refresh routes again without changing anything.
func (a *App) Refresh(ctx context.Context) error {
	return a.Queue.Publish(ctx, events.New(events.EventRouteRequested, nil))
}

// WaitIdle blocks until every queued event and request has been handled.
func (a *App) WaitIdle(ctx context.Context) error {
	return a.Queue.WaitIdle(ctx)
}

// Current returns the identity of the stored session.
func (a *App) Current(ctx context.Context) (*domain.Claims, error) {
	return a.Router.Current(ctx)
}

func (a *App) handleRoute(ctx context.Context, _ events.Event) error {
	a.Router.Route(ctx)
	return nil
}

func (a *App) handleHashChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.HashChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	a.Nav.SetHash(payload.Hash)
	a.Router.Route(ctx)
	return nil
}

func (a *App) token(ctx context.Context) (string, bool) {
	token, ok, err := a.Store.Get(ctx)
	if err != nil {
		a.logger.Warn("failed to read session token", zap.Error(err))
		return "", false
	}
	return token, ok
}

// lazyPages breaks the cycle between the router, which shows pages, and the
// loader, which reads claims through the router.
type lazyPages struct {
	target *pages.Presenter
}

func (l *lazyPages) Show(ctx context.Context, page domain.Page) {
	l.target.Show(ctx, page)
}
