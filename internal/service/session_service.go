package service

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/smart-hospital-client/internal/api/dto"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/events"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
	"github.com/spec-kit/smart-hospital-client/internal/repository"
	"github.com/spec-kit/smart-hospital-client/internal/router"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// User facing outcomes of session actions.
const (
	MsgLoginSuccessful    = "Login successful!"
	MsgRegisterSuccessful = "Registration successful! Please log in."
	MsgLoggedOut          = "You have been logged out."
)

// AuthAPI is the part of the remote API that authenticates.
type AuthAPI interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)
}

// Router re-evaluates which page to show.
type Router interface {
	Route(ctx context.Context) router.Decision
}

// SessionService runs login, registration and logout. Its exported methods
// only enqueue work; every state change happens in handlers on the event
// loop.
type SessionService struct {
	queue    events.Runner
	api      AuthAPI
	store    repository.TokenStore
	nav      router.Navigation
	router   Router
	notifier *NotificationService
	logger   *zap.Logger
	metrics  *observability.Metrics

	// epoch advances on every session mutation. Responses started in an
	// older epoch are dropped.
	epoch atomic.Uint64
}

// SessionDependencies bundles collaborators.
type SessionDependencies struct {
	Queue    events.Runner
	API      AuthAPI
	Store    repository.TokenStore
	Nav      router.Navigation
	Router   Router
	Notifier *NotificationService
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// NewSessionService builds the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		queue:    deps.Queue,
		api:      deps.API,
		store:    deps.Store,
		nav:      deps.Nav,
		router:   deps.Router,
		notifier: deps.Notifier,
		logger:   logger,
		metrics:  deps.Metrics,
	}
}

// RegisterHandlers subscribes to events.
func (s *SessionService) RegisterHandlers() {
	s.queue.Subscribe(events.EventLoginSubmitted, s.handleLoginSubmitted)
	s.queue.Subscribe(events.EventLoginCompleted, s.handleLoginCompleted)
	s.queue.Subscribe(events.EventRegisterSubmitted, s.handleRegisterSubmitted)
	s.queue.Subscribe(events.EventRegisterCompleted, s.handleRegisterCompleted)
	s.queue.Subscribe(events.EventLogoutRequested, s.handleLogout)
}

// Epoch returns the current session epoch.
func (s *SessionService) Epoch() uint64 {
	return s.epoch.Load()
}

// Login submits credentials.
func (s *SessionService) Login(ctx context.Context, email, password string) error {
	req := dto.LoginRequest{Email: email, Password: password}
	return s.queue.Publish(ctx, events.New(events.EventLoginSubmitted, events.LoginSubmittedPayload{Request: req}))
}

// Register submits a new account.
func (s *SessionService) Register(ctx context.Context, req dto.RegisterRequest) error {
	return s.queue.Publish(ctx, events.New(events.EventRegisterSubmitted, events.RegisterSubmittedPayload{Request: req}))
}

// Logout ends the session. Calling it while signed out is harmless.
func (s *SessionService) Logout(ctx context.Context) error {
	return s.queue.Publish(ctx, events.New(events.EventLogoutRequested, nil))
}

func (s *SessionService) handleLoginSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.LoginSubmittedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	epoch := s.epoch.Add(1)

	// a stale identity must not survive a new login attempt
	_, had, err := s.store.Get(ctx)
	if err != nil {
		s.logger.Warn("failed to read session token", zap.Error(err))
	}
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("failed to clear session token", zap.Error(err))
	}
	if had {
		s.router.Route(ctx)
	}

	req := payload.Request
	s.queue.Go(ctx, func(ctx context.Context) {
		resp, err := s.api.Login(ctx, req)
		done := events.LoginCompletedPayload{Epoch: epoch, Response: resp, Err: err}
		if pubErr := s.queue.Publish(ctx, events.New(events.EventLoginCompleted, done)); pubErr != nil {
			s.logger.Debug("login finished after shutdown", zap.Error(pubErr))
		}
	})
	return nil
}

func (s *SessionService) handleLoginCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.LoginCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	if s.stale(payload.Epoch, "login") {
		return nil
	}
	if payload.Err != nil {
		s.logger.Warn("login request failed", zap.Error(payload.Err))
		s.metrics.RecordAction("login", "error")
		s.notifier.Error(payload.Err)
		return nil
	}

	resp := payload.Response
	if resp == nil {
		resp = &dto.LoginResponse{}
	}
	if !isSuccess(resp.StatusCode) || !resp.Success || resp.Token == "" {
		s.metrics.RecordAction("login", "rejected")
		s.notifier.Error(apperrors.NewApplicationError(resp.Message, resp.StatusCode))
		return nil
	}

	if err := s.store.Set(ctx, resp.Token); err != nil {
		s.logger.Error("failed to store session token", zap.Error(err))
		s.metrics.RecordAction("login", "error")
		s.notifier.Error(fmt.Errorf("could not save session: %w", err))
		return nil
	}
	s.metrics.RecordAction("login", "ok")
	s.notifier.Success(MsgLoginSuccessful)
	s.router.Route(ctx)
	return nil
}

func (s *SessionService) handleRegisterSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RegisterSubmittedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	epoch := s.epoch.Load()
	req := payload.Request
	s.queue.Go(ctx, func(ctx context.Context) {
		resp, err := s.api.Register(ctx, req)
		done := events.RegisterCompletedPayload{Epoch: epoch, Response: resp, Err: err}
		if pubErr := s.queue.Publish(ctx, events.New(events.EventRegisterCompleted, done)); pubErr != nil {
			s.logger.Debug("registration finished after shutdown", zap.Error(pubErr))
		}
	})
	return nil
}

func (s *SessionService) handleRegisterCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RegisterCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	if s.stale(payload.Epoch, "register") {
		return nil
	}
	if payload.Err != nil {
		s.logger.Warn("registration request failed", zap.Error(payload.Err))
		s.metrics.RecordAction("register", "error")
		s.notifier.Error(payload.Err)
		return nil
	}

	resp := payload.Response
	if resp == nil {
		resp = &dto.RegisterResponse{}
	}
	if resp.StatusCode != http.StatusCreated || !resp.Success {
		s.metrics.RecordAction("register", "rejected")
		s.notifier.Error(apperrors.NewApplicationError(resp.Message, resp.StatusCode))
		return nil
	}

	s.metrics.RecordAction("register", "ok")
	s.notifier.Success(MsgRegisterSuccessful)
	s.nav.SetHash(domain.HashLogin)
	s.router.Route(ctx)
	return nil
}

func (s *SessionService) handleLogout(ctx context.Context, _ events.Event) error {
	s.epoch.Add(1)
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("failed to clear session token", zap.Error(err))
	}
	s.nav.SetHash(domain.HashLogin)
	s.metrics.RecordAction("logout", "ok")
	s.notifier.Success(MsgLoggedOut)
	s.router.Route(ctx)
	return nil
}

func (s *SessionService) stale(epoch uint64, action string) bool {
	if epoch == s.epoch.Load() {
		return false
	}
	s.metrics.RecordStale(action)
	s.logger.Info("dropping response from an earlier session",
		zap.String("action", action),
		zap.Uint64("epoch", epoch),
		zap.Uint64("current_epoch", s.epoch.Load()))
	return true
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
