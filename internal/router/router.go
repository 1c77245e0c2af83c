package router

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/smart-hospital-client/internal/auth"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
	"github.com/spec-kit/smart-hospital-client/internal/repository"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// Navigation exposes the current fragment.
type Navigation interface {
	Hash() domain.Hash
	SetHash(hash domain.Hash)
}

// Chrome toggles the signed-in decorations around a page.
type Chrome interface {
	SetLoggedIn(loggedIn bool)
}

// PageLoader displays a page. Failures are its own concern and never feed
// back into routing.
type PageLoader interface {
	Show(ctx context.Context, page domain.Page)
}

// Decision is the outcome of one routing pass.
type Decision struct {
	State       domain.SessionState
	Page        domain.Page
	Chrome      bool
	InvalidRole bool
	// Err explains an unauthenticated or invalid-role outcome.
	Err error
}

// Decide maps decoded claims and the current fragment to a page. It has no
// side effects; an InvalidRole decision carries no page and must be resolved
// by clearing the session.
func Decide(claims *domain.Claims, decodeErr error, hash domain.Hash) Decision {
	if decodeErr != nil || claims == nil {
		page := domain.PageLogin
		if hash == domain.HashRegister {
			page = domain.PageRegister
		}
		return Decision{
			State: domain.SessionState{Status: domain.SessionUnauthenticated, Hash: hash},
			Page:  page,
			Err:   decodeErr,
		}
	}

	state := domain.SessionState{
		Status: domain.SessionAuthenticated,
		Hash:   hash,
		Role:   claims.Role,
		UserID: claims.UserID,
	}
	page, ok := claims.Role.Page()
	if !ok {
		return Decision{State: state, InvalidRole: true, Err: apperrors.NewInvalidRole(string(claims.Role))}
	}
	return Decision{State: state, Page: page, Chrome: true}
}

// Router is the single entry point run on start, on fragment changes and
// after every credential change.
type Router struct {
	store   repository.TokenStore
	decoder auth.ClaimsDecoder
	nav     Navigation
	chrome  Chrome
	pages   PageLoader
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Dependencies bundles what the router reads and drives.
type Dependencies struct {
	Store   repository.TokenStore
	Decoder auth.ClaimsDecoder
	Nav     Navigation
	Chrome  Chrome
	Pages   PageLoader
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// New constructs a router.
func New(deps Dependencies) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		store:   deps.Store,
		decoder: deps.Decoder,
		nav:     deps.Nav,
		chrome:  deps.Chrome,
		pages:   deps.Pages,
		logger:  logger,
		metrics: deps.Metrics,
	}
}

// Route reads the stored token, decides the page and shows it. A token whose
// role has no page is cleared and the decision is taken once more; that
// second pass cannot see the same token, so routing never loops.
func (r *Router) Route(ctx context.Context) Decision {
	d := r.decide(ctx)

	if d.InvalidRole {
		r.logger.Warn("session role not recognized; signing out",
			zap.String("role", string(d.State.Role)),
			zap.String("user_id", d.State.UserID))
		r.metrics.RecordForcedLogout()
		r.nav.SetHash(domain.HashLogin)

		if err := r.store.Clear(ctx); err != nil {
			r.logger.Error("failed to clear session token", zap.Error(err))
			d = Decide(nil, err, domain.HashLogin)
		} else {
			d = r.decide(ctx)
		}
		if d.InvalidRole {
			// another writer stored a bad token between clear and read
			d = Decide(nil, d.Err, domain.HashLogin)
		}
	}

	r.chrome.SetLoggedIn(d.Chrome)
	r.metrics.RecordRoute(string(d.Page), string(d.State.Status))
	r.logger.Debug("route",
		zap.String("page", string(d.Page)),
		zap.String("status", string(d.State.Status)),
		zap.String("hash", string(d.State.Hash)))
	r.pages.Show(ctx, d.Page)
	return d
}

// Current decodes the stored token without routing. It is used by actions
// that need the identity at the moment they run.
func (r *Router) Current(ctx context.Context) (*domain.Claims, error) {
	token, ok, err := r.store.Get(ctx)
	if err != nil {
		return nil, apperrors.NewDecodeError("token unavailable", err)
	}
	if !ok {
		token = ""
	}
	return r.decoder.Decode(token)
}

func (r *Router) decide(ctx context.Context) Decision {
	token, ok, err := r.store.Get(ctx)
	if err != nil {
		r.logger.Warn("failed to read session token; treating as signed out", zap.Error(err))
		return Decide(nil, apperrors.NewDecodeError("token unavailable", err), r.nav.Hash())
	}
	if !ok {
		token = ""
	}

	claims, decodeErr := r.decoder.Decode(token)
	if decodeErr != nil && ok {
		r.logger.Info("discarding undecodable session token", zap.Error(decodeErr))
		if err := r.store.Clear(ctx); err != nil {
			r.logger.Error("failed to clear session token", zap.Error(err))
		}
	}
	return Decide(claims, decodeErr, r.nav.Hash())
}
