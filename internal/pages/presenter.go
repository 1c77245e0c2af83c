package pages

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/events"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
	"github.com/spec-kit/smart-hospital-client/internal/ui"
)

// Presenter loads pages off the event loop and applies the most recent one
// to the view. A render that finishes after a newer one was requested is
// dropped.
type Presenter struct {
	loader  *Loader
	queue   events.Runner
	view    ui.View
	logger  *zap.Logger
	metrics *observability.Metrics

	seq atomic.Uint64
}

// NewPresenter builds a presenter and subscribes it to page_loaded.
func NewPresenter(loader *Loader, queue events.Runner, view ui.View, logger *zap.Logger, metrics *observability.Metrics) *Presenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Presenter{loader: loader, queue: queue, view: view, logger: logger, metrics: metrics}
	queue.Subscribe(events.EventPageLoaded, p.handleLoaded)
	return p
}

// Show requests page. It returns immediately.
func (p *Presenter) Show(ctx context.Context, page domain.Page) {
	seq := p.seq.Add(1)
	p.queue.Go(ctx, func(ctx context.Context) {
		body, err := p.loader.Load(ctx, page)
		payload := events.PageLoadedPayload{Seq: seq, Page: page, Body: body, Err: err}
		if pubErr := p.queue.Publish(ctx, events.New(events.EventPageLoaded, payload)); pubErr != nil {
			p.logger.Debug("page load finished after shutdown", zap.String("page", string(page)))
		}
	})
}

func (p *Presenter) handleLoaded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PageLoadedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	if payload.Seq != p.seq.Load() {
		p.metrics.RecordStale("page")
		p.logger.Debug("dropping superseded page render",
			zap.String("page", string(payload.Page)),
			zap.Uint64("seq", payload.Seq))
		return nil
	}
	if payload.Err != nil {
		p.logger.Warn("page load failed", zap.String("page", string(payload.Page)), zap.Error(payload.Err))
		p.view.RenderError(payload.Page, payload.Err)
		return nil
	}
	p.view.Render(payload.Page, payload.Body)
	return nil
}
