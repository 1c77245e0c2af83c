package events

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrQueueClosed is returned by Publish after the queue stopped running.
var ErrQueueClosed = errors.New("event queue closed")

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// Runner is a Dispatcher that can also run blocking work off the loop.
type Runner interface {
	Dispatcher
	Go(ctx context.Context, fn func(ctx context.Context))
}

// Queue is a Dispatcher that delivers events one at a time, in publish order,
// on the goroutine running Run. Handlers never run concurrently with each
// other, so state touched only from handlers needs no locking.
type Queue struct {
	logger *zap.Logger

	mu        sync.Mutex
	listeners map[EventType][]EventHandler
	pending   []Event
	wake      chan struct{}
	closed    bool

	// inflight counts queued events, the event being handled and work started
	// with Go. idle is closed whenever inflight drops to zero.
	inflight int
	idle     chan struct{}
}

// NewQueue creates a queue. Call Run to start delivering events.
func NewQueue(logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	idle := make(chan struct{})
	close(idle)
	return &Queue{
		logger:    logger,
		listeners: make(map[EventType][]EventHandler),
		wake:      make(chan struct{}, 1),
		idle:      idle,
	}
}

// Subscribe registers a handler for the given event type.
func (q *Queue) Subscribe(eventType EventType, handler EventHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners[eventType] = append(q.listeners[eventType], handler)
}

// Publish appends the event to the queue and returns without waiting for it
// to be handled. It is safe to call from handlers and from other goroutines.
func (q *Queue) Publish(_ context.Context, event Event) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.pending = append(q.pending, event)
	q.trackLocked()
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Go runs fn on its own goroutine and keeps the queue busy until it returns.
// Blocking work such as network calls goes here; fn reports back by publishing.
func (q *Queue) Go(ctx context.Context, fn func(ctx context.Context)) {
	q.mu.Lock()
	q.trackLocked()
	q.mu.Unlock()

	go func() {
		defer q.done()
		fn(ctx)
	}()
}

// Run delivers events until ctx is cancelled. Events still queued at that
// point are dropped.
func (q *Queue) Run(ctx context.Context) error {
	defer q.close()

	for {
		event, ok := q.next()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-q.wake:
				continue
			}
		}

		q.dispatch(ctx, event)
		q.done()

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// WaitIdle blocks until nothing is queued, being handled, or running via Go.
func (q *Queue) WaitIdle(ctx context.Context) error {
	for {
		q.mu.Lock()
		idle := q.idle
		busy := q.inflight > 0
		q.mu.Unlock()

		if !busy {
			return nil
		}
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *Queue) next() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Event{}, false
	}
	event := q.pending[0]
	q.pending[0] = Event{}
	q.pending = q.pending[1:]
	return event, true
}

func (q *Queue) dispatch(ctx context.Context, event Event) {
	q.mu.Lock()
	handlers := append([]EventHandler{}, q.listeners[event.Type]...)
	q.mu.Unlock()

	for _, handler := range handlers {
		// continue processing other handlers despite errors
		if err := handler(ctx, event); err != nil {
			q.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}
}

func (q *Queue) trackLocked() {
	if q.inflight == 0 {
		q.idle = make(chan struct{})
	}
	q.inflight++
}

func (q *Queue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.inflight--
	if q.inflight == 0 {
		close(q.idle)
	}
}

func (q *Queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	dropped := len(q.pending)
	q.pending = nil
	q.inflight -= dropped
	if dropped > 0 && q.inflight == 0 {
		close(q.idle)
	}
}
