package mq

import (
	"context"
	"log"
	"sync"
	"time"
)

// JSONPublisher delivers one event.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Observer is told about every delivery attempt and every dropped event.
type Observer interface {
	EventPublished(key string, err error)
	EventDropped()
}

type event struct {
	key     string
	payload any
}

// Outbox decouples callers from the broker. Publish never blocks: events go
// into a bounded buffer drained by Run, and a full buffer drops the event.
// Events published after Run has returned are dropped too.
type Outbox struct {
	sink     JSONPublisher
	observer Observer
	queue    chan event
	timeout  time.Duration

	mu      sync.RWMutex
	stopped bool
}

// NewOutbox returns an outbox buffering up to size events for sink.
// observer may be nil.
func NewOutbox(sink JSONPublisher, size int, observer Observer) *Outbox {
	if size <= 0 {
		size = 1
	}
	return &Outbox{
		sink:     sink,
		observer: observer,
		queue:    make(chan event, size),
		timeout:  5 * time.Second,
	}
}

// Publish enqueues an event.
func (o *Outbox) Publish(key string, payload any) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		o.drop("outbox stopped", key)
		return
	}
	select {
	case o.queue <- event{key: key, payload: payload}:
	default:
		o.drop("buffer full", key)
	}
}

func (o *Outbox) drop(reason, key string) {
	log.Printf("[outbox] %s, dropping %s", reason, key)
	if o.observer != nil {
		o.observer.EventDropped()
	}
}

// Run delivers events until ctx is cancelled, then stops accepting events
// and flushes whatever is still buffered.
func (o *Outbox) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			o.mu.Lock()
			o.stopped = true
			o.mu.Unlock()
			o.flush()
			return
		case ev := <-o.queue:
			o.deliver(ctx, ev)
		}
	}
}

func (o *Outbox) flush() {
	for {
		select {
		case ev := <-o.queue:
			o.deliver(context.Background(), ev)
		default:
			return
		}
	}
}

func (o *Outbox) deliver(ctx context.Context, ev event) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	err := o.sink.PublishJSON(ctx, ev.key, ev.payload)
	if err != nil {
		log.Printf("[outbox] publish %s failed: %v", ev.key, err)
	}
	if o.observer != nil {
		o.observer.EventPublished(ev.key, err)
	}
}
