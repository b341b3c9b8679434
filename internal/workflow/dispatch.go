package workflow

import (
	"context"
	"sync"
)

// queueSize bounds each user's inbox; Dispatch blocks when a single user
// floods faster than their events can be handled.
const queueSize = 16

type inbound struct {
	userID int64
	chatID int64
	event  Event
}

// Dispatcher fans inbound events out to one worker goroutine per user, so
// a user's events are processed strictly in arrival order while different
// users proceed independently. A slow external call therefore suspends
// only the user waiting on it.
type Dispatcher struct {
	ctx    context.Context
	engine *Engine

	mu      sync.Mutex
	queues  map[int64]chan inbound
	closed  bool
	pending sync.WaitGroup // in-flight Dispatch calls
	workers sync.WaitGroup
}

// NewDispatcher creates a dispatcher handling events with ctx.
func NewDispatcher(ctx context.Context, engine *Engine) *Dispatcher {
	return &Dispatcher{
		ctx:    ctx,
		engine: engine,
		queues: make(map[int64]chan inbound),
	}
}

// Dispatch enqueues one event for userID. The first event from a user
// spawns that user's worker. Events arriving after Close are dropped.
func (d *Dispatcher) Dispatch(userID, chatID int64, ev Event) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	q, ok := d.queues[userID]
	if !ok {
		q = make(chan inbound, queueSize)
		d.queues[userID] = q
		d.workers.Add(1)
		go d.worker(q)
	}
	d.pending.Add(1)
	d.mu.Unlock()
	defer d.pending.Done()

	select {
	case q <- inbound{userID: userID, chatID: chatID, event: ev}:
	case <-d.ctx.Done():
	}
}

func (d *Dispatcher) worker(q chan inbound) {
	defer d.workers.Done()
	for in := range q {
		d.engine.Handle(d.ctx, in.userID, in.chatID, in.event)
	}
}

// Close stops accepting events, then waits for every queued event to be
// handled before returning.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	// No new sends can start now; wait out the in-flight ones before
	// closing the queues.
	d.pending.Wait()

	d.mu.Lock()
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	d.workers.Wait()
}
