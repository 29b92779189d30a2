package app

import (
	"sync"
)

// Scheduler defers work to a later turn so state changes (such as the busy
// indicator) reach the screen before a slow computation starts.
type Scheduler interface {
	Defer(fn func())
}

// QueueScheduler runs deferred functions one at a time on a worker goroutine, in
// the order they were deferred.
type QueueScheduler struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closed  bool
	stopped chan struct{}
}

// NewQueueScheduler starts the worker.
func NewQueueScheduler() *QueueScheduler {
	q := &QueueScheduler{stopped: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

// Defer queues fn. Calls after Close are dropped.
func (q *QueueScheduler) Defer(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.queue = append(q.queue, fn)
	q.cond.Signal()
}

// Close finishes queued work and stops the worker.
func (q *QueueScheduler) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
	<-q.stopped
}

func (q *QueueScheduler) loop() {
	defer close(q.stopped)
	for {
		q.mu.Lock()
		for len(q.queue) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.queue) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()

		fn()
	}
}

// ImmediateScheduler runs deferred functions synchronously. The headless command
// uses it: there is nothing to repaint.
type ImmediateScheduler struct{}

func (ImmediateScheduler) Defer(fn func()) { fn() }

// ManualScheduler holds deferred functions until Flush. Tests use it to observe the
// state between the busy flag going up and the computation running.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

func (m *ManualScheduler) Defer(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// Pending returns the number of queued functions.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Flush runs queued functions, including any they queue, until none remain.
func (m *ManualScheduler) Flush() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		fn()
	}
}
