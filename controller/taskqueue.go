package controller

import (
	"sync"
	"sync/atomic"
)

// TaskQueue is the cooperative scheduler the core components post to.
// Tasks run one at a time, in enqueue order, on the UI goroutine.
type TaskQueue interface {
	Post(task func())
}

// ClosingFlag is a one-way latch raised when shutdown begins. Recurring
// timers and debounce requests check it to stop rescheduling.
type ClosingFlag struct {
	v atomic.Bool
}

// Set raises the flag. The transition is one-way.
func (f *ClosingFlag) Set() {
	f.v.Store(true)
}

// IsSet reports whether shutdown has begun.
func (f *ClosingFlag) IsSet() bool {
	return f.v.Load()
}

// ManualQueue is a TaskQueue whose tasks run only when RunPending is
// called. It exists for tests and for the CLI, where no toolkit main
// loop is available to drain posted work.
type ManualQueue struct {
	mu    sync.Mutex
	tasks []func()
}

// Post appends a task to the queue.
func (q *ManualQueue) Post(task func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
}

// RunPending runs every task queued so far, in order, and returns how
// many ran. Tasks posted while draining run in the same call.
func (q *ManualQueue) RunPending() int {
	ran := 0
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return ran
		}
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()
		ran++
	}
}

// Len returns the number of queued tasks.
func (q *ManualQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
