package controller

// RefreshCoordinator batches display refresh requests. Many parts of
// the application notice that torrent state may have changed; all of
// them call RequestSoon, and at most one refresh task is in flight on
// the queue at any moment.
type RefreshCoordinator struct {
	queue   TaskQueue
	closing *ClosingFlag
	refresh func()

	pending bool
}

// NewRefreshCoordinator builds a coordinator that posts to queue and
// invokes refresh on the UI goroutine. The refresh callback updates the
// torrent display and resyncs action sensitivity.
func NewRefreshCoordinator(queue TaskQueue, closing *ClosingFlag, refresh func()) *RefreshCoordinator {
	return &RefreshCoordinator{
		queue:   queue,
		closing: closing,
		refresh: refresh,
	}
}

// RequestSoon schedules a refresh on the queue unless one is already
// scheduled. Safe to call many times per frame; the work coalesces.
// Must be called on the UI goroutine; other goroutines post a task
// that calls it.
func (c *RefreshCoordinator) RequestSoon() {
	if c.pending {
		return
	}
	c.pending = true
	c.queue.Post(func() {
		c.pending = false
		if c.closing.IsSet() {
			return
		}
		c.refresh()
	})
}

// RequestNow refreshes synchronously, bypassing the queue. A refresh
// already scheduled by RequestSoon still runs; it is cheap and the
// display converges either way.
func (c *RefreshCoordinator) RequestNow() {
	if c.closing.IsSet() {
		return
	}
	c.refresh()
}

// Tick is wired to the periodic timer. It refreshes directly and
// reports whether the timer should rearm.
func (c *RefreshCoordinator) Tick() bool {
	if c.closing.IsSet() {
		return false
	}
	c.refresh()
	return true
}

// Pending reports whether a coalesced refresh is waiting on the queue.
func (c *RefreshCoordinator) Pending() bool {
	return c.pending
}
