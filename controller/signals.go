package controller

import (
	"sync/atomic"

	"github.com/rkost/transmission/common"
)

// SignalPolicy implements termination-signal escalation: the first
// SIGINT or SIGTERM requests a graceful quit, a second one while the
// first is still winding down exits immediately.
type SignalPolicy struct {
	queue     TaskQueue
	sequencer *Sequencer
	count     atomic.Int32
}

func NewSignalPolicy(queue TaskQueue, sequencer *Sequencer) *SignalPolicy {
	return &SignalPolicy{queue: queue, sequencer: sequencer}
}

// Handle processes one delivered signal. Safe to call from the signal
// watcher goroutine; the graceful path is posted to the UI queue, the
// escalation path exits without waiting for it.
func (p *SignalPolicy) Handle(name string) {
	switch p.count.Add(1) {
	case 1:
		common.LogInfo("Received %s, shutting down", name)
		p.queue.Post(p.sequencer.Begin)
	default:
		common.LogWarn("Received second %s, exiting now", name)
		p.sequencer.QuitNow()
	}
}
