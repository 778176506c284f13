// Package shutdown forwards process termination signals to a runtime's
// dispose sequence. Each Hub makes its own signal.Notify registration on
// its own channel; there is no process-wide dispatcher shared between Hubs,
// so with several Hubs armed, each one receives the signal and runs its
// own callback.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Hub owns a single shutdown callback and arms/disarms the underlying
// signal notification around it.
type Hub struct {
	mu       sync.Mutex
	ch       chan os.Signal
	stopOnce sync.Once
	done     chan struct{}
}

// NewHub registers for SIGINT/SIGTERM and invokes onSignal exactly once
// when either arrives. Calling Stop before a signal arrives cancels the
// registration without invoking onSignal.
func NewHub(onSignal func(os.Signal)) *Hub {
	h := &Hub{
		ch:   make(chan os.Signal, 1),
		done: make(chan struct{}),
	}
	signal.Notify(h.ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-h.ch:
			onSignal(sig)
		case <-h.done:
		}
	}()
	return h
}

// Stop disarms the registration. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.ch)
		close(h.done)
	})
}
