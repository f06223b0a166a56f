package tracking

import (
	"sync"
	"time"
)

// SourceSimulator marks events fabricated by the local fallback.
const SourceSimulator = "simulator"

// Simulator is the local fallback progression: while the push channel
// is silent or unavailable it advances the order one rank per tick.
// Whenever the push channel is ahead, the timeline's rank rules drop
// the simulator's stale tick, so no cross-source coordination is
// needed. It is a courtesy policy, not an authority; disable it by not
// arming it.
type Simulator struct {
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

func NewSimulator(interval time.Duration) *Simulator {
	return &Simulator{
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Run ticks until the progression reaches a terminal state or Stop is
// called. current reads the head the next tick builds on; emit hands
// the fabricated event to the session's apply loop.
func (sim *Simulator) Run(current func() (Status, bool), emit func(StatusEvent)) {
	ticker := time.NewTicker(sim.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sim.stop:
			return
		case <-ticker.C:
			next := StatusPending
			if cur, ok := current(); ok {
				n, ok := cur.Next()
				if !ok {
					return
				}
				next = n
			}

			emit(StatusEvent{
				Status:    next,
				Timestamp: time.Now(),
				SourceID:  SourceSimulator,
			})
		}
	}
}

func (sim *Simulator) Stop() {
	sim.once.Do(func() { close(sim.stop) })
}
