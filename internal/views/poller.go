package views

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Poller runs tick on the loop every interval. Start and Stop are called from
// the loop; at most one ticker is alive per Poller.
type Poller struct {
	clock    clockwork.Clock
	interval time.Duration
	post     Poster

	cancel context.CancelFunc
	ticker clockwork.Ticker
}

func NewPoller(clock clockwork.Clock, interval time.Duration, post Poster) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{clock: clock, interval: interval, post: post}
}

// Start cancels any previous loop, then ticks until Stop.
func (p *Poller) Start(tick func()) {
	p.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	t := p.clock.NewTicker(p.interval)
	p.cancel, p.ticker = cancel, t

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.Chan():
				ok := p.post(func() {
					if ctx.Err() == nil {
						tick()
					}
				})
				if !ok {
					return
				}
			}
		}
	}()
}

func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.ticker.Stop()
	p.cancel, p.ticker = nil, nil
}

func (p *Poller) Running() bool { return p.cancel != nil }
