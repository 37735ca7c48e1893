package session

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/boothjack/internal/game"
)

// PacedPresenter spaces card deliveries out so a human can follow them.
type PacedPresenter struct {
	clock  quartz.Clock
	delay  time.Duration
	onCard func(game.Delivery)
}

// NewPacedPresenter calls onCard for every card, then waits delay.
func NewPacedPresenter(clock quartz.Clock, delay time.Duration, onCard func(game.Delivery)) *PacedPresenter {
	return &PacedPresenter{clock: clock, delay: delay, onCard: onCard}
}

// DeliverCard returns early with the context error if ctx ends first.
func (p *PacedPresenter) DeliverCard(ctx context.Context, d game.Delivery) error {
	if p.onCard != nil {
		p.onCard(d)
	}
	if p.delay <= 0 {
		return ctx.Err()
	}

	timer := p.clock.NewTimer(p.delay, "session", "deal")
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
