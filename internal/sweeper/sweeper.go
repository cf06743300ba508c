// Package sweeper runs the periodic unfinancial sweep: members whose
// expiry date has passed are flipped to unfinancial without anyone
// having to press the button in the reports screen.
package sweeper

import (
	"context"
	"log"
	"time"
)

// Roster is the slice of the service the sweeper needs.
type Roster interface {
	MarkExpiredUnfinancial(ctx context.Context) (int, error)
}

type Sweeper struct {
	roster   Roster
	interval time.Duration
}

func New(roster Roster, interval time.Duration) *Sweeper {
	return &Sweeper{roster: roster, interval: interval}
}

// Run sweeps immediately, then on every tick until the context ends.
// Sweep failures are logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.roster.MarkExpiredUnfinancial(ctx)
	if err != nil {
		log.Printf("sweep failed error=%v", err)
		return
	}
	if n > 0 {
		log.Printf("sweep complete members_marked_unfinancial=%d", n)
	}
}
