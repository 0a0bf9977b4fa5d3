package jobs

import (
	"context"

	"github.com/rs/zerolog"
)

// Sweeper removes expired entries and reports how many it removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// SessionSweepTask expires idle sessions on every tick.
func SessionSweepTask(s Sweeper, log zerolog.Logger) Task {
	return TaskFunc(func(ctx context.Context) error {
		n, err := s.Sweep(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Debug().Int("removed", n).Msg("session sweep complete")
		}
		return nil
	})
}
