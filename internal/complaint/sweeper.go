package complaint

import (
	"context"
	"time"

	"flatgripe/backend/internal/config"

	"github.com/rs/zerolog"
)

// Archiver is what the Sweeper drives; *Service implements it.
type Archiver interface {
	ArchiveStale(ctx context.Context) (int, error)
}

// Sweeper runs the archival sweep on a fixed interval.
type Sweeper struct {
	Archiver Archiver
	Interval time.Duration
	Log      zerolog.Logger
}

func NewSweeper(a Archiver, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		Archiver: a,
		Interval: interval,
		Log:      log.With().Str("component", "sweeper").Logger(),
	}
}

// Run sweeps once immediately, then every Interval, until ctx is done.
// A non-positive Interval falls back to config.DefaultArchiveInterval.
func (sw *Sweeper) Run(ctx context.Context) {
	interval := sw.Interval
	if interval <= 0 {
		sw.Log.Warn().Dur("interval", interval).Msg("invalid sweep interval, using default")
		interval = config.DefaultArchiveInterval
	}
	sw.Log.Info().Dur("interval", interval).Msg("archive sweeper started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		archived, err := sw.Archiver.ArchiveStale(ctx)
		if err != nil {
			sw.Log.Error().Err(err).Msg("archive sweep failed")
		} else {
			sw.Log.Debug().Int("archived", archived).Msg("archive sweep finished")
		}

		select {
		case <-ctx.Done():
			sw.Log.Info().Msg("archive sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}
