package tasks

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/The-Noona-Project/Noona-Vault/internal/metrics"
)

// DirectoryProbeTask is the name of the directory probe task.
const DirectoryProbeTask = "directory-probe"

type Pinger interface {
	Ping(ctx context.Context) error
}

// DirectoryProbe pings the key directory and exports the result as the
// directory_up gauge. Changes of reachability are logged once.
func DirectoryProbe(p Pinger) TaskFunc {
	var down atomic.Bool
	return func(ctx context.Context, logger zerolog.Logger) error {
		err := p.Ping(ctx)
		if err != nil {
			metrics.DirectoryUp.Set(0)
			if !down.Swap(true) {
				logger.Error().Err(err).Msg("key directory became unreachable")
			}
			return err
		}
		metrics.DirectoryUp.Set(1)
		if down.Swap(false) {
			logger.Info().Msg("key directory is reachable again")
		}
		return nil
	}
}
