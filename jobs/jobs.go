package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const runTimeout = 5 * time.Minute

// Expirer cancels pending appointments whose day has passed.
type Expirer interface {
	ExpireStalePending(ctx context.Context) (int, error)
}

/*
* Register the expiry run on the given cron spec
* The caller starts the scheduler and stops it on shutdown
 */
func NewScheduler(spec string, expirer Expirer) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		log.Info().Msg("running stale pending appointment expiry")
		RunExpiry(context.Background(), expirer)
	}); err != nil {
		log.Error().Err(err).Str("spec", spec).Msg("invalid expiry schedule")
		return nil, err
	}
	return c, nil
}

func RunExpiry(ctx context.Context, expirer Expirer) int {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	expired, err := expirer.ExpireStalePending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stale pending expiry failed")
		return 0
	}
	return expired
}
