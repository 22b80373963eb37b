package diag

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// HeartbeatSchedule is how often the idle phase reports that the process is alive.
const HeartbeatSchedule = "@hourly"

// Idle parks the caller until ctx is done. The only work is a periodic heartbeat log line.
func Idle(ctx context.Context, log zerolog.Logger, schedule string) error {
	started := time.Now()

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		log.Debug().Dur("uptime", time.Since(started)).Msg("💤 Бот работает")
	}); err != nil {
		return fmt.Errorf("invalid heartbeat schedule %q: %w", schedule, err)
	}

	c.Start()
	log.Info().Msg("💤 Проверки завершены, ожидание")

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
