package logscan

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

const (
	DefaultInterval  = 15 * time.Second
	DefaultBatchSize = 5
)

// Config controls the scan cadence. Zero values select the defaults.
type Config struct {
	Interval  time.Duration
	BatchSize int
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

// Run scans recent activity every interval until ctx is cancelled. It blocks;
// start it in its own goroutine. Cancellation stops the schedule but never
// interrupts a scan already in flight.
func Run(ctx context.Context, source ports.ActivitySource, screener ports.LogScreener, feed ports.AlertPublisher, cfg Config) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	log := cfg.Logger.With("component", "logscan")

	ticker := cfg.Clock.NewTicker(cfg.Interval)
	defer ticker.Stop()
	log.Info("log scan started", "interval", cfg.Interval, "batch", cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			log.Info("log scan stopped")
			return
		case <-ticker.Chan():
			// a tick and a cancellation can be ready together; cancellation wins
			if ctx.Err() != nil {
				log.Info("log scan stopped")
				return
			}
			ScanOnce(context.WithoutCancel(ctx), source, screener, feed, cfg.BatchSize, log)
		}
	}
}

// ScanOnce runs a single cycle and reports how many alerts it published.
func ScanOnce(ctx context.Context, source ports.ActivitySource, screener ports.LogScreener, feed ports.AlertPublisher, batch int, log *slog.Logger) int {
	lines := source.Drain(batch)
	if len(lines) == 0 {
		log.Debug("no new activity, skipping scan")
		return 0
	}
	alerts := screener.ScanLogs(ctx, lines)
	if len(alerts) > 0 {
		feed.Publish(alerts)
		log.Info("security alerts published", "count", len(alerts), "lines", len(lines))
	}
	return len(alerts)
}
