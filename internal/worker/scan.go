package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shoplytic/reminder-api/internal/service/reminder"
)

// ScanWorker runs the reminder scan on a fixed interval. One pass runs at
// startup so a restarted worker does not wait a full interval.
type ScanWorker struct {
	scanner  *reminder.Scanner
	interval time.Duration
	logger   zerolog.Logger
}

func NewScanWorker(scanner *reminder.Scanner, interval time.Duration, logger zerolog.Logger) *ScanWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ScanWorker{
		scanner:  scanner,
		interval: interval,
		logger:   logger.With().Str("component", "scan_worker").Logger(),
	}
}

func (w *ScanWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Msg("scan worker started")

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("scan worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ScanWorker) runOnce(ctx context.Context) {
	if err := w.scanner.Scan(ctx); err != nil {
		w.logger.Error().Err(err).Msg("scan pass failed")
	}
}
