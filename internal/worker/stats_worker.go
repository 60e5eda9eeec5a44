package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/carbook/internal/domain"
	"github.com/yourorg/carbook/internal/observability/metrics"
)

// StatsWorker periodically refreshes the stored-bookings gauge from the
// repository so the metric survives restarts and out-of-band changes.
type StatsWorker struct {
	bookings domain.BookingRepository
	logger   *slog.Logger
	interval time.Duration
}

func NewStatsWorker(bookings domain.BookingRepository, logger *slog.Logger, interval time.Duration) *StatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsWorker{bookings: bookings, logger: logger, interval: interval}
}

// Start runs the refresh loop until ctx is canceled.
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	count, err := w.bookings.Count(ctx)
	if err != nil {
		w.logger.Warn("failed to count bookings", slog.String("error", err.Error()))
		return
	}
	metrics.SetActiveBookings(count)
}
