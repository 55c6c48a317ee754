package worker

import (
	"context"
	"log/slog"
	"time"
)

// Refreshable - то, что умеет разослать команду перерисовки (KeyService)
type Refreshable interface {
	Refresh()
}

// Refresher периодически просит клиентов перерисовать список,
// чтобы метка "Истек" появлялась без ручного обновления. Хранилище не трогает.
type Refresher struct {
	target   Refreshable
	interval time.Duration
	logger   *slog.Logger
}

func NewRefresher(target Refreshable, interval time.Duration, logger *slog.Logger) *Refresher {
	return &Refresher{
		target:   target,
		interval: interval,
		logger:   logger.With("component", "refresher"),
	}
}

func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info("Refresher disabled")
		return
	}

	r.logger.Info("Starting refresher", slog.Duration("interval", r.interval))
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.target.Refresh()
		case <-ctx.Done():
			r.logger.Info("Refresher stopped")
			return
		}
	}
}
