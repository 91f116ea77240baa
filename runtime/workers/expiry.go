package workers

import (
	"context"
	"log/slog"
	"time"

	"raid-lab/contract"
	"raid-lab/domain/event"
)

var _ contract.Worker = (*ExpiryWorker)(nil)

// SweepFunc closes the sessions idle at now and returns their last events.
type SweepFunc func(now time.Time) []event.SessionClosed

// ExpiryWorker periodically closes idle sessions.
type ExpiryWorker struct {
	log      *slog.Logger
	interval time.Duration
	sweep    SweepFunc
	events   chan event.DomainEvent
	clock    func() time.Time
}

func NewExpiryWorker(log *slog.Logger, interval time.Duration, sweep SweepFunc, events chan event.DomainEvent) *ExpiryWorker {
	return &ExpiryWorker{
		log:      log,
		interval: interval,
		sweep:    sweep,
		events:   events,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping expiry")
			return nil
		case <-ticker.C:
			for _, closed := range w.sweep(w.clock()) {
				w.log.Info("Session expired", "session", closed.SessionID())
				select {
				case <-ctx.Done():
					return nil
				case w.events <- closed:
				}
			}
		}
	}
}
