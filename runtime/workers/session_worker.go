package workers

import (
	"context"
	"log/slog"

	"raid-lab/contract"
	"raid-lab/domain"
	"raid-lab/domain/event"
)

// Ensure *SessionWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*SessionWorker)(nil)

// CommandHandler runs one command against its session and returns the events to publish,
// rejections included.
type CommandHandler func(cmd domain.Command) []event.DomainEvent

// SessionWorker drains one shard of commands. Commands of a session always land on the
// same shard, so they are applied in the order they were dispatched.
type SessionWorker struct {
	shard    int
	commands chan domain.Command
	events   chan event.DomainEvent
	handle   CommandHandler
	log      *slog.Logger
}

func NewSessionWorker(
	shard int,
	commands chan domain.Command,
	events chan event.DomainEvent,
	handle CommandHandler,
	log *slog.Logger) *SessionWorker {
	return &SessionWorker{
		shard:    shard,
		commands: commands,
		events:   events,
		handle:   handle,
		log:      log.With("shard", shard),
	}
}

func (w *SessionWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			for _, evt := range w.handle(cmd) {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case w.events <- evt:
				}
			}
		}
	}
}
