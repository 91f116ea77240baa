package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"raid-lab/contract"
	"raid-lab/domain/event"
)

var _ contract.Worker = (*EventFanoutWorker)(nil)

// EventFanoutWorker broadcasts domain events to multiple in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering across sinks, durability, or retries. EventFanoutWorker is not a message broker.
//
// Permanent sinks receive every event, the registry adds the sinks subscribed
// to the session the event belongs to. Each sink gets its own goroutine bounded
// by sinkTimeout. Fanout returns once every sink consumed or timed out, so each
// sink sees the events of a session in order.
type EventFanoutWorker struct {
	log            *slog.Logger
	permanentSinks []contract.EventSink
	registry       contract.IRegistry
	domainEvent    chan event.DomainEvent
	sinkTimeout    time.Duration
}

func NewEventFanoutWorker(log *slog.Logger,
	permanentSinks []contract.EventSink,
	registry contract.IRegistry,
	domainEvent chan event.DomainEvent,
	sinkTimeout time.Duration) *EventFanoutWorker {
	return &EventFanoutWorker{
		log:            log,
		permanentSinks: permanentSinks,
		registry:       registry,
		domainEvent:    domainEvent,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *EventFanoutWorker) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.domainEvent:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.Fanout(evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping domainEvent send")
			return nil
		}
	}
}

// Fanout One goroutine for each sink
func (w *EventFanoutWorker) Fanout(evt event.DomainEvent) {
	sinks := append([]contract.EventSink(nil), w.permanentSinks...)
	sinks = append(sinks, w.registry.GetSinksForSession(evt.SessionID())...)

	var wg sync.WaitGroup
	for _, sink := range sinks {
		wg.Add(1)
		go func(s contract.EventSink) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), w.sinkTimeout)
			defer cancel()
			if err := s.Consume(ctx, evt); err != nil {
				w.log.Warn("Sink failed to consume event",
					"session", evt.SessionID(), "event", fmt.Sprintf("%T", evt), "error", err)
			}
		}(sink)
	}
	wg.Wait()
}
