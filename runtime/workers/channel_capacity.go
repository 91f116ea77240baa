package workers

import (
	"context"
	"log/slog"
	"time"

	"raid-lab/contract"
	"raid-lab/domain/event"
)

var _ contract.Worker = (*ChannelCapacityWorker)(nil)

// ChannelProbe reads the usage of one channel without touching its content.
type ChannelProbe struct {
	Name   string
	Length func() int
	Cap    int
}

func Probe[T any](name string, ch chan T) ChannelProbe {
	return ChannelProbe{Name: name, Length: func() int { return len(ch) }, Cap: cap(ch)}
}

// ChannelCapacityWorker periodically reports the length of the session shards
// and of the event bus. Reading len(channel) is non-blocking, so it's okay if a
// sample is dropped occasionally.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	probes         []ChannelProbe
	telemetryChan  chan event.Event
	metricInterval time.Duration
}

func NewChannelCapacityWorker(log *slog.Logger,
	probes []ChannelProbe, telemetryChan chan event.Event,
	metricInterval time.Duration) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:            log,
		probes:         probes,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel sampling")
			return nil
		case <-ticker.C:
			for _, p := range w.probes {
				select {
				case <-ctx.Done():
					return nil
				case w.telemetryChan <- toCapacityEvent(p.Name, p.Cap, p.Length()):
				default:
					w.log.Debug("Observability telemetry event lost")
				}
			}
		}
	}
}

func toCapacityEvent(name string, capacity, length int) event.Event {
	return event.Event{
		Type:      event.ChannelCapacityType,
		CreatedAt: time.Now().UTC(),
		Payload: event.ChannelCapacity{
			ChannelName: name,
			Capacity:    capacity,
			Length:      length,
		},
	}
}
