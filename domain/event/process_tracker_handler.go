package event

import (
	"fmt"
	"log/slog"

	"raid-lab/errors"
)

// ProcessTrackerHandler logs process usage together with the latest
// session gauge.
type ProcessTrackerHandler struct {
	log   *slog.Logger
	gauge SessionGauge
}

func NewProcessTrackerHandler(log *slog.Logger) *ProcessTrackerHandler {
	return &ProcessTrackerHandler{log: log}
}

func (h *ProcessTrackerHandler) Handle(event Event) {
	switch event.Type {
	case SessionGaugeType:
		payload, ok := event.Payload.(SessionGauge)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
			return
		}
		h.gauge = payload
	case ProcessTrackerType:
		payload, ok := event.Payload.(ProcessTracker)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error(), "type", event.Type)
			return
		}
		h.log.Debug(fmt.Sprintf("[RAID] PID %d | STATUS %s | CPU %.2f%% | RAM %.2f%% | SESSIONS %d | PLAYERS %d",
			payload.PID, payload.Status, payload.Cpu, payload.Ram, h.gauge.Sessions, h.gauge.Participants))
	}
}

func (h *ProcessTrackerHandler) Gauge() SessionGauge { return h.gauge }
