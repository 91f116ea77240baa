package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"raid-lab/contract"
	"raid-lab/domain/event"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*TelemetryWorker)(nil)

// GaugeFunc samples the open sessions.
type GaugeFunc func() event.SessionGauge

// TelemetryWorker hands every technical event to the handlers.
// On each tick it also samples the session gauge and the process usage.
type TelemetryWorker struct {
	log            *slog.Logger
	metricInterval time.Duration
	telemetryChan  chan event.Event
	handlers       []event.Handler
	gauge          GaugeFunc
	proc           *process.Process
}

func NewTelemetryWorker(log *slog.Logger,
	metricInterval time.Duration,
	telemetryChan chan event.Event,
	handlers []event.Handler,
	gauge GaugeFunc) *TelemetryWorker {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process usage won't be tracked", "error", err)
	}
	return &TelemetryWorker{
		log:            log,
		metricInterval: metricInterval,
		telemetryChan:  telemetryChan,
		handlers:       handlers,
		gauge:          gauge,
		proc:           proc,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case evt := <-w.telemetryChan:
			w.handle(evt)
		case <-ticker.C:
			now := time.Now().UTC()
			if w.gauge != nil {
				w.handle(event.Event{Type: event.SessionGaugeType, CreatedAt: now, Payload: w.gauge()})
			}
			if tracker, ok := w.track(); ok {
				w.handle(event.Event{Type: event.ProcessTrackerType, CreatedAt: now, Payload: tracker})
			}
		}
	}
}

func (w *TelemetryWorker) track() (event.ProcessTracker, bool) {
	if w.proc == nil {
		return event.ProcessTracker{}, false
	}
	status, err := w.proc.Status()
	if err != nil {
		w.log.Debug("Unable to read process status", "error", err)
		return event.ProcessTracker{}, false
	}
	cpu, err := w.proc.CPUPercent()
	if err != nil {
		w.log.Debug("Unable to read process cpu", "error", err)
		return event.ProcessTracker{}, false
	}
	ram, err := w.proc.MemoryPercent()
	if err != nil {
		w.log.Debug("Unable to read process memory", "error", err)
		return event.ProcessTracker{}, false
	}
	return event.ProcessTracker{PID: w.proc.Pid, Status: status, Cpu: cpu, Ram: ram}, true
}

func (w *TelemetryWorker) handle(evt event.Event) {
	for _, h := range w.handlers {
		h.Handle(evt)
	}
}
