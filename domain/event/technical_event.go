package event

import (
	"time"
)

type Type string

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
	ProcessTrackerType      Type = "PROCESS_TRACKER"
	SessionGaugeType        Type = "SESSION_GAUGE"
	CensorshipHitType       Type = "CENSORSHIP_HIT"
)

// Event is a technical event, never seen by raid participants.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

type ProcessTracker struct {
	PID    int32
	Status string
	Cpu    float64
	Ram    float32
}

type SessionGauge struct {
	Sessions     int
	Participants int
}

type Censored struct {
	Location string
	Words    []string
}
