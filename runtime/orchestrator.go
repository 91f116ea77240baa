// Package runtime handles raid sessions: their registry, command application,
// and the workers moving commands and events around.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"
	"time"

	"raid-lab/contract"
	"raid-lab/domain"
	"raid-lab/domain/event"
	"raid-lab/domain/raid"
	"raid-lab/errors"
	"raid-lab/runtime/workers"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const ExpiredReason = "expired"

var _ contract.IOrchestrator = (*Orchestrator)(nil)

type Settings struct {
	NumWorkers           int
	BufferSize           int
	SinkTimeout          time.Duration
	RaidOptions          raid.Options
	MuleOptions          raid.Options
	InvitePageSize       int
	SessionTTL           time.Duration
	ExpiryInterval       time.Duration
	MetricInterval       time.Duration
	LowCapacityThreshold int
}

type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	settings       Settings
	supervisor     contract.ISupervisor
	registry       *Registry
	resolver       domain.BossResolver
	catalog        domain.TierCatalog
	censor         Censor
	validate       *validator.Validate
	permanentSinks []contract.EventSink
	shards         []chan domain.Command
	domainEvents   chan event.DomainEvent
	telemetryChan  chan event.Event
	handlers       []event.Handler
	started        bool
	now            func() time.Time
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry *Registry,
	resolver domain.BossResolver, catalog domain.TierCatalog, censor Censor,
	telemetryChan chan event.Event, settings Settings) *Orchestrator {
	settings.NumWorkers = max(settings.NumWorkers, 1)
	shards := make([]chan domain.Command, settings.NumWorkers)
	for i := range shards {
		shards[i] = make(chan domain.Command, settings.BufferSize)
	}
	return &Orchestrator{
		log:           log,
		settings:      settings,
		supervisor:    supervisor,
		registry:      registry,
		resolver:      resolver,
		catalog:       catalog,
		censor:        censor,
		validate:      NewValidator(),
		shards:        shards,
		domainEvents:  make(chan event.DomainEvent, settings.BufferSize),
		telemetryChan: telemetryChan,
		handlers: []event.Handler{
			event.NewWorkerRestartedAfterPanicHandler(log, event.NewCounter()),
			event.NewChannelCapacityHandler(log, settings.LowCapacityThreshold),
			event.NewCensoredHandler(log),
			event.NewProcessTrackerHandler(log),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Add registers sinks receiving every event of every session. Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Subscribe delivers the events of one session to the participant's sink.
func (o *Orchestrator) Subscribe(participantID domain.ParticipantID, sessionID uuid.UUID, sink contract.EventSink) {
	o.registry.Subscribe(participantID, sessionID, sink)
}

func (o *Orchestrator) Unsubscribe(participantID domain.ParticipantID, sessionID uuid.UUID) {
	o.registry.Unsubscribe(participantID, sessionID)
}

func (o *Orchestrator) OpenRaid(bossName string) (uuid.UUID, error) {
	c := raid.NewCoordinator(o.settings.RaidOptions, o.resolver, o.now())
	if !c.SetBoss(bossName) {
		return uuid.Nil, fmt.Errorf("%w: %s", errors.ErrUnknownBoss, bossName)
	}
	return o.open(NewRaidSession(uuid.New(), c, o.sessionOptions()))
}

func (o *Orchestrator) OpenMule(bossName string) (uuid.UUID, error) {
	c := raid.NewCoordinator(o.settings.MuleOptions, o.resolver, o.now())
	if !c.SetBoss(bossName) {
		return uuid.Nil, fmt.Errorf("%w: %s", errors.ErrUnknownBoss, bossName)
	}
	return o.open(NewMuleSession(uuid.New(), c, o.sessionOptions()))
}

// OpenTrain opens a raid train whose first stop is at the given time and location.
func (o *Orchestrator) OpenTrain(bossName, at, location string) (uuid.UUID, error) {
	opts := o.sessionOptions()
	location = censorLocation(opts, strings.TrimSpace(location), o.now())
	if err := o.validate.Var(location, "required"); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}
	s := raid.NewSequencer(o.settings.RaidOptions, o.resolver, o.catalog, o.now(), at, location)
	if !s.SetBoss(bossName) {
		return uuid.Nil, fmt.Errorf("%w: %s", errors.ErrUnknownBoss, bossName)
	}
	return o.open(NewTrainSession(uuid.New(), s, opts))
}

func (o *Orchestrator) open(session *Session) (uuid.UUID, error) {
	o.registry.Add(session)
	snapshot := session.Snapshot()
	o.log.Info("Session opened", "session", session.ID(), "kind", session.Kind(), "boss", snapshot.Boss.Name)
	o.publish(event.SessionOpened{Header: event.NewHeader(snapshot, o.now()), Kind: session.Kind()})
	return session.ID(), nil
}

func (o *Orchestrator) sessionOptions() SessionOptions {
	return SessionOptions{
		Censor:    o.censor,
		Validate:  o.validate,
		PageSize:  o.settings.InvitePageSize,
		Telemetry: o.telemetryChan,
	}
}

// Close removes the session, its last event is SessionClosed.
func (o *Orchestrator) Close(id uuid.UUID, reason string) error {
	session, ok := o.registry.Remove(id)
	if !ok {
		return errors.ErrSessionNotFound
	}
	o.log.Info("Session closed", "session", id, "reason", reason)
	o.publish(session.Closed(reason, o.now()))
	return nil
}

func (o *Orchestrator) Snapshot(id uuid.UUID) (domain.RaidSnapshot, error) {
	session, err := o.registry.Get(id)
	if err != nil {
		return domain.RaidSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// Sessions lists the open sessions, oldest first.
func (o *Orchestrator) Sessions() []domain.RaidSnapshot {
	return lo.Map(o.registry.List(), func(s *Session, _ int) domain.RaidSnapshot {
		return s.Snapshot()
	})
}

// PendingPage returns the pending invites shown on the current page of the session.
func (o *Orchestrator) PendingPage(id uuid.UUID) ([]domain.ParticipantID, error) {
	session, err := o.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return session.PendingPage(), nil
}

// Dispatch queues the command on the shard owning its session.
// Commands of one session are applied in dispatch order.
func (o *Orchestrator) Dispatch(cmd domain.Command) error {
	if _, err := o.registry.Get(cmd.SessionID()); err != nil {
		return err
	}
	shard := o.shardOf(cmd.SessionID())
	select {
	case o.shards[shard] <- cmd:
		return nil
	default:
		o.log.Warn("Session command channel full, dropping command",
			"session", cmd.SessionID(), "shard", shard, "command", fmt.Sprintf("%T", cmd))
		return errors.ErrShardFull
	}
}

func (o *Orchestrator) shardOf(id uuid.UUID) int {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return int(h.Sum32() % uint32(len(o.shards)))
}

// handle runs on the shard worker owning the session.
func (o *Orchestrator) handle(cmd domain.Command) []event.DomainEvent {
	session, err := o.registry.Get(cmd.SessionID())
	if err != nil {
		o.log.Debug("Command for a closed session", "session", cmd.SessionID(), "command", fmt.Sprintf("%T", cmd))
		return nil
	}
	now := o.now()
	events, err := session.Apply(cmd, now)
	if err != nil {
		o.log.Warn("Command rejected", "session", cmd.SessionID(), "error", err)
		return []event.DomainEvent{session.Rejected(cmd, err, now)}
	}
	o.log.Debug("Command applied", "session", cmd.SessionID(), "command", fmt.Sprintf("%T", cmd))
	return events
}

func (o *Orchestrator) sweep(now time.Time) []event.SessionClosed {
	var closed []event.SessionClosed
	for _, s := range o.registry.Expired(now, o.settings.SessionTTL) {
		if _, ok := o.registry.Remove(s.ID()); ok {
			closed = append(closed, s.Closed(ExpiredReason, now))
		}
	}
	return closed
}

func (o *Orchestrator) gauge() event.SessionGauge {
	sessions := o.registry.List()
	return event.SessionGauge{
		Sessions:     len(sessions),
		Participants: lo.SumBy(sessions, func(s *Session) int { return s.Participants() }),
	}
}

// publish never blocks the caller, a full bus drops the event.
func (o *Orchestrator) publish(evt event.DomainEvent) {
	select {
	case o.domainEvents <- evt:
	default:
		o.log.Warn("Event channel full, dropping event", "session", evt.SessionID(), "event", fmt.Sprintf("%T", evt))
	}
}

// Start prepares the workers, hands them to the supervisor and blocks until
// they are all stopped.
func (o *Orchestrator) Start(ctx context.Context) error {
	// 1. Preparation phase (No Lock)
	sessionWorkers := o.prepareSessionWorkers()
	probes := o.prepareProbes()

	// 2. Critical Section (Short Lock)
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return errors.ErrAlreadyStarted
	}
	o.started = true
	fanoutWorker := workers.NewEventFanoutWorker(o.log, o.permanentSinks, o.registry, o.domainEvents, o.settings.SinkTimeout)
	o.supervisor.Add(sessionWorkers...)
	o.supervisor.Add(fanoutWorker)
	if o.settings.SessionTTL > 0 && o.settings.ExpiryInterval > 0 {
		o.supervisor.Add(workers.NewExpiryWorker(o.log, o.settings.ExpiryInterval, o.sweep, o.domainEvents))
	}
	if o.telemetryChan != nil && o.settings.MetricInterval > 0 {
		o.supervisor.Add(
			workers.NewTelemetryWorker(o.log, o.settings.MetricInterval, o.telemetryChan, o.handlers, o.gauge),
			workers.NewChannelCapacityWorker(o.log, probes, o.telemetryChan, o.settings.MetricInterval),
		)
	}
	o.mu.Unlock()

	// 3. Execution phase (No Lock)
	o.log.Info("Starting orchestrator and all supervised workers", "shards", len(o.shards))
	o.supervisor.Run(ctx)
	return nil
}

func (o *Orchestrator) prepareSessionWorkers() []contract.Worker {
	return lo.Map(o.shards, func(shard chan domain.Command, i int) contract.Worker {
		return workers.NewSessionWorker(i, shard, o.domainEvents, o.handle, o.log)
	})
}

func (o *Orchestrator) prepareProbes() []workers.ChannelProbe {
	probes := lo.Map(o.shards, func(shard chan domain.Command, i int) workers.ChannelProbe {
		return workers.Probe(fmt.Sprintf("shard-%d", i), shard)
	})
	return append(probes, workers.Probe("domain-events", o.domainEvents))
}

// Stop cancels the supervised context, Start returns once every worker is done.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
