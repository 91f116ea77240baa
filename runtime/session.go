package runtime

import (
	"fmt"
	"sync"
	"time"

	"raid-lab/domain"
	"raid-lab/domain/event"
	"raid-lab/domain/raid"
	"raid-lab/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Censor rewrites free text typed by a host.
type Censor interface {
	Censor(text string) (string, []string)
}

type SessionOptions struct {
	Censor    Censor
	Validate  *validator.Validate
	PageSize  int
	Telemetry chan event.Event
}

// Session is one raid, raid train or mule session. The coordinator inside
// is not safe for concurrent use: every access goes through the mutex.
type Session struct {
	mu           sync.Mutex
	id           uuid.UUID
	kind         domain.Kind
	raid         raid.Raid
	train        *raid.Sequencer
	opts         SessionOptions
	lastActivity time.Time
}

func NewRaidSession(id uuid.UUID, c *raid.Coordinator, opts SessionOptions) *Session {
	return newSession(id, domain.KindRaid, c, nil, c.CreatedAt(), opts)
}

func NewMuleSession(id uuid.UUID, c *raid.Coordinator, opts SessionOptions) *Session {
	return newSession(id, domain.KindMule, c, nil, c.CreatedAt(), opts)
}

func NewTrainSession(id uuid.UUID, s *raid.Sequencer, opts SessionOptions) *Session {
	return newSession(id, domain.KindTrain, s, s, s.CreatedAt(), opts)
}

func newSession(id uuid.UUID, kind domain.Kind, r raid.Raid, train *raid.Sequencer,
	createdAt time.Time, opts SessionOptions) *Session {
	if opts.Validate == nil {
		opts.Validate = NewValidator()
	}
	if opts.PageSize < 1 {
		opts.PageSize = DefaultInvitePageSize
	}
	return &Session{
		id:           id,
		kind:         kind,
		raid:         r,
		train:        train,
		opts:         opts,
		lastActivity: createdAt,
	}
}

func (s *Session) ID() uuid.UUID     { return s.id }
func (s *Session) Kind() domain.Kind { return s.kind }

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) Snapshot() domain.RaidSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() domain.RaidSnapshot {
	snapshot := s.raid.Snapshot()
	snapshot.SessionID = s.id
	snapshot.Kind = s.kind
	return snapshot
}

// PendingPage returns the requesters shown on the current invite page.
func (s *Session) PendingPage() []domain.ParticipantID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coordinator().PendingInvitesPage(s.opts.PageSize)
}

func (s *Session) coordinator() *raid.Coordinator {
	if s.train != nil {
		return s.train.Coordinator
	}
	return s.raid.(*raid.Coordinator)
}

// Apply validates and runs one command. A rejected command leaves the session
// untouched and returns an error from the errors package, wrapped.
func (s *Session) Apply(cmd domain.Command, now time.Time) ([]event.DomainEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.opts.Validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}
	evt, err := s.apply(cmd, now)
	if err != nil {
		return nil, fmt.Errorf("%T: %w", cmd, err)
	}
	s.lastActivity = now
	return []event.DomainEvent{evt}, nil
}

// Rejected builds the event reporting a failed command.
func (s *Session) Rejected(cmd domain.Command, err error, now time.Time) event.CommandRejected {
	return event.CommandRejected{
		Header:  event.NewHeader(s.Snapshot(), now),
		Command: fmt.Sprintf("%T", cmd),
		Err:     err,
	}
}

// Closed builds the last event of the session.
func (s *Session) Closed(reason string, now time.Time) event.SessionClosed {
	return event.SessionClosed{Header: event.NewHeader(s.Snapshot(), now), Reason: reason}
}

func (s *Session) header(now time.Time) event.Header {
	return event.NewHeader(s.snapshot(), now)
}

func (s *Session) apply(cmd domain.Command, now time.Time) (event.DomainEvent, error) {
	switch c := cmd.(type) {
	case domain.JoinCommand:
		return s.join(c, now)
	case domain.ReadyCommand:
		return s.ready(c, now)
	case domain.LeaveCommand:
		return s.leave(c, now)
	case domain.RequestInviteCommand:
		if !s.raid.RequestInvite(c.Participant) {
			return nil, errors.ErrInvalidTransition
		}
		return event.InviteRequested{Header: s.header(now), Participant: c.Participant}, nil
	case domain.AcceptInviteCommand:
		return s.acceptInvite(c, now)
	case domain.InvitePageCommand:
		if !s.raid.ChangeInvitePage(c.Forward, s.opts.PageSize) {
			return nil, errors.ErrInvalidTransition
		}
		return event.InvitePageChanged{Header: s.header(now), Page: s.coordinator().InvitePage()}, nil
	case domain.SelectBossCommand:
		if !s.raid.SetBoss(c.Name) {
			return nil, errors.ErrUnknownBoss
		}
		return event.BossSelected{Header: s.header(now), Boss: s.coordinator().Boss()}, nil
	case domain.AddStopCommand, domain.UpdateStopCommand, domain.NextStopCommand,
		domain.PreviousStopCommand, domain.UpdateStopBossCommand:
		if s.train == nil {
			return nil, errors.ErrNotATrain
		}
		return s.applyStop(cmd, now)
	default:
		return nil, errors.ErrUnknownCommand
	}
}

func (s *Session) join(c domain.JoinCommand, now time.Time) (event.DomainEvent, error) {
	if !s.raid.PlayerAdd(c.Participant, c.PartySize, nil) {
		return nil, errors.ErrCapacityExceeded
	}
	return event.PlayerJoined{
		Header:      s.header(now),
		Participant: c.Participant,
		PartySize:   c.PartySize,
		GroupIndex:  s.raid.IsInRaid(c.Participant, false),
	}, nil
}

func (s *Session) ready(c domain.ReadyCommand, now time.Time) (event.DomainEvent, error) {
	if !s.raid.MarkReady(c.Participant) {
		if s.raid.IsInRaid(c.Participant, false) == raid.NotInRaid {
			return nil, errors.ErrNotFound
		}
		return nil, errors.ErrInvalidTransition
	}
	return event.PlayerReadied{
		Header:      s.header(now),
		Participant: c.Participant,
		AllReady:    s.raid.AllReady(),
	}, nil
}

// leave removes the participant then lets undersized groups merge again.
func (s *Session) leave(c domain.LeaveCommand, now time.Time) (event.DomainEvent, error) {
	result := s.raid.RemovePlayer(c.Participant)
	if !result.Found() {
		return nil, errors.ErrNotFound
	}
	s.raid.CheckMergeGroups()
	return event.PlayerLeft{
		Header:      s.header(now),
		Participant: c.Participant,
		Cascaded:    result.Cascaded,
		FromPending: result.FromPending,
	}, nil
}

func (s *Session) acceptInvite(c domain.AcceptInviteCommand, now time.Time) (event.DomainEvent, error) {
	if s.raid.State(c.Requester) != domain.PendingInvite {
		return nil, errors.ErrNotFound
	}
	if s.raid.IsInRaid(c.Accepter, false) == raid.NotInRaid {
		return nil, errors.ErrInvalidTransition
	}
	if !s.raid.InvitePlayer(c.Requester, c.Accepter) {
		return nil, errors.ErrCapacityExceeded
	}
	return event.InviteAccepted{
		Header:     s.header(now),
		Requester:  c.Requester,
		Accepter:   c.Accepter,
		GroupIndex: s.raid.IsInRaid(c.Requester, true),
	}, nil
}

func (s *Session) applyStop(cmd domain.Command, now time.Time) (event.DomainEvent, error) {
	switch c := cmd.(type) {
	case domain.AddStopCommand:
		location := s.censor(c.Location, now)
		if !s.train.AddLocation(c.Time, location) {
			return nil, errors.ErrInvalidTransition
		}
		stops := s.train.Stops()
		return event.StopAdded{Header: s.header(now), Index: len(stops) - 1, Stop: stops[len(stops)-1]}, nil
	case domain.UpdateStopCommand:
		location := c.Location
		if location != nil {
			censored := s.censor(*location, now)
			location = &censored
		}
		if !s.train.UpdateLocation(c.Time, location) {
			return nil, errors.ErrInvalidTransition
		}
		return event.StopUpdated{Header: s.header(now), Index: s.train.CurrentIndex(), Stop: s.train.CurrentStop()}, nil
	case domain.NextStopCommand:
		if !s.train.NextLocation() {
			return nil, errors.ErrInvalidTransition
		}
		return s.stopChanged(now), nil
	case domain.PreviousStopCommand:
		if !s.train.PreviousLocation() {
			return nil, errors.ErrInvalidTransition
		}
		return s.stopChanged(now), nil
	case domain.UpdateStopBossCommand:
		if s.train.CurrentIndex() == 0 {
			return nil, errors.ErrInvalidTransition
		}
		if !s.train.UpdateBoss(c.Index) {
			return nil, errors.ErrUnknownTier
		}
		return event.StopUpdated{Header: s.header(now), Index: s.train.CurrentIndex(), Stop: s.train.CurrentStop()}, nil
	default:
		return nil, errors.ErrUnknownCommand
	}
}

func (s *Session) stopChanged(now time.Time) event.StopChanged {
	return event.StopChanged{
		Header:   s.header(now),
		Index:    s.train.CurrentIndex(),
		Stop:     s.train.CurrentStop(),
		Progress: s.train.Progress(),
	}
}

func (s *Session) censor(location string, now time.Time) string {
	return censorLocation(s.opts, location, now)
}

// censorLocation runs the location through the moderator and reports hits on
// the telemetry channel without blocking.
func censorLocation(opts SessionOptions, location string, now time.Time) string {
	if opts.Censor == nil {
		return location
	}
	censored, words := opts.Censor.Censor(location)
	if len(words) > 0 && opts.Telemetry != nil {
		select {
		case opts.Telemetry <- event.Event{
			Type:      event.CensorshipHitType,
			CreatedAt: now,
			Payload:   event.Censored{Location: censored, Words: words},
		}:
		default:
		}
	}
	return censored
}

// Participants counts the players of every group, party sizes included.
func (s *Session) Participants() int {
	return s.Snapshot().TotalPlayers()
}
