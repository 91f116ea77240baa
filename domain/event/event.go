package event

import (
	"time"

	"raid-lab/domain"

	"github.com/google/uuid"
)

// DomainEvent is emitted after a command has been applied to a raid session.
// Every event carries the session state right after the change.
type DomainEvent interface {
	SessionID() uuid.UUID
	State() domain.RaidSnapshot
}

type Header struct {
	Session  uuid.UUID
	At       time.Time
	Snapshot domain.RaidSnapshot
}

func (h Header) SessionID() uuid.UUID       { return h.Session }
func (h Header) State() domain.RaidSnapshot { return h.Snapshot }

func NewHeader(snapshot domain.RaidSnapshot, at time.Time) Header {
	return Header{Session: snapshot.SessionID, At: at, Snapshot: snapshot}
}

type SessionOpened struct {
	Header
	Kind domain.Kind
}

type SessionClosed struct {
	Header
	Reason string
}

type PlayerJoined struct {
	Header
	Participant domain.ParticipantID
	PartySize   int
	GroupIndex  int
}

type PlayerReadied struct {
	Header
	Participant domain.ParticipantID
	AllReady    bool
}

// PlayerLeft lists the requesters sent back to the invite queue because the
// participant was sponsoring them.
type PlayerLeft struct {
	Header
	Participant domain.ParticipantID
	Cascaded    []domain.ParticipantID
	FromPending bool
}

type InviteRequested struct {
	Header
	Participant domain.ParticipantID
}

type InviteAccepted struct {
	Header
	Requester  domain.ParticipantID
	Accepter   domain.ParticipantID
	GroupIndex int
}

type InvitePageChanged struct {
	Header
	Page int
}

type BossSelected struct {
	Header
	Boss domain.Boss
}

type StopAdded struct {
	Header
	Index int
	Stop  domain.Stop
}

type StopUpdated struct {
	Header
	Index int
	Stop  domain.Stop
}

// StopChanged is emitted when the train moves to another stop.
type StopChanged struct {
	Header
	Index    int
	Stop     domain.Stop
	Progress string
}

type CommandRejected struct {
	Header
	Command string
	Err     error
}
