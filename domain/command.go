package domain

import (
	"time"

	"github.com/google/uuid"
)

// Command is an instruction addressed to one raid session.
type Command interface {
	SessionID() uuid.UUID
}

type JoinCommand struct {
	Session     uuid.UUID     `validate:"required"`
	Participant ParticipantID `validate:"required"`
	PartySize   int           `validate:"min=1"`
	CreatedAt   time.Time
}

func (c JoinCommand) SessionID() uuid.UUID { return c.Session }

type ReadyCommand struct {
	Session     uuid.UUID     `validate:"required"`
	Participant ParticipantID `validate:"required"`
}

func (c ReadyCommand) SessionID() uuid.UUID { return c.Session }

type LeaveCommand struct {
	Session     uuid.UUID     `validate:"required"`
	Participant ParticipantID `validate:"required"`
}

func (c LeaveCommand) SessionID() uuid.UUID { return c.Session }

type RequestInviteCommand struct {
	Session     uuid.UUID     `validate:"required"`
	Participant ParticipantID `validate:"required"`
}

func (c RequestInviteCommand) SessionID() uuid.UUID { return c.Session }

// AcceptInviteCommand places a pending requester under the sponsorship of
// an existing member.
type AcceptInviteCommand struct {
	Session   uuid.UUID     `validate:"required"`
	Requester ParticipantID `validate:"required"`
	Accepter  ParticipantID `validate:"required,nefield=Requester"`
}

func (c AcceptInviteCommand) SessionID() uuid.UUID { return c.Session }

type InvitePageCommand struct {
	Session uuid.UUID `validate:"required"`
	Forward bool
}

func (c InvitePageCommand) SessionID() uuid.UUID { return c.Session }

type SelectBossCommand struct {
	Session uuid.UUID `validate:"required"`
	Name    string    `validate:"required"`
}

func (c SelectBossCommand) SessionID() uuid.UUID { return c.Session }

type AddStopCommand struct {
	Session  uuid.UUID `validate:"required"`
	Time     string
	Location string `validate:"required"`
}

func (c AddStopCommand) SessionID() uuid.UUID { return c.Session }

// UpdateStopCommand rewrites the current stop, nil fields are left untouched.
type UpdateStopCommand struct {
	Session  uuid.UUID `validate:"required"`
	Time     *string
	Location *string `validate:"omitempty,min=1"`
}

func (c UpdateStopCommand) SessionID() uuid.UUID { return c.Session }

type NextStopCommand struct {
	Session uuid.UUID `validate:"required"`
}

func (c NextStopCommand) SessionID() uuid.UUID { return c.Session }

type PreviousStopCommand struct {
	Session uuid.UUID `validate:"required"`
}

func (c PreviousStopCommand) SessionID() uuid.UUID { return c.Session }

type UpdateStopBossCommand struct {
	Session uuid.UUID `validate:"required"`
	Index   int       `validate:"min=0"`
}

func (c UpdateStopBossCommand) SessionID() uuid.UUID { return c.Session }
