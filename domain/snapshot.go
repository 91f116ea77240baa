package domain

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindRaid  Kind = "raid"
	KindTrain Kind = "train"
	KindMule  Kind = "mule"
)

// Member is one attending or ready entry, in insertion order.
type Member struct {
	ID        ParticipantID
	PartySize int
}

// Invitation is a pending invite sponsored by a current member.
type Invitation struct {
	Requester ParticipantID
	Accepter  ParticipantID
}

// GroupSnapshot is a detached copy of one group, safe to render while the
// session keeps changing.
type GroupSnapshot struct {
	Attending      []Member
	Ready          []Member
	Invited        []Invitation
	TotalPlayers   int
	Capacity       int
	InviteCapacity int
}

// RaidSnapshot is a detached copy of a whole raid session.
type RaidSnapshot struct {
	SessionID       uuid.UUID
	Kind            Kind
	Boss            Boss
	CreatedAt       time.Time
	Groups          []GroupSnapshot
	PendingInvites  []ParticipantID
	InvitePage      int
	InvitingSponsor ParticipantID
	Stops           []Stop
	CurrentStop     int
	Progress        string
}

// TotalPlayers sums the party sizes of every group.
func (s RaidSnapshot) TotalPlayers() int {
	total := 0
	for _, g := range s.Groups {
		total += g.TotalPlayers
	}
	return total
}
