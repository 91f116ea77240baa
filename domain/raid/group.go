// Package raid coordinates capacity-bounded groups of raid participants.
// Everything here is synchronous and in-memory: no I/O, no locking.
// Callers serialize writes to one raid session themselves.
package raid

import (
	"raid-lab/domain"

	"github.com/samber/lo"
)

// Group is one capacity-bounded pool of participants.
//
// A participant is in at most one of attending and ready. Each invited entry
// maps a requester to the accepter sponsoring them, and the accepter is always
// attending or ready in the same group.
type Group struct {
	capacity       int
	inviteCapacity int
	attending      *roster[int]
	ready          *roster[int]
	invited        *roster[domain.ParticipantID]
}

func NewGroup(capacity, inviteCapacity int) *Group {
	return &Group{
		capacity:       capacity,
		inviteCapacity: inviteCapacity,
		attending:      newRoster[int](),
		ready:          newRoster[int](),
		invited:        newRoster[domain.ParticipantID](),
	}
}

func (g *Group) Capacity() int       { return g.capacity }
func (g *Group) InviteCapacity() int { return g.inviteCapacity }

// Add inserts the participant into attending, or updates its party size in
// place when it is already attending or ready. It is rejected when the
// resulting party count would exceed the capacity.
// A successful insert drops the participant's own pending invite.
func (g *Group) Add(p domain.ParticipantID, partySize int) bool {
	if partySize < 1 {
		return false
	}
	for _, r := range []*roster[int]{g.attending, g.ready} {
		if old, ok := r.get(p); ok {
			if g.TotalPlayers()-old+partySize > g.capacity {
				return false
			}
			r.set(p, partySize)
			return true
		}
	}
	if g.TotalPlayers()+partySize > g.capacity {
		return false
	}
	g.invited.delete(p)
	g.attending.set(p, partySize)
	return true
}

// Remove drops the participant from the group and returns the requesters it
// was sponsoring, in invite order. Those requesters are no longer in the group.
func (g *Group) Remove(p domain.ParticipantID) []domain.ParticipantID {
	g.attending.delete(p)
	g.ready.delete(p)
	g.invited.delete(p)

	var cascaded []domain.ParticipantID
	g.invited.each(func(requester, accepter domain.ParticipantID) {
		if accepter == p {
			g.invited.delete(requester)
			cascaded = append(cascaded, requester)
		}
	})
	return cascaded
}

// MarkReady moves an attending participant to ready.
func (g *Group) MarkReady(p domain.ParticipantID) bool {
	partySize, ok := g.attending.get(p)
	if !ok {
		return false
	}
	g.attending.delete(p)
	g.ready.set(p, partySize)
	return true
}

// ResetReady moves every ready participant back to attending, after the
// current attending entries, and returns how many moved.
func (g *Group) ResetReady() int {
	moved := g.ready.len()
	g.ready.each(func(id domain.ParticipantID, partySize int) {
		g.attending.set(id, partySize)
	})
	g.ready.clear()
	return moved
}

// Invite records requester as sponsored by accepter.
// Every entry of the group, invited ones included, takes one slot of the
// capacity.
func (g *Group) Invite(requester, accepter domain.ParticipantID) bool {
	if requester == accepter || !g.isMember(accepter) {
		return false
	}
	if g.HasParticipant(requester, true) {
		return false
	}
	if g.Members()+1 > g.capacity || g.invited.len()+1 > g.inviteCapacity {
		return false
	}
	g.invited.set(requester, accepter)
	return true
}

func (g *Group) ShouldSplit() bool {
	return g.TotalPlayers() > g.capacity
}

// SplitGroup moves the smallest leading run of attending entries, then of
// ready entries, that fits in half the capacity (rounded up) into a new group.
// A run stops at the first entry that would not fit. Invites follow their
// accepter. Nothing moves when the group does not need to split.
func (g *Group) SplitGroup() *Group {
	split := NewGroup(g.capacity, g.inviteCapacity)
	if !g.ShouldSplit() {
		return split
	}
	half := (g.capacity + 1) / 2

	move := func(from, to *roster[int]) {
		for _, id := range from.ids() {
			partySize, _ := from.get(id)
			if split.TotalPlayers()+partySize > half {
				return
			}
			from.delete(id)
			to.set(id, partySize)
		}
	}
	move(g.attending, split.attending)
	move(g.ready, split.ready)

	g.invited.each(func(requester, accepter domain.ParticipantID) {
		if split.isMember(accepter) {
			g.invited.delete(requester)
			split.invited.set(requester, accepter)
		}
	})
	return split
}

// MergeGroup absorbs other when both groups have members and their combined
// party count fits in this group's capacity. other is left empty.
func (g *Group) MergeGroup(other *Group) bool {
	if other == nil || other == g {
		return false
	}
	if g.memberCount() == 0 || other.memberCount() == 0 {
		return false
	}
	if g.TotalPlayers()+other.TotalPlayers() > g.capacity {
		return false
	}
	other.attending.each(g.attending.set)
	other.ready.each(g.ready.set)
	other.invited.each(g.invited.set)
	other.attending.clear()
	other.ready.clear()
	other.invited.clear()
	return true
}

// TotalPlayers sums the party sizes of attending and ready entries.
// Invited entries have no party size yet and are not counted.
func (g *Group) TotalPlayers() int {
	return lo.Sum(lo.Values(g.attending.values)) + lo.Sum(lo.Values(g.ready.values))
}

// Members counts entries of the three collections.
func (g *Group) Members() int {
	return g.memberCount() + g.invited.len()
}

func (g *Group) HasParticipant(p domain.ParticipantID, checkInvited bool) bool {
	if g.isMember(p) {
		return true
	}
	return checkInvited && g.invited.has(p)
}

// State reports where the participant sits in this group.
func (g *Group) State(p domain.ParticipantID) domain.MembershipState {
	switch {
	case g.attending.has(p):
		return domain.Attending
	case g.ready.has(p):
		return domain.Ready
	case g.invited.has(p):
		return domain.Invited
	default:
		return domain.NotInRaid
	}
}

// Sponsor returns the accepter of a pending invite.
func (g *Group) Sponsor(requester domain.ParticipantID) (domain.ParticipantID, bool) {
	return g.invited.get(requester)
}

// Attending returns a copy of the attending entries.
func (g *Group) Attending() map[domain.ParticipantID]int {
	return g.attending.toMap()
}

// Ready returns a copy of the ready entries.
func (g *Group) Ready() map[domain.ParticipantID]int {
	return g.ready.toMap()
}

// Invited returns a copy of requester -> accepter.
func (g *Group) Invited() map[domain.ParticipantID]domain.ParticipantID {
	return g.invited.toMap()
}

func (g *Group) Snapshot() domain.GroupSnapshot {
	return domain.GroupSnapshot{
		Attending:      members(g.attending),
		Ready:          members(g.ready),
		Invited:        invitations(g.invited),
		TotalPlayers:   g.TotalPlayers(),
		Capacity:       g.capacity,
		InviteCapacity: g.inviteCapacity,
	}
}

func (g *Group) isMember(p domain.ParticipantID) bool {
	return g.attending.has(p) || g.ready.has(p)
}

func (g *Group) memberCount() int {
	return g.attending.len() + g.ready.len()
}

func members(r *roster[int]) []domain.Member {
	out := make([]domain.Member, 0, r.len())
	r.each(func(id domain.ParticipantID, partySize int) {
		out = append(out, domain.Member{ID: id, PartySize: partySize})
	})
	return out
}

func invitations(r *roster[domain.ParticipantID]) []domain.Invitation {
	out := make([]domain.Invitation, 0, r.len())
	r.each(func(requester, accepter domain.ParticipantID) {
		out = append(out, domain.Invitation{Requester: requester, Accepter: accepter})
	})
	return out
}
