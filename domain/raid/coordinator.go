package raid

import (
	"time"

	"raid-lab/domain"

	"github.com/samber/lo"
)

// NotInRaid is returned by IsInRaid when no group holds the participant.
const NotInRaid = -1

const (
	DefaultGroupCapacity  = 20
	DefaultInviteCapacity = 10
	RaidGroupLimit        = 3
	MuleInviteCapacity    = 20
	MuleGroupLimit        = 1
)

// Options are the limits of one raid session. Every group of the session is
// built with the same capacity and invite capacity.
type Options struct {
	Capacity       int
	InviteCapacity int
	GroupLimit     int
}

func DefaultOptions() Options {
	return Options{
		Capacity:       DefaultGroupCapacity,
		InviteCapacity: DefaultInviteCapacity,
		GroupLimit:     RaidGroupLimit,
	}
}

// MuleOptions describe a session hosted by a single account inviting remote
// players: a much larger invite allowance and a single group that never
// auto-splits.
func MuleOptions() Options {
	return Options{
		Capacity:       DefaultGroupCapacity,
		InviteCapacity: MuleInviteCapacity,
		GroupLimit:     MuleGroupLimit,
	}
}

func (o Options) normalize() Options {
	if o.Capacity < 1 {
		o.Capacity = DefaultGroupCapacity
	}
	if o.InviteCapacity < 0 {
		o.InviteCapacity = 0
	}
	if o.GroupLimit < 1 {
		o.GroupLimit = 1
	}
	return o
}

// RemoveResult tells the caller which group lost the participant and which
// requesters lost their sponsor and went back to the pending invite queue.
type RemoveResult struct {
	GroupIndex  int
	Cascaded    []domain.ParticipantID
	FromPending bool
}

func (r RemoveResult) Found() bool {
	return r.FromPending || r.GroupIndex != NotInRaid
}

// Coordinator routes participants across an ordered, never empty, list of
// groups and keeps the queue of participants waiting for an invite.
type Coordinator struct {
	opts            Options
	resolver        domain.BossResolver
	groups          []*Group
	pendingInvites  []domain.ParticipantID
	invitePage      int
	pageSize        int
	boss            domain.Boss
	createdAt       time.Time
	invitingSponsor domain.ParticipantID
}

func NewCoordinator(opts Options, resolver domain.BossResolver, createdAt time.Time) *Coordinator {
	opts = opts.normalize()
	return &Coordinator{
		opts:      opts,
		resolver:  resolver,
		groups:    []*Group{NewGroup(opts.Capacity, opts.InviteCapacity)},
		createdAt: createdAt,
	}
}

func (c *Coordinator) Options() Options { return c.opts }

// PlayerAdd is a direct join when invitedBy is nil and an invite acceptance
// otherwise.
//
// A direct join goes to the smallest group, or to the group already holding
// the participant to update its party size. It never splits.
// An invite acceptance places the participant in the sponsor's group and
// splits that group when it became overcrowded and the group limit allows.
// A rejected call changes nothing.
func (c *Coordinator) PlayerAdd(p domain.ParticipantID, partySize int, invitedBy *domain.ParticipantID) bool {
	if invitedBy == nil {
		return c.join(p, partySize)
	}
	return c.acceptInvite(p, *invitedBy)
}

func (c *Coordinator) join(p domain.ParticipantID, partySize int) bool {
	idx := c.IsInRaid(p, false)
	if idx == NotInRaid {
		idx = c.FindSmallestGroup()
	}
	if !c.groups[idx].Add(p, partySize) {
		return false
	}
	c.pendingInvites = lo.Without(c.pendingInvites, p)
	c.clampInvitePage()
	for _, g := range c.groups {
		g.invited.delete(p)
	}
	return true
}

func (c *Coordinator) acceptInvite(p, sponsor domain.ParticipantID) bool {
	idx := c.IsInRaid(sponsor, false)
	if idx == NotInRaid || c.IsInRaid(p, true) != NotInRaid {
		return false
	}
	g := c.groups[idx]
	if !g.Invite(p, sponsor) {
		return false
	}
	c.pendingInvites = lo.Without(c.pendingInvites, p)
	c.clampInvitePage()

	// Invited entries carry no party size: Add and Invite keep a group
	// within capacity, this only splits a group already overcrowded.
	if g.ShouldSplit() && len(c.groups) < c.opts.GroupLimit {
		c.groups = append(c.groups, g.SplitGroup())
		c.CheckMergeGroups()
	}
	return true
}

// RemovePlayer takes the participant out of the session. Requesters it was
// sponsoring are queued again for an invite.
func (c *Coordinator) RemovePlayer(p domain.ParticipantID) RemoveResult {
	if i := lo.IndexOf(c.pendingInvites, p); i >= 0 {
		c.pendingInvites = append(c.pendingInvites[:i:i], c.pendingInvites[i+1:]...)
		c.clampInvitePage()
		return RemoveResult{GroupIndex: NotInRaid, FromPending: true}
	}

	idx := c.IsInRaid(p, true)
	if idx == NotInRaid {
		return RemoveResult{GroupIndex: NotInRaid}
	}
	cascaded := c.groups[idx].Remove(p)
	for _, requester := range cascaded {
		if !lo.Contains(c.pendingInvites, requester) {
			c.pendingInvites = append(c.pendingInvites, requester)
		}
	}
	if c.invitingSponsor == p {
		c.invitingSponsor = ""
	}
	return RemoveResult{GroupIndex: idx, Cascaded: cascaded}
}

// RequestInvite queues a participant that is not in the session yet.
func (c *Coordinator) RequestInvite(p domain.ParticipantID) bool {
	if lo.Contains(c.pendingInvites, p) || c.IsInRaid(p, true) != NotInRaid {
		return false
	}
	c.pendingInvites = append(c.pendingInvites, p)
	return true
}

// InvitePlayer lets a member accept a queued requester as a party of one.
func (c *Coordinator) InvitePlayer(requester, accepter domain.ParticipantID) bool {
	if !lo.Contains(c.pendingInvites, requester) {
		return false
	}
	if c.IsInRaid(accepter, false) == NotInRaid {
		return false
	}
	return c.PlayerAdd(requester, 1, &accepter)
}

// MarkReady confirms the presence of an attending participant.
func (c *Coordinator) MarkReady(p domain.ParticipantID) bool {
	idx := c.IsInRaid(p, false)
	if idx == NotInRaid {
		return false
	}
	return c.groups[idx].MarkReady(p)
}

// IsInRaid returns the index of the first group holding the participant.
func (c *Coordinator) IsInRaid(p domain.ParticipantID, checkInvited bool) int {
	for i, g := range c.groups {
		if g.HasParticipant(p, checkInvited) {
			return i
		}
	}
	return NotInRaid
}

// State reports the membership state of the participant across the session.
func (c *Coordinator) State(p domain.ParticipantID) domain.MembershipState {
	if lo.Contains(c.pendingInvites, p) {
		return domain.PendingInvite
	}
	if idx := c.IsInRaid(p, true); idx != NotInRaid {
		return c.groups[idx].State(p)
	}
	return domain.NotInRaid
}

// FindSmallestGroup returns the first group with the lowest party count.
func (c *Coordinator) FindSmallestGroup() int {
	smallest := 0
	for i, g := range c.groups {
		if g.TotalPlayers() < c.groups[smallest].TotalPlayers() {
			smallest = i
		}
	}
	return smallest
}

// CheckMergeGroups tries every ordered pair of groups, then drops the groups
// left empty. One group always remains.
func (c *Coordinator) CheckMergeGroups() {
	for _, g := range c.groups {
		for _, other := range c.groups {
			g.MergeGroup(other)
		}
	}
	c.groups = lo.Filter(c.groups, func(g *Group, _ int) bool {
		return g.TotalPlayers() > 0
	})
	if len(c.groups) == 0 {
		c.groups = []*Group{NewGroup(c.opts.Capacity, c.opts.InviteCapacity)}
	}
}

// ChangeInvitePage moves the page cursor over the pending invites.
func (c *Coordinator) ChangeInvitePage(forward bool, pageSize int) bool {
	if pageSize < 1 {
		return false
	}
	c.pageSize = pageSize
	c.clampInvitePage()
	if forward {
		if (c.invitePage+1)*pageSize < len(c.pendingInvites) {
			c.invitePage++
			return true
		}
		return false
	}
	if c.invitePage != 0 {
		c.invitePage--
		return true
	}
	return false
}

func (c *Coordinator) InvitePage() int { return c.invitePage }

// clampInvitePage keeps the cursor on the last page of the queue, in the
// page size of the last move.
func (c *Coordinator) clampInvitePage() {
	if c.pageSize < 1 || len(c.pendingInvites) == 0 {
		c.invitePage = 0
		return
	}
	c.invitePage = min(c.invitePage, (len(c.pendingInvites)-1)/c.pageSize)
}

// PendingInvitesPage returns a copy of the current page. The cursor is
// clamped to the last page when the queue shrank.
func (c *Coordinator) PendingInvitesPage(pageSize int) []domain.ParticipantID {
	if pageSize < 1 || len(c.pendingInvites) == 0 {
		return nil
	}
	page := min(c.invitePage, (len(c.pendingInvites)-1)/pageSize)
	start := page * pageSize
	end := min(start+pageSize, len(c.pendingInvites))
	return append([]domain.ParticipantID(nil), c.pendingInvites[start:end]...)
}

// PendingInvites returns a copy of the queue.
func (c *Coordinator) PendingInvites() []domain.ParticipantID {
	return append([]domain.ParticipantID(nil), c.pendingInvites...)
}

// AllReady is true when no group has anyone still attending and every group
// has at least one ready member.
func (c *Coordinator) AllReady() bool {
	return lo.EveryBy(c.groups, func(g *Group) bool {
		return g.attending.len() == 0 && g.ready.len() > 0
	})
}

func (c *Coordinator) resetReady() int {
	moved := 0
	for _, g := range c.groups {
		moved += g.ResetReady()
	}
	return moved
}

// SetBoss resolves and stores the boss of the session.
func (c *Coordinator) SetBoss(name string) bool {
	if c.resolver == nil {
		return false
	}
	boss, err := c.resolver.ResolveBoss(name)
	if err != nil || boss.IsZero() {
		return false
	}
	c.boss = boss
	return true
}

func (c *Coordinator) Boss() domain.Boss    { return c.boss }
func (c *Coordinator) CreatedAt() time.Time { return c.createdAt }
func (c *Coordinator) GroupCount() int      { return len(c.groups) }

func (c *Coordinator) InvitingSponsor() domain.ParticipantID {
	return c.invitingSponsor
}

// SetInvitingSponsor records the member currently handing out invites.
// Only members qualify.
func (c *Coordinator) SetInvitingSponsor(p domain.ParticipantID) bool {
	if c.IsInRaid(p, false) == NotInRaid {
		return false
	}
	c.invitingSponsor = p
	return true
}

// Group returns a snapshot of the group at index.
func (c *Coordinator) Group(index int) (domain.GroupSnapshot, bool) {
	if index < 0 || index >= len(c.groups) {
		return domain.GroupSnapshot{}, false
	}
	return c.groups[index].Snapshot(), true
}

func (c *Coordinator) Groups() []domain.GroupSnapshot {
	return lo.Map(c.groups, func(g *Group, _ int) domain.GroupSnapshot {
		return g.Snapshot()
	})
}

// Snapshot copies the session state. Session id and kind belong to the
// caller and are left empty.
func (c *Coordinator) Snapshot() domain.RaidSnapshot {
	return domain.RaidSnapshot{
		Boss:            c.boss,
		CreatedAt:       c.createdAt,
		Groups:          c.Groups(),
		PendingInvites:  c.PendingInvites(),
		InvitePage:      c.invitePage,
		InvitingSponsor: c.invitingSponsor,
	}
}
