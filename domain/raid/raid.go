package raid

import "raid-lab/domain"

// Raid is the capability shared by plain raids and raid trains.
type Raid interface {
	PlayerAdd(p domain.ParticipantID, partySize int, invitedBy *domain.ParticipantID) bool
	RemovePlayer(p domain.ParticipantID) RemoveResult
	RequestInvite(p domain.ParticipantID) bool
	InvitePlayer(requester, accepter domain.ParticipantID) bool
	IsInRaid(p domain.ParticipantID, checkInvited bool) int
	MarkReady(p domain.ParticipantID) bool
	CheckMergeGroups()
	ChangeInvitePage(forward bool, pageSize int) bool
	SetBoss(name string) bool
	AllReady() bool
	State(p domain.ParticipantID) domain.MembershipState
	Snapshot() domain.RaidSnapshot
}

var (
	_ Raid = (*Coordinator)(nil)
	_ Raid = (*Sequencer)(nil)
)
