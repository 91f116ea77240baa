package raid

import (
	"fmt"
	"testing"
	"time"

	"raid-lab/domain"
	"raid-lab/mocks"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var createdAt = time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)

func newTestCoordinator(capacity, invites, groupLimit int) *Coordinator {
	return NewCoordinator(Options{
		Capacity:       capacity,
		InviteCapacity: invites,
		GroupLimit:     groupLimit,
	}, nil, createdAt)
}

// withGroups replaces the groups of the coordinator, used to start from
// layouts the admission rules cannot produce on their own.
func withGroups(c *Coordinator, groups ...*Group) {
	c.groups = groups
}

func TestCoordinator_Starts_With_One_Group(t *testing.T) {
	req := require.New(t)
	c := NewCoordinator(DefaultOptions(), nil, createdAt)

	req.Equal(1, c.GroupCount())
	req.Equal(createdAt, c.CreatedAt())
	req.Equal(DefaultOptions(), c.Options())
}

func TestCoordinator_Options_Are_Normalized(t *testing.T) {
	req := require.New(t)
	c := NewCoordinator(Options{}, nil, createdAt)

	req.Equal(Options{Capacity: DefaultGroupCapacity, InviteCapacity: 0, GroupLimit: 1}, c.Options())
}

func TestCoordinator_PlayerAdd_Routes_To_Smallest_Group(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	g0, g1, g2 := NewGroup(10, 5), NewGroup(10, 5), NewGroup(10, 5)
	req.True(g0.Add("a", 4))
	req.True(g1.Add("b", 2))
	req.True(g2.Add("c", 2))
	withGroups(c, g0, g1, g2)

	req.Equal(1, c.FindSmallestGroup())

	// Ties go to the lowest index
	req.True(c.PlayerAdd("d", 1, nil))
	req.Equal(1, c.IsInRaid("d", false))
	req.True(c.PlayerAdd("e", 1, nil))
	req.Equal(2, c.IsInRaid("e", false))
}

func TestCoordinator_PlayerAdd_Updates_Existing_Member_In_Its_Group(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	g0, g1 := NewGroup(10, 5), NewGroup(10, 5)
	req.True(g0.Add("a", 1))
	req.True(g1.Add("b", 5))
	withGroups(c, g0, g1)

	// b is not in the smallest group, it must not be duplicated
	req.True(c.PlayerAdd("b", 3, nil))

	req.Equal(1, c.IsInRaid("b", false))
	req.False(g0.HasParticipant("b", true))
	req.Equal(3, g1.TotalPlayers())
}

func TestCoordinator_PlayerAdd_Direct_Join_Does_Not_Split(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(5, 5, 3)

	req.True(c.PlayerAdd("a", 5, nil))
	req.False(c.PlayerAdd("b", 1, nil))

	req.Equal(1, c.GroupCount())
	req.Equal(NotInRaid, c.IsInRaid("b", true))
}

func TestCoordinator_PlayerAdd_Direct_Join_Clears_Invite_Requests(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	req.True(c.PlayerAdd("host", 1, nil))
	req.True(c.RequestInvite("pending"))
	req.True(c.RequestInvite("invited"))
	req.True(c.InvitePlayer("invited", "host"))

	req.True(c.PlayerAdd("pending", 2, nil))
	req.True(c.PlayerAdd("invited", 1, nil))

	req.Empty(c.PendingInvites())
	req.Equal(domain.Attending, c.State("pending"))
	req.Equal(domain.Attending, c.State("invited"))
	snapshot, ok := c.Group(0)
	req.True(ok)
	req.Empty(snapshot.Invited)
}

func TestCoordinator_InvitePlayer(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	req.True(c.PlayerAdd("host", 2, nil))
	req.True(c.RequestInvite("remote"))
	req.Equal(domain.PendingInvite, c.State("remote"))

	req.True(c.InvitePlayer("remote", "host"))

	req.Empty(c.PendingInvites())
	req.Equal(domain.Invited, c.State("remote"))
	req.Equal(0, c.IsInRaid("remote", true))
	req.Equal(NotInRaid, c.IsInRaid("remote", false))
	// Invited entries carry no party size
	req.Equal(2, c.Groups()[0].TotalPlayers)
}

func TestCoordinator_InvitePlayer_Rejections(t *testing.T) {
	t.Run("requester not queued", func(t *testing.T) {
		req := require.New(t)
		c := newTestCoordinator(10, 5, 3)
		req.True(c.PlayerAdd("host", 1, nil))

		req.False(c.InvitePlayer("remote", "host"))
		req.Equal(domain.NotInRaid, c.State("remote"))
	})

	t.Run("accepter not a member", func(t *testing.T) {
		req := require.New(t)
		c := newTestCoordinator(10, 5, 3)
		req.True(c.RequestInvite("remote"))
		req.True(c.RequestInvite("other"))

		req.False(c.InvitePlayer("remote", "other"))
		req.False(c.InvitePlayer("remote", "ghost"))
		req.Equal([]domain.ParticipantID{"remote", "other"}, c.PendingInvites())
	})

	t.Run("invite capacity reached keeps the queue", func(t *testing.T) {
		req := require.New(t)
		c := newTestCoordinator(10, 1, 3)
		req.True(c.PlayerAdd("host", 1, nil))
		req.True(c.RequestInvite("r1"))
		req.True(c.RequestInvite("r2"))
		req.True(c.RequestInvite("r3"))
		req.True(c.InvitePlayer("r1", "host"))
		before := c.Snapshot()

		req.False(c.InvitePlayer("r2", "host"))

		req.Equal(before, c.Snapshot())
		req.Equal([]domain.ParticipantID{"r2", "r3"}, c.PendingInvites())
	})
}

func TestCoordinator_PlayerAdd_Invite_Splits_Overcrowded_Group(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(5, 5, 3)
	g := NewGroup(5, 5)
	forceAttending(g,
		domain.Member{ID: "a", PartySize: 3},
		domain.Member{ID: "b", PartySize: 3},
	)
	withGroups(c, g)
	req.True(c.RequestInvite("remote"))

	sponsor := domain.ParticipantID("a")
	req.True(c.PlayerAdd("remote", 1, &sponsor))

	groups := c.Groups()
	req.Len(groups, 2)
	req.Equal(6, groups[0].TotalPlayers+groups[1].TotalPlayers)
	for _, snapshot := range groups {
		req.LessOrEqual(snapshot.TotalPlayers, 3)
	}
	// The invite followed its sponsor into the new group
	req.Equal(c.IsInRaid("a", false), c.IsInRaid("remote", true))
	req.Empty(c.PendingInvites())
}

func TestCoordinator_PlayerAdd_Invite_Respects_Group_Limit(t *testing.T) {
	req := require.New(t)
	c := NewCoordinator(Options{Capacity: 5, InviteCapacity: MuleInviteCapacity, GroupLimit: MuleGroupLimit}, nil, createdAt)
	g := NewGroup(5, MuleInviteCapacity)
	forceAttending(g,
		domain.Member{ID: "a", PartySize: 3},
		domain.Member{ID: "b", PartySize: 3},
	)
	withGroups(c, g)
	req.True(c.RequestInvite("remote"))

	req.True(c.InvitePlayer("remote", "a"))

	req.Equal(1, c.GroupCount())
	req.Equal(domain.Invited, c.State("remote"))
}

func TestCoordinator_RemovePlayer(t *testing.T) {
	t.Run("from the pending queue", func(t *testing.T) {
		req := require.New(t)
		c := newTestCoordinator(10, 5, 3)
		req.True(c.RequestInvite("remote"))

		result := c.RemovePlayer("remote")

		req.True(result.Found())
		req.True(result.FromPending)
		req.Equal(NotInRaid, result.GroupIndex)
		req.Empty(result.Cascaded)
		req.Empty(c.PendingInvites())
	})

	t.Run("sponsor cascades its invites back to the queue", func(t *testing.T) {
		req := require.New(t)
		c := newTestCoordinator(10, 5, 3)
		req.True(c.PlayerAdd("host", 2, nil))
		req.True(c.PlayerAdd("other", 1, nil))
		for _, r := range []domain.ParticipantID{"r1", "r2", "r3"} {
			req.True(c.RequestInvite(r))
		}
		req.True(c.RequestInvite("waiting"))
		req.True(c.InvitePlayer("r1", "host"))
		req.True(c.InvitePlayer("r2", "other"))
		req.True(c.InvitePlayer("r3", "host"))
		req.True(c.SetInvitingSponsor("host"))

		result := c.RemovePlayer("host")

		req.Equal(0, result.GroupIndex)
		req.Equal([]domain.ParticipantID{"r1", "r3"}, result.Cascaded)
		req.Equal([]domain.ParticipantID{"waiting", "r1", "r3"}, c.PendingInvites())
		req.Equal(domain.Invited, c.State("r2"))
		req.Equal(domain.NotInRaid, c.State("host"))
		req.Empty(c.InvitingSponsor())
	})

	t.Run("unknown participant", func(t *testing.T) {
		req := require.New(t)
		c := newTestCoordinator(10, 5, 3)
		req.True(c.PlayerAdd("host", 2, nil))
		before := c.Snapshot()

		result := c.RemovePlayer("ghost")

		req.False(result.Found())
		req.Equal(NotInRaid, result.GroupIndex)
		req.Empty(result.Cascaded)
		req.Equal(before, c.Snapshot())
	})
}

func TestCoordinator_RequestInvite(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	req.True(c.PlayerAdd("host", 1, nil))

	req.True(c.RequestInvite("remote"))
	req.False(c.RequestInvite("remote"))
	req.False(c.RequestInvite("host"))

	req.True(c.InvitePlayer("remote", "host"))
	req.False(c.RequestInvite("remote"))
	req.Empty(c.PendingInvites())
}

func TestCoordinator_MarkReady(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	req.True(c.PlayerAdd("a", 1, nil))

	req.True(c.MarkReady("a"))
	req.False(c.MarkReady("a"))
	req.False(c.MarkReady("ghost"))
	req.Equal(domain.Ready, c.State("a"))
}

func TestCoordinator_CheckMergeGroups(t *testing.T) {
	t.Run("merges groups that fit together", func(t *testing.T) {
		req := require.New(t)
		c := newTestCoordinator(10, 5, 3)
		g0, g1, g2 := NewGroup(10, 5), NewGroup(10, 5), NewGroup(10, 5)
		req.True(g0.Add("a", 3))
		req.True(g1.Add("b", 8))
		req.True(g2.Add("c", 4))
		withGroups(c, g0, g1, g2)

		c.CheckMergeGroups()

		req.Equal(2, c.GroupCount())
		req.Equal(0, c.IsInRaid("a", false))
		req.Equal(0, c.IsInRaid("c", false))
		req.Equal(1, c.IsInRaid("b", false))
	})

	t.Run("keeps one group when every group is empty", func(t *testing.T) {
		req := require.New(t)
		c := newTestCoordinator(10, 5, 3)
		withGroups(c, NewGroup(10, 5), NewGroup(10, 5))

		c.CheckMergeGroups()

		req.Equal(1, c.GroupCount())
		req.Equal(10, c.Groups()[0].Capacity)
	})

	t.Run("drops groups emptied by a removal", func(t *testing.T) {
		req := require.New(t)
		c := newTestCoordinator(10, 5, 3)
		g0, g1 := NewGroup(10, 5), NewGroup(10, 5)
		req.True(g0.Add("a", 7))
		req.True(g1.Add("b", 7))
		withGroups(c, g0, g1)
		c.RemovePlayer("a")

		c.CheckMergeGroups()

		req.Equal(1, c.GroupCount())
		req.Equal(0, c.IsInRaid("b", false))
	})
}

func TestCoordinator_ChangeInvitePage(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	for i := range 5 {
		req.True(c.RequestInvite(domain.ParticipantID(fmt.Sprintf("r%d", i))))
	}

	req.False(c.ChangeInvitePage(false, 2))
	req.True(c.ChangeInvitePage(true, 2))
	req.True(c.ChangeInvitePage(true, 2))
	// 3 * 2 is not below 5 entries
	req.False(c.ChangeInvitePage(true, 2))
	req.Equal(2, c.InvitePage())
	req.Equal([]domain.ParticipantID{"r4"}, c.PendingInvitesPage(2))

	req.True(c.ChangeInvitePage(false, 2))
	req.Equal([]domain.ParticipantID{"r2", "r3"}, c.PendingInvitesPage(2))
	req.False(c.ChangeInvitePage(true, 0))
}

func TestCoordinator_PendingInvitesPage_Clamps_After_Shrink(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	for _, r := range []domain.ParticipantID{"r1", "r2", "r3"} {
		req.True(c.RequestInvite(r))
	}
	req.True(c.ChangeInvitePage(true, 2))
	c.RemovePlayer("r3")

	req.Equal([]domain.ParticipantID{"r1", "r2"}, c.PendingInvitesPage(2))
	req.Equal(0, c.InvitePage())
	req.False(c.ChangeInvitePage(false, 2))
	req.Nil(newTestCoordinator(10, 5, 3).PendingInvitesPage(2))
}

func TestCoordinator_InvitePage_Follows_Shrinking_Queue(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	req.True(c.PlayerAdd("host", 1, nil))
	for _, r := range []domain.ParticipantID{"r1", "r2", "r3", "r4", "r5"} {
		req.True(c.RequestInvite(r))
	}
	req.True(c.ChangeInvitePage(true, 2))
	req.True(c.ChangeInvitePage(true, 2))
	req.Equal(2, c.InvitePage())

	// When the last requester joins directly
	req.True(c.PlayerAdd("r5", 1, nil))
	// Then the cursor moves back to the last page
	req.Equal(1, c.InvitePage())

	// When two requesters get invited
	req.True(c.InvitePlayer("r4", "host"))
	req.True(c.InvitePlayer("r3", "host"))
	req.Equal(0, c.InvitePage())
	req.Equal([]domain.ParticipantID{"r1", "r2"}, c.PendingInvitesPage(2))

	// When the queue empties
	c.RemovePlayer("r1")
	c.RemovePlayer("r2")
	req.Equal(0, c.InvitePage())
	req.Equal(0, c.Snapshot().InvitePage)
	req.False(c.ChangeInvitePage(false, 2))
}

func TestCoordinator_AllReady(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	req.False(c.AllReady())

	req.True(c.PlayerAdd("a", 1, nil))
	req.True(c.PlayerAdd("b", 1, nil))
	req.True(c.MarkReady("a"))
	req.False(c.AllReady())

	req.True(c.MarkReady("b"))
	req.True(c.AllReady())
}

func TestCoordinator_SetBoss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	resolver := mocks.NewMockBossResolver(ctrl)
	c := NewCoordinator(DefaultOptions(), resolver, createdAt)

	t.Run("stores the resolved boss", func(t *testing.T) {
		req := require.New(t)
		resolver.EXPECT().ResolveBoss("mewtwo").Return(domain.Boss{Name: "Mewtwo", Tier: 5}, nil).Times(1)

		req.True(c.SetBoss("mewtwo"))
		req.Equal(domain.Boss{Name: "Mewtwo", Tier: 5}, c.Boss())
	})

	t.Run("keeps the boss when resolution fails", func(t *testing.T) {
		req := require.New(t)
		resolver.EXPECT().ResolveBoss("missingno").Return(domain.Boss{}, fmt.Errorf("not found")).Times(1)

		req.False(c.SetBoss("missingno"))
		req.Equal("Mewtwo", c.Boss().Name)
	})

	t.Run("no resolver", func(t *testing.T) {
		req := require.New(t)
		req.False(newTestCoordinator(10, 5, 3).SetBoss("mewtwo"))
	})
}

func TestCoordinator_Participant_Lifecycle(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	req.True(c.PlayerAdd("host", 1, nil))

	states := []domain.MembershipState{c.State("p")}
	req.True(c.RequestInvite("p"))
	states = append(states, c.State("p"))
	req.True(c.InvitePlayer("p", "host"))
	states = append(states, c.State("p"))
	req.True(c.PlayerAdd("p", 1, nil))
	states = append(states, c.State("p"))
	req.True(c.MarkReady("p"))
	states = append(states, c.State("p"))
	c.RemovePlayer("p")
	states = append(states, c.State("p"))

	req.Equal([]domain.MembershipState{
		domain.NotInRaid,
		domain.PendingInvite,
		domain.Invited,
		domain.Attending,
		domain.Ready,
		domain.NotInRaid,
	}, states)
}

func TestCoordinator_Snapshot_Is_A_Copy(t *testing.T) {
	req := require.New(t)
	c := newTestCoordinator(10, 5, 3)
	req.True(c.PlayerAdd("a", 1, nil))
	req.True(c.RequestInvite("r"))

	snapshot := c.Snapshot()
	snapshot.PendingInvites[0] = "intruder"
	snapshot.Groups[0].Attending[0].PartySize = 9

	req.Equal([]domain.ParticipantID{"r"}, c.PendingInvites())
	req.Equal(1, c.Groups()[0].TotalPlayers)
	req.True(lo.Contains(c.PendingInvites(), "r"))
}
