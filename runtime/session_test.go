package runtime

import (
	"testing"
	"time"

	"raid-lab/domain"
	"raid-lab/domain/event"
	"raid-lab/domain/raid"
	"raid-lab/errors"
	"raid-lab/mocks"
	"raid-lab/moderation"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTrainSession(t *testing.T, telemetry chan event.Event) (*Session, *mocks.MockBossResolver, *mocks.MockTierCatalog) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockBossResolver(ctrl)
	catalog := mocks.NewMockTierCatalog(ctrl)
	moderator, err := moderation.NewModerator([]string{"idiot"}, '*')
	req.NoError(err)

	train := raid.NewSequencer(raid.DefaultOptions(), resolver, catalog, openedAt, "18:00", "Central Park")
	session := NewTrainSession(uuid.New(), train, SessionOptions{
		Censor:    moderator,
		PageSize:  2,
		Telemetry: telemetry,
	})
	return session, resolver, catalog
}

func TestSession_Join_And_Ready(t *testing.T) {
	req := require.New(t)
	session := newRaidSession(openedAt)
	now := openedAt.Add(time.Minute)

	events, err := session.Apply(domain.JoinCommand{Session: session.ID(), Participant: "ash", PartySize: 3}, now)
	req.NoError(err)
	req.Len(events, 1)
	joined, ok := events[0].(event.PlayerJoined)
	req.True(ok)
	req.Equal(domain.ParticipantID("ash"), joined.Participant)
	req.Equal(0, joined.GroupIndex)
	req.Equal(session.ID(), joined.SessionID())
	req.Equal(domain.KindRaid, joined.State().Kind)
	req.Equal(3, joined.State().TotalPlayers())
	req.Equal(now, session.LastActivity())

	events, err = session.Apply(domain.ReadyCommand{Session: session.ID(), Participant: "ash"}, now)
	req.NoError(err)
	readied := events[0].(event.PlayerReadied)
	req.True(readied.AllReady)

	// Ready twice is not a valid transition
	_, err = session.Apply(domain.ReadyCommand{Session: session.ID(), Participant: "ash"}, now)
	req.ErrorIs(err, errors.ErrInvalidTransition)

	_, err = session.Apply(domain.ReadyCommand{Session: session.ID(), Participant: "brock"}, now)
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestSession_Rejects_Invalid_Commands(t *testing.T) {
	req := require.New(t)
	session := newRaidSession(openedAt)

	tests := []struct {
		name string
		cmd  domain.Command
	}{
		{
			name: "missing session",
			cmd:  domain.JoinCommand{Participant: "ash", PartySize: 1},
		},
		{
			name: "empty party",
			cmd:  domain.JoinCommand{Session: session.ID(), Participant: "ash"},
		},
		{
			name: "missing participant",
			cmd:  domain.LeaveCommand{Session: session.ID()},
		},
		{
			name: "self invite",
			cmd:  domain.AcceptInviteCommand{Session: session.ID(), Requester: "ash", Accepter: "ash"},
		},
		{
			name: "blank stop",
			cmd:  domain.UpdateStopCommand{Session: session.ID(), Location: lo.ToPtr("")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := session.Apply(tt.cmd, openedAt.Add(time.Hour))
			req.ErrorIs(err, errors.ErrInvalidCommand)
		})
	}
	// Rejected commands do not count as activity
	req.Equal(openedAt, session.LastActivity())
}

func TestSession_Capacity_Exceeded(t *testing.T) {
	req := require.New(t)
	c := raid.NewCoordinator(raid.Options{Capacity: 4, InviteCapacity: 1, GroupLimit: 1}, nil, openedAt)
	session := NewRaidSession(uuid.New(), c, SessionOptions{})

	_, err := session.Apply(domain.JoinCommand{Session: session.ID(), Participant: "ash", PartySize: 3}, openedAt)
	req.NoError(err)

	_, err = session.Apply(domain.JoinCommand{Session: session.ID(), Participant: "brock", PartySize: 2}, openedAt)
	req.ErrorIs(err, errors.ErrCapacityExceeded)
	req.Equal(3, session.Participants())
}

func TestSession_Invite_Flow(t *testing.T) {
	req := require.New(t)
	session := newRaidSession(openedAt)
	id := session.ID()

	_, err := session.Apply(domain.JoinCommand{Session: id, Participant: "host", PartySize: 1}, openedAt)
	req.NoError(err)

	// Unknown requester
	_, err = session.Apply(domain.AcceptInviteCommand{Session: id, Requester: "remote", Accepter: "host"}, openedAt)
	req.ErrorIs(err, errors.ErrNotFound)

	events, err := session.Apply(domain.RequestInviteCommand{Session: id, Participant: "remote"}, openedAt)
	req.NoError(err)
	req.IsType(event.InviteRequested{}, events[0])
	req.Equal([]domain.ParticipantID{"remote"}, session.PendingPage())

	// Twice in the queue
	_, err = session.Apply(domain.RequestInviteCommand{Session: id, Participant: "remote"}, openedAt)
	req.ErrorIs(err, errors.ErrInvalidTransition)

	// The accepter has to be a member
	_, err = session.Apply(domain.AcceptInviteCommand{Session: id, Requester: "remote", Accepter: "nobody"}, openedAt)
	req.ErrorIs(err, errors.ErrInvalidTransition)

	events, err = session.Apply(domain.AcceptInviteCommand{Session: id, Requester: "remote", Accepter: "host"}, openedAt)
	req.NoError(err)
	accepted := events[0].(event.InviteAccepted)
	req.Equal(0, accepted.GroupIndex)
	req.Empty(session.PendingPage())

	// Host leaves, remote goes back to the queue
	events, err = session.Apply(domain.LeaveCommand{Session: id, Participant: "host"}, openedAt)
	req.NoError(err)
	left := events[0].(event.PlayerLeft)
	req.Equal([]domain.ParticipantID{"remote"}, left.Cascaded)
	req.Equal([]domain.ParticipantID{"remote"}, left.State().PendingInvites)

	_, err = session.Apply(domain.LeaveCommand{Session: id, Participant: "host"}, openedAt)
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestSession_Leave_Keeps_One_Group(t *testing.T) {
	req := require.New(t)
	c := raid.NewCoordinator(raid.Options{Capacity: 4, InviteCapacity: 4, GroupLimit: 3}, nil, openedAt)
	session := NewRaidSession(uuid.New(), c, SessionOptions{})
	id := session.ID()

	// Given a full group
	_, err := session.Apply(domain.JoinCommand{Session: id, Participant: "a", PartySize: 2}, openedAt)
	req.NoError(err)
	_, err = session.Apply(domain.JoinCommand{Session: id, Participant: "b", PartySize: 2}, openedAt)
	req.NoError(err)
	req.Len(session.Snapshot().Groups, 1)

	// When a member leaves
	_, err = session.Apply(domain.LeaveCommand{Session: id, Participant: "a"}, openedAt)
	req.NoError(err)

	// Then the sweep keeps a single group
	snapshot := session.Snapshot()
	req.Len(snapshot.Groups, 1)
	req.Equal(2, snapshot.TotalPlayers())
}

func TestSession_Invite_Page(t *testing.T) {
	req := require.New(t)
	session, _, _ := newTrainSession(t, nil)
	id := session.ID()
	for _, p := range []domain.ParticipantID{"r1", "r2", "r3"} {
		_, err := session.Apply(domain.RequestInviteCommand{Session: id, Participant: p}, openedAt)
		req.NoError(err)
	}
	req.Equal([]domain.ParticipantID{"r1", "r2"}, session.PendingPage())

	events, err := session.Apply(domain.InvitePageCommand{Session: id, Forward: true}, openedAt)
	req.NoError(err)
	req.Equal(1, events[0].(event.InvitePageChanged).Page)
	req.Equal([]domain.ParticipantID{"r3"}, session.PendingPage())

	_, err = session.Apply(domain.InvitePageCommand{Session: id, Forward: true}, openedAt)
	req.ErrorIs(err, errors.ErrInvalidTransition)
}

func TestSession_Select_Boss(t *testing.T) {
	req := require.New(t)
	session, resolver, _ := newTrainSession(t, nil)
	resolver.EXPECT().ResolveBoss("kyogre").Return(domain.Boss{Name: "Kyogre", Tier: 5}, nil)
	resolver.EXPECT().ResolveBoss("missingno").Return(domain.Boss{}, errors.ErrUnknownBoss)

	events, err := session.Apply(domain.SelectBossCommand{Session: session.ID(), Name: "kyogre"}, openedAt)
	req.NoError(err)
	req.Equal(domain.Boss{Name: "Kyogre", Tier: 5}, events[0].(event.BossSelected).Boss)
	req.Equal("Kyogre", session.Snapshot().Stops[0].BossName)

	_, err = session.Apply(domain.SelectBossCommand{Session: session.ID(), Name: "missingno"}, openedAt)
	req.ErrorIs(err, errors.ErrUnknownBoss)
}

func TestSession_Train_Stops(t *testing.T) {
	req := require.New(t)
	telemetry := make(chan event.Event, 1)
	session, resolver, catalog := newTrainSession(t, telemetry)
	id := session.ID()
	resolver.EXPECT().ResolveBoss("kyogre").Return(domain.Boss{Name: "Kyogre", Tier: 5}, nil)
	catalog.EXPECT().ResolveTierCatalog(5).Return([]string{"Kyogre", "Groudon"}, nil).AnyTimes()
	_, err := session.Apply(domain.SelectBossCommand{Session: id, Name: "kyogre"}, openedAt)
	req.NoError(err)

	// Given a censored stop
	events, err := session.Apply(domain.AddStopCommand{Session: id, Time: "18:20", Location: "Idiot Fountain"}, openedAt)
	req.NoError(err)
	added := events[0].(event.StopAdded)
	req.Equal(1, added.Index)
	req.Equal(domain.Stop{Time: "18:20", Location: "***** Fountain", BossName: "Kyogre"}, added.Stop)
	hit := <-telemetry
	req.Equal(event.CensorshipHitType, hit.Type)
	req.Equal([]string{"idiot"}, hit.Payload.(event.Censored).Words)

	// Duplicates are rejected
	_, err = session.Apply(domain.AddStopCommand{Session: id, Location: "central park"}, openedAt)
	req.ErrorIs(err, errors.ErrInvalidTransition)

	// The home stop keeps its boss
	_, err = session.Apply(domain.UpdateStopBossCommand{Session: id, Index: 1}, openedAt)
	req.ErrorIs(err, errors.ErrInvalidTransition)

	_, err = session.Apply(domain.PreviousStopCommand{Session: id}, openedAt)
	req.ErrorIs(err, errors.ErrInvalidTransition)

	events, err = session.Apply(domain.NextStopCommand{Session: id}, openedAt)
	req.NoError(err)
	changed := events[0].(event.StopChanged)
	req.Equal(1, changed.Index)
	req.Equal("2/2", changed.Progress)

	_, err = session.Apply(domain.NextStopCommand{Session: id}, openedAt)
	req.ErrorIs(err, errors.ErrInvalidTransition)

	events, err = session.Apply(domain.UpdateStopBossCommand{Session: id, Index: 1}, openedAt)
	req.NoError(err)
	req.Equal("Groudon", events[0].(event.StopUpdated).Stop.BossName)

	_, err = session.Apply(domain.UpdateStopBossCommand{Session: id, Index: 7}, openedAt)
	req.ErrorIs(err, errors.ErrUnknownTier)

	events, err = session.Apply(domain.UpdateStopCommand{Session: id, Time: lo.ToPtr("18:25")}, openedAt)
	req.NoError(err)
	req.Equal(domain.Stop{Time: "18:25", Location: "***** Fountain", BossName: "Groudon"}, events[0].(event.StopUpdated).Stop)
}

func TestSession_Stop_Commands_Need_A_Train(t *testing.T) {
	req := require.New(t)
	session := newRaidSession(openedAt)

	_, err := session.Apply(domain.NextStopCommand{Session: session.ID()}, openedAt)

	req.ErrorIs(err, errors.ErrNotATrain)
}

func TestSession_Rejected_And_Closed_Events(t *testing.T) {
	req := require.New(t)
	session := newRaidSession(openedAt)
	cmd := domain.NextStopCommand{Session: session.ID()}
	_, err := session.Apply(cmd, openedAt)

	rejected := session.Rejected(cmd, err, openedAt)
	req.Equal(session.ID(), rejected.SessionID())
	req.Equal("domain.NextStopCommand", rejected.Command)
	req.ErrorIs(rejected.Err, errors.ErrNotATrain)

	closed := session.Closed("expired", openedAt)
	req.Equal("expired", closed.Reason)
	req.Equal(session.ID(), closed.State().SessionID)
}
