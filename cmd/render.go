package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"raid-lab/domain"
	"raid-lab/domain/event"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// Render prints one session: a header, a table per group, pending invites and train stops.
func Render(out io.Writer, s domain.RaidSnapshot) {
	header := fmt.Sprintf("  ====== %s %s (tier %d) ======", strings.ToUpper(string(s.Kind)), s.Boss.Name, s.Boss.Tier)
	fmt.Fprintln(out, color.New(color.BgBlack, color.FgGreen).Render(header))

	for i, g := range s.Groups {
		fmt.Fprintf(out, "Group %d  %d/%d players\n", i+1, g.TotalPlayers, g.Capacity)
		table := newTable(out, []string{"Player", "Party", "State", "Invited by"})
		for _, m := range g.Attending {
			table.Append([]string{m.ID.String(), strconv.Itoa(m.PartySize), domain.Attending.String(), ""})
		}
		for _, m := range g.Ready {
			table.Append([]string{m.ID.String(), strconv.Itoa(m.PartySize), domain.Ready.String(), ""})
		}
		for _, inv := range g.Invited {
			table.Append([]string{inv.Requester.String(), "1", domain.Invited.String(), inv.Accepter.String()})
		}
		table.Render()
	}

	if len(s.PendingInvites) > 0 {
		pending := lo.Map(s.PendingInvites, func(p domain.ParticipantID, _ int) string { return p.String() })
		fmt.Fprintf(out, "Pending invites (page %d): %s\n", s.InvitePage+1, strings.Join(pending, ", "))
	}

	if len(s.Stops) > 0 {
		fmt.Fprintf(out, "Stops %s\n", s.Progress)
		table := newTable(out, []string{"", "Time", "Where", "Boss"})
		for i, stop := range s.Stops {
			marker := ""
			if i == s.CurrentStop {
				marker = ">"
			}
			table.Append([]string{marker, stop.Time, stop.Location, stop.BossName})
		}
		table.Render()
	}
}

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// Describe gives the one-line console form of an event.
func Describe(e event.DomainEvent) string {
	switch evt := e.(type) {
	case event.SessionOpened:
		return fmt.Sprintf("%s opened for %s", evt.Kind, evt.Snapshot.Boss.Name)
	case event.SessionClosed:
		return fmt.Sprintf("session closed: %s", evt.Reason)
	case event.PlayerJoined:
		return fmt.Sprintf("%s joined with %d in group %d", evt.Participant, evt.PartySize, evt.GroupIndex+1)
	case event.PlayerReadied:
		if evt.AllReady {
			return fmt.Sprintf("%s is ready, everyone is ready", evt.Participant)
		}
		return fmt.Sprintf("%s is ready", evt.Participant)
	case event.PlayerLeft:
		if len(evt.Cascaded) > 0 {
			return fmt.Sprintf("%s left, back to pending: %v", evt.Participant, evt.Cascaded)
		}
		return fmt.Sprintf("%s left", evt.Participant)
	case event.InviteRequested:
		return fmt.Sprintf("%s asks for an invite", evt.Participant)
	case event.InviteAccepted:
		return fmt.Sprintf("%s invited by %s in group %d", evt.Requester, evt.Accepter, evt.GroupIndex+1)
	case event.InvitePageChanged:
		return fmt.Sprintf("invite page %d", evt.Page+1)
	case event.BossSelected:
		return fmt.Sprintf("boss is now %s", evt.Boss.Name)
	case event.StopAdded:
		return fmt.Sprintf("stop %d added: %s at %s", evt.Index+1, evt.Stop.Location, evt.Stop.Time)
	case event.StopUpdated:
		return fmt.Sprintf("stop %d is now %s at %s (%s)", evt.Index+1, evt.Stop.Location, evt.Stop.Time, evt.Stop.BossName)
	case event.StopChanged:
		return fmt.Sprintf("heading to %s %s", evt.Stop.Location, evt.Progress)
	case event.CommandRejected:
		return color.FgRed.Render(fmt.Sprintf("rejected %s: %v", evt.Command, evt.Err))
	}
	return fmt.Sprintf("%T", e)
}
