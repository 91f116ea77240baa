package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"raid-lab/contract"
	"raid-lab/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const usage = `open raid|mule <boss>            open a session
open train <boss> <time> <where> open a raid train
sessions                         list the sessions opened here
use <n>                          switch to session n
join <user> [size]               join with a party
ready <user> | leave <user>      mark ready, leave
request <user>                   ask for a remote invite
invite <requester> <accepter>    accept a pending invite
page next|prev                   move over the pending invites
boss <name>                      change the boss
stop add <time> <where>          add a train stop
stop set time|where <value>      rewrite the current stop
stop next|prev                   move along the train
stop boss <index>                pick the tier boss of the current stop
show | close | help | quit`

// Console turns typed lines into orchestrator calls on the current session.
type Console struct {
	orchestrator contract.IOrchestrator
	out          io.Writer
	opened       []uuid.UUID
	current      uuid.UUID
}

func NewConsole(orchestrator contract.IOrchestrator, out io.Writer) *Console {
	return &Console{orchestrator: orchestrator, out: out}
}

// Execute runs one line. It returns true once the user asked to quit.
func (c *Console) Execute(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(c.out, usage)
		return false, nil
	case "open":
		return false, c.open(args)
	case "sessions":
		return false, c.sessions()
	case "use":
		return false, c.use(args)
	case "show":
		return false, c.show()
	case "close":
		return false, c.close()
	}

	cmd, err := c.command(strings.ToLower(fields[0]), args)
	if err != nil {
		return false, err
	}
	return false, c.orchestrator.Dispatch(cmd)
}

func (c *Console) open(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: open raid|mule <boss> or open train <boss> <time> <where>")
	}
	var (
		id  uuid.UUID
		err error
	)
	switch strings.ToLower(args[0]) {
	case "raid":
		id, err = c.orchestrator.OpenRaid(strings.Join(args[1:], " "))
	case "mule":
		id, err = c.orchestrator.OpenMule(strings.Join(args[1:], " "))
	case "train":
		if len(args) < 4 {
			return fmt.Errorf("usage: open train <boss> <time> <where>")
		}
		id, err = c.orchestrator.OpenTrain(args[1], args[2], strings.Join(args[3:], " "))
	default:
		return fmt.Errorf("unknown session kind %q", args[0])
	}
	if err != nil {
		return err
	}
	c.opened = append(c.opened, id)
	c.current = id
	fmt.Fprintf(c.out, "session %d opened (%s)\n", len(c.opened), id)
	return nil
}

func (c *Console) sessions() error {
	for i, id := range c.opened {
		snapshot, err := c.orchestrator.Snapshot(id)
		if err != nil {
			continue
		}
		marker := " "
		if id == c.current {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s %d %s %s %d players\n", marker, i+1, snapshot.Kind, snapshot.Boss.Name, snapshot.TotalPlayers())
	}
	return nil
}

func (c *Console) use(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: use <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(c.opened) {
		return fmt.Errorf("no session %q", args[0])
	}
	c.current = c.opened[n-1]
	return nil
}

func (c *Console) show() error {
	snapshot, err := c.orchestrator.Snapshot(c.current)
	if err != nil {
		return err
	}
	Render(c.out, snapshot)
	return nil
}

func (c *Console) close() error {
	if err := c.orchestrator.Close(c.current, "closed by host"); err != nil {
		return err
	}
	c.opened = lo.Without(c.opened, c.current)
	c.current = uuid.Nil
	return nil
}

func (c *Console) command(verb string, args []string) (domain.Command, error) {
	if c.current == uuid.Nil {
		return nil, fmt.Errorf("no session in use, open one first")
	}
	switch verb {
	case "join":
		if len(args) < 1 || len(args) > 2 {
			return nil, fmt.Errorf("usage: join <user> [size]")
		}
		size := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return nil, fmt.Errorf("party size %q: %w", args[1], err)
			}
			size = n
		}
		return domain.JoinCommand{Session: c.current, Participant: domain.ParticipantID(args[0]), PartySize: size}, nil
	case "ready", "leave", "request":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: %s <user>", verb)
		}
		p := domain.ParticipantID(args[0])
		switch verb {
		case "ready":
			return domain.ReadyCommand{Session: c.current, Participant: p}, nil
		case "leave":
			return domain.LeaveCommand{Session: c.current, Participant: p}, nil
		default:
			return domain.RequestInviteCommand{Session: c.current, Participant: p}, nil
		}
	case "invite":
		if len(args) != 2 {
			return nil, fmt.Errorf("usage: invite <requester> <accepter>")
		}
		return domain.AcceptInviteCommand{
			Session:   c.current,
			Requester: domain.ParticipantID(args[0]),
			Accepter:  domain.ParticipantID(args[1]),
		}, nil
	case "page":
		if len(args) != 1 || (args[0] != "next" && args[0] != "prev") {
			return nil, fmt.Errorf("usage: page next|prev")
		}
		return domain.InvitePageCommand{Session: c.current, Forward: args[0] == "next"}, nil
	case "boss":
		if len(args) == 0 {
			return nil, fmt.Errorf("usage: boss <name>")
		}
		return domain.SelectBossCommand{Session: c.current, Name: strings.Join(args, " ")}, nil
	case "stop":
		return c.stop(args)
	}
	return nil, fmt.Errorf("unknown command %q, type help", verb)
}

func (c *Console) stop(args []string) (domain.Command, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: stop add|set|next|prev|boss")
	}
	switch args[0] {
	case "add":
		if len(args) < 3 {
			return nil, fmt.Errorf("usage: stop add <time> <where>")
		}
		return domain.AddStopCommand{Session: c.current, Time: args[1], Location: strings.Join(args[2:], " ")}, nil
	case "set":
		if len(args) < 3 {
			return nil, fmt.Errorf("usage: stop set time|where <value>")
		}
		value := strings.Join(args[2:], " ")
		switch args[1] {
		case "time":
			return domain.UpdateStopCommand{Session: c.current, Time: &value}, nil
		case "where":
			return domain.UpdateStopCommand{Session: c.current, Location: &value}, nil
		}
		return nil, fmt.Errorf("usage: stop set time|where <value>")
	case "next":
		return domain.NextStopCommand{Session: c.current}, nil
	case "prev":
		return domain.PreviousStopCommand{Session: c.current}, nil
	case "boss":
		if len(args) != 2 {
			return nil, fmt.Errorf("usage: stop boss <index>")
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("boss index %q: %w", args[1], err)
		}
		return domain.UpdateStopBossCommand{Session: c.current, Index: index}, nil
	}
	return nil, fmt.Errorf("unknown stop command %q", args[0])
}
