package raid

import (
	"fmt"
	"strings"
	"time"

	"raid-lab/domain"

	"github.com/samber/lo"
)

// Sequencer is a raid train: a Coordinator visiting an ordered list of stops.
// Stop 0 is the home stop and carries the primary boss of the session.
type Sequencer struct {
	*Coordinator
	catalog domain.TierCatalog
	stops   []domain.Stop
	current int
}

func NewSequencer(opts Options, resolver domain.BossResolver, catalog domain.TierCatalog,
	createdAt time.Time, at, location string) *Sequencer {
	return &Sequencer{
		Coordinator: NewCoordinator(opts, resolver, createdAt),
		catalog:     catalog,
		stops:       []domain.Stop{{Time: at, Location: strings.TrimSpace(location)}},
	}
}

// AddLocation appends a stop unless one with the same location name,
// compared case-insensitively, already exists. New stops start with the
// primary boss.
func (s *Sequencer) AddLocation(at, location string) bool {
	location = strings.TrimSpace(location)
	if location == "" {
		return false
	}
	exists := lo.ContainsBy(s.stops, func(stop domain.Stop) bool {
		return domain.NormalizeName(stop.Location) == domain.NormalizeName(location)
	})
	if exists {
		return false
	}
	s.stops = append(s.stops, domain.Stop{Time: at, Location: location, BossName: s.boss.Name})
	return true
}

// UpdateLocation rewrites the time and/or location of the current stop.
func (s *Sequencer) UpdateLocation(at, location *string) bool {
	if at == nil && location == nil {
		return false
	}
	stop := &s.stops[s.current]
	if at != nil {
		stop.Time = *at
	}
	if location != nil {
		stop.Location = strings.TrimSpace(*location)
	}
	return true
}

// SetBoss stores the primary boss and writes its name on the home stop.
func (s *Sequencer) SetBoss(name string) bool {
	if !s.Coordinator.SetBoss(name) {
		return false
	}
	if len(s.stops) > 0 {
		s.stops[0].BossName = s.boss.Name
	}
	return true
}

// UpdateBoss picks the boss of the current stop from the tier list of the
// primary boss. The home stop always keeps the primary boss.
func (s *Sequencer) UpdateBoss(index int) bool {
	if s.current == 0 || s.catalog == nil {
		return false
	}
	names, err := s.catalog.ResolveTierCatalog(s.boss.Tier)
	if err != nil || index < 0 || index >= len(names) {
		return false
	}
	s.stops[s.current].BossName = names[index]
	return true
}

// NextLocation advances to the next stop. Readiness does not carry over:
// every ready member goes back to attending.
func (s *Sequencer) NextLocation() bool {
	if s.current >= len(s.stops)-1 {
		return false
	}
	s.current++
	s.resetReady()
	return true
}

// PreviousLocation steps back one stop, readiness is kept.
func (s *Sequencer) PreviousLocation() bool {
	if s.current == 0 {
		return false
	}
	s.current--
	return true
}

func (s *Sequencer) CurrentIndex() int { return s.current }

func (s *Sequencer) CurrentStop() domain.Stop {
	return s.stops[s.current]
}

// Stops returns a copy of the itinerary.
func (s *Sequencer) Stops() []domain.Stop {
	return append([]domain.Stop(nil), s.stops...)
}

// Progress renders the position as "current/total", starting at 1.
func (s *Sequencer) Progress() string {
	return fmt.Sprintf("%d/%d", s.current+1, len(s.stops))
}

func (s *Sequencer) Snapshot() domain.RaidSnapshot {
	snapshot := s.Coordinator.Snapshot()
	snapshot.Stops = s.Stops()
	snapshot.CurrentStop = s.current
	snapshot.Progress = s.Progress()
	return snapshot
}
