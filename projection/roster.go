// Package projection builds local read models from observed events.
// Does not emit events or interact with UI directly.
package projection

import (
	"context"
	"sort"
	"sync"

	"raid-lab/contract"
	"raid-lab/domain"
	"raid-lab/domain/event"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var _ contract.EventSink = (*Roster)(nil)

// Roster holds the latest snapshot of every open session.
// A closed session never comes back, late events are ignored.
type Roster struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.RaidSnapshot
	closed   map[uuid.UUID]struct{}
}

func NewRoster() *Roster {
	return &Roster{
		sessions: make(map[uuid.UUID]domain.RaidSnapshot),
		closed:   make(map[uuid.UUID]struct{}),
	}
}

func (r *Roster) Consume(_ context.Context, e event.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := e.SessionID()
	if _, ok := r.closed[id]; ok {
		return nil
	}
	if _, ok := e.(event.SessionClosed); ok {
		delete(r.sessions, id)
		r.closed[id] = struct{}{}
		return nil
	}
	r.sessions[id] = e.State()
	return nil
}

func (r *Roster) Get(id uuid.UUID) (domain.RaidSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Sessions returns the snapshots, oldest session first.
func (r *Roster) Sessions() []domain.RaidSnapshot {
	r.mu.RLock()
	sessions := lo.Values(r.sessions)
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].SessionID.String() < sessions[j].SessionID.String()
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions
}
