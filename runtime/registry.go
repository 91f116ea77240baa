package runtime

import (
	"sort"
	"sync"
	"time"

	"raid-lab/contract"
	"raid-lab/domain"
	"raid-lab/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var _ contract.IRegistry = (*Registry)(nil)

type Set map[domain.ParticipantID]struct{}

// Registry is the directory of open sessions and of the sinks subscribed to
// each of them.
type Registry struct {
	mu             sync.RWMutex
	sessions       map[uuid.UUID]*Session
	sinks          map[domain.ParticipantID]contract.EventSink // participant -> sink
	sessionMembers map[uuid.UUID]Set                           // session -> subscribed participants
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:       make(map[uuid.UUID]*Session),
		sinks:          make(map[domain.ParticipantID]contract.EventSink),
		sessionMembers: make(map[uuid.UUID]Set),
	}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return s, nil
}

// Remove forgets the session and every subscription to it.
func (r *Registry) Remove(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	delete(r.sessions, id)
	for participantID := range r.sessionMembers[id] {
		if !r.subscribedElsewhere(participantID, id) {
			delete(r.sinks, participantID)
		}
	}
	delete(r.sessionMembers, id)
	return s, true
}

// List returns the open sessions, oldest first.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	sessions := lo.Values(r.sessions)
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i].Snapshot().CreatedAt, sessions[j].Snapshot().CreatedAt
		if a.Equal(b) {
			return sessions[i].ID().String() < sessions[j].ID().String()
		}
		return a.Before(b)
	})
	return sessions
}

// Expired returns the sessions without activity for longer than ttl.
func (r *Registry) Expired(now time.Time, ttl time.Duration) []*Session {
	return lo.Filter(r.List(), func(s *Session, _ int) bool {
		return now.Sub(s.LastActivity()) > ttl
	})
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// GetSinksForSession resolves the participants subscribed to a session into
// their sinks. Returns nil when nobody listens.
func (r *Registry) GetSinksForSession(sessionID uuid.UUID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.sessionMembers[sessionID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for participantID := range members {
		if sink, exists := r.sinks[participantID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

func (r *Registry) Subscribe(participantID domain.ParticipantID, sessionID uuid.UUID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sinks[participantID] = sink
	if _, ok := r.sessionMembers[sessionID]; !ok {
		r.sessionMembers[sessionID] = make(Set)
	}
	r.sessionMembers[sessionID][participantID] = struct{}{}
}

// Unsubscribe drops the subscription, and the sink once the participant
// follows no session anymore. Empty sets are removed.
func (r *Registry) Unsubscribe(participantID domain.ParticipantID, sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.sessionMembers[sessionID]; ok {
		delete(members, participantID)
		if len(members) == 0 {
			delete(r.sessionMembers, sessionID)
		}
	}
	if !r.subscribedElsewhere(participantID, sessionID) {
		delete(r.sinks, participantID)
	}
}

func (r *Registry) subscribedElsewhere(participantID domain.ParticipantID, sessionID uuid.UUID) bool {
	for id, members := range r.sessionMembers {
		if id == sessionID {
			continue
		}
		if _, ok := members[participantID]; ok {
			return true
		}
	}
	return false
}
