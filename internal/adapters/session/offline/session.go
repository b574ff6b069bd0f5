// Package offline is an in-memory ports.Session for tools that run outside a live
// session, such as the admin CLI, and for replaying recorded rosters.
package offline

import (
	"sort"
	"sync"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/ports"
)

type Session struct {
	mu        sync.RWMutex
	inSession bool
	members   map[domain.ActorID]domain.Participant
}

var _ ports.Session = (*Session)(nil)

// New returns a roster that is not in a session until Join is called.
func New() *Session {
	return &Session{members: make(map[domain.ActorID]domain.Participant)}
}

// Join adds or replaces a participant and marks the roster as in session. At
// most one participant is authority and at most one is local.
func (s *Session) Join(p domain.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.IsAuthority {
		s.clearAuthorityLocked()
	}
	if p.IsLocal {
		for id, m := range s.members {
			if m.IsLocal {
				m.IsLocal = false
				s.members[id] = m
			}
		}
	}
	s.members[p.ActorID] = p
	s.inSession = true
}

func (s *Session) Leave(id domain.ActorID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, id)
}

// SetAuthority moves the authority role to id. It reports false when id is not
// in the roster.
func (s *Session) SetAuthority(id domain.ActorID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.members[id]
	if !ok {
		return false
	}
	s.clearAuthorityLocked()
	p.IsAuthority = true
	s.members[id] = p
	return true
}

// SetIdentity updates the platform identity of a participant already in the roster.
func (s *Session) SetIdentity(id domain.ActorID, identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.members[id]
	if !ok {
		return false
	}
	p.PlatformIdentity = identity
	s.members[id] = p
	return true
}

// Close leaves the session and clears the roster.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = make(map[domain.ActorID]domain.Participant)
	s.inSession = false
}

func (s *Session) clearAuthorityLocked() {
	for id, m := range s.members {
		if m.IsAuthority {
			m.IsAuthority = false
			s.members[id] = m
		}
	}
}

func (s *Session) InSession() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inSession
}

func (s *Session) Local() (domain.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.IsLocal {
			return m, true
		}
	}
	return domain.Participant{}, false
}

// Participants returns the roster ordered by actor id.
func (s *Session) Participants() []domain.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Participant, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActorID < out[j].ActorID })
	return out
}

func (s *Session) Participant(id domain.ActorID) (domain.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.members[id]
	return p, ok
}

func (s *Session) Authority() (domain.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.IsAuthority {
			return m, true
		}
	}
	return domain.Participant{}, false
}
