package domain

import (
	"sort"
	"time"
)

type AuthorityState struct {
	OriginalAuthority    ActorID
	LastLegitimateChange time.Time
	SuspectedHijackers   map[ActorID]struct{}
}

func NewAuthorityState(now time.Time) AuthorityState {
	return AuthorityState{
		OriginalAuthority:    NoActor,
		LastLegitimateChange: now,
		SuspectedHijackers:   make(map[ActorID]struct{}),
	}
}

func (s AuthorityState) HasOriginal() bool {
	return s.OriginalAuthority != NoActor
}

// WithinCooldown reports whether now falls inside the cooldown that follows the
// last legitimate authority change.
func (s AuthorityState) WithinCooldown(now time.Time, cooldown time.Duration) bool {
	return now.Sub(s.LastLegitimateChange) <= cooldown
}

func (s AuthorityState) Suspects() []ActorID {
	out := make([]ActorID, 0, len(s.SuspectedHijackers))
	for id := range s.SuspectedHijackers {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s AuthorityState) Clone() AuthorityState {
	suspects := make(map[ActorID]struct{}, len(s.SuspectedHijackers))
	for id := range s.SuspectedHijackers {
		suspects[id] = struct{}{}
	}
	s.SuspectedHijackers = suspects
	return s
}
