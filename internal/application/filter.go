package application

import (
	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/metrics"
	"github.com/bnema/session-guard/internal/ports"
)

// BanChecker is the part of the registry the event filter needs.
type BanChecker interface {
	IsParticipantBanned(p domain.Participant) bool
}

// EventFilter decides whether an inbound session event reaches the host's
// normal dispatch. Banned senders only get their leave notifications through.
type EventFilter struct {
	session ports.Session
	bans    BanChecker
	metrics *metrics.Metrics
}

func NewEventFilter(session ports.Session, bans BanChecker, m *metrics.Metrics) *EventFilter {
	return &EventFilter{session: session, bans: bans, metrics: m}
}

// ShouldAdmit never logs: a banned sender flooding events must not flood the
// log as well. It admits the event if anything below it panics.
func (f *EventFilter) ShouldAdmit(sender domain.ActorID, category domain.EventCategory) (admit bool) {
	defer func() {
		if recover() != nil {
			admit = true
		}
	}()

	p, ok := f.session.Participant(sender)
	if !ok || p.IsLocal {
		return true
	}
	if !f.bans.IsParticipantBanned(p) {
		return true
	}
	if category.AdmitsBannedSender() {
		return true
	}

	f.metrics.RecordDroppedEvent()
	return false
}

// ShouldAdmitCode is ShouldAdmit for a raw transport event code.
func (f *EventFilter) ShouldAdmitCode(sender domain.ActorID, code byte) bool {
	return f.ShouldAdmit(sender, domain.EventCategoryFromCode(code))
}
