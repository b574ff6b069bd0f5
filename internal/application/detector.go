package application

import (
	"context"

	"github.com/bnema/session-guard/internal/domain"
)

// ReportFunc is the single callback third-party detectors use to report a
// cheating participant.
type ReportFunc func(ctx context.Context, p domain.Participant, reason, identity string) error

// DetectorBridge adapts one optional third-party detector.
type DetectorBridge interface {
	Name() string
	Attach(report ReportFunc) error
}

// DetectorProbe reports whether a detector is installed and, if so, returns
// its bridge.
type DetectorProbe func() (DetectorBridge, bool)

// StaticProbe wraps an always-present bridge.
func StaticProbe(bridge DetectorBridge) DetectorProbe {
	return func() (DetectorBridge, bool) {
		return bridge, bridge != nil
	}
}
