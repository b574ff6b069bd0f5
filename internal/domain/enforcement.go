package domain

import (
	"fmt"
	"strings"
	"time"
)

type Strategy string

const (
	// StrategyAggressive repeats displacement and message bursts until the target leaves.
	StrategyAggressive Strategy = "Aggressive"
	// StrategyPassive displaces once and relies on the event filter afterwards.
	StrategyPassive Strategy = "Passive"

	legacyAggressive = "aggressivekick"
	legacyPassive    = "passivekick"
)

func ParseStrategy(raw string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "aggressive", legacyAggressive:
		return StrategyAggressive, nil
	case "passive", legacyPassive:
		return StrategyPassive, nil
	default:
		return "", fmt.Errorf("%w %q (want Aggressive or Passive)", ErrInvalidStrategy, raw)
	}
}

func (s Strategy) Valid() bool {
	return s == StrategyAggressive || s == StrategyPassive
}

func (s Strategy) String() string {
	return string(s)
}

type EnforcementTarget struct {
	ActorID     ActorID
	DisplayName string
	Since       time.Time
}
