package config

import (
	"sync"

	"github.com/bnema/session-guard/internal/domain"
)

// Settings holds the values that may change while a session is running. The
// engine reads Strategy once per sweep.
type Settings struct {
	mu         sync.RWMutex
	strategy   domain.Strategy
	autoDetect bool
}

func NewSettings(cfg Config) *Settings {
	strategy := cfg.EnforcementMode
	if !strategy.Valid() {
		strategy = domain.StrategyAggressive
	}
	return &Settings{
		strategy:   strategy,
		autoDetect: cfg.AutoDetect,
	}
}

func (s *Settings) Strategy() domain.Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.strategy
}

func (s *Settings) SetStrategy(strategy domain.Strategy) error {
	if !strategy.Valid() {
		return domain.ErrInvalidStrategy
	}
	s.mu.Lock()
	s.strategy = strategy
	s.mu.Unlock()
	return nil
}

func (s *Settings) AutoDetect() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoDetect
}

func (s *Settings) SetAutoDetect(enabled bool) {
	s.mu.Lock()
	s.autoDetect = enabled
	s.mu.Unlock()
}
