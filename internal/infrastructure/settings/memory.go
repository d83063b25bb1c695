package settings

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/stylescout/backend/internal/domain"
)

// MemoryStore is an in-process settings store. It stands in for the
// extension's persistent key-value storage; a process restart resets every
// value to its default.
type MemoryStore struct {
	mu            sync.RWMutex
	filterState   domain.FilterState
	rankingMode   domain.RankingMode
	userPrompt    string
	recentPrompts []string
}

// NewMemoryStore creates a settings store with default values
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		filterState: domain.FilterState{Mode: domain.FilterModeOff, ScoreThreshold: 6},
		rankingMode: domain.RankingModeOff,
	}
}

// FilterState returns the current overlay filter configuration
func (s *MemoryStore) FilterState() domain.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterState
}

// SetFilterState validates and stores a new filter configuration
func (s *MemoryStore) SetFilterState(state domain.FilterState) error {
	switch state.Mode {
	case domain.FilterModeOff, domain.FilterModeMyStyle, domain.FilterModeAll:
	default:
		return fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidFilterState, state.Mode)
	}
	if state.ScoreThreshold < 1 || state.ScoreThreshold > 10 {
		return fmt.Errorf("%w: threshold %d outside 1..10", domain.ErrInvalidFilterState, state.ScoreThreshold)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterState = state
	log.Printf("[SETTINGS] filter state: mode=%s threshold=%d", state.Mode, state.ScoreThreshold)
	return nil
}

// RankingMode returns the active scoring strategy selector
func (s *MemoryStore) RankingMode() domain.RankingMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rankingMode
}

// SetRankingMode validates and stores the strategy selector
func (s *MemoryStore) SetRankingMode(mode domain.RankingMode) error {
	switch mode {
	case domain.RankingModeOff, domain.RankingModeStyle, domain.RankingModePrompt:
	default:
		return fmt.Errorf("%w: unknown ranking mode %q", domain.ErrInvalidRequest, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankingMode = mode
	log.Printf("[SETTINGS] ranking mode: %s", mode)
	return nil
}

// UserPrompt returns the active free-text search prompt
func (s *MemoryStore) UserPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userPrompt
}

// SetUserPrompt stores the prompt and records it in the history. History is
// most-recent-first, de-duplicated, capped at MaxRecentPrompts; an empty
// prompt clears the active prompt without touching the history.
func (s *MemoryStore) SetUserPrompt(prompt string) {
	prompt = strings.TrimSpace(prompt)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.userPrompt = prompt
	if prompt == "" {
		return
	}

	history := make([]string, 0, domain.MaxRecentPrompts)
	history = append(history, prompt)
	for _, previous := range s.recentPrompts {
		if previous == prompt || len(history) == domain.MaxRecentPrompts {
			continue
		}
		history = append(history, previous)
	}
	s.recentPrompts = history
}

// RecentPrompts returns a copy of the prompt history
func (s *MemoryStore) RecentPrompts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]string, len(s.recentPrompts))
	copy(history, s.recentPrompts)
	return history
}
