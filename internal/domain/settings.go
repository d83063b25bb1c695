package domain

// FilterMode controls which products get overlays
type FilterMode string

const (
	FilterModeOff     FilterMode = "off"
	FilterModeMyStyle FilterMode = "myStyle"
	FilterModeAll     FilterMode = "all"
)

// RankingMode selects the active scoring strategy
type RankingMode string

const (
	RankingModeOff    RankingMode = "off"
	RankingModeStyle  RankingMode = "style"
	RankingModePrompt RankingMode = "prompt"
)

// FilterState is the persisted overlay filter configuration
type FilterState struct {
	Mode           FilterMode `json:"mode"`
	ScoreThreshold int        `json:"scoreThreshold"` // 1..10, applied to style scores
}

// MaxRecentPrompts bounds the most-recent-first prompt history
const MaxRecentPrompts = 5

// SettingsStore persists extension configuration. Implementations must keep
// RecentPrompts most-recent-first, de-duplicated, and capped at
// MaxRecentPrompts.
type SettingsStore interface {
	FilterState() FilterState
	SetFilterState(state FilterState) error
	RankingMode() RankingMode
	SetRankingMode(mode RankingMode) error
	UserPrompt() string
	SetUserPrompt(prompt string)
	RecentPrompts() []string
}
