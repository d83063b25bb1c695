package usecase

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/stylescout/backend/internal/analyzer"
	"github.com/stylescout/backend/internal/domain"
)

// promptAcceptScore is the minimum free-text relevance score (1..3) that
// counts as a match for overlay purposes
const promptAcceptScore = 2

// ProductDetector finds product-image candidates in a page snapshot
type ProductDetector interface {
	Detect(snapshot domain.PageSnapshot) domain.DetectionResult
	SetDebug(enabled bool)
}

// AnalysisEngine is the scoring surface the orchestrator drives. Implemented
// by analyzer.Engine, one per strategy.
type AnalysisEngine interface {
	Initialize(ctx context.Context) bool
	Ready() bool
	AnalyzeBatch(ctx context.Context, images []domain.ImageCandidate, opts analyzer.Options, batch analyzer.BatchOptions) []domain.AnalysisResult
	ClearCache()
	CacheSize() int
	Destroy()
}

// ScoredCandidate is one detected candidate with its optional analysis.
// Accepted drives the extension's overlay choice (accept vs reject styling).
type ScoredCandidate struct {
	Candidate domain.ImageCandidate  `json:"candidate"`
	Verdict   domain.Verdict         `json:"verdict"`
	Analysis  *domain.AnalysisResult `json:"analysis,omitempty"`
	Accepted  bool                   `json:"accepted"`
}

// ScanResponse is the full outcome of one detectProducts command
type ScanResponse struct {
	PageID      string                    `json:"pageId"`
	PageType    domain.PageType           `json:"pageType"`
	RankingMode domain.RankingMode        `json:"rankingMode"`
	MarkerAttr  string                    `json:"markerAttr"`
	Detected    []ScoredCandidate         `json:"detected"`
	Rejected    []domain.CandidateVerdict `json:"rejected"`
}

// DetectionStats summarizes orchestrator state for the popup/dashboard
type DetectionStats struct {
	PagesTracked    int                `json:"pagesTracked"`
	TotalDetected   int                `json:"totalDetected"`
	TotalRejected   int                `json:"totalRejected"`
	RankingMode     domain.RankingMode `json:"rankingMode"`
	FilterState     domain.FilterState `json:"filterState"`
	RuntimeReady    bool               `json:"runtimeReady"`
	StyleCacheSize  int                `json:"styleCacheSize"`
	PromptCacheSize int                `json:"promptCacheSize"`
	DebugMode       bool               `json:"debugMode"`
	Disabled        bool               `json:"disabled"`
	RecentPrompts   []string           `json:"recentPrompts"`
}

// pageState is the per-page record kept between scans
type pageState struct {
	detected  int
	rejected  int
	scannedAt time.Time
}

// ScanService wires the detector into the active scoring strategy and owns
// the page-level state behind the extension's control surface. All commands
// are one-shot: the extension asks, the service answers, nothing streams.
type ScanService struct {
	detector     ProductDetector
	styleEngine  AnalysisEngine
	promptEngine AnalysisEngine
	settings     domain.SettingsStore
	profiles     domain.ProfileRepository
	batch        analyzer.BatchOptions

	mu                 sync.Mutex
	pages              map[string]*pageState
	debug              bool
	disabled           bool
	profileFingerprint string
}

// NewScanService creates the orchestrator. profiles may be nil when no
// wardrobe backend is configured; style scoring then runs without a profile.
func NewScanService(
	det ProductDetector,
	styleEngine, promptEngine AnalysisEngine,
	settings domain.SettingsStore,
	profiles domain.ProfileRepository,
	batch analyzer.BatchOptions,
) *ScanService {
	return &ScanService{
		detector:     det,
		styleEngine:  styleEngine,
		promptEngine: promptEngine,
		settings:     settings,
		profiles:     profiles,
		batch:        batch,
		pages:        make(map[string]*pageState),
	}
}

// DetectProducts runs one detection pass and, when a ranking mode is active,
// scores every detected candidate with the matching strategy. Scoring
// failures degrade per image; the scan itself never fails.
func (s *ScanService) DetectProducts(ctx context.Context, snapshot domain.PageSnapshot) (*ScanResponse, error) {
	if snapshot.PageID == "" || snapshot.URL == "" {
		return nil, domain.ErrInvalidRequest
	}
	if s.isDisabled() {
		log.Printf("[SCAN] extension disabled, skipping page %s", snapshot.PageID)
		return &ScanResponse{PageID: snapshot.PageID, RankingMode: domain.RankingModeOff, MarkerAttr: domain.DetectedMarkerAttr}, nil
	}

	detection := s.detector.Detect(snapshot)
	mode := s.settings.RankingMode()

	response := &ScanResponse{
		PageID:      snapshot.PageID,
		PageType:    detection.PageType,
		RankingMode: mode,
		MarkerAttr:  domain.DetectedMarkerAttr,
		Detected:    make([]ScoredCandidate, len(detection.Detected)),
		Rejected:    detection.Rejected,
	}
	for i, cv := range detection.Detected {
		response.Detected[i] = ScoredCandidate{Candidate: cv.Candidate, Verdict: cv.Verdict, Accepted: true}
	}

	if mode != domain.RankingModeOff && len(detection.Detected) > 0 {
		s.scoreCandidates(ctx, mode, response)
	}

	s.mu.Lock()
	s.pages[snapshot.PageID] = &pageState{
		detected:  len(detection.Detected),
		rejected:  len(detection.Rejected),
		scannedAt: time.Now(),
	}
	s.mu.Unlock()

	log.Printf("[SCAN] page %s (%s): %d detected, %d rejected, mode=%s",
		snapshot.PageID, detection.PageType, len(detection.Detected), len(detection.Rejected), mode)
	return response, nil
}

// scoreCandidates runs the active strategy's batch analysis over the
// detected set and stamps acceptance per the filter settings
func (s *ScanService) scoreCandidates(ctx context.Context, mode domain.RankingMode, response *ScanResponse) {
	engine, opts := s.activeEngine(ctx, mode)

	images := make([]domain.ImageCandidate, len(response.Detected))
	for i := range response.Detected {
		images[i] = response.Detected[i].Candidate
	}

	results := engine.AnalyzeBatch(ctx, images, opts, s.batch)
	filterState := s.settings.FilterState()
	for i := range results {
		result := results[i]
		response.Detected[i].Analysis = &result
		response.Detected[i].Accepted = s.accepted(mode, filterState, result.Score)
	}
}

// activeEngine resolves the engine and options for the current ranking mode.
// For style mode the profile is fetched fresh; a changed profile invalidates
// the whole style cache because style cache keys ignore profile content.
func (s *ScanService) activeEngine(ctx context.Context, mode domain.RankingMode) (AnalysisEngine, analyzer.Options) {
	if mode == domain.RankingModePrompt {
		return s.promptEngine, analyzer.Options{Query: s.settings.UserPrompt()}
	}

	opts := analyzer.Options{}
	if s.profiles != nil {
		profile, err := s.profiles.StyleProfile(ctx)
		if err != nil {
			log.Printf("[SCAN] style profile unavailable: %v", err)
		} else {
			opts.Profile = profile
			s.trackProfileChange(profile)
		}
	}
	return s.styleEngine, opts
}

func (s *ScanService) trackProfileChange(profile *domain.StyleProfile) {
	encoded, err := json.Marshal(profile)
	if err != nil {
		return
	}
	fingerprint := analyzer.Fingerprint(string(encoded))

	s.mu.Lock()
	changed := s.profileFingerprint != "" && s.profileFingerprint != fingerprint
	s.profileFingerprint = fingerprint
	s.mu.Unlock()

	if changed {
		log.Printf("[SCAN] style profile changed, clearing style cache")
		s.styleEngine.ClearCache()
	}
}

// accepted decides the overlay outcome for one scored candidate
func (s *ScanService) accepted(mode domain.RankingMode, filterState domain.FilterState, score int) bool {
	if mode == domain.RankingModePrompt {
		return score >= promptAcceptScore
	}
	switch filterState.Mode {
	case domain.FilterModeMyStyle:
		return score >= filterState.ScoreThreshold
	default:
		// off and all both leave every detected item visible
		return true
	}
}

// ClearDetection drops state for one page, or for every page when pageID is
// empty. The extension clears its overlays in the same breath.
func (s *ScanService) ClearDetection(pageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pageID == "" {
		s.pages = make(map[string]*pageState)
		log.Printf("[SCAN] cleared detection state for all pages")
		return
	}
	delete(s.pages, pageID)
	log.Printf("[SCAN] cleared detection state for page %s", pageID)
}

// EnableDebugMode toggles verbose logging on the service and the detector
func (s *ScanService) EnableDebugMode(enabled bool) {
	s.mu.Lock()
	s.debug = enabled
	s.mu.Unlock()
	s.detector.SetDebug(enabled)
	log.Printf("[SCAN] debug mode: %v", enabled)
}

// Stats reports orchestrator state for the popup/dashboard
func (s *ScanService) Stats(ctx context.Context) DetectionStats {
	s.mu.Lock()
	stats := DetectionStats{
		PagesTracked: len(s.pages),
		DebugMode:    s.debug,
		Disabled:     s.disabled,
	}
	for _, page := range s.pages {
		stats.TotalDetected += page.detected
		stats.TotalRejected += page.rejected
	}
	s.mu.Unlock()

	stats.RankingMode = s.settings.RankingMode()
	stats.FilterState = s.settings.FilterState()
	stats.RecentPrompts = s.settings.RecentPrompts()
	stats.StyleCacheSize = s.styleEngine.CacheSize()
	stats.PromptCacheSize = s.promptEngine.CacheSize()

	switch stats.RankingMode {
	case domain.RankingModePrompt:
		stats.RuntimeReady = s.promptEngine.Initialize(ctx)
	default:
		stats.RuntimeReady = s.styleEngine.Initialize(ctx)
	}
	return stats
}

// UpdateFilterState validates and persists a new overlay filter state
func (s *ScanService) UpdateFilterState(state domain.FilterState) error {
	return s.settings.SetFilterState(state)
}

// ApplyPrompt stores a free-text prompt and switches ranking to prompt mode.
// An empty prompt turns ranking off instead.
func (s *ScanService) ApplyPrompt(prompt string) error {
	s.settings.SetUserPrompt(prompt)
	if s.settings.UserPrompt() == "" {
		return s.settings.SetRankingMode(domain.RankingModeOff)
	}
	return s.settings.SetRankingMode(domain.RankingModePrompt)
}

// SwitchToStyleMode activates style-profile ranking
func (s *ScanService) SwitchToStyleMode() error {
	return s.settings.SetRankingMode(domain.RankingModeStyle)
}

// DisableExtension stops all scanning, clears page state and tears down both
// engines. Sessions already in flight are not cancelled.
func (s *ScanService) DisableExtension() {
	s.mu.Lock()
	s.disabled = true
	s.pages = make(map[string]*pageState)
	s.mu.Unlock()

	s.styleEngine.Destroy()
	s.promptEngine.Destroy()
	log.Printf("[SCAN] extension disabled")
}

func (s *ScanService) isDisabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}
