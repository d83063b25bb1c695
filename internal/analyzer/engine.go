package analyzer

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stylescout/backend/internal/domain"
	"github.com/stylescout/backend/internal/infrastructure/cache"
)

const (
	defaultCacheCapacity = 100
	defaultCallTimeout   = 30 * time.Second
	defaultBatchSize     = 3
	defaultBatchDelay    = 500 * time.Millisecond

	// Fixed text part sent with the multimodal turn; the real question goes
	// out as a separate prompt on the same session.
	imagePlaceholderText = "This is a product image from a clothing store."

	stylistSystemPrompt = "You are a professional fashion stylist. Judge clothing items precisely and respond only in the requested format, in English."
)

// Config holds engine tuning
type Config struct {
	CacheCapacity     int
	ShortCircuitCache bool
	CallTimeout       time.Duration
	Debug             bool
}

// BatchOptions control AnalyzeBatch chunking
type BatchOptions struct {
	Size       int
	Delay      time.Duration
	OnProgress func(done, total int)
}

// Engine turns one ImageCandidate plus strategy options into one
// AnalysisResult via an on-device model session, with caching, batching and
// graceful degradation when the runtime is unavailable. Safe for concurrent
// use across different images; each analysis creates and destroys its own
// session.
type Engine struct {
	runtime  domain.ModelRuntime
	fetcher  domain.ImageFetcher
	strategy Strategy
	cache    *cache.FIFO[domain.AnalysisResult]
	cfg      Config

	mu          sync.Mutex
	initialized bool
	available   bool
	imageInput  bool
}

// NewEngine creates an analysis engine for one strategy
func NewEngine(runtime domain.ModelRuntime, fetcher domain.ImageFetcher, strategy Strategy, cfg Config) *Engine {
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = defaultCacheCapacity
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	return &Engine{
		runtime:  runtime,
		fetcher:  fetcher,
		strategy: strategy,
		cache:    cache.NewFIFO[domain.AnalysisResult](cfg.CacheCapacity),
		cfg:      cfg,
	}
}

// Initialize probes runtime availability and verifies functional health with
// a throwaway session. Idempotent: once initialized, repeat calls
// short-circuit. Returns false on any probe failure and never panics; a
// runtime still downloading its model leaves the engine uninitialized so a
// later call re-probes.
func (e *Engine) Initialize(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return e.available
	}

	probeCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()

	availability, err := e.runtime.Availability(probeCtx)
	if err != nil {
		log.Printf("[ANALYZE] %s: availability probe failed: %v", e.strategy.Name, err)
		return false
	}

	switch availability {
	case domain.AvailabilityNo:
		e.initialized = true
		e.available = false
		log.Printf("[ANALYZE] %s: model runtime unavailable, falling back to neutral scores", e.strategy.Name)
		return false
	case domain.AvailabilityAfterDownload:
		log.Printf("[ANALYZE] %s: model still downloading, will re-probe", e.strategy.Name)
		return false
	}

	session, err := e.runtime.CreateSession(probeCtx, e.sessionOptions(true))
	if err == nil {
		e.imageInput = true
	} else {
		// image input unsupported; try text-only before giving up
		session, err = e.runtime.CreateSession(probeCtx, e.sessionOptions(false))
		if err != nil {
			log.Printf("[ANALYZE] %s: health-check session failed: %v", e.strategy.Name, err)
			return false
		}
		e.imageInput = false
	}
	session.Destroy()

	e.initialized = true
	e.available = true
	if e.cfg.Debug {
		log.Printf("[ANALYZE] %s: initialized (image input: %v)", e.strategy.Name, e.imageInput)
	}
	return true
}

// Ready reports whether the engine initialized against a healthy runtime
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized && e.available
}

// Analyze scores one image. It never returns an error: capability,
// conversion and parse failures all degrade to tagged neutral results.
func (e *Engine) Analyze(ctx context.Context, image domain.ImageCandidate, opts Options) domain.AnalysisResult {
	if !e.Initialize(ctx) {
		return e.fallback(domain.MethodFallback, "model runtime unavailable")
	}

	key := e.strategy.CacheKey(image, opts)
	if e.cfg.ShortCircuitCache {
		if cached, cachedAt, ok := e.cache.Get(key); ok {
			cached.CachedAt = cachedAt
			if e.cfg.Debug {
				log.Printf("[ANALYZE] %s: cache hit %s", e.strategy.Name, Fingerprint(key))
			}
			return cached
		}
	}

	result := e.analyzeOnce(ctx, image, opts)

	// only real model answers are worth pinning in the cache
	if result.Method == domain.MethodAIAnalysis {
		e.cache.Put(key, result)
	}
	return result
}

// analyzeOnce runs one full session round trip for one image
func (e *Engine) analyzeOnce(ctx context.Context, image domain.ImageCandidate, opts Options) domain.AnalysisResult {
	asset := e.imageAsset(ctx, image)
	if e.strategy.RequireImage && asset == nil {
		return e.fallback(domain.MethodErrorFallback, "image asset unavailable")
	}

	prompt := e.strategy.BuildPrompt(image, opts)

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()

	withImage := asset != nil && e.supportsImageInput()
	session, err := e.runtime.CreateSession(callCtx, e.sessionOptions(withImage))
	if err != nil {
		log.Printf("[ANALYZE] %s: session create failed: %v", e.strategy.Name, err)
		return e.fallback(domain.MethodErrorFallback, "session creation failed")
	}
	// sessions are never pooled: one analysis, one lifetime
	defer session.Destroy()

	turn := domain.Turn{Text: imagePlaceholderText}
	if withImage {
		turn.ImageJPEG = asset
	}
	if err := session.Append(callCtx, []domain.Turn{turn}); err != nil {
		log.Printf("[ANALYZE] %s: append failed: %v", e.strategy.Name, err)
		return e.fallback(domain.MethodErrorFallback, "failed to submit image to model")
	}

	raw, err := session.Prompt(callCtx, prompt)
	if err != nil {
		log.Printf("[ANALYZE] %s: prompt failed: %v", e.strategy.Name, err)
		return e.fallback(domain.MethodErrorFallback, "model prompt failed")
	}

	result := parseResponse(raw, e.strategy.MaxScore)
	if e.cfg.Debug {
		log.Printf("[ANALYZE] %s: %s scored %d (%s)",
			e.strategy.Name, Fingerprint(image.SourceURL), result.Score, result.Method)
	}
	return result
}

// AnalyzeBatch partitions images into fixed-size chunks, analyzes each
// chunk's members concurrently, and sleeps between chunks (never after the
// last) to avoid overwhelming the on-device model. Result order always
// matches input order.
func (e *Engine) AnalyzeBatch(ctx context.Context, images []domain.ImageCandidate, opts Options, batch BatchOptions) []domain.AnalysisResult {
	if batch.Size <= 0 {
		batch.Size = defaultBatchSize
	}
	if batch.Delay <= 0 {
		batch.Delay = defaultBatchDelay
	}

	results := make([]domain.AnalysisResult, len(images))
	for start := 0; start < len(images); start += batch.Size {
		end := min(start+batch.Size, len(images))

		g := new(errgroup.Group)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				results[i] = e.Analyze(ctx, images[i], opts)
				return nil
			})
		}
		_ = g.Wait()

		if batch.OnProgress != nil {
			batch.OnProgress(end, len(images))
		}

		if end < len(images) {
			select {
			case <-time.After(batch.Delay):
			case <-ctx.Done():
				for i := end; i < len(images); i++ {
					results[i] = e.fallback(domain.MethodErrorFallback, "batch cancelled")
				}
				return results
			}
		}
	}
	return results
}

// ClearCache drops all cached results. Required whenever the global style
// profile changes, since style cache keys derive from image source only.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// CacheSize returns the number of cached results (for stats)
func (e *Engine) CacheSize() int {
	return e.cache.Size()
}

// StrategyName identifies the engine's strategy in stats and logs
func (e *Engine) StrategyName() string {
	return e.strategy.Name
}

// Destroy clears the cache and marks the engine uninitialized. Sessions
// already in flight are not cancelled.
func (e *Engine) Destroy() {
	e.cache.Clear()
	e.mu.Lock()
	e.initialized = false
	e.available = false
	e.imageInput = false
	e.mu.Unlock()
}

// imageAsset converts the candidate's source into a JPEG part. Failures
// degrade to a nil asset (text-only analysis) unless the strategy requires
// an image.
func (e *Engine) imageAsset(ctx context.Context, image domain.ImageCandidate) []byte {
	if image.SourceURL == "" || e.fetcher == nil {
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()

	asset, err := e.fetcher.FetchJPEG(fetchCtx, image.SourceURL)
	if err != nil {
		log.Printf("[ANALYZE] %s: image asset failed for %s: %v",
			e.strategy.Name, Fingerprint(image.SourceURL), err)
		return nil
	}
	return asset
}

func (e *Engine) supportsImageInput() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.imageInput
}

func (e *Engine) sessionOptions(expectImage bool) domain.SessionOptions {
	return domain.SessionOptions{
		Temperature:      0,
		TopK:             3,
		OutputLanguage:   "en",
		SystemPrompt:     stylistSystemPrompt,
		ExpectImageInput: expectImage,
	}
}

func (e *Engine) fallback(method domain.AnalysisMethod, reasoning string) domain.AnalysisResult {
	return domain.AnalysisResult{
		Success:   false,
		Score:     domain.NeutralScore(e.strategy.MaxScore),
		Reasoning: reasoning,
		Method:    method,
	}
}
