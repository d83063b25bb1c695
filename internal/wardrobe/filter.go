package wardrobe

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/stylescout/backend/internal/domain"
	"github.com/stylescout/backend/internal/infrastructure/cache"
)

const defaultCacheCapacity = 20

// Filter is the fast, non-visual first stage of wardrobe matching. It trims
// the wardrobe to outfit-relevant categories, delegates attribute comparison
// to the AI filter relay, and caches shortlists per (product, wardrobe
// snapshot). A malformed or failed relay reply degrades to an empty
// shortlist; the caller never sees an error from a bad reply, only from a
// cancelled context.
type Filter struct {
	relay domain.FilterRelay
	cache *cache.FIFO[[]domain.WardrobeItem]
	debug bool
}

// NewFilter creates an attribute filter over the given relay
func NewFilter(relay domain.FilterRelay) *Filter {
	return &Filter{
		relay: relay,
		cache: cache.NewFIFO[[]domain.WardrobeItem](defaultCacheCapacity),
	}
}

// SetDebug enables verbose filtering logs
func (f *Filter) SetDebug(enabled bool) {
	f.debug = enabled
}

// FilterByAttributes returns the wardrobe items worth a visual comparison
// against the product. Results are cached; the cache key covers the product
// identity and the exact set of submitted item ids, so a changed wardrobe
// naturally misses, and InvalidateCache drops stale shortlists wholesale.
func (f *Filter) FilterByAttributes(ctx context.Context, product domain.ProductSummary, items []domain.WardrobeItem) ([]domain.WardrobeItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	candidates := f.relevantItems(product, items)
	if len(candidates) == 0 {
		if f.debug {
			log.Printf("[WARDROBE] no outfit-relevant items for product %s (%s)", product.ID, product.Category)
		}
		return nil, nil
	}

	key := cacheKey(product, candidates)
	if shortlist, _, ok := f.cache.Get(key); ok {
		if f.debug {
			log.Printf("[WARDROBE] shortlist cache hit for product %s (%d items)", product.ID, len(shortlist))
		}
		return shortlist, nil
	}

	reply, err := f.relay.FilterItems(ctx, product, candidates)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("[WARDROBE] filter relay failed for product %s: %v", product.ID, err)
		return nil, nil
	}

	shortlist := mapShortlist(reply, candidates)
	if f.debug && reply != nil {
		for index, reason := range reply.Eliminated {
			log.Printf("[WARDROBE] eliminated item %s: %s", index, reason)
		}
	}

	f.cache.Put(key, shortlist)
	return shortlist, nil
}

// InvalidateCache drops every cached shortlist. Called whenever the wardrobe
// contents change; there is no fine-grained invalidation.
func (f *Filter) InvalidateCache() {
	f.cache.Clear()
	log.Printf("[WARDROBE] shortlist cache invalidated")
}

// CacheSize reports the number of cached shortlists
func (f *Filter) CacheSize() int {
	return f.cache.Size()
}

// relevantItems applies the outfit-completion rule for the product's
// category. An unknown category places no restriction.
func (f *Filter) relevantItems(product domain.ProductSummary, items []domain.WardrobeItem) []domain.WardrobeItem {
	relevant := NeededCategories(product.Category).RelevantCategories()
	if relevant == nil {
		return items
	}

	kept := make([]domain.WardrobeItem, 0, len(items))
	for _, item := range items {
		if relevant[normalizeCategory(item.AIAnalysis.Category)] {
			kept = append(kept, item)
		}
	}
	return kept
}

// mapShortlist converts the relay's surviving indices back into item
// records, silently skipping anything out of range. A nil or malformed reply
// maps to an empty shortlist.
func mapShortlist(reply *domain.FilterRelayResponse, candidates []domain.WardrobeItem) []domain.WardrobeItem {
	if reply == nil {
		return []domain.WardrobeItem{}
	}

	shortlist := make([]domain.WardrobeItem, 0, len(reply.Shortlist))
	for _, index := range reply.Shortlist {
		if index < 0 || index >= len(candidates) {
			log.Printf("[WARDROBE] relay returned out-of-range index %d (have %d items)", index, len(candidates))
			continue
		}
		shortlist = append(shortlist, candidates[index])
	}
	return shortlist
}

func cacheKey(product domain.ProductSummary, items []domain.WardrobeItem) string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	sort.Strings(ids)
	return product.ID + ":" + normalizeCategory(product.Category) + ":" + strings.Join(ids, ",")
}
