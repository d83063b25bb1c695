package usecase

import (
	"context"
	"log"

	"github.com/stylescout/backend/internal/domain"
)

// AttributeFilter is the fast first stage of wardrobe matching
type AttributeFilter interface {
	FilterByAttributes(ctx context.Context, product domain.ProductSummary, items []domain.WardrobeItem) ([]domain.WardrobeItem, error)
	InvalidateCache()
}

// MatchResponse is the outcome of one wardrobe-matching request: the
// shortlist eligible for visual comparison plus any saved looks that already
// contain a shortlisted item.
type MatchResponse struct {
	Product      domain.ProductSummary `json:"product"`
	Shortlist    []domain.WardrobeItem `json:"shortlist"`
	RelatedLooks []domain.Look         `json:"relatedLooks,omitempty"`
}

// OutfitService runs wardrobe matching against the synced wardrobe and keeps
// the attribute-filter cache honest under wardrobe churn
type OutfitService struct {
	wardrobe domain.WardrobeRepository
	filter   AttributeFilter
}

// NewOutfitService creates the wardrobe-matching service
func NewOutfitService(wardrobe domain.WardrobeRepository, filter AttributeFilter) *OutfitService {
	return &OutfitService{wardrobe: wardrobe, filter: filter}
}

// Start subscribes to wardrobe changes for the lifetime of ctx. Any mutation
// invalidates the whole shortlist cache; there is no fine-grained path.
func (s *OutfitService) Start(ctx context.Context) {
	s.wardrobe.Watch(ctx, s.filter.InvalidateCache)
}

// MatchProduct returns the wardrobe shortlist for one detected product
func (s *OutfitService) MatchProduct(ctx context.Context, product domain.ProductSummary) (*MatchResponse, error) {
	if product.ID == "" {
		return nil, domain.ErrInvalidRequest
	}

	items, err := s.wardrobe.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	shortlist, err := s.filter.FilterByAttributes(ctx, product, items)
	if err != nil {
		return nil, err
	}

	response := &MatchResponse{Product: product, Shortlist: shortlist}
	if len(shortlist) > 0 {
		response.RelatedLooks = s.relatedLooks(ctx, shortlist)
	}

	log.Printf("[OUTFIT] product %s: %d of %d wardrobe items shortlisted",
		product.ID, len(shortlist), len(items))
	return response, nil
}

// relatedLooks finds saved outfits containing a shortlisted item. A failed
// looks read degrades to none; the shortlist is the primary payload.
func (s *OutfitService) relatedLooks(ctx context.Context, shortlist []domain.WardrobeItem) []domain.Look {
	looks, err := s.wardrobe.ListLooks(ctx)
	if err != nil {
		log.Printf("[OUTFIT] looks unavailable: %v", err)
		return nil
	}

	shortlisted := make(map[string]bool, len(shortlist))
	for _, item := range shortlist {
		shortlisted[item.ID] = true
	}

	var related []domain.Look
	for _, look := range looks {
		for _, itemID := range look.ItemIDs {
			if shortlisted[itemID] {
				related = append(related, look)
				break
			}
		}
	}
	return related
}
