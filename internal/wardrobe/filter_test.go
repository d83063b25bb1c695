package wardrobe

import (
	"context"
	"errors"
	"testing"

	"github.com/stylescout/backend/internal/domain"
)

type fakeRelay struct {
	calls    int
	lastSent []domain.WardrobeItem
	reply    *domain.FilterRelayResponse
	err      error
}

func (r *fakeRelay) FilterItems(_ context.Context, _ domain.ProductSummary, items []domain.WardrobeItem) (*domain.FilterRelayResponse, error) {
	r.calls++
	r.lastSent = items
	return r.reply, r.err
}

func testWardrobe() []domain.WardrobeItem {
	return []domain.WardrobeItem{
		{ID: "w1", Name: "White sneakers", AIAnalysis: domain.ItemAnalysis{Category: "shoes"}},
		{ID: "w2", Name: "Black jeans", AIAnalysis: domain.ItemAnalysis{Category: "bottom"}},
		{ID: "w3", Name: "Wool coat", AIAnalysis: domain.ItemAnalysis{Category: "outerwear"}},
		{ID: "w4", Name: "Linen dress", AIAnalysis: domain.ItemAnalysis{Category: "dress"}},
	}
}

func TestFilterByAttributes_CategoryPrefilterAndMapping(t *testing.T) {
	relay := &fakeRelay{reply: &domain.FilterRelayResponse{Shortlist: []int{0, 1}}}
	filter := NewFilter(relay)
	product := domain.ProductSummary{ID: "p1", Category: "top"}

	shortlist, err := filter.FilterByAttributes(context.Background(), product, testWardrobe())
	if err != nil {
		t.Fatalf("FilterByAttributes: %v", err)
	}

	// a top needs a bottom and shoes; the dress is not outfit-relevant here
	for _, sent := range relay.lastSent {
		if sent.AIAnalysis.Category == "dress" {
			t.Error("dress submitted to relay despite category rule")
		}
	}
	if len(shortlist) != 2 {
		t.Fatalf("shortlist length = %d, want 2", len(shortlist))
	}
	// indices map into the pre-filtered candidate list, in relay order
	if shortlist[0].ID == shortlist[1].ID {
		t.Error("duplicate shortlist entries")
	}
}

func TestFilterByAttributes_UnknownCategorySubmitsEverything(t *testing.T) {
	relay := &fakeRelay{reply: &domain.FilterRelayResponse{Shortlist: []int{3}}}
	filter := NewFilter(relay)
	product := domain.ProductSummary{ID: "p1", Category: "swimwear"}

	shortlist, err := filter.FilterByAttributes(context.Background(), product, testWardrobe())
	if err != nil {
		t.Fatalf("FilterByAttributes: %v", err)
	}
	if len(relay.lastSent) != 4 {
		t.Errorf("relay received %d items, want all 4", len(relay.lastSent))
	}
	if len(shortlist) != 1 || shortlist[0].ID != "w4" {
		t.Errorf("shortlist = %+v, want the dress", shortlist)
	}
}

func TestFilterByAttributes_MalformedIndicesSkipped(t *testing.T) {
	relay := &fakeRelay{reply: &domain.FilterRelayResponse{Shortlist: []int{-1, 99, 0}}}
	filter := NewFilter(relay)

	shortlist, err := filter.FilterByAttributes(context.Background(), domain.ProductSummary{ID: "p1", Category: "top"}, testWardrobe())
	if err != nil {
		t.Fatalf("FilterByAttributes: %v", err)
	}
	if len(shortlist) != 1 {
		t.Errorf("shortlist length = %d, want 1 (out-of-range indices dropped)", len(shortlist))
	}
}

func TestFilterByAttributes_RelayFailureDegradesToEmpty(t *testing.T) {
	relay := &fakeRelay{err: errors.New("relay down")}
	filter := NewFilter(relay)

	shortlist, err := filter.FilterByAttributes(context.Background(), domain.ProductSummary{ID: "p1", Category: "top"}, testWardrobe())
	if err != nil {
		t.Fatalf("relay failure must not surface an error, got %v", err)
	}
	if len(shortlist) != 0 {
		t.Errorf("shortlist length = %d, want 0", len(shortlist))
	}
	if filter.CacheSize() != 0 {
		t.Error("failed relay call must not populate the cache")
	}
}

func TestFilterByAttributes_CancelledContextSurfaces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	relay := &fakeRelay{err: context.Canceled}
	filter := NewFilter(relay)

	_, err := filter.FilterByAttributes(ctx, domain.ProductSummary{ID: "p1", Category: "top"}, testWardrobe())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFilterByAttributes_CacheAndInvalidation(t *testing.T) {
	relay := &fakeRelay{reply: &domain.FilterRelayResponse{Shortlist: []int{0}}}
	filter := NewFilter(relay)
	product := domain.ProductSummary{ID: "p1", Category: "top"}
	items := testWardrobe()

	if _, err := filter.FilterByAttributes(context.Background(), product, items); err != nil {
		t.Fatal(err)
	}
	if _, err := filter.FilterByAttributes(context.Background(), product, items); err != nil {
		t.Fatal(err)
	}
	if relay.calls != 1 {
		t.Errorf("relay calls = %d, want 1 (second lookup cached)", relay.calls)
	}

	// a different wardrobe snapshot misses naturally
	if _, err := filter.FilterByAttributes(context.Background(), product, items[:2]); err != nil {
		t.Fatal(err)
	}
	if relay.calls != 2 {
		t.Errorf("relay calls = %d, want 2 after wardrobe change", relay.calls)
	}

	filter.InvalidateCache()
	if filter.CacheSize() != 0 {
		t.Error("InvalidateCache must clear every shortlist")
	}
	if _, err := filter.FilterByAttributes(context.Background(), product, items); err != nil {
		t.Fatal(err)
	}
	if relay.calls != 3 {
		t.Errorf("relay calls = %d, want 3 after invalidation", relay.calls)
	}
}

func TestFilterByAttributes_EmptyWardrobe(t *testing.T) {
	relay := &fakeRelay{}
	filter := NewFilter(relay)

	shortlist, err := filter.FilterByAttributes(context.Background(), domain.ProductSummary{ID: "p1", Category: "top"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if shortlist != nil {
		t.Errorf("shortlist = %v, want nil", shortlist)
	}
	if relay.calls != 0 {
		t.Error("relay must not be called for an empty wardrobe")
	}
}
