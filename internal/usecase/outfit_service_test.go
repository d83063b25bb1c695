package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stylescout/backend/internal/domain"
)

type fakeWardrobe struct {
	items    []domain.WardrobeItem
	looks    []domain.Look
	itemsErr error
	looksErr error
	onChange func()
}

func (w *fakeWardrobe) ListItems(context.Context) ([]domain.WardrobeItem, error) {
	return w.items, w.itemsErr
}
func (w *fakeWardrobe) ListLooks(context.Context) ([]domain.Look, error) {
	return w.looks, w.looksErr
}
func (w *fakeWardrobe) Watch(_ context.Context, onChange func()) { w.onChange = onChange }

type fakeFilter struct {
	shortlist    []domain.WardrobeItem
	err          error
	invalidated  int
	lastProduct  domain.ProductSummary
	receivedSize int
}

func (f *fakeFilter) FilterByAttributes(_ context.Context, product domain.ProductSummary, items []domain.WardrobeItem) ([]domain.WardrobeItem, error) {
	f.lastProduct = product
	f.receivedSize = len(items)
	return f.shortlist, f.err
}
func (f *fakeFilter) InvalidateCache() { f.invalidated++ }

func TestMatchProduct(t *testing.T) {
	wardrobe := &fakeWardrobe{
		items: []domain.WardrobeItem{{ID: "w1"}, {ID: "w2"}, {ID: "w3"}},
		looks: []domain.Look{
			{ID: "l1", Name: "Weekend", ItemIDs: []string{"w1", "w9"}},
			{ID: "l2", Name: "Office", ItemIDs: []string{"w3"}},
		},
	}
	filter := &fakeFilter{shortlist: []domain.WardrobeItem{{ID: "w1"}}}
	service := NewOutfitService(wardrobe, filter)

	response, err := service.MatchProduct(context.Background(), domain.ProductSummary{ID: "p1", Category: "top"})
	if err != nil {
		t.Fatalf("MatchProduct: %v", err)
	}

	if filter.receivedSize != 3 {
		t.Errorf("filter received %d items, want the full wardrobe", filter.receivedSize)
	}
	if len(response.Shortlist) != 1 || response.Shortlist[0].ID != "w1" {
		t.Errorf("Shortlist = %+v", response.Shortlist)
	}
	// only looks containing a shortlisted item are related
	if len(response.RelatedLooks) != 1 || response.RelatedLooks[0].ID != "l1" {
		t.Errorf("RelatedLooks = %+v", response.RelatedLooks)
	}
}

func TestMatchProduct_Failures(t *testing.T) {
	t.Run("missing product id", func(t *testing.T) {
		service := NewOutfitService(&fakeWardrobe{}, &fakeFilter{})
		_, err := service.MatchProduct(context.Background(), domain.ProductSummary{})
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("err = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("wardrobe unavailable", func(t *testing.T) {
		wardrobe := &fakeWardrobe{itemsErr: domain.ErrWardrobeUnavailable}
		service := NewOutfitService(wardrobe, &fakeFilter{})
		_, err := service.MatchProduct(context.Background(), domain.ProductSummary{ID: "p1"})
		if !errors.Is(err, domain.ErrWardrobeUnavailable) {
			t.Errorf("err = %v, want ErrWardrobeUnavailable", err)
		}
	})

	t.Run("looks failure degrades to none", func(t *testing.T) {
		wardrobe := &fakeWardrobe{
			items:    []domain.WardrobeItem{{ID: "w1"}},
			looksErr: errors.New("firestore timeout"),
		}
		filter := &fakeFilter{shortlist: []domain.WardrobeItem{{ID: "w1"}}}
		service := NewOutfitService(wardrobe, filter)

		response, err := service.MatchProduct(context.Background(), domain.ProductSummary{ID: "p1"})
		if err != nil {
			t.Fatalf("looks failure must not fail the match: %v", err)
		}
		if response.RelatedLooks != nil {
			t.Errorf("RelatedLooks = %+v, want none", response.RelatedLooks)
		}
	})
}

func TestStart_WardrobeChangesInvalidateFilterCache(t *testing.T) {
	wardrobe := &fakeWardrobe{}
	filter := &fakeFilter{}
	service := NewOutfitService(wardrobe, filter)

	service.Start(context.Background())
	if wardrobe.onChange == nil {
		t.Fatal("Start must subscribe to wardrobe changes")
	}

	wardrobe.onChange()
	wardrobe.onChange()
	if filter.invalidated != 2 {
		t.Errorf("invalidated = %d, want 2", filter.invalidated)
	}
}
