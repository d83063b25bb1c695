package domain

// ItemAnalysis is the AI-derived description synced alongside each wardrobe
// item. The attribute filter treats it as an immutable input.
type ItemAnalysis struct {
	Category   string            `json:"category" firestore:"category"`
	Attributes map[string]string `json:"attributes" firestore:"attributes"`
}

// WardrobeItem is an externally owned wardrobe record synced from Firestore
type WardrobeItem struct {
	ID         string       `json:"id" firestore:"-"`
	Name       string       `json:"name" firestore:"name"`
	ImageURL   string       `json:"imageUrl" firestore:"imageUrl"`
	AIAnalysis ItemAnalysis `json:"aiAnalysis" firestore:"aiAnalysis"`
}

// Look is a saved outfit referencing wardrobe items by id
type Look struct {
	ID      string   `json:"id" firestore:"-"`
	Name    string   `json:"name" firestore:"name"`
	ItemIDs []string `json:"itemIds" firestore:"itemIds"`
}

// ProductSummary describes a detected product for wardrobe matching
type ProductSummary struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	ImageURL   string            `json:"imageUrl"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// FilterRelayResponse is the reply from the AI attribute-filtering capability:
// indices (into the submitted item list) that survive, plus a map of
// eliminated index -> reason.
type FilterRelayResponse struct {
	Shortlist  []int             `json:"shortlist"`
	Eliminated map[string]string `json:"eliminated,omitempty"`
}
