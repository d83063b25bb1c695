package domain

import "context"

// Availability is the tri-state readiness of the model runtime
type Availability string

const (
	AvailabilityNo            Availability = "no"
	AvailabilityAfterDownload Availability = "after-download"
	AvailabilityAvailable     Availability = "available"
)

// SessionOptions configure one model session
type SessionOptions struct {
	Temperature      float64
	TopK             int
	OutputLanguage   string
	SystemPrompt     string
	ExpectImageInput bool
}

// Turn is one multimodal user turn: prompt text plus an optional JPEG part
type Turn struct {
	Text      string
	ImageJPEG []byte
}

// ModelSession is one bounded lifetime of the on-device model. Sessions are
// created fresh per analysis and destroyed after use, never pooled.
type ModelSession interface {
	Append(ctx context.Context, turns []Turn) error
	Prompt(ctx context.Context, text string) (string, error)
	Destroy()
}

// ModelRuntime is the on-device AI capability consumed by the analyzer
type ModelRuntime interface {
	Availability(ctx context.Context) (Availability, error)
	CreateSession(ctx context.Context, opts SessionOptions) (ModelSession, error)
}

// ImageFetcher converts an image source (remote URL or data URL) into a
// model-consumable JPEG asset. Stands in for the extension's privileged
// cross-origin fetch relay.
type ImageFetcher interface {
	FetchJPEG(ctx context.Context, src string) ([]byte, error)
}

// FilterRelay is the delegated AI attribute-filtering capability used by
// stage one of wardrobe matching
type FilterRelay interface {
	FilterItems(ctx context.Context, product ProductSummary, items []WardrobeItem) (*FilterRelayResponse, error)
}

// WardrobeRepository reads the synced wardrobe. Watch invokes onChange for
// every wardrobe mutation until ctx is cancelled; callers use it to
// invalidate filter caches wholesale.
type WardrobeRepository interface {
	ListItems(ctx context.Context) ([]WardrobeItem, error)
	ListLooks(ctx context.Context) ([]Look, error)
	Watch(ctx context.Context, onChange func())
}

// ProfileRepository reads the user's style profile
type ProfileRepository interface {
	StyleProfile(ctx context.Context) (*StyleProfile, error)
}
