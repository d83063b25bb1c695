package domain

// PageType classifies the kind of page a snapshot was taken from
type PageType string

const (
	PageTypeProduct  PageType = "product"
	PageTypeCategory PageType = "category"
	PageTypeSearch   PageType = "search"
	PageTypeOther    PageType = "other"
)

// PageSnapshot is a serialized page submitted by the extension content script.
// The content script annotates each image with rendered geometry before
// serializing (data-ss-width, data-ss-height, data-ss-x, data-ss-y,
// data-ss-natural-width, data-ss-natural-height), since layout information
// is not recoverable from static HTML.
type PageSnapshot struct {
	PageID string `json:"pageId"`
	URL    string `json:"url"`
	HTML   string `json:"html"`
}

// BoundingBox is the rendered geometry of an element, in CSS pixels
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Dimensions holds the natural (intrinsic) size of an image
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ImageCandidate wraps a page image element considered for product scoring.
// Candidates are ephemeral: they live for one detection pass and are not
// persisted.
type ImageCandidate struct {
	Index       int         `json:"index"`
	SourceURL   string      `json:"sourceUrl"`
	AltText     string      `json:"altText"`
	ClassName   string      `json:"className"`
	Box         BoundingBox `json:"box"`
	NaturalSize Dimensions  `json:"naturalSize"`
	Context     string      `json:"context"` // nearby price/title text, up to 5 ancestor levels
}

// DetectionMethod tags which check produced a verdict
type DetectionMethod string

const (
	MethodQuickExclusion  DetectionMethod = "quick_exclusion"
	MethodVisibilityCheck DetectionMethod = "visibility_check"
	MethodValidationCheck DetectionMethod = "validation_check"
)

// Verdict is the accept/reject outcome assigned to a candidate.
// Confidence reflects the certainty of the check that fired, not how likely
// the image is to be a product shot.
type Verdict struct {
	Detected   bool            `json:"detected"`
	Reason     string          `json:"reason"`
	Confidence float64         `json:"confidence"`
	Method     DetectionMethod `json:"method"`
}

// CandidateVerdict pairs a candidate with its verdict. Every candidate found
// during a pass yields exactly one of these.
type CandidateVerdict struct {
	Candidate ImageCandidate `json:"candidate"`
	Verdict   Verdict        `json:"verdict"`
}

// DetectionResult is the full outcome of one detection pass
type DetectionResult struct {
	PageType PageType           `json:"pageType"`
	Detected []CandidateVerdict `json:"detected"`
	Rejected []CandidateVerdict `json:"rejected"`
}

// DetectedMarkerAttr is the attribute the extension sets on live DOM elements
// for candidates reported as detected, so re-detection and analysis triggers
// can recognize already-processed images.
const DetectedMarkerAttr = "data-stylescout-detected"
