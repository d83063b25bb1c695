package detector

import (
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/stylescout/backend/internal/domain"
)

const (
	// Generic fallback selectors only run when site selectors found fewer candidates than this
	minCandidatesBeforeFallback = 5

	// Rendered boxes smaller than this on either side are excluded as UI chrome
	minRenderedSize = 30.0

	maxContextAncestors = 5
	maxContextLength    = 300
)

// uiChromeBlocklist marks images that are page furniture rather than product
// shots. Matched as substrings against source URL and class string.
var uiChromeBlocklist = []string{
	"logo", "icon", "sprite", "arrow", "close", "menu", "nav",
}

// genericFallbackSelectors are tried on any supported site when the
// site-specific selectors come up short
var genericFallbackSelectors = []string{
	"img[src*='product']",
	"img[data-src*='product']",
	"img[class*='product']",
	".product-card img",
	".product-item img",
	"[class*='product'] img",
}

// contextSelectors pull nearby price/title text out of candidate ancestors
var contextSelectors = []string{
	"[class*='price']",
	"[class*='title']",
	"[class*='name']",
	"h1", "h2", "h3",
	"figcaption",
}

var multiSpaceRegex = regexp.MustCompile(`\s+`)

// Config holds detector configuration
type Config struct {
	Debug bool
}

// Detector finds and classifies product-image candidates in page snapshots,
// independent of any AI scoring.
type Detector struct {
	registry *Registry
	debug    bool
}

// New creates a detector over an immutable site registry
func New(registry *Registry, cfg Config) *Detector {
	return &Detector{registry: registry, debug: cfg.Debug}
}

// SetDebug toggles verbose scan logging at runtime
func (d *Detector) SetDebug(enabled bool) {
	d.debug = enabled
}

// Detect runs one detection pass over a page snapshot. Every candidate found
// yields exactly one verdict. Detection never fails: unsupported hosts,
// unparsable HTML, and scan panics all degrade to an empty result.
func (d *Detector) Detect(snapshot domain.PageSnapshot) (result domain.DetectionResult) {
	result = domain.DetectionResult{PageType: domain.PageTypeOther}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[DETECT] scan panic recovered: %v", r)
			result = domain.DetectionResult{PageType: result.PageType}
		}
	}()

	pageURL, err := url.Parse(snapshot.URL)
	if err != nil || pageURL.Hostname() == "" {
		log.Printf("[DETECT] unparsable page URL %q", snapshot.URL)
		return result
	}

	profile, ok := d.registry.Lookup(pageURL.Hostname())
	if !ok {
		if d.debug {
			log.Printf("[DETECT] unsupported host %q, skipping scan", pageURL.Hostname())
		}
		return result
	}
	result.PageType = profile.PageTypeFor(pageURL)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot.HTML))
	if err != nil {
		log.Printf("[DETECT] failed to parse page HTML: %v", err)
		return result
	}

	candidates := d.collectCandidates(doc, profile)
	for i, sel := range candidates {
		candidate := buildCandidate(i, sel)
		verdict := evaluate(sel, candidate)
		cv := domain.CandidateVerdict{Candidate: candidate, Verdict: verdict}
		if verdict.Detected {
			result.Detected = append(result.Detected, cv)
		} else {
			result.Rejected = append(result.Rejected, cv)
		}
		if d.debug {
			log.Printf("[DETECT] #%d %s src=%q reason=%q", i, verdict.Method, candidate.SourceURL, verdict.Reason)
		}
	}

	if d.debug {
		log.Printf("[DETECT] %s page: %d detected, %d rejected",
			result.PageType, len(result.Detected), len(result.Rejected))
	}
	return result
}

// collectCandidates builds the candidate set via three escalating strategies,
// de-duplicated by element identity
func (d *Detector) collectCandidates(doc *goquery.Document, profile *SiteProfile) []*goquery.Selection {
	seen := make(map[*html.Node]bool)
	var out []*goquery.Selection

	add := func(sel *goquery.Selection) {
		sel.Each(func(_ int, s *goquery.Selection) {
			node := s.Get(0)
			if node == nil || seen[node] {
				return
			}
			seen[node] = true
			out = append(out, s)
		})
	}

	for _, selector := range profile.ImageSelectors {
		add(d.find(doc.Selection, selector))
	}

	for _, selector := range profile.ProductCardSelectors {
		add(d.find(doc.Selection, selector).Find("img"))
	}

	if len(out) < minCandidatesBeforeFallback {
		for _, selector := range genericFallbackSelectors {
			add(d.find(doc.Selection, selector))
		}
	}

	return out
}

// find runs a selector, skipping it (with a log line) when it does not
// compile. A bad selector never aborts the scan.
func (d *Detector) find(root *goquery.Selection, selector string) *goquery.Selection {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		log.Printf("[DETECT] skipping invalid selector %q: %v", selector, err)
		return root.FilterFunction(func(int, *goquery.Selection) bool { return false })
	}
	return root.FindMatcher(matcher)
}

// buildCandidate extracts candidate attributes from an image element
func buildCandidate(index int, s *goquery.Selection) domain.ImageCandidate {
	w, _ := renderedDim(s, "data-ss-width", "width")
	h, _ := renderedDim(s, "data-ss-height", "height")
	x, _ := attrFloat(s, "data-ss-x")
	y, _ := attrFloat(s, "data-ss-y")
	nw, _ := attrFloat(s, "data-ss-natural-width")
	nh, _ := attrFloat(s, "data-ss-natural-height")

	return domain.ImageCandidate{
		Index:       index,
		SourceURL:   imageSource(s),
		AltText:     strings.TrimSpace(s.AttrOr("alt", "")),
		ClassName:   s.AttrOr("class", ""),
		Box:         domain.BoundingBox{X: x, Y: y, Width: w, Height: h},
		NaturalSize: domain.Dimensions{Width: int(nw), Height: int(nh)},
		Context:     extractContext(s),
	}
}

// evaluate applies the quick exclusion check, then the visibility check.
// Exclusion always takes precedence over visibility. Confidence reflects
// check certainty: 0.9 for rejections, 0.8 for a pass.
func evaluate(s *goquery.Selection, c domain.ImageCandidate) domain.Verdict {
	if reason, excluded := quickExclusion(s, c); excluded {
		return domain.Verdict{Reason: reason, Confidence: 0.9, Method: domain.MethodQuickExclusion}
	}
	if reason, hidden := invisible(s); hidden {
		return domain.Verdict{Reason: reason, Confidence: 0.9, Method: domain.MethodVisibilityCheck}
	}
	return domain.Verdict{
		Detected:   true,
		Reason:     "passed validation checks",
		Confidence: 0.8,
		Method:     domain.MethodValidationCheck,
	}
}

// quickExclusion fails fast on obvious non-product images without touching
// computed style
func quickExclusion(s *goquery.Selection, c domain.ImageCandidate) (string, bool) {
	if c.SourceURL == "" {
		return "missing image source", true
	}

	haystack := strings.ToLower(c.SourceURL + " " + c.ClassName)
	for _, term := range uiChromeBlocklist {
		if strings.Contains(haystack, term) {
			return "ui chrome: " + term, true
		}
	}

	w, wok := renderedDim(s, "data-ss-width", "width")
	h, hok := renderedDim(s, "data-ss-height", "height")
	if (wok && w > 0 && w < minRenderedSize) || (hok && h > 0 && h < minRenderedSize) {
		return "below minimum rendered size", true
	}

	return "", false
}

// invisible checks the visibility signals recoverable from serialized HTML:
// inline style, the hidden attribute, and an explicit zero-size box.
func invisible(s *goquery.Selection) (string, bool) {
	style := parseInlineStyle(s.AttrOr("style", ""))

	if style["display"] == "none" {
		return "display:none", true
	}
	if style["visibility"] == "hidden" {
		return "visibility:hidden", true
	}
	if _, ok := s.Attr("hidden"); ok {
		return "hidden attribute", true
	}
	if op, ok := style["opacity"]; ok {
		if v, err := strconv.ParseFloat(op, 64); err == nil && v == 0 {
			return "zero opacity", true
		}
	}

	w, wok := renderedDim(s, "data-ss-width", "width")
	h, hok := renderedDim(s, "data-ss-height", "height")
	if (wok && w == 0) || (hok && h == 0) {
		return "zero-size box", true
	}

	return "", false
}

// parseInlineStyle splits a style attribute into lowercase property -> value
func parseInlineStyle(style string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.ToLower(strings.TrimSpace(parts[1]))
		if prop != "" {
			out[prop] = value
		}
	}
	return out
}

// imageSource resolves the candidate's source URL across the common lazy-load
// attribute variants
func imageSource(s *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-original"} {
		if v := strings.TrimSpace(s.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	if srcset := strings.TrimSpace(s.AttrOr("srcset", "")); srcset != "" {
		first := strings.Split(srcset, ",")[0]
		if fields := strings.Fields(first); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

// extractContext walks up to 5 ancestor levels collecting nearby price/title
// text for the scoring prompt
func extractContext(s *goquery.Selection) string {
	var parts []string
	seen := make(map[string]bool)
	total := 0

	node := s.Parent()
	for depth := 0; depth < maxContextAncestors && node.Length() > 0; depth++ {
		for _, selector := range contextSelectors {
			node.Find(selector).Each(func(_ int, m *goquery.Selection) {
				if total >= maxContextLength {
					return
				}
				text := multiSpaceRegex.ReplaceAllString(strings.TrimSpace(m.Text()), " ")
				if text == "" || len(text) > 120 || seen[text] {
					return
				}
				seen[text] = true
				parts = append(parts, text)
				total += len(text)
			})
		}
		node = node.Parent()
	}

	return strings.Join(parts, " | ")
}

// renderedDim reads a rendered dimension, preferring the extension-annotated
// attribute over the plain HTML attribute
func renderedDim(s *goquery.Selection, annotated, plain string) (float64, bool) {
	if v, ok := attrFloat(s, annotated); ok {
		return v, true
	}
	return attrFloat(s, plain)
}

// attrFloat parses a numeric attribute, tolerating a px suffix
func attrFloat(s *goquery.Selection, name string) (float64, bool) {
	raw, ok := s.Attr(name)
	if !ok {
		return 0, false
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
