package detector

import (
	"net/url"
	"strings"

	"github.com/stylescout/backend/internal/domain"
)

// PagePattern maps ordered URL substrings to a page type. First match wins.
type PagePattern struct {
	Type       domain.PageType
	Substrings []string
}

// SiteProfile describes how to find product imagery on one retailer's pages
type SiteProfile struct {
	Domain               string
	PagePatterns         []PagePattern
	ImageSelectors       []string
	ProductCardSelectors []string
}

// Registry is an immutable lookup table from hostname to site profile. Built
// once at startup and passed by reference into the Detector.
type Registry struct {
	profiles []SiteProfile
}

// NewRegistry builds a registry from the given profiles
func NewRegistry(profiles []SiteProfile) *Registry {
	return &Registry{profiles: profiles}
}

// DefaultRegistry returns the built-in retailer table
func DefaultRegistry() *Registry {
	return NewRegistry([]SiteProfile{
		{
			Domain: "zara.com",
			PagePatterns: []PagePattern{
				{Type: domain.PageTypeProduct, Substrings: []string{"-p0", "-p1", "/product"}},
				{Type: domain.PageTypeCategory, Substrings: []string{"-l0", "-l1", "/category"}},
				{Type: domain.PageTypeSearch, Substrings: []string{"/search"}},
			},
			ImageSelectors:       []string{".media-image img", "picture.media-image img", ".product-detail-image img"},
			ProductCardSelectors: []string{".product-grid-product", "li.product"},
		},
		{
			Domain: "hm.com",
			PagePatterns: []PagePattern{
				{Type: domain.PageTypeProduct, Substrings: []string{"/productpage"}},
				{Type: domain.PageTypeCategory, Substrings: []string{"/products", "/shop-by-product"}},
				{Type: domain.PageTypeSearch, Substrings: []string{"/search-results"}},
			},
			ImageSelectors:       []string{".hm-product-item img", ".product-item-image", "ul.products-listing img"},
			ProductCardSelectors: []string{".hm-product-item", ".product-item"},
		},
		{
			Domain: "asos.com",
			PagePatterns: []PagePattern{
				{Type: domain.PageTypeProduct, Substrings: []string{"/prd/"}},
				{Type: domain.PageTypeCategory, Substrings: []string{"/cat/", "/ctas/"}},
				{Type: domain.PageTypeSearch, Substrings: []string{"/search/"}},
			},
			ImageSelectors:       []string{"img[data-auto-id='productTileImage']", "section article img"},
			ProductCardSelectors: []string{"article[data-auto-id='productTile']"},
		},
		{
			Domain: "uniqlo.com",
			PagePatterns: []PagePattern{
				{Type: domain.PageTypeProduct, Substrings: []string{"/products/e", "/products/"}},
				{Type: domain.PageTypeCategory, Substrings: []string{"/category", "/men", "/women", "/kids"}},
				{Type: domain.PageTypeSearch, Substrings: []string{"/search"}},
			},
			ImageSelectors:       []string{".fr-ec-image img", ".fr-ec-product-tile img"},
			ProductCardSelectors: []string{".fr-ec-product-tile"},
		},
		{
			Domain: "mango.com",
			PagePatterns: []PagePattern{
				{Type: domain.PageTypeProduct, Substrings: []string{"/p/", "/product"}},
				{Type: domain.PageTypeCategory, Substrings: []string{"/c/", "/category"}},
				{Type: domain.PageTypeSearch, Substrings: []string{"/search"}},
			},
			ImageSelectors:       []string{"img.product-image", ".product-list-item img"},
			ProductCardSelectors: []string{".product-list-item"},
		},
		{
			Domain: "zalando.com",
			PagePatterns: []PagePattern{
				{Type: domain.PageTypeProduct, Substrings: []string{".html"}},
				{Type: domain.PageTypeCategory, Substrings: []string{"/catalog", "/damen", "/herren"}},
				{Type: domain.PageTypeSearch, Substrings: []string{"/katalog?q", "?q="}},
			},
			ImageSelectors:       []string{"article img"},
			ProductCardSelectors: []string{"article[role='link']", "article"},
		},
		{
			Domain: "nordstrom.com",
			PagePatterns: []PagePattern{
				{Type: domain.PageTypeProduct, Substrings: []string{"/s/"}},
				{Type: domain.PageTypeCategory, Substrings: []string{"/browse/"}},
				{Type: domain.PageTypeSearch, Substrings: []string{"/sr?"}},
			},
			ImageSelectors:       []string{"article.productModule img", "article img"},
			ProductCardSelectors: []string{"article.productModule"},
		},
	})
}

// Lookup resolves the profile for a hostname by suffix match, so
// "www.zara.com" and "zara.com" both resolve the zara profile.
func (r *Registry) Lookup(hostname string) (*SiteProfile, bool) {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if host == "" {
		return nil, false
	}
	for i := range r.profiles {
		p := &r.profiles[i]
		if host == p.Domain || strings.HasSuffix(host, "."+p.Domain) {
			return p, true
		}
	}
	return nil, false
}

// searchQueryParams are the query keys treated as a search signal when no
// URL pattern matched
var searchQueryParams = map[string]bool{
	"q": true, "query": true, "search": true, "searchterm": true, "s": true, "k": true,
}

// PageTypeFor classifies a URL against the profile's ordered patterns,
// falling back to query-string heuristics for search pages.
func (p *SiteProfile) PageTypeFor(pageURL *url.URL) domain.PageType {
	target := strings.ToLower(pageURL.Path)
	if pageURL.RawQuery != "" {
		target += "?" + strings.ToLower(pageURL.RawQuery)
	}

	for _, pattern := range p.PagePatterns {
		for _, sub := range pattern.Substrings {
			if strings.Contains(target, sub) {
				return pattern.Type
			}
		}
	}

	for key, values := range pageURL.Query() {
		if searchQueryParams[strings.ToLower(key)] && len(values) > 0 && values[0] != "" {
			return domain.PageTypeSearch
		}
	}

	return domain.PageTypeOther
}
