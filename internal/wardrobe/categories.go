package wardrobe

import "strings"

// CategoryRule describes what an outfit built around a product category still
// needs from the wardrobe. Needs are required complements, Optional items
// round the outfit out, and Alternative lists categories that can replace the
// entire Needs set (e.g. a dress instead of a top+bottom pair for shoes).
type CategoryRule struct {
	Needs       []string
	Optional    []string
	Alternative []string
}

// categoryRules encodes the fixed outfit-completion table. Keys are
// normalized product categories.
var categoryRules = map[string]CategoryRule{
	"top": {
		Needs:    []string{"bottom", "shoes"},
		Optional: []string{"outerwear", "accessory"},
	},
	"bottom": {
		Needs:    []string{"top", "shoes"},
		Optional: []string{"outerwear", "accessory"},
	},
	"dress": {
		Needs:    []string{"shoes"},
		Optional: []string{"outerwear", "accessory"},
	},
	"shoes": {
		Needs:       []string{"top", "bottom"},
		Optional:    []string{"outerwear", "accessory"},
		Alternative: []string{"dress"},
	},
	"outerwear": {
		Needs:    []string{"top", "bottom", "shoes"},
		Optional: []string{"accessory"},
	},
	"accessory": {
		Optional: []string{"top", "bottom", "dress", "shoes", "outerwear"},
	},
}

// NeededCategories returns the outfit-completion rule for a product category.
// Unknown categories return an empty rule, which places no restriction on the
// wardrobe items considered.
func NeededCategories(productCategory string) CategoryRule {
	rule, ok := categoryRules[normalizeCategory(productCategory)]
	if !ok {
		return CategoryRule{}
	}
	return rule
}

// RelevantCategories flattens a rule into the set of wardrobe categories
// worth submitting to the AI filter. An empty map means no restriction.
func (r CategoryRule) RelevantCategories() map[string]bool {
	if len(r.Needs) == 0 && len(r.Optional) == 0 && len(r.Alternative) == 0 {
		return nil
	}
	relevant := make(map[string]bool)
	for _, group := range [][]string{r.Needs, r.Optional, r.Alternative} {
		for _, category := range group {
			relevant[category] = true
		}
	}
	return relevant
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
