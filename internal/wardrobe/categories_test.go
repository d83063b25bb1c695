package wardrobe

import (
	"reflect"
	"testing"
)

func TestNeededCategories(t *testing.T) {
	tests := []struct {
		name            string
		category        string
		wantNeeds       []string
		wantAlternative []string
	}{
		{"top needs bottom and shoes", "top", []string{"bottom", "shoes"}, nil},
		{"dress needs only shoes", "dress", []string{"shoes"}, nil},
		{"shoes need top+bottom or a dress", "shoes", []string{"top", "bottom"}, []string{"dress"}},
		{"case and whitespace normalized", "  Dress ", []string{"shoes"}, nil},
		{"unknown category unrestricted", "swimwear", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := NeededCategories(tt.category)
			if !reflect.DeepEqual(rule.Needs, tt.wantNeeds) {
				t.Errorf("Needs = %v, want %v", rule.Needs, tt.wantNeeds)
			}
			if !reflect.DeepEqual(rule.Alternative, tt.wantAlternative) {
				t.Errorf("Alternative = %v, want %v", rule.Alternative, tt.wantAlternative)
			}
		})
	}
}

func TestRelevantCategories(t *testing.T) {
	relevant := NeededCategories("shoes").RelevantCategories()
	for _, want := range []string{"top", "bottom", "dress", "outerwear", "accessory"} {
		if !relevant[want] {
			t.Errorf("RelevantCategories missing %q", want)
		}
	}
	if relevant["shoes"] {
		t.Error("a second pair of shoes is not outfit-relevant")
	}

	if NeededCategories("unknown").RelevantCategories() != nil {
		t.Error("unknown category must place no restriction")
	}
}
