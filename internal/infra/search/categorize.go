package search

import "strings"

// categoryKeywords maps each category to the keywords that signal it.
// Matching is substring-based over the lowercased title and description.
var categoryKeywords = map[string][]string{
	"cycling": {"bike", "cycling", "cycle", "ride", "pedal", "cyclist", "bicycle"},
	"outdoor": {"hike", "trail", "park", "outdoor", "nature", "kayak", "run", "walk", "camping", "fishing"},
	"music":   {"concert", "music", "band", "show", "live music", "performance", "symphony", "jazz", "rock", "hip hop", "dj", "singer", "festival"},
	"food":    {"food", "dining", "restaurant", "brunch", "dinner", "cooking", "culinary", "wine", "beer", "tasting"},
	"arts":    {"art", "museum", "gallery", "exhibition", "theater", "theatre", "play", "comedy", "film", "movie"},
	"family":  {"family", "kids", "children", "playground"},
	"sports":  {"sports", "game", "match", "basketball", "football", "baseball", "soccer", "hockey"},
}

// categoryOrder keeps Categorize output deterministic.
var categoryOrder = []string{"cycling", "outdoor", "music", "food", "arts", "family", "sports"}

// Categorize derives event categories from the title and description.
// An event can carry multiple categories; unmatched events get none.
func Categorize(title, description string) []string {
	text := strings.ToLower(title + " " + description)

	var categories []string
	for _, category := range categoryOrder {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(text, keyword) {
				categories = append(categories, category)
				break
			}
		}
	}
	return categories
}

// appendCategory appends a category if not already present.
func appendCategory(categories []string, category string) []string {
	for _, existing := range categories {
		if existing == category {
			return categories
		}
	}
	return append(categories, category)
}
