package search

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Feed is one RSS calendar entry in the feed catalog.
type Feed struct {
	// Name is a short identifier used in the source name and metrics labels.
	Name string `yaml:"name"`

	// URL is the feed location.
	URL string `yaml:"url"`

	// Confidence is the trust weight for events from this feed, in [0, 1].
	// Defaults to 0.6 when omitted.
	Confidence float64 `yaml:"confidence"`
}

// feedCatalog is the top-level structure of sources.yaml.
type feedCatalog struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadFeedCatalog reads the RSS feed catalog from the given YAML file.
// Entries without a name or URL are rejected.
//
// Example sources.yaml:
//
//	feeds:
//	  - name: city-parks
//	    url: https://example.org/parks/events.rss
//	    confidence: 0.7
func LoadFeedCatalog(path string) ([]Feed, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read feed catalog: %w", err)
	}

	var catalog feedCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse feed catalog: %w", err)
	}

	for i := range catalog.Feeds {
		feed := &catalog.Feeds[i]
		if feed.Name == "" || feed.URL == "" {
			return nil, fmt.Errorf("feed catalog entry %d: name and url are required", i)
		}
		if feed.Confidence <= 0 || feed.Confidence > 1 {
			feed.Confidence = 0.6
		}
	}

	return catalog.Feeds, nil
}
