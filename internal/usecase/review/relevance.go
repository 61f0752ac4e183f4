package review

import (
	"context"
	"strings"

	"event-radar/internal/domain/entity"
)

// Keyword groups and their score weights. Cycling ranks highest, then
// couple-friendly activities, music, dog-friendly, and outdoor events.
// Kid-focused events are deprioritized.
var (
	cyclingKeywords = []string{"cycling", "bike", "biking", "bicycle", "mtb", "ride", "critical mass"}
	coupleKeywords  = []string{"wine", "brewery", "beer", "cocktail", "tasting", "comedy", "trivia", "art walk", "gallery", "date night", "romantic"}
	musicKeywords   = []string{"music", "concert", "band", "live music", "dj", "show", "performance", "venue"}
	dogKeywords     = []string{"dog", "dog-friendly", "pet", "pet-friendly", "pup", "canine", "bark", "dogs welcome"}
	outdoorKeywords = []string{"outdoor", "park", "hike", "trail", "run", "nature", "bayou", "memorial park", "kayak", "paddle"}
	kidKeywords     = []string{"kids", "children", "family fun", "toddler", "playground", "bounce house", "story time", "baby"}
)

// RelevanceScorer scores events against the household's interest profile.
// It always verifies; the score it records in the verdict metadata drives
// ranking at synthesis time.
type RelevanceScorer struct{}

// NewRelevanceScorer creates a relevance scoring reviewer.
func NewRelevanceScorer() *RelevanceScorer {
	return &RelevanceScorer{}
}

// ID returns the reviewer identifier.
func (r *RelevanceScorer) ID() string {
	return "relevance_scorer"
}

// Score computes the keyword relevance score for an event. Exposed so the
// promo generator can recompute scores for events that skipped review.
func Score(event *entity.Event) int {
	score, _ := scoreEvent(event)
	return score
}

// Review scores the event text against the keyword groups. Confidence grows
// with the number of matched groups.
func (r *RelevanceScorer) Review(ctx context.Context, event *entity.Event) (entity.Verdict, error) {
	score, notes := scoreEvent(event)

	confidence := float64(len(notes))*0.25 + 0.5
	if confidence > 1.0 {
		confidence = 1.0
	}

	return entity.Verdict{
		Verified:   true,
		Confidence: confidence,
		Notes:      notes,
		Metadata:   map[string]any{"relevance_score": score},
	}, nil
}

func scoreEvent(event *entity.Event) (int, []string) {
	text := strings.ToLower(event.Title + " " + event.Description)

	score := 0
	var notes []string

	if matchesAny(text, cyclingKeywords) {
		score += 10
		notes = append(notes, "High priority: Cycling event")
	}
	if matchesAny(text, coupleKeywords) {
		score += 9
		notes = append(notes, "High priority: Couple-friendly activity")
	}
	if matchesAny(text, musicKeywords) {
		score += 8
		notes = append(notes, "Music/concert event")
	}
	if matchesAny(text, dogKeywords) {
		score += 7
		notes = append(notes, "Dog-friendly event")
	}
	if matchesAny(text, outdoorKeywords) {
		score += 5
		notes = append(notes, "Outdoor activity")
	}
	if matchesAny(text, kidKeywords) {
		score -= 5
		notes = append(notes, "Kid-focused event (deprioritized)")
	}

	return score, notes
}

func matchesAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
