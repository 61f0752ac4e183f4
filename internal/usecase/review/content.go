package review

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"event-radar/internal/domain/entity"
	"event-radar/internal/infra/llm"
	"event-radar/internal/utils/text"
)

// maxPageChars limits how much scraped page text is handed to the model.
const maxPageChars = 2000

const contentSystemPrompt = "You are an event detail extractor. Given text content from an event page, " +
	"confirm whether it describes a real upcoming local event and extract key information " +
	"like exact date/time, venue details, price, and a concise 2-sentence description. " +
	"Be concise and factual."

// ContentReviewer fetches the event page, extracts its text, and asks the
// model to confirm the page describes a real upcoming event. The model's
// answer becomes the enriched description.
type ContentReviewer struct {
	client *http.Client
	llm    llm.Client
}

// NewContentReviewer creates a content enrichment reviewer.
func NewContentReviewer(client *http.Client, llmClient llm.Client) *ContentReviewer {
	return &ContentReviewer{client: client, llm: llmClient}
}

// ID returns the reviewer identifier.
func (c *ContentReviewer) ID() string {
	return "content_enricher"
}

// Review scrapes the event page and runs the extraction prompt. Fetch and
// parse failures leave the event unverified at moderate confidence; only a
// model failure is reported as an error (abstention).
func (c *ContentReviewer) Review(ctx context.Context, event *entity.Event) (entity.Verdict, error) {
	if event.URL == "" {
		return entity.Verdict{
			Verified:   false,
			Confidence: 0.6,
			Notes:      []string{"No URL to scrape"},
		}, nil
	}

	pageText, err := c.fetchPageText(ctx, event.URL)
	if err != nil {
		return entity.Verdict{
			Verified:   false,
			Confidence: 0.6,
			Notes:      []string{fmt.Sprintf("Could not fetch page: %v", err)},
		}, nil
	}

	prompt := fmt.Sprintf(`Event Title: %s
Current Description: %s

Webpage Content:
%s

Extract:
1. A better 2-sentence description if available
2. Any missing venue/location details
3. Price information if present
4. Any important notes about the event

Keep it concise and factual.`,
		event.Title, orNone(event.Description), text.Truncate(pageText, maxPageChars, ""))

	enriched, err := c.llm.Complete(ctx, contentSystemPrompt, prompt)
	if err != nil {
		return entity.Verdict{}, fmt.Errorf("content extraction: %w", err)
	}

	return entity.Verdict{
		Verified:            true,
		Confidence:          0.9,
		Notes:               []string{"Content enriched via webpage scraping"},
		EnrichedDescription: text.Truncate(enriched, 500, ""),
		URLWorking:          true,
	}, nil
}

// fetchPageText downloads the page and extracts readable text. The goquery
// body text is preferred; when it comes back empty (script-rendered pages),
// the readability extraction runs on the raw HTML as a fallback.
func (c *ContentReviewer) fetchPageText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "EventRadarBot/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	pageText := text.NormalizeSpace(doc.Find("body").Text())

	if pageText == "" {
		parsedURL, urlErr := url.Parse(pageURL)
		if urlErr != nil {
			return "", urlErr
		}
		article, readErr := readability.FromReader(strings.NewReader(string(body)), parsedURL)
		if readErr != nil {
			return "", fmt.Errorf("no extractable text: %w", readErr)
		}
		pageText = text.NormalizeSpace(article.TextContent)
	}

	if pageText == "" {
		return "", fmt.Errorf("no extractable text")
	}
	return pageText, nil
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
