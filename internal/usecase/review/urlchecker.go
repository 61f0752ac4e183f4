package review

import (
	"context"
	"fmt"
	"net/http"

	"event-radar/internal/domain/entity"
)

// URLChecker verifies that the event URL responds. A live URL is a strong
// signal the event listing still exists.
type URLChecker struct {
	client *http.Client
}

// NewURLChecker creates a URL liveness reviewer.
func NewURLChecker(client *http.Client) *URLChecker {
	return &URLChecker{client: client}
}

// ID returns the reviewer identifier.
func (u *URLChecker) ID() string {
	return "url_checker"
}

// Review issues a HEAD request against the event URL, falling back to GET
// for servers that reject HEAD. Events without a URL are left unverified at
// moderate confidence since many community events never publish one.
func (u *URLChecker) Review(ctx context.Context, event *entity.Event) (entity.Verdict, error) {
	if event.URL == "" {
		return entity.Verdict{
			Verified:   false,
			Confidence: 0.6,
			Notes:      []string{"No URL to check"},
		}, nil
	}

	status, err := u.probe(ctx, http.MethodHead, event.URL)
	if err != nil || status == http.StatusMethodNotAllowed {
		status, err = u.probe(ctx, http.MethodGet, event.URL)
	}
	if err != nil {
		return entity.Verdict{
			Verified:   false,
			Confidence: 0.6,
			Notes:      []string{fmt.Sprintf("URL unreachable: %v", err)},
		}, nil
	}

	if status >= 200 && status < 400 {
		return entity.Verdict{
			Verified:   true,
			Confidence: 0.9,
			Notes:      []string{"URL responds"},
			URLWorking: true,
		}, nil
	}

	return entity.Verdict{
		Verified:   false,
		Confidence: 0.6,
		Notes:      []string{fmt.Sprintf("URL returned status %d", status)},
	}, nil
}

// probe performs a single request and returns the status code.
func (u *URLChecker) probe(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
