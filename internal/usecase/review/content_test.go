package review

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-radar/internal/domain/entity"
)

type fakeLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeLLM) Complete(_ context.Context, _ string, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeLLM) Provider() string { return "fake" }

func TestContentReviewerEnrichesFromPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><script>var x = 1;</script></head>
<body><h1>Bayou Greenway Ride</h1><p>Saturday at 8am, Buffalo Bayou Park. Free entry.</p></body></html>`))
	}))
	defer server.Close()

	model := &fakeLLM{response: "A free group ride along Buffalo Bayou starting Saturday at 8am."}
	reviewer := NewContentReviewer(server.Client(), model)
	assert.Equal(t, "content_enricher", reviewer.ID())

	verdict, err := reviewer.Review(context.Background(), &entity.Event{
		Title: "Bayou Greenway Ride",
		URL:   server.URL,
	})
	require.NoError(t, err)

	assert.True(t, verdict.Verified)
	assert.Equal(t, 0.9, verdict.Confidence)
	assert.True(t, verdict.URLWorking)
	assert.Equal(t, model.response, verdict.EnrichedDescription)

	assert.Contains(t, model.lastPrompt, "Bayou Greenway Ride")
	assert.Contains(t, model.lastPrompt, "Buffalo Bayou Park")
	assert.NotContains(t, model.lastPrompt, "var x = 1")
}

func TestContentReviewerFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	reviewer := NewContentReviewer(server.Client(), &fakeLLM{})
	verdict, err := reviewer.Review(context.Background(), &entity.Event{Title: "x", URL: server.URL})
	require.NoError(t, err)

	assert.False(t, verdict.Verified)
	assert.Equal(t, 0.6, verdict.Confidence)
	assert.Contains(t, verdict.Notes[0], "Could not fetch page")
}

func TestContentReviewerMissingURL(t *testing.T) {
	reviewer := NewContentReviewer(http.DefaultClient, &fakeLLM{})
	verdict, err := reviewer.Review(context.Background(), &entity.Event{Title: "x"})
	require.NoError(t, err)

	assert.False(t, verdict.Verified)
	assert.Equal(t, 0.6, verdict.Confidence)
}

func TestContentReviewerModelFailureAbstains(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Some event page text here.</p></body></html>`))
	}))
	defer server.Close()

	reviewer := NewContentReviewer(server.Client(), &fakeLLM{err: errors.New("model overloaded")})
	_, err := reviewer.Review(context.Background(), &entity.Event{Title: "x", URL: server.URL})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "content extraction"))
}

func TestContentReviewerTruncatesPageText(t *testing.T) {
	long := strings.Repeat("event details ", 1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + long + "</p></body></html>"))
	}))
	defer server.Close()

	model := &fakeLLM{response: "ok"}
	reviewer := NewContentReviewer(server.Client(), model)
	_, err := reviewer.Review(context.Background(), &entity.Event{Title: "x", URL: server.URL})
	require.NoError(t, err)

	assert.Less(t, len(model.lastPrompt), len(long))
}
