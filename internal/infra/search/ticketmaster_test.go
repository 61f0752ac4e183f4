package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return Config{
		City:       "Houston",
		StateCode:  "TX",
		Location:   loc,
		WindowDays: 3,
		MaxResults: 20,
	}
}

const ticketmasterFixture = `{
  "_embedded": {
    "events": [
      {
        "name": "Houston Symphony: Beethoven 9",
        "info": "An evening of classical music downtown.",
        "url": "https://tickets.example.com/sym9",
        "dates": {"start": {"dateTime": "2026-08-25T00:30:00Z"}},
        "classifications": [{"genre": {"name": "Classical"}}],
        "_embedded": {
          "venues": [{"name": "Jones Hall", "city": {"name": "Houston"}}]
        }
      },
      {
        "name": "Rockets vs Spurs",
        "info": "",
        "url": "https://tickets.example.com/rockets",
        "dates": {"start": {}},
        "classifications": [{"genre": {"name": "Sports"}}],
        "_embedded": {"venues": [{"name": "Toyota Center", "city": {"name": "Houston"}}]}
      }
    ]
  }
}`

func TestTicketmasterSearch(t *testing.T) {
	t.Run("parses events", func(t *testing.T) {
		var gotQuery map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"city":      r.URL.Query().Get("city"),
				"stateCode": r.URL.Query().Get("stateCode"),
				"apikey":    r.URL.Query().Get("apikey"),
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(ticketmasterFixture))
		}))
		defer server.Close()

		tm := NewTicketmaster("tm-key", testConfig(t), server.Client())
		tm.baseURL = server.URL

		events, err := tm.Search(context.Background())
		require.NoError(t, err)
		require.Len(t, events, 2)

		assert.Equal(t, "Houston", gotQuery["city"])
		assert.Equal(t, "TX", gotQuery["stateCode"])
		assert.Equal(t, "tm-key", gotQuery["apikey"])

		symphony := events[0]
		assert.Equal(t, "Houston Symphony: Beethoven 9", symphony.Title)
		assert.Equal(t, "Jones Hall, Houston", symphony.Location)
		assert.Equal(t, "ticketmaster", symphony.Source)
		require.NotNil(t, symphony.StartTime)
		assert.Equal(t, "America/Chicago", symphony.StartTime.Location().String())

		rockets := events[1]
		assert.Nil(t, rockets.StartTime)
		assert.Contains(t, rockets.Categories, "outdoor")
	})

	t.Run("genre folds into categories", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"_embedded": {"events": [
				{"name": "An Evening Downtown", "info": "",
				 "classifications": [{"genre": {"name": "Music"}}]}
			]}}`))
		}))
		defer server.Close()

		tm := NewTicketmaster("tm-key", testConfig(t), server.Client())
		tm.baseURL = server.URL

		events, err := tm.Search(context.Background())
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Contains(t, events[0].Categories, "music")
	})

	t.Run("missing api key", func(t *testing.T) {
		tm := NewTicketmaster("", testConfig(t), http.DefaultClient)
		_, err := tm.Search(context.Background())
		assert.ErrorIs(t, err, ErrNoAPIKey)
	})

	t.Run("server error surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		tm := NewTicketmaster("bad-key", testConfig(t), server.Client())
		tm.baseURL = server.URL

		_, err := tm.Search(context.Background())
		assert.Error(t, err)
	})
}
