package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"event-radar/internal/infra/search"
)

// SourceDiagnostic represents the diagnostic result for a single source.
type SourceDiagnostic struct {
	Name         string `json:"name"`
	Status       string `json:"status"` // "OK", "NO_API_KEY", "ERROR", "EMPTY"
	EventCount   int    `json:"event_count"`
	MissingDates int    `json:"missing_dates"`
	MissingURLs  int    `json:"missing_urls"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

func main() {
	sources := search.DefaultSources()
	log.Printf("Diagnosing %d event sources...\n", len(sources))

	diagnostics := make([]SourceDiagnostic, 0, len(sources))
	for i, source := range sources {
		log.Printf("[%d/%d] Diagnosing: %s", i+1, len(sources), source.Name())
		diagnostics = append(diagnostics, diagnoseSource(source, 30*time.Second))

		// Rate limiting to be nice to the APIs
		time.Sleep(500 * time.Millisecond)
	}

	generateReport(diagnostics)
	generateJSONReport(diagnostics)
}

func diagnoseSource(source search.Source, timeout time.Duration) SourceDiagnostic {
	diag := SourceDiagnostic{Name: source.Name()}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	events, err := source.Search(ctx)
	diag.ResponseTime = time.Since(start).Milliseconds()

	if err != nil {
		if errors.Is(err, search.ErrNoAPIKey) {
			diag.Status = "NO_API_KEY"
		} else {
			diag.Status = "ERROR"
			diag.ErrorMessage = err.Error()
		}
		return diag
	}

	diag.EventCount = len(events)
	if len(events) == 0 {
		diag.Status = "EMPTY"
		return diag
	}

	diag.Status = "OK"
	for _, event := range events {
		if event.StartTime == nil {
			diag.MissingDates++
		}
		if event.URL == "" {
			diag.MissingURLs++
		}
	}
	return diag
}

func generateReport(diagnostics []SourceDiagnostic) {
	fmt.Println("\n=== Source Diagnostic Report ===")

	ok, broken := 0, 0
	for _, d := range diagnostics {
		switch d.Status {
		case "OK":
			ok++
			fmt.Printf("OK        %-20s %3d events (%d missing dates, %d missing urls) in %dms\n",
				d.Name, d.EventCount, d.MissingDates, d.MissingURLs, d.ResponseTime)
		case "NO_API_KEY":
			fmt.Printf("NO KEY    %-20s skipped, api key not configured\n", d.Name)
		case "EMPTY":
			fmt.Printf("EMPTY     %-20s responded but returned no events\n", d.Name)
		default:
			broken++
			fmt.Printf("ERROR     %-20s %s\n", d.Name, d.ErrorMessage)
		}
	}

	fmt.Printf("\n%d healthy, %d broken, %d total\n", ok, broken, len(diagnostics))
}

func generateJSONReport(diagnostics []SourceDiagnostic) {
	f, err := os.Create("source_diagnostics.json")
	if err != nil {
		log.Printf("Failed to create JSON report: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close JSON report: %v", err)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(diagnostics); err != nil {
		log.Printf("Failed to write JSON report: %v", err)
		return
	}
	log.Println("JSON report written to source_diagnostics.json")
}
