package promo

import (
	"strings"
	"text/template"
	"time"

	"event-radar/internal/domain/entity"
)

// promoTemplate renders the generation prompt. Events arrive pre-sorted by
// relevance score; research narratives and insights are injected per event
// so the model sees them next to the event they belong to.
const promoTemplate = `Today is {{.DateLine}}. Write a HIGH-ENERGY promo announcing this week's local events in Houston.

Rules:
- Cover EVERY event listed below, highest score first.
- Use ONLY the URLs provided. Never invent a URL.
- Mention the day and venue for each event when known.
- Keep each event to 2-4 punchy sentences.
- Close with a single hype sign-off line.

THE EVENTS:
{{range .Events}}
=== {{.Event.Title}} (score {{.Score}}) ===
{{- if .Event.StartTime}}
When: {{.Event.StartTime.Format "Monday, January 2 at 3:04 PM"}}
{{- end}}
{{- if .Event.Location}}
Where: {{.Event.Location}}
{{- end}}
{{- if .Event.URL}}
URL: {{.Event.URL}}
{{- end}}
{{- if .Description}}
About: {{.Description}}
{{- end}}
{{- if .ResearchNarrative}}
Deep background: {{.ResearchNarrative}}
{{- end}}
{{- range .ResearchInsights}}
* {{.}}
{{- end}}
{{end}}`

var promoTmpl = template.Must(template.New("promo").Parse(promoTemplate))

// templateEvent is one event as seen by the prompt template.
type templateEvent struct {
	Event             *entity.Event
	Score             int
	Description       string
	ResearchNarrative string
	ResearchInsights  []string
}

type templateData struct {
	DateLine string
	Events   []templateEvent
}

// renderPrompt renders the generation prompt for the ranked events.
func renderPrompt(events []templateEvent, now time.Time) (string, error) {
	var sb strings.Builder
	err := promoTmpl.Execute(&sb, templateData{
		DateLine: now.Format("Monday, January 2, 2006"),
		Events:   events,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
