package gifts

import (
	"fmt"
	"strings"
	"time"

	"github.com/Camier/searxng-convivial-instance/src/core/models"
)

// Teaser is the non-revealing preview of a wrapped gift. It must never
// carry the discovery's URL, full title or snippet; only categorical and
// numeric hints survive until the reveal.
type Teaser struct {
	Hint           string `json:"hint"`
	Preview        string `json:"preview"`
	Excitement     string `json:"excitement_level"`
	MessagePreview string `json:"message_preview,omitempty"`
}

var excitementLevels = []string{"!", "!!", "!!!"}

// buildTeaser derives the teaser from the discovery's engine category,
// the word count of its title, and whether a message was attached. Long
// messages leak a truncated prefix; this is a feature of the product, not
// an accident.
func buildTeaser(d *models.Discovery, message string, pick func(n int) int) Teaser {
	teaser := Teaser{
		Excitement: excitementLevels[pick(len(excitementLevels))],
	}

	switch d.Engine {
	case "bandcamp":
		teaser.Hint = "🎵 Musical discovery"
	case "gallica", "archives_nationales":
		teaser.Hint = "📜 Historical treasure"
	case "gbif", "plants_of_world":
		teaser.Hint = "🌿 Botanical find"
	default:
		teaser.Hint = "✨ Special discovery"
	}

	titleWords := len(strings.Fields(d.Title))
	teaser.Preview = fmt.Sprintf("A %d-word discovery", titleWords)

	if message != "" {
		if len(message) > 20 {
			teaser.MessagePreview = message[:17] + "..."
		} else {
			teaser.MessagePreview = "💌 Personal note attached"
		}
	}

	return teaser
}

// shakeHints builds the extra-hint pool a shake draws from: a masked
// domain prefix, the query length, and the time-of-day bucket of the
// discovery. Nothing in the pool identifies the result itself.
func shakeHints(d *models.Discovery) []string {
	var hints []string

	if domain := hostOf(d.URL); domain != "" {
		prefix := domain
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		hints = append(hints, fmt.Sprintf("Found on %s***", prefix))
	}

	if d.Query != "" {
		hints = append(hints, fmt.Sprintf("Discovered with a %d-character search", len(d.Query)))
	}

	if !d.DiscoveredAt.IsZero() {
		hints = append(hints, fmt.Sprintf("Found in the %s", timeOfDay(d.DiscoveredAt)))
	}

	return hints
}

func hostOf(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

func timeOfDay(t time.Time) string {
	switch hour := t.Hour(); {
	case hour < 12:
		return "morning"
	case hour < 18:
		return "afternoon"
	default:
		return "evening"
	}
}
