package gifts

import "time"

// ThemeData is the cosmetic configuration of a gift wrap.
type ThemeData struct {
	Emoji   string   `json:"emoji"`
	Colors  []string `json:"colors"`
	Pattern string   `json:"pattern"`
	Message string   `json:"message,omitempty"`
}

var themes = map[string]ThemeData{
	"classic": {
		Emoji:   "🎁",
		Colors:  []string{"#e74c3c", "#f39c12", "#2ecc71"},
		Pattern: "ribbons",
		Message: "A discovery awaits!",
	},
	"birthday": {
		Emoji:   "🎂",
		Colors:  []string{"#ff69b4", "#ffd700", "#87ceeb"},
		Pattern: "confetti",
		Message: "Happy discovery day!",
	},
	"mystery": {
		Emoji:   "🎭",
		Colors:  []string{"#4a148c", "#311b92", "#1a237e"},
		Pattern: "question_marks",
		Message: "Mystery unfolds...",
	},
}

var seasonalThemes = map[string]ThemeData{
	"spring": {
		Emoji:   "🌸",
		Colors:  []string{"#ffc0cb", "#98fb98", "#e6e6fa"},
		Pattern: "flowers",
	},
	"summer": {
		Emoji:   "☀️",
		Colors:  []string{"#ffd700", "#ff8c00", "#00ced1"},
		Pattern: "waves",
	},
	"autumn": {
		Emoji:   "🍂",
		Colors:  []string{"#ff8c00", "#d2691e", "#8b4513"},
		Pattern: "leaves",
	},
	"winter": {
		Emoji:   "❄️",
		Colors:  []string{"#b0e0e6", "#4682b4", "#191970"},
		Pattern: "snowflakes",
	},
}

// SeasonalTheme returns the seasonal theme key for the given time,
// bucketed by calendar month.
func SeasonalTheme(now time.Time) string {
	switch now.Month() {
	case time.March, time.April, time.May:
		return "seasonal:spring"
	case time.June, time.July, time.August:
		return "seasonal:summer"
	case time.September, time.October, time.November:
		return "seasonal:autumn"
	default:
		return "seasonal:winter"
	}
}

// ResolveTheme maps a caller-supplied theme key to a valid key and its
// data. An empty or bare "seasonal" key picks the current season; an
// unrecognized key falls back to classic.
func ResolveTheme(key string, now time.Time) (string, ThemeData) {
	if key == "" || key == "seasonal" {
		key = SeasonalTheme(now)
	}
	if season, ok := seasonalKey(key); ok {
		return key, seasonalThemes[season]
	}
	if data, ok := themes[key]; ok {
		return key, data
	}
	return "classic", themes["classic"]
}

func seasonalKey(key string) (string, bool) {
	const prefix = "seasonal:"
	if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
		return "", false
	}
	season := key[len(prefix):]
	_, ok := seasonalThemes[season]
	return season, ok
}
