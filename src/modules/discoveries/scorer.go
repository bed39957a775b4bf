package discoveries

import "strings"

// ShareThreshold is the interest score above which a result is persisted
// as a discovery.
const ShareThreshold = 0.5

// Result is one search result as reported by the search frontend.
type Result struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Engine    string `json:"engine"`
	ImgSrc    string `json:"img_src,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Domains whose results are inherently shareworthy for this crowd.
var interestingDomains = []string{
	"bandcamp.com",
	"archive.org",
	"gallica.bnf.fr",
	"biodiversitylibrary.org",
	"jstor.org",
	"arxiv.org",
}

var academicMarkers = []string{"doi:", "isbn:", "pmid:", "arxiv:"}

// Score rates how interesting/shareworthy a result is for the given
// query. Pure and deterministic: an additive combination of independent
// signals with fixed weights, capped at 1.0.
func Score(result Result, query string) float64 {
	score := 0.0

	// Title relevance
	if query != "" && strings.Contains(strings.ToLower(result.Title), strings.ToLower(query)) {
		score += 0.3
	}

	// Special domains boost
	for _, domain := range interestingDomains {
		if strings.Contains(result.URL, domain) {
			score += 0.4
			break
		}
	}

	// Content richness
	if len(result.Content) > 200 {
		score += 0.2
	}

	// Media presence
	if result.ImgSrc != "" || result.Thumbnail != "" {
		score += 0.1
	}

	// Academic indicators
	content := strings.ToLower(result.Content)
	url := strings.ToLower(result.URL)
	for _, marker := range academicMarkers {
		if strings.Contains(content, marker) || strings.Contains(url, marker) {
			score += 0.3
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
