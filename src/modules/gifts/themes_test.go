package gifts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonalTheme(t *testing.T) {
	tests := []struct {
		month time.Month
		want  string
	}{
		{time.January, "seasonal:winter"},
		{time.February, "seasonal:winter"},
		{time.March, "seasonal:spring"},
		{time.May, "seasonal:spring"},
		{time.June, "seasonal:summer"},
		{time.August, "seasonal:summer"},
		{time.September, "seasonal:autumn"},
		{time.November, "seasonal:autumn"},
		{time.December, "seasonal:winter"},
	}
	for _, tt := range tests {
		now := time.Date(2026, tt.month, 15, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, tt.want, SeasonalTheme(now), "month %s", tt.month)
	}
}

func TestResolveTheme(t *testing.T) {
	july := time.Date(2026, time.July, 4, 10, 0, 0, 0, time.UTC)

	key, data := ResolveTheme("", july)
	assert.Equal(t, "seasonal:summer", key)
	assert.Equal(t, "☀️", data.Emoji)

	key, data = ResolveTheme("seasonal", july)
	assert.Equal(t, "seasonal:summer", key)
	assert.Equal(t, "waves", data.Pattern)

	key, data = ResolveTheme("seasonal:winter", july)
	assert.Equal(t, "seasonal:winter", key)
	assert.Equal(t, "snowflakes", data.Pattern)

	key, data = ResolveTheme("birthday", july)
	assert.Equal(t, "birthday", key)
	assert.Equal(t, "🎂", data.Emoji)

	key, data = ResolveTheme("nonsense", july)
	assert.Equal(t, "classic", key)
	assert.Equal(t, "🎁", data.Emoji)

	key, _ = ResolveTheme("seasonal:nonsense", july)
	assert.Equal(t, "classic", key)
}
