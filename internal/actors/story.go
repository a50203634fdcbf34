// Life-story recorder: a bounded moment log with lossy narrative
// compression into the character's running life story.
package actors

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxMoments caps the significant-moments sequence; oldest entries
	// are dropped on overflow.
	MaxMoments = 50

	// Every summarizeEvery moments, the latest batch is folded into the
	// life story text.
	summarizeEvery = 10

	// When the life story exceeds storyLimit characters it is truncated
	// to the most recent storyKeep, preferring recency over completeness.
	storyLimit = 5000
	storyKeep  = 4000
)

// Moment is a single timestamped, categorized narrative event.
type Moment struct {
	Tick     int64  `json:"tick"`
	Category string `json:"category"` // "first_meeting", "level_up", "arrival", ...
	Text     string `json:"text"`
}

// RecordMoment appends a moment to the character's bounded sequence and
// periodically folds the newest batch into the life story.
func RecordMoment(c *Character, tick int64, category, text string) {
	c.SignificantMoments = append(c.SignificantMoments, Moment{
		Tick:     tick,
		Category: category,
		Text:     text,
	})
	if len(c.SignificantMoments) > MaxMoments {
		c.SignificantMoments = c.SignificantMoments[len(c.SignificantMoments)-MaxMoments:]
	}

	if len(c.SignificantMoments)%summarizeEvery == 0 {
		summarize(c)
	}
}

// summarize concatenates the last batch of moments onto the life story,
// truncating when it outgrows the cap.
func summarize(c *Character) {
	start := len(c.SignificantMoments) - summarizeEvery
	if start < 0 {
		start = 0
	}
	var parts []string
	for _, m := range c.SignificantMoments[start:] {
		parts = append(parts, m.Text)
	}
	chapter := strings.Join(parts, " ")

	if c.LifeStory == "" {
		c.LifeStory = chapter
	} else {
		c.LifeStory += " " + chapter
	}

	if len(c.LifeStory) > storyLimit {
		// Advance the cut to a rune boundary so truncation never leaves
		// a partial multi-byte character at the front.
		cut := len(c.LifeStory) - storyKeep
		for cut < len(c.LifeStory) && !utf8.RuneStart(c.LifeStory[cut]) {
			cut++
		}
		c.LifeStory = c.LifeStory[cut:]
	}
}
