package models

// Mood is the discrete classification of a 24h percentage change.
type Mood struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
	Glyph string `json:"glyph"`
}

var (
	MoodAwakens  = Mood{Label: "awakens", Emoji: "🔥", Glyph: "龍覚醒"}
	MoodStirs    = Mood{Label: "stirs", Emoji: "⚡", Glyph: "龍活動"}
	MoodSlumbers = Mood{Label: "slumbers", Emoji: "❄️", Glyph: "龍休眠"}
	MoodRests    = Mood{Label: "rests", Emoji: "😴", Glyph: "龍休息"}
	MoodFlows    = Mood{Label: "flows", Emoji: "🌊", Glyph: "龍流動"}
)

// ClassifyMood maps a 24h percentage change to a mood band.
// Bands are evaluated top-down, first match wins: a change of exactly 5
// stirs rather than awakens, and exactly -2 flows rather than rests.
func ClassifyMood(change float64) Mood {
	switch {
	case change > 5:
		return MoodAwakens
	case change > 2:
		return MoodStirs
	case change < -5:
		return MoodSlumbers
	case change < -2:
		return MoodRests
	default:
		return MoodFlows
	}
}
