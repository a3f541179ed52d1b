package models

import "testing"

func TestClassifyMoodBands(t *testing.T) {
	cases := []struct {
		change float64
		want   string
	}{
		{6.2, "awakens"},
		{5.01, "awakens"},
		{5, "stirs"}, // boundary belongs to the lower band
		{3.4, "stirs"},
		{2.01, "stirs"},
		{2, "flows"},
		{0, "flows"},
		{-2, "flows"},
		{-2.01, "rests"},
		{-5, "rests"},
		{-5.01, "slumbers"},
		{-6.0, "slumbers"},
	}
	for _, tc := range cases {
		if got := ClassifyMood(tc.change); got.Label != tc.want {
			t.Errorf("ClassifyMood(%v) = %q, want %q", tc.change, got.Label, tc.want)
		}
	}
}

func TestClassifyMoodCarriesGlyphs(t *testing.T) {
	m := ClassifyMood(10)
	if m.Emoji == "" || m.Glyph == "" {
		t.Fatalf("mood missing display tags: %#v", m)
	}
}
