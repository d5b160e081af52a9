package fetcher

import "testing"

func TestKeywordScore(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		text     string
		want     float64
	}{
		{"no keywords", nil, "anything", 0},
		{"no match", []string{"golang"}, "this is about python", 0},
		{"case insensitive match", []string{"Golang"}, "a page about golang tooling", 1},
		{"partial match fraction", []string{"golang", "rust"}, "a page about golang tooling", 0.5},
		{"all match", []string{"golang", "tooling"}, "a page about golang tooling", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeywordScore(tt.keywords, tt.text); got != tt.want {
				t.Errorf("KeywordScore(%v, %q) = %v, want %v", tt.keywords, tt.text, got, tt.want)
			}
		})
	}
}

func TestStructuralScore(t *testing.T) {
	if got := StructuralScore(0); got != 1.0 {
		t.Errorf("StructuralScore(0) = %v, want 1.0", got)
	}
	if got := StructuralScore(1); got != 0.5 {
		t.Errorf("StructuralScore(1) = %v, want 0.5", got)
	}
	if got := StructuralScore(3); got != 0.25 {
		t.Errorf("StructuralScore(3) = %v, want 0.25", got)
	}
}

func TestScore_WeightBlending(t *testing.T) {
	keywords := []string{"golang"}
	text := "golang tutorial"

	// keywordWeight=1 reduces to pure keyword score.
	if got := Score(1, keywords, text, 5); got != 1.0 {
		t.Errorf("Score with weight=1 = %v, want 1.0", got)
	}
	// keywordWeight=0 reduces to pure structural score.
	if got := Score(0, keywords, text, 1); got != 0.5 {
		t.Errorf("Score with weight=0 = %v, want 0.5", got)
	}
}
