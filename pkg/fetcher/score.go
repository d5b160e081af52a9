package fetcher

import "strings"

// KeywordScore is the fraction of keywords that appear (case-insensitively,
// as a substring) anywhere in text. An empty keyword list always scores 0,
// so the keyword term of Score drops out entirely — priority then reduces
// to the structural score.
func KeywordScore(keywords []string, text string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

// StructuralScore favors shallower pages: the seed scores 1.0 and a page at
// depth d scores 1/(1+d) (0.5 at depth 1, 0.25 at depth 3).
func StructuralScore(depth int) float64 {
	return 1.0 / float64(1+depth)
}

// Score is the best-first priority of a discovered link: a weighted sum of
// its keyword match and its structural (depth) score.
func Score(keywordWeight float64, keywords []string, text string, depth int) float64 {
	return keywordWeight*KeywordScore(keywords, text) + (1-keywordWeight)*StructuralScore(depth)
}
