package fetcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractTitle returns the document's <title> text, or "" if absent or
// unparseable.
func extractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
