package fetcher

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is a discovered outbound link with the context needed to score it.
type Link struct {
	URL  string
	Text string
}

// ExtractLinks collects every a[href] in html, resolved against baseURL.
// Fragment-only and javascript: links are skipped and results are
// de-duplicated by resolved URL. This is deliberately unconfigurable (no
// CSS selector, no regex, no pagination-link support) — the core crawl
// contract discovers every outbound link and lets scope/depth/priority
// decide what gets followed.
func ExtractLinks(html, baseURL string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var links []Link
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}
		if !linkURL.IsAbs() {
			linkURL = base.ResolveReference(linkURL)
		}
		linkURL.Fragment = ""

		full := linkURL.String()
		if seen[full] {
			return
		}
		seen[full] = true

		links = append(links, Link{URL: full, Text: strings.TrimSpace(s.Text())})
	})

	return links, nil
}
