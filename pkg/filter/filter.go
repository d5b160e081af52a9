// Package filter implements the optional relevance-filter stage: one LM call
// per crawled page returning a binary include/exclude decision.
package filter

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/jmylchreest/docuscout/internal/logger"
	"github.com/jmylchreest/docuscout/pkg/fetcher"
	"github.com/jmylchreest/docuscout/pkg/llm"
)

// Decision is the outcome of filtering one page.
type Decision struct {
	URL         string
	Included    bool
	Explanation string
}

// Config configures a RelevanceFilter.
type Config struct {
	Temperature float64
	Concurrency int // bounded fan-out; default 8
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Temperature: 0,
		Concurrency: 8,
	}
}

// RelevanceFilter issues one LM call per page to decide whether it matches a
// target topic.
type RelevanceFilter struct {
	provider llm.Provider
	cfg      Config
}

// New creates a RelevanceFilter.
func New(provider llm.Provider, cfg Config) *RelevanceFilter {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	return &RelevanceFilter{provider: provider, cfg: cfg}
}

// FilterAll judges every page against targetTopic, preserving input order in
// the returned slice. Concurrency is bounded by cfg.Concurrency; a failed LM
// call (network/timeout) is itself fail-open: the page is included with an
// explanation naming the error, since a filter call failure must never
// silently drop a page the extractor could otherwise process.
func (f *RelevanceFilter) FilterAll(ctx context.Context, pages []fetcher.CrawledPage, targetTopic string) []Decision {
	decisions := make([]Decision, len(pages))
	sem := make(chan struct{}, f.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, page := range pages {
		wg.Add(1)
		go func(idx int, p fetcher.CrawledPage) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			decisions[idx] = f.filterOne(ctx, p, targetTopic)
		}(i, page)
	}

	wg.Wait()
	return decisions
}

func (f *RelevanceFilter) filterOne(ctx context.Context, page fetcher.CrawledPage, targetTopic string) Decision {
	logger.Debug("filter starting", "url", page.URL, "target_topic", targetTopic)

	resp, err := f.provider.Complete(ctx, buildRequest(targetTopic, page, f.cfg.Temperature))
	if err != nil {
		logger.Info("filter LLM call failed, including page (fail-open)", "url", page.URL, "error", err)
		return Decision{
			URL:         page.URL,
			Included:    true,
			Explanation: "filter call error (fail-open, included): " + err.Error(),
		}
	}

	included, explanation, ok := parseDecision(resp.Content)
	if !ok {
		logger.Debug("filter response did not parse, including page (fail-open)", "url", page.URL, "response", resp.Content)
		return Decision{
			URL:         page.URL,
			Included:    true,
			Explanation: "parse error (fail-open, included); raw response: " + resp.Content,
		}
	}

	logger.Debug("filter decision", "url", page.URL, "included", included)
	return Decision{URL: page.URL, Included: included, Explanation: explanation}
}

type decisionJSON struct {
	Decision    string `json:"decision"`
	Explanation string `json:"explanation"`
}

// parseDecision extracts the first JSON object from a raw LM response and
// reads its decision/explanation fields. ok is false when no JSON object is
// present or decision isn't exactly "include"/"exclude", signaling the
// caller to fail open.
func parseDecision(raw string) (included bool, explanation string, ok bool) {
	start := strings.IndexByte(raw, '{')
	if start == -1 {
		return false, "", false
	}

	var d decisionJSON
	if err := json.NewDecoder(strings.NewReader(raw[start:])).Decode(&d); err != nil {
		return false, "", false
	}

	switch d.Decision {
	case "include":
		return true, d.Explanation, true
	case "exclude":
		return false, d.Explanation, true
	default:
		return false, "", false
	}
}
