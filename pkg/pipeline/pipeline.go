// Package pipeline orchestrates a single crawl-filter-cache-extract-persist
// run: it gathers a fetcher's page sequence, optionally filters it for
// relevance, consults the content cache before spending an LM call, and
// writes every retained page to the output directory.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmylchreest/docuscout/internal/logger"
	"github.com/jmylchreest/docuscout/pkg/cache"
	"github.com/jmylchreest/docuscout/pkg/extractor"
	"github.com/jmylchreest/docuscout/pkg/fetcher"
	"github.com/jmylchreest/docuscout/pkg/filter"
	"github.com/jmylchreest/docuscout/pkg/output"
)

// Config bounds a pipeline run's concurrency and timeouts.
type Config struct {
	FilteringEnabled      bool
	TargetTopic           string
	ExtractionConcurrency int           // bounded worker pool size; default 4
	PageTimeout           time.Duration // deadline for one page's extraction call; cache and output writes take no context
	DrainTimeout          time.Duration // how long to wait for in-flight work after cancellation
}

// DefaultConfig matches spec.md's stated defaults: 4 extraction workers, a
// 180s per-page deadline, and a 5s cancellation drain window.
func DefaultConfig() Config {
	return Config{
		ExtractionConcurrency: 4,
		PageTimeout:           180 * time.Second,
		DrainTimeout:          5 * time.Second,
	}
}

// Pipeline wires the fetch, filter, cache, extraction, and output stages
// into one run.
type Pipeline struct {
	fetcher   fetcher.Fetcher
	filter    *filter.RelevanceFilter // nil when filtering is disabled
	extractor *extractor.Extractor
	cache     *cache.Cache
	writer    *output.Writer
	cfg       Config
}

// New constructs a Pipeline. filterStage may be nil; it is only consulted
// when cfg.FilteringEnabled is true.
func New(f fetcher.Fetcher, filterStage *filter.RelevanceFilter, extractorStage *extractor.Extractor, cacheStore *cache.Cache, writer *output.Writer, cfg Config) *Pipeline {
	def := DefaultConfig()
	if cfg.ExtractionConcurrency < 1 {
		cfg.ExtractionConcurrency = def.ExtractionConcurrency
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = def.PageTimeout
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = def.DrainTimeout
	}
	if cfg.FilteringEnabled && cfg.TargetTopic == "" {
		logger.Warn("filtering_enabled requires a non-empty target_topic; disabling the filter stage for this run")
		cfg.FilteringEnabled = false
	}
	return &Pipeline{
		fetcher:   f,
		filter:    filterStage,
		extractor: extractorStage,
		cache:     cacheStore,
		writer:    writer,
		cfg:       cfg,
	}
}

// Run drives one full crawl from seedURL through to persisted output files.
// It always returns a RunSummary, even when ctx is cancelled mid-run: the
// summary describes whatever subset of work completed before the drain
// window closed.
func (p *Pipeline) Run(ctx context.Context, seedURL string, crawlCfg fetcher.CrawlConfig) RunSummary {
	started := time.Now()
	summary := RunSummary{SeedURL: seedURL, StartedAt: started}

	pages := p.gatherPages(ctx, seedURL, crawlCfg)
	summary.FetchedCount = len(pages)
	logger.Info("crawl stage complete", "seed_url", seedURL, "pages_fetched", len(pages))

	results := p.applyFilterStage(ctx, pages, &summary)
	p.runExtractionStage(ctx, pages, results, &summary)

	summary.Duration = time.Since(started)
	if p.extractor != nil {
		summary.Usage = p.extractor.Usage()
	}
	summary.Pages = results
	return summary
}

// gatherPages drains the fetcher's channel fully before any filtering
// begins, per the ordering rule that fetch completes before filtering
// starts: the fetcher's own bounded crawl loop has already applied
// max_depth/max_pages/scope by the time the channel closes.
func (p *Pipeline) gatherPages(ctx context.Context, seedURL string, crawlCfg fetcher.CrawlConfig) []fetcher.CrawledPage {
	ch := p.fetcher.Crawl(ctx, seedURL, crawlCfg)
	var pages []fetcher.CrawledPage
	for page := range ch {
		pages = append(pages, page)
	}
	return pages
}

// applyFilterStage judges every page (or marks it filter-skipped) and
// returns one PageResult per page, preserving fetch order.
func (p *Pipeline) applyFilterStage(ctx context.Context, pages []fetcher.CrawledPage, summary *RunSummary) []PageResult {
	results := make([]PageResult, len(pages))
	for i, page := range pages {
		results[i] = PageResult{
			URL:            page.URL,
			Title:          page.Title,
			Depth:          page.RawDepth,
			CrawlTimestamp: page.FetchTimestamp,
		}
	}

	if !p.cfg.FilteringEnabled || p.filter == nil {
		for i := range results {
			results[i].Included = true
			results[i].State = StateFilterSkipped
			summary.FilterSkippedCount++
		}
		return results
	}

	decisions := p.filter.FilterAll(ctx, pages, p.cfg.TargetTopic)
	for i, d := range decisions {
		results[i].Included = d.Included
		results[i].DecisionExplanation = d.Explanation
		if d.Included {
			results[i].State = StateDecidedInclude
			summary.FilteredInCount++
		} else {
			results[i].State = StateDecidedExclude
			summary.FilteredOutCount++
		}
	}
	return results
}

// runExtractionStage runs the cache-decide -> extract -> persist chain for
// every included page, bounded by cfg.ExtractionConcurrency concurrent
// workers. It mutates results in place and tallies the final counters onto
// summary once every worker has either finished or the drain window closes.
func (p *Pipeline) runExtractionStage(ctx context.Context, pages []fetcher.CrawledPage, results []PageResult, summary *RunSummary) {
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.ExtractionConcurrency)

	for i, page := range pages {
		if !results[i].Included {
			continue
		}
		if ctx.Err() != nil {
			results[i].State = StateFailed
			results[i].Err = &CancellationError{URL: page.URL}
			continue
		}

		wg.Add(1)
		go func(idx int, pg fetcher.CrawledPage) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				results[idx].State = StateFailed
				results[idx].Err = &CancellationError{URL: pg.URL}
				mu.Unlock()
				return
			}
			defer func() { <-sem }()

			res := p.processOne(ctx, pg, results[idx])
			mu.Lock()
			results[idx] = res
			mu.Unlock()
		}(i, page)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		summary.Cancelled = true
		select {
		case <-done:
		case <-time.After(p.cfg.DrainTimeout):
			logger.Warn("extraction stage drain timeout exceeded, returning partial results")
		}
	}

	for _, r := range results {
		switch r.State {
		case StatePersisted:
			summary.PersistedCount++
			if r.CacheHit {
				summary.CacheHitCount++
			} else {
				summary.CacheMissCount++
			}
			summary.ExtractedCount++
		case StateExtractionFailed:
			summary.CacheMissCount++
			summary.ExtractionFailed++
		}
	}
}

// processOne runs one included page through cache lookup, extraction (on a
// miss), and persistence, returning base updated with the outcome. base
// carries the filter-stage fields (URL, Title, Depth, Included, decision
// explanation) forward.
func (p *Pipeline) processOne(ctx context.Context, page fetcher.CrawledPage, base PageResult) PageResult {
	res := base

	pageCtx, cancel := context.WithTimeout(ctx, p.cfg.PageTimeout)
	defer cancel()

	dec := p.cache.Decide(page.URL, page.CleanedHTML)

	var sections []string
	if dec.Outcome == cache.Hit {
		payload, meta, err := p.cache.GetCached(page.URL)
		if err != nil {
			logger.Warn("cache record unreadable, re-extracting", "url", page.URL, "error",
				&CacheCorruptionError{URL: page.URL, Err: err})
			dec.Outcome = cache.Miss
		} else {
			sections = payload.Content
			res.CacheHit = true
			if meta.Title != "" {
				res.Title = meta.Title
			}
		}
	}

	if dec.Outcome == cache.Miss {
		extracted, err := p.extractor.Extract(pageCtx, page.URL, page.CleanedHTML)
		if err != nil {
			res.State = StateExtractionFailed
			if extracted.URL != "" {
				// A response arrived but split into no sections.
				res.Err = &LMParseError{Stage: "extract", URL: page.URL, Err: err}
			} else {
				res.Err = &LMCallError{Stage: "extract", URL: page.URL, Err: err}
			}
			return res
		}
		sections = extracted.Content

		payload := cache.ExtractionPayload{
			URL:                 page.URL,
			Content:             sections,
			ExtractionTimestamp: time.Now().UTC().Format(time.RFC3339),
		}
		meta := cache.PageMetadata{
			URL:                 page.URL,
			Title:               res.Title,
			Depth:               page.RawDepth,
			Included:            true,
			DecisionExplanation: res.DecisionExplanation,
			CrawlTimestamp:      page.FetchTimestamp.UTC().Format(time.RFC3339),
		}
		if err := p.cache.Put(page.URL, dec.ContentHash, payload, meta); err != nil {
			res.State = StateFailed
			res.Err = &CacheIOError{URL: page.URL, Err: err}
			return res
		}
	}

	res.Sections = sections
	filename, err := p.writer.WritePage(page.URL, res.Title, sections)
	if err != nil {
		res.State = StateFailed
		res.Err = fmt.Errorf("persisting %s: %w", page.URL, err)
		return res
	}
	res.Filename = filename
	res.State = StatePersisted
	return res
}
