package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/jmylchreest/docuscout/internal/logger"
	"github.com/jmylchreest/docuscout/pkg/cleaner"
	"github.com/jmylchreest/docuscout/pkg/fetcher/priority"
)

// PageFetchFunc retrieves one page's raw HTML. It is the only thing that
// differs between fetch backends; everything else about the crawl — queue
// management, dedup, scope, depth cutoff, cleaning — is shared.
type PageFetchFunc func(ctx context.Context, targetURL string) (html string, err error)

// Driver runs the shared best-first crawl loop against a backend-supplied
// PageFetchFunc. Backends (static, dynamic) construct one per Crawl call.
type Driver struct {
	Backend     string // log label, e.g. "static" or "dynamic"
	Concurrency int
	Cleaner     cleaner.Cleaner
	Fetch       PageFetchFunc
}

// Run drives the crawl to completion, sending CrawledPage values to out and
// closing nothing (the caller owns out's lifecycle).
func (d *Driver) Run(ctx context.Context, seedURL string, cfg CrawlConfig, out chan<- CrawledPage) {
	seed, err := NormalizeURL(seedURL)
	if err != nil {
		logger.Debug(d.Backend+" crawl invalid seed", "url", seedURL, "error", err)
		return
	}

	concurrency := d.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	q := priority.New()
	q.Push(seed, 0, 1.0)

	var (
		visitedMu sync.Mutex
		visited   = map[string]bool{}
	)

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	yielded := 0

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		default:
		}

		if cfg.MaxPages > 0 && yielded >= cfg.MaxPages {
			wg.Wait()
			return
		}

		entry, ok := q.Pop()
		if !ok {
			wg.Wait()
			if q.Len() == 0 {
				return
			}
			continue
		}

		visitedMu.Lock()
		if visited[entry.URL] {
			visitedMu.Unlock()
			continue
		}
		visited[entry.URL] = true
		visitedMu.Unlock()

		yielded++

		sem <- struct{}{}
		wg.Add(1)
		go func(e priority.Entry) {
			defer wg.Done()
			defer func() { <-sem }()
			d.processOne(ctx, seed, e, cfg, q, &visitedMu, visited, out)
		}(entry)
	}
}

func (d *Driver) processOne(
	ctx context.Context,
	seed string,
	entry priority.Entry,
	cfg CrawlConfig,
	q *priority.Queue,
	visitedMu *sync.Mutex,
	visited map[string]bool,
	out chan<- CrawledPage,
) {
	logger.Debug(d.Backend+" fetch starting", "url", entry.URL, "depth", entry.Depth)

	html, err := d.Fetch(ctx, entry.URL)
	if err != nil {
		logger.Info(d.Backend+" fetch failed", "url", entry.URL, "error", err)
		return
	}
	if html == "" {
		return
	}

	cleaned, err := d.Cleaner.Clean(html)
	if err != nil {
		logger.Debug(d.Backend+" cleaner failed, skipping page", "url", entry.URL, "cleaner", d.Cleaner.Name(), "error", err)
		return
	}

	select {
	case out <- CrawledPage{
		URL:            entry.URL,
		Title:          extractTitle(html),
		CleanedHTML:    cleaned,
		RawDepth:       entry.Depth,
		FetchTimestamp: time.Now(),
	}:
	case <-ctx.Done():
		return
	}

	childDepth := entry.Depth + 1
	if childDepth >= cfg.MaxDepth {
		return
	}

	links, err := ExtractLinks(html, entry.URL)
	if err != nil {
		logger.Debug(d.Backend+" link extraction failed", "url", entry.URL, "error", err)
		return
	}

	for _, link := range links {
		childURL, err := NormalizeURL(link.URL)
		if err != nil {
			continue
		}
		if !cfg.IncludeExternal && !SameRegisteredDomain(seed, childURL) {
			continue
		}

		visitedMu.Lock()
		already := visited[childURL]
		visitedMu.Unlock()
		if already {
			continue
		}

		score := Score(cfg.KeywordWeight, cfg.Keywords, link.Text+" "+childURL, childDepth)
		q.Push(childURL, childDepth, score)
	}
}
