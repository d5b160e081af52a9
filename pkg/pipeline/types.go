package pipeline

import (
	"time"

	"github.com/jmylchreest/docuscout/pkg/extractor"
)

// State names a page's position in the per-page state machine:
//
//	FETCHED -> (DecidedInclude | DecidedExclude | FilterSkipped)
//	        -> (CacheHit | CacheMiss)
//	        -> (Extracted | ExtractionFailed)
//	        -> (Persisted | Failed)
type State string

const (
	StateFetched          State = "FETCHED"
	StateDecidedInclude   State = "DECIDED_INCLUDE"
	StateDecidedExclude   State = "DECIDED_EXCLUDE"
	StateFilterSkipped    State = "FILTER_SKIPPED"
	StateCacheHit         State = "CACHE_HIT"
	StateCacheMiss        State = "CACHE_MISS"
	StateExtracted        State = "EXTRACTED"
	StateExtractionFailed State = "EXTRACTION_FAILED"
	StatePersisted        State = "PERSISTED"
	StateFailed           State = "FAILED"
)

// PageResult records every stage a single page passed through during a run.
type PageResult struct {
	URL                 string
	Title               string
	Depth               int
	State               State
	Included            bool
	DecisionExplanation string
	CacheHit            bool
	Sections            []string
	Filename            string
	Err                 error
	CrawlTimestamp      time.Time
}

// RunSummary aggregates the outcome of a whole pipeline run for reporting
// and for writing the output index.
type RunSummary struct {
	SeedURL            string
	StartedAt          time.Time
	Duration           time.Duration
	FetchedCount       int
	FilteredInCount    int
	FilteredOutCount   int
	FilterSkippedCount int
	CacheHitCount      int
	CacheMissCount     int
	ExtractedCount     int
	ExtractionFailed   int
	PersistedCount     int
	Usage              extractor.UsageStats
	Pages              []PageResult
	Cancelled          bool
}
