package pipeline

import "fmt"

// FetchError wraps a failure to fetch or clean a page. It is not retried by
// the pipeline: the fetcher's own crawl loop has already moved past the page
// by the time a CrawledPage would have reached the pipeline, so a fetch
// failure is recorded and the page is simply absent from the sequence.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// LMCallError wraps a transport/timeout failure from a provider.Complete
// call, after retries have been exhausted.
type LMCallError struct {
	Stage string // "filter" or "extract"
	URL   string
	Err   error
}

func (e *LMCallError) Error() string {
	return fmt.Sprintf("%s LM call failed for %s: %v", e.Stage, e.URL, e.Err)
}
func (e *LMCallError) Unwrap() error { return e.Err }

// LMParseError wraps a response that was received but could not be parsed
// into the stage's expected contract: an extraction response that splits
// into no sections. Unparseable filter responses fail open instead.
type LMParseError struct {
	Stage string
	URL   string
	Err   error
}

func (e *LMParseError) Error() string {
	return fmt.Sprintf("%s response unparseable for %s: %v", e.Stage, e.URL, e.Err)
}
func (e *LMParseError) Unwrap() error { return e.Err }

// CacheIOError wraps a failure reading or writing the content cache.
type CacheIOError struct {
	URL string
	Err error
}

func (e *CacheIOError) Error() string { return fmt.Sprintf("cache I/O for %s: %v", e.URL, e.Err) }
func (e *CacheIOError) Unwrap() error { return e.Err }

// CacheCorruptionError signals a cache record pointed at a file that could
// not be read back; the page is treated as a miss and re-extracted.
type CacheCorruptionError struct {
	URL string
	Err error
}

func (e *CacheCorruptionError) Error() string {
	return fmt.Sprintf("cache record corrupted for %s: %v", e.URL, e.Err)
}
func (e *CacheCorruptionError) Unwrap() error { return e.Err }

// CancellationError signals a page never completed because the run context
// was cancelled before its stage began or finished.
type CancellationError struct {
	URL string
}

func (e *CancellationError) Error() string { return fmt.Sprintf("cancelled before completing %s", e.URL) }
