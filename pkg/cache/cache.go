package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/docuscout/internal/logger"
)

const (
	indexFileName    = "content_index.json"
	extractionsDir   = "extractions"
	metadataDir      = "metadata"
	urlHashPrefixLen = 12
)

// Cache is the on-disk content-addressed extraction store rooted at a
// single directory. One Cache instance owns its root exclusively; nothing
// here guards against two processes sharing the same root concurrently.
type Cache struct {
	root string

	mu     sync.Mutex
	index  map[string]CacheRecord
	hits   int
	misses int
}

// New constructs a Cache rooted at dir, loading any existing index.
// A missing index file is equivalent to an empty cache.
func New(dir string) (*Cache, error) {
	c := &Cache{
		root:  dir,
		index: make(map[string]CacheRecord),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) indexPath() string      { return filepath.Join(c.root, indexFileName) }
func (c *Cache) extractionsPath() string { return filepath.Join(c.root, extractionsDir) }
func (c *Cache) metadataPath() string    { return filepath.Join(c.root, metadataDir) }

func (c *Cache) ensureDirs() error {
	if err := os.MkdirAll(c.extractionsPath(), 0o755); err != nil {
		return err
	}
	return os.MkdirAll(c.metadataPath(), 0o755)
}

// load reads the index file. A malformed index is not fatal: it is logged
// and the cache falls back to empty, which makes the run proceed as a full
// miss rather than surfacing a corruption error to the caller.
func (c *Cache) load() error {
	data, err := os.ReadFile(c.indexPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache: read index: %w", err)
	}

	var idx map[string]CacheRecord
	if err := json.Unmarshal(data, &idx); err != nil {
		logger.Warn("cache index is corrupted, rebuilding as empty", "path", c.indexPath(), "err", err)
		c.index = make(map[string]CacheRecord)
		return nil
	}
	c.index = idx
	return nil
}

// ComputeContentHash hashes cleaned HTML the way the cache keys every record:
// lowercase hex SHA-256 over the UTF-8 bytes of the cleaner's output.
func ComputeContentHash(cleanedHTML string) string {
	sum := sha256.Sum256([]byte(cleanedHTML))
	return hex.EncodeToString(sum[:])
}

// Decide reports whether url's current cleaned HTML matches the cached
// content hash. A HIT means the caller may skip extraction entirely.
func (c *Cache) Decide(url, cleanedHTML string) Decision {
	hash := ComputeContentHash(cleanedHTML)

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, known := c.index[url]
	if known && rec.ContentHash == hash {
		c.hits++
		return Decision{Outcome: Hit, ContentHash: hash}
	}

	c.misses++
	reason := ReasonNewURL
	if known {
		reason = ReasonContentChanged
	}
	return Decision{Outcome: Miss, Reason: reason, ContentHash: hash}
}

// GetCached returns the extraction payload and metadata for a URL whose
// most recent Decide call returned Hit. It is an error to call this for a
// URL absent from the index.
func (c *Cache) GetCached(url string) (ExtractionPayload, PageMetadata, error) {
	c.mu.Lock()
	rec, known := c.index[url]
	c.mu.Unlock()
	if !known {
		return ExtractionPayload{}, PageMetadata{}, fmt.Errorf("cache: no record for %s", url)
	}

	var payload ExtractionPayload
	extractionData, err := os.ReadFile(filepath.Join(c.extractionsPath(), rec.URLHash+".json"))
	if err != nil {
		return ExtractionPayload{}, PageMetadata{}, fmt.Errorf("cache: read extraction: %w", err)
	}
	if err := json.Unmarshal(extractionData, &payload); err != nil {
		return ExtractionPayload{}, PageMetadata{}, fmt.Errorf("cache: parse extraction: %w", err)
	}

	var meta PageMetadata
	metaData, err := os.ReadFile(filepath.Join(c.metadataPath(), rec.URLHash+"_meta.json"))
	if err != nil {
		return ExtractionPayload{}, PageMetadata{}, fmt.Errorf("cache: read metadata: %w", err)
	}
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return ExtractionPayload{}, PageMetadata{}, fmt.Errorf("cache: parse metadata: %w", err)
	}

	return payload, meta, nil
}

// Put persists a new extraction: extraction and metadata files are written
// first, then the in-memory index is updated and flushed to disk. If the
// index write fails, the files already on disk become orphans that
// Reconcile will clean up on a later run.
func (c *Cache) Put(url, contentHash string, payload ExtractionPayload, meta PageMetadata) error {
	if err := c.ensureDirs(); err != nil {
		return fmt.Errorf("cache: ensure dirs: %w", err)
	}

	urlHash := c.assignURLHash(url)
	extractionFile := urlHash + ".json"
	metadataFile := urlHash + "_meta.json"

	if err := writeJSONAtomic(filepath.Join(c.extractionsPath(), extractionFile), payload); err != nil {
		return fmt.Errorf("cache: write extraction: %w", err)
	}
	if err := writeJSONAtomic(filepath.Join(c.metadataPath(), metadataFile), meta); err != nil {
		return fmt.Errorf("cache: write metadata: %w", err)
	}

	rec := CacheRecord{
		URL:            url,
		ContentHash:    contentHash,
		ExtractionFile: filepath.Join(extractionsDir, extractionFile),
		MetadataFile:   filepath.Join(metadataDir, metadataFile),
		URLHash:        urlHash,
		LastExtracted:  time.Now().UTC().Format(time.RFC3339),
	}

	c.mu.Lock()
	c.index[url] = rec
	c.mu.Unlock()

	return c.persistIndex()
}

// assignURLHash returns the stable url_hash for url, reusing the existing
// one on re-extraction and otherwise deriving a fresh 12-hex-char prefix of
// SHA-256(url), appending -1, -2, ... on collision with a different URL.
func (c *Cache) assignURLHash(url string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, known := c.index[url]; known {
		return rec.URLHash
	}

	sum := sha256.Sum256([]byte(url))
	base := hex.EncodeToString(sum[:])[:urlHashPrefixLen]

	candidate := base
	for suffix := 1; ; suffix++ {
		if !c.urlHashTakenLocked(candidate, url) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}

func (c *Cache) urlHashTakenLocked(hash, excludeURL string) bool {
	for u, rec := range c.index {
		if u != excludeURL && rec.URLHash == hash {
			return true
		}
	}
	return false
}

// persistIndex snapshots the index under the mutex, then writes it to disk
// without holding the lock, per the concurrency model's bounded-hold-time
// rule for the in-memory index.
func (c *Cache) persistIndex() error {
	c.mu.Lock()
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("cache: marshal index: %w", err)
	}
	return writeAtomic(c.indexPath(), data)
}

// Stats reports counters for run summaries.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	total := len(c.index)
	hits := c.hits
	misses := c.misses
	c.mu.Unlock()

	return Stats{
		TotalURLs:       total,
		ExtractionFiles: countFiles(c.extractionsPath()),
		MetadataFiles:   countFiles(c.metadataPath()),
		CacheHits:       hits,
		CacheMisses:     misses,
	}
}

// Reconcile drops index entries whose referenced files are missing and
// returns the number removed. It is idempotent: a second call with nothing
// new missing removes zero entries.
func (c *Cache) Reconcile() (int, error) {
	c.mu.Lock()
	removed := 0
	for url, rec := range c.index {
		extractionExists := fileExists(filepath.Join(c.root, rec.ExtractionFile))
		metadataExists := fileExists(filepath.Join(c.root, rec.MetadataFile))
		if !extractionExists || !metadataExists {
			delete(c.index, url)
			removed++
		}
	}
	var data []byte
	var err error
	if removed > 0 {
		data, err = json.MarshalIndent(c.index, "", "  ")
	}
	c.mu.Unlock()

	if removed == 0 || err != nil {
		return removed, err
	}
	return removed, writeAtomic(c.indexPath(), data)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func countFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n
}

// writeJSONAtomic marshals v and writes it via writeAtomic.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// writeAtomic writes data to a sibling temp file, fsyncs it, then renames
// it over path so readers never observe a partial write.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
