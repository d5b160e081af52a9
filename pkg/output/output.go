// Package output writes a run's retained pages to disk: one Markdown file
// per page plus a JSON index summarizing the run.
package output

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PageEntry is one retained page in the run summary.
type PageEntry struct {
	URL                 string    `json:"url"`
	Title               string    `json:"title"`
	Depth               int       `json:"depth"`
	Included            bool      `json:"included"`
	DecisionExplanation string    `json:"decision_explanation,omitempty"`
	Filename            string    `json:"filename"`
	CrawlTimestamp      time.Time `json:"crawl_timestamp"`
}

// Index is the run summary written to index.json.
type Index struct {
	SeedURL     string      `json:"seed_url"`
	GeneratedAt time.Time   `json:"generated_at"`
	TotalPages  int         `json:"total_pages"`
	Pages       []PageEntry `json:"pages"`
}

// Writer writes per-page Markdown files and the run index into a directory.
type Writer struct {
	dir string
}

// New creates a Writer rooted at dir, creating it if necessary.
func New(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("output dir %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// WritePage renders one page's extracted sections as a Markdown file and
// returns the filename (relative to the output directory) it was written
// under.
func (w *Writer) WritePage(pageURL, title string, sections []string) (string, error) {
	filename := SanitizeURLPath(pageURL) + ".md"

	var body strings.Builder
	if title != "" {
		fmt.Fprintf(&body, "# %s\n\n", title)
	}
	fmt.Fprintf(&body, "_Source: %s_\n\n", pageURL)
	for i, section := range sections {
		if i > 0 {
			body.WriteString("\n\n")
		}
		body.WriteString(section)
	}
	body.WriteString("\n")

	path := filepath.Join(w.dir, filename)
	if err := os.WriteFile(path, []byte(body.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing page file %s: %w", path, err)
	}
	return filename, nil
}

// WriteIndex writes the run's index.json, discoverable summary of every
// persisted page.
func (w *Writer) WriteIndex(idx Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}
	path := filepath.Join(w.dir, "index.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing index file %s: %w", path, err)
	}
	return nil
}

// WriteIndexYAML writes the same run summary as index.yaml, for callers that
// prefer a YAML artifact alongside or instead of index.json.
func (w *Writer) WriteIndexYAML(idx Index) error {
	path := filepath.Join(w.dir, "index.yaml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing index file %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(idx); err != nil {
		return fmt.Errorf("marshaling index as yaml: %w", err)
	}
	return enc.Close()
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeURLPath converts a URL into a filesystem-safe, human-legible
// filename stem: host plus path, with any character outside
// [a-zA-Z0-9._-] collapsed to a single underscore.
func SanitizeURLPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return unsafeFilenameChars.ReplaceAllString(rawURL, "_")
	}
	stem := u.Host + u.Path
	stem = strings.Trim(stem, "/")
	stem = unsafeFilenameChars.ReplaceAllString(stem, "_")
	if stem == "" {
		stem = "index"
	}
	return stem
}
