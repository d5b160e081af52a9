// Package cleaner sits between the fetcher and the filter/extractor LM
// stages: it strips a fetched page down to the text worth sending to a
// model, so prompt tokens aren't spent on nav bars, scripts, and markup.
package cleaner

// Cleaner turns a fetched page body into text the LM stages can reason
// about. Swappable per pipeline run: Markdown conversion, Readability-style
// boilerplate stripping, or a pass-through for already-clean content.
type Cleaner interface {
	// Clean converts html into the cleaner's output format. Implementations
	// should tolerate malformed markup rather than erroring on it.
	Clean(html string) (string, error)

	// Name identifies the cleaner in run logs.
	Name() string
}
