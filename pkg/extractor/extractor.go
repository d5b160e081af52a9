// Package extractor implements the structured-extraction LM stage: one call
// per page that turns cleaned HTML into an ordered sequence of non-empty
// textual sections.
package extractor

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmylchreest/docuscout/internal/logger"
	"github.com/jmylchreest/docuscout/pkg/llm"
)

// Result is the outcome of one extraction call.
type Result struct {
	URL     string
	Content []string // ordered, non-empty sections
	Raw     string   // raw LM response, kept for diagnostics
	Usage   llm.Usage
}

// UsageStats is the per-run accumulator exposed by Usage().
type UsageStats struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CallCount        int
}

// Config configures an Extractor.
type Config struct {
	Temperature float64
	MaxTokens   int
	// Instruction overrides the default generic extraction instruction sent
	// to the model (spec.md §4.4).
	Instruction string
}

// DefaultConfig returns sensible defaults: low temperature for determinism
// and the generic instruction below.
func DefaultConfig() Config {
	return Config{
		Temperature: 0.1,
		MaxTokens:   8192,
		Instruction: defaultInstruction,
	}
}

// Extractor performs one-shot LM-based structured extraction. It does not
// retry failed calls itself — the pipeline owns retry/backoff so that a
// single retry policy governs both filter and extractor LM calls.
type Extractor struct {
	provider llm.Provider
	cfg      Config

	mu    sync.Mutex
	usage UsageStats
}

// New creates an Extractor.
func New(provider llm.Provider, cfg Config) *Extractor {
	if cfg.Instruction == "" {
		cfg.Instruction = defaultInstruction
	}
	return &Extractor{provider: provider, cfg: cfg}
}

// Extract converts cleanedHTML into an ordered sequence of non-empty
// sections via a single LM call.
func (e *Extractor) Extract(ctx context.Context, url, cleanedHTML string) (Result, error) {
	logger.Debug("extractor starting", "url", url, "content_size", len(cleanedHTML))

	req := buildRequest(e.cfg, cleanedHTML)

	resp, err := e.provider.Complete(ctx, req)
	if err != nil {
		logger.Debug("extractor LLM call failed", "url", url, "error", err)
		return Result{}, fmt.Errorf("extractor LLM call failed: %w", err)
	}

	e.recordUsage(resp.Usage)

	sections := splitSections(resp.Content)
	if len(sections) == 0 {
		logger.Debug("extractor produced no sections", "url", url)
		return Result{URL: url, Raw: resp.Content, Usage: resp.Usage}, fmt.Errorf("extractor response parsed to zero non-empty sections")
	}

	logger.Debug("extractor complete", "url", url, "section_count", len(sections))
	return Result{URL: url, Content: sections, Raw: resp.Content, Usage: resp.Usage}, nil
}

func (e *Extractor) recordUsage(u llm.Usage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.usage.PromptTokens += u.InputTokens
	e.usage.CompletionTokens += u.OutputTokens
	e.usage.TotalTokens += u.InputTokens + u.OutputTokens
	e.usage.CallCount++
}

// Usage returns a snapshot of accumulated token usage across every call this
// Extractor has made so far.
func (e *Extractor) Usage() UsageStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.usage
}
