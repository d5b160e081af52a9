package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/docuscout/internal/config"
	"github.com/jmylchreest/docuscout/internal/logger"
	"github.com/jmylchreest/docuscout/pkg/cache"
	"github.com/jmylchreest/docuscout/pkg/cleaner"
	"github.com/jmylchreest/docuscout/pkg/extractor"
	"github.com/jmylchreest/docuscout/pkg/fetcher"
	"github.com/jmylchreest/docuscout/pkg/fetcher/dynamic"
	"github.com/jmylchreest/docuscout/pkg/fetcher/static"
	"github.com/jmylchreest/docuscout/pkg/filter"
	"github.com/jmylchreest/docuscout/pkg/llm"
	"github.com/jmylchreest/docuscout/pkg/output"
	"github.com/jmylchreest/docuscout/pkg/pipeline"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl a seed URL and extract its retained pages to Markdown",
	RunE:  runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	flags := crawlCmd.Flags()
	flags.String("seed-url", "", "URL to start crawling from (required)")
	flags.String("output-dir", "", "directory to write extracted pages and index.json into")
	flags.String("cache-dir", "", "content-addressed extraction cache directory (persists across runs)")
	flags.Int("max-depth", 0, "max crawl depth; children at this depth are never enqueued")
	flags.Int("max-pages", 0, "max number of pages to fetch")
	flags.Bool("include-external", false, "follow links off the seed's registered domain")
	flags.StringSlice("keywords", nil, "comma-separated keywords boosting link priority")
	flags.Float64("keyword-weight", 0, "weight given to keyword matches vs. structural score, in [0,1]")
	flags.String("fetch-mode", "static", "fetch backend: static or dynamic (chromedp)")
	flags.String("clean-mode", "markdown", "content cleaner: markdown, readability, or noop")
	flags.String("index-format", "json", "run index format: json, yaml, or both")
	flags.String("max-page-bytes", "", "truncate page bodies larger than this (e.g. 5MB); 0 or empty means unlimited")

	flags.Bool("enable-filtering", false, "enable the LLM relevance filter stage")
	flags.String("target-topic", "", "topic pages are judged against (required with --enable-filtering)")

	flags.String("llm-provider", "", "extraction LLM provider: anthropic or openai")
	flags.Float64("llm-temperature", 0, "extraction LLM temperature")
	flags.String("filter-llm-provider", "", "filter LLM provider: anthropic or openai")
	flags.Float64("filter-llm-temperature", 0, "filter LLM temperature")

	for _, name := range []string{
		"seed_url", "output_dir", "cache_dir", "max_depth", "max_pages", "include_external",
		"keywords", "keyword_weight", "enable_filtering", "target_topic",
		"llm_provider", "llm_temperature", "filter_llm_provider", "filter_llm_temperature",
		"fetch_mode", "clean_mode", "index_format", "max_page_bytes",
	} {
		flagName := underscoreToDash(name)
		_ = viper.BindPFlag(name, flags.Lookup(flagName))
	}
}

func underscoreToDash(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			out[i] = '-'
		} else {
			out[i] = s[i]
		}
	}
	return string(out)
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	opts, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("json_logs"),
	})

	if err := config.CacheRootWritable(opts.CacheDir); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	f, err := buildFetcher(viper.GetString("fetch_mode"), viper.GetString("clean_mode"), viper.GetString("max_page_bytes"))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var filterStage *filter.RelevanceFilter
	if opts.FilteringEnabled {
		provider, err := llm.NewProvider(opts.Filter.Provider, providerConfig(opts.Filter.Provider, opts))
		if err != nil {
			return fmt.Errorf("building filter LLM provider: %w", err)
		}
		filterCfg := filter.DefaultConfig()
		filterCfg.Temperature = opts.Filter.Temperature
		filterStage = filter.New(pipeline.WrapProvider(provider), filterCfg)
	}

	extractorProvider, err := llm.NewProvider(opts.Extractor.Provider, providerConfig(opts.Extractor.Provider, opts))
	if err != nil {
		return fmt.Errorf("building extraction LLM provider: %w", err)
	}
	extractorCfg := extractor.DefaultConfig()
	extractorCfg.Temperature = opts.Extractor.Temperature
	extractorStage := extractor.New(pipeline.WrapProvider(extractorProvider), extractorCfg)

	cacheStore, err := cache.New(opts.CacheDir)
	if err != nil {
		return fmt.Errorf("opening content cache: %w", err)
	}

	writer, err := output.New(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("opening output directory: %w", err)
	}

	p := pipeline.New(f, filterStage, extractorStage, cacheStore, writer, pipeline.Config{
		FilteringEnabled: opts.FilteringEnabled,
		TargetTopic:      opts.TargetTopic,
	})

	crawlCfg := fetcher.CrawlConfig{
		MaxDepth:        opts.Crawl.MaxDepth,
		MaxPages:        opts.Crawl.MaxPages,
		IncludeExternal: opts.Crawl.IncludeExternal,
		Keywords:        opts.Crawl.Keywords,
		KeywordWeight:   opts.Crawl.KeywordWeight,
	}

	logger.Info("starting crawl", "seed_url", opts.SeedURL, "max_depth", crawlCfg.MaxDepth, "max_pages", crawlCfg.MaxPages)
	summary := p.Run(ctx, opts.SeedURL, crawlCfg)

	indexFormat := viper.GetString("index_format")
	if indexFormat == "" {
		indexFormat = "json"
	}
	if err := writeIndex(writer, summary, indexFormat); err != nil {
		return fmt.Errorf("writing run index: %w", err)
	}

	logger.Info("crawl complete",
		"fetched", summary.FetchedCount,
		"persisted", summary.PersistedCount,
		"cache_hits", summary.CacheHitCount,
		"cache_misses", summary.CacheMissCount,
		"extraction_failed", summary.ExtractionFailed,
		"duration", summary.Duration)

	if !viper.GetBool("quiet") {
		fmt.Printf("persisted %s pages (%s cache hits) in %s\n",
			humanize.Comma(int64(summary.PersistedCount)),
			humanize.Comma(int64(summary.CacheHitCount)),
			summary.Duration.Round(time.Millisecond))
	}

	if !viper.GetBool("quiet") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(summaryReport{
			SeedURL:          summary.SeedURL,
			Fetched:          summary.FetchedCount,
			FilteredIn:       summary.FilteredInCount,
			FilteredOut:      summary.FilteredOutCount,
			FilterSkipped:    summary.FilterSkippedCount,
			CacheHits:        summary.CacheHitCount,
			CacheMisses:      summary.CacheMissCount,
			Persisted:        summary.PersistedCount,
			ExtractionFailed: summary.ExtractionFailed,
			PromptTokens:     summary.Usage.PromptTokens,
			CompletionTokens: summary.Usage.CompletionTokens,
			DurationSeconds:  summary.Duration.Seconds(),
			Cancelled:        summary.Cancelled,
		})
	}

	return nil
}

type summaryReport struct {
	SeedURL          string  `json:"seed_url"`
	Fetched          int     `json:"fetched"`
	FilteredIn       int     `json:"filtered_in"`
	FilteredOut      int     `json:"filtered_out"`
	FilterSkipped    int     `json:"filter_skipped"`
	CacheHits        int     `json:"cache_hits"`
	CacheMisses      int     `json:"cache_misses"`
	Persisted        int     `json:"persisted"`
	ExtractionFailed int     `json:"extraction_failed"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	DurationSeconds  float64 `json:"duration_seconds"`
	Cancelled        bool    `json:"cancelled"`
}

func buildCleaner(mode string) (cleaner.Cleaner, error) {
	switch mode {
	case "markdown", "":
		return cleaner.NewMarkdown(), nil
	case "readability":
		return cleaner.NewReadability(nil), nil
	case "noop":
		return cleaner.NewNoop(), nil
	default:
		return nil, fmt.Errorf("unknown clean mode %q (use 'markdown', 'readability', or 'noop')", mode)
	}
}

func buildFetcher(mode, cleanMode, maxPageBytesStr string) (fetcher.Fetcher, error) {
	cl, err := buildCleaner(cleanMode)
	if err != nil {
		return nil, err
	}

	var maxPageBytes int64
	if s := strings.TrimSpace(maxPageBytesStr); s != "" && s != "0" {
		b, err := humanize.ParseBytes(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --max-page-bytes %q: %w", maxPageBytesStr, err)
		}
		maxPageBytes = int64(b)
	}

	switch mode {
	case "dynamic":
		return dynamic.New(dynamic.DefaultConfig(), cl), nil
	case "static", "":
		cfg := static.DefaultConfig()
		cfg.MaxPageBytes = maxPageBytes
		return static.New(cfg, cl), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode %q (use 'static' or 'dynamic')", mode)
	}
}

func providerConfig(name string, opts *config.RunOptions) llm.ProviderConfig {
	cfg := llm.DefaultProviderConfig()
	cfg.Model = llm.GetDefaultModel(name)
	switch name {
	case "anthropic":
		cfg.APIKey = opts.AnthropicAPIKey
	case "openai":
		cfg.APIKey = opts.OpenAIAPIKey
	}
	return cfg
}

func writeIndex(w *output.Writer, summary pipeline.RunSummary, format string) error {
	entries := make([]output.PageEntry, 0, len(summary.Pages))
	for _, r := range summary.Pages {
		if r.State != pipeline.StatePersisted {
			continue
		}
		entries = append(entries, output.PageEntry{
			URL:                 r.URL,
			Title:               r.Title,
			Depth:               r.Depth,
			Included:            r.Included,
			DecisionExplanation: r.DecisionExplanation,
			Filename:            r.Filename,
			CrawlTimestamp:      r.CrawlTimestamp,
		})
	}
	idx := output.Index{
		SeedURL:     summary.SeedURL,
		GeneratedAt: time.Now().UTC(),
		TotalPages:  len(entries),
		Pages:       entries,
	}

	switch format {
	case "yaml":
		return w.WriteIndexYAML(idx)
	case "both":
		if err := w.WriteIndex(idx); err != nil {
			return err
		}
		return w.WriteIndexYAML(idx)
	default:
		return w.WriteIndex(idx)
	}
}
