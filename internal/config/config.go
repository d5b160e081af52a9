// Package config is the single place environment variables and CLI flags
// are read. Everything downstream (pipeline, fetcher, cache) receives plain
// immutable structs built here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// LLMConfig is the shared shape of a provider/temperature pair used for both
// the extraction and filter LM stages.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider" validate:"required"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0"`
}

// CrawlConfig mirrors pkg/fetcher.CrawlConfig but lives here so it can carry
// validate tags without pulling a validation dependency into pkg/fetcher.
type CrawlConfig struct {
	MaxDepth        int      `mapstructure:"max_depth" validate:"gte=1"`
	MaxPages        int      `mapstructure:"max_pages" validate:"gte=1"`
	IncludeExternal bool     `mapstructure:"include_external"`
	Keywords        []string `mapstructure:"keywords"`
	KeywordWeight   float64  `mapstructure:"keyword_weight" validate:"gte=0,lte=1"`
}

// RunOptions is everything a single invocation needs.
type RunOptions struct {
	SeedURL          string `mapstructure:"seed_url" validate:"required,url"`
	OutputDir        string `mapstructure:"output_dir" validate:"required"`
	CacheDir         string `mapstructure:"cache_dir" validate:"required"`
	TargetTopic      string `mapstructure:"target_topic"`
	FilteringEnabled bool   `mapstructure:"enable_filtering"`

	Crawl     CrawlConfig
	Extractor LLMConfig
	Filter    LLMConfig

	AnthropicAPIKey string
	OpenAIAPIKey    string
}

// ConfigError wraps a fatal, run-start configuration problem. Callers map it
// to exit code 2 (invalid invocation) as opposed to exit code 1 (runtime
// fatal error).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Reason)
}

var validate = validator.New()

// Load builds RunOptions from environment variables, an optional config
// file, and any flags already bound into v. v is typically the viper
// instance a cobra command bound its flags into; Load does not read flags
// directly so the CLI edge stays the only place that knows about cobra.
func Load(v *viper.Viper) (*RunOptions, error) {
	if v == nil {
		v = viper.GetViper()
	}

	setDefaults(v)
	bindEnv(v)

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".docuscout")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("reading config file: %v", err)}
		}
	}

	opts := &RunOptions{
		SeedURL:          v.GetString("seed_url"),
		OutputDir:        v.GetString("output_dir"),
		CacheDir:         v.GetString("cache_dir"),
		TargetTopic:      v.GetString("target_topic"),
		FilteringEnabled: v.GetBool("enable_filtering"),
		Crawl: CrawlConfig{
			MaxDepth:        v.GetInt("max_depth"),
			MaxPages:        v.GetInt("max_pages"),
			IncludeExternal: v.GetBool("include_external"),
			Keywords:        v.GetStringSlice("keywords"),
			KeywordWeight:   v.GetFloat64("keyword_weight"),
		},
		Extractor: LLMConfig{
			Provider:    v.GetString("llm_provider"),
			Temperature: v.GetFloat64("llm_temperature"),
		},
		Filter: LLMConfig{
			Provider:    v.GetString("filter_llm_provider"),
			Temperature: v.GetFloat64("filter_llm_temperature"),
		},
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate checks struct-level constraints and the hard cross-field
// invariant that filtering requires a target topic (spec.md §3).
func (o *RunOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	if err := validate.Struct(o.Crawl); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	if o.FilteringEnabled {
		if o.TargetTopic == "" {
			return &ConfigError{Reason: "enable_filtering requires a non-empty target_topic (--target-topic)"}
		}
		if err := validate.Struct(o.Filter); err != nil {
			return &ConfigError{Reason: fmt.Sprintf("filter LLM config: %v", err)}
		}
	}
	if err := validate.Struct(o.Extractor); err != nil {
		return &ConfigError{Reason: fmt.Sprintf("extractor LLM config: %v", err)}
	}
	if o.AnthropicAPIKey == "" && o.OpenAIAPIKey == "" {
		return &ConfigError{Reason: "no LM provider API key set (OPENAI_API_KEY or ANTHROPIC_API_KEY)"}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "output")
	v.SetDefault("cache_dir", "extracted-docs")
	v.SetDefault("max_depth", 2)
	v.SetDefault("max_pages", 25)
	v.SetDefault("include_external", false)
	v.SetDefault("keyword_weight", 0.5)
	v.SetDefault("enable_filtering", false)
	v.SetDefault("llm_temperature", 0.1)
	v.SetDefault("filter_llm_temperature", 0.0)
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("llm_provider", "LLM_PROVIDER")
	_ = v.BindEnv("llm_temperature", "LLM_TEMPERATURE")
	_ = v.BindEnv("filter_llm_provider", "FILTER_LLM_PROVIDER")
	_ = v.BindEnv("filter_llm_temperature", "FILTER_LLM_TEMPERATURE")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("anthropic_api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("max_depth", "MAX_DEPTH")
	_ = v.BindEnv("max_pages", "MAX_PAGES")
	_ = v.BindEnv("include_external", "INCLUDE_EXTERNAL")
	_ = v.BindEnv("cache_dir", "CACHE_DIR")
}

// CacheRootWritable checks that dir exists (creating it if missing) and is
// writable, the run-level fatal check spec.md §6 names as an exit-1 case.
func CacheRootWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache root %s not writable: %w", dir, err)
	}
	probe := filepath.Join(dir, ".write-probe")
	f, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("cache root %s not writable: %w", dir, err)
	}
	f.Close()
	os.Remove(probe)
	return nil
}
