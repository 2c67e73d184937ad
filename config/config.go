// Package config loads pipeline configuration from a YAML file with
// environment variable overrides.
package config

import (
	"os"
	"strconv"
	"strings"

	"praxis"

	"gopkg.in/yaml.v3"
)

// Provider names form a closed set; the provider is selected once at
// startup and injected, never looked up per call.
const (
	ProviderGemini   = "gemini"
	ProviderOllama   = "ollama"
	ProviderLMStudio = "lmstudio"
)

// MinScrapeDelay is the floor on the inter-request delay, in seconds.
// A configured delay below the floor is clamped, never bypassed: this is
// a hard policy protecting third-party hosts, not a suggestion.
const MinScrapeDelay = 1.0

// LLM holds provider selection and sizing.
type LLM struct {
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	BaseURL      string  `yaml:"base_url"`
	APIKey       string  `yaml:"-"` // env only, never from file
	MaxContext   int     `yaml:"max_context"`
	OptimalChunk int     `yaml:"optimal_chunk"`
	HardLimit    int     `yaml:"char_hard_limit"`
	Concurrency  int     `yaml:"concurrency"`
	Threshold    float64 `yaml:"quality_threshold"`
}

// Scraping holds collection limits.
type Scraping struct {
	DelaySeconds float64 `yaml:"delay_seconds"`
	MaxPosts     int     `yaml:"max_posts"`
}

// Config is the full pipeline configuration.
type Config struct {
	LLM      LLM      `yaml:"llm"`
	Scraping Scraping `yaml:"scraping"`

	Weights        praxis.ScoreWeights `yaml:"score_weights"`
	MergeThreshold float64             `yaml:"merge_threshold"`
	RelevanceFloor float64             `yaml:"relevance_floor"`

	OutputDir string `yaml:"output_dir"`
	DBPath    string `yaml:"db_path"`

	Sources []praxis.SourceDescriptor `yaml:"sources"`
}

// Default returns the configuration used when no file or env is present.
func Default() *Config {
	return &Config{
		LLM: LLM{
			Provider:    ProviderGemini,
			Model:       "gemini-2.5-flash",
			HardLimit:   50000,
			Concurrency: 4,
			Threshold:   0.6,
		},
		Scraping: Scraping{
			DelaySeconds: 2.0,
			MaxPosts:     100,
		},
		Weights:        praxis.DefaultScoreWeights(),
		MergeThreshold: praxis.DefaultMergeThreshold,
		RelevanceFloor: 0.3,
		OutputDir:      "practices",
		DBPath:         "praxis.db",
	}
}

// Load reads the YAML file at path (if it exists), applies environment
// overrides, clamps policy floors, and validates. An absent file is not an
// error; env-only configuration is supported.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, praxis.Errorf(praxis.EINVALID, "read config %s: %v", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, praxis.Errorf(praxis.EINVALID, "parse config %s: %v", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.clamp()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays the recognized environment keys.
func (c *Config) applyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v, ok := envInt("LOCAL_LLM_MAX_CONTEXT"); ok {
		c.LLM.MaxContext = v
	}
	if v, ok := envInt("LOCAL_LLM_OPTIMAL_CHUNK"); ok {
		c.LLM.OptimalChunk = v
	}
	if v, ok := envInt("LLM_CHAR_HARD_LIMIT"); ok {
		c.LLM.HardLimit = v
	}
	if v, ok := envInt("LLM_CONCURRENCY"); ok {
		c.LLM.Concurrency = v
	}
	if v, ok := envFloat("LLM_QUALITY_THRESHOLD"); ok {
		c.LLM.Threshold = v
	}
	if v, ok := envFloat("SCRAPING_DELAY_SECONDS"); ok {
		c.Scraping.DelaySeconds = v
	}
	if v, ok := envInt("MAX_POSTS_PER_SCRAPE"); ok {
		c.Scraping.MaxPosts = v
	}
}

// clamp enforces hard policy floors regardless of configured values.
func (c *Config) clamp() {
	if c.Scraping.DelaySeconds < MinScrapeDelay {
		c.Scraping.DelaySeconds = MinScrapeDelay
	}
	if c.LLM.Concurrency < 1 {
		c.LLM.Concurrency = 1
	}
}

// Validate returns an error describing the first unusable setting.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOllama, ProviderLMStudio:
	default:
		return praxis.Errorf(praxis.EINVALID, "unknown LLM provider %q", c.LLM.Provider)
	}
	if c.LLM.Threshold < 0 || c.LLM.Threshold > 1 {
		return praxis.Errorf(praxis.EINVALID, "quality threshold must be in [0,1], got %v", c.LLM.Threshold)
	}
	if c.MergeThreshold < 0 || c.MergeThreshold > 1 {
		return praxis.Errorf(praxis.EINVALID, "merge threshold must be in [0,1], got %v", c.MergeThreshold)
	}
	if c.RelevanceFloor < 0 || c.RelevanceFloor > 1 {
		return praxis.Errorf(praxis.EINVALID, "relevance floor must be in [0,1], got %v", c.RelevanceFloor)
	}
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.Scraping.MaxPosts < 1 {
		return praxis.Errorf(praxis.EINVALID, "max posts per scrape must be positive")
	}
	for i := range c.Sources {
		if err := c.Sources[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// BatchLimits derives batcher sizing from the LLM section.
func (c *Config) BatchLimits() praxis.BatchLimits {
	return praxis.BatchLimits{
		MaxContext:    c.LLM.MaxContext,
		OptimalChunk:  c.LLM.OptimalChunk,
		HardCharLimit: c.LLM.HardLimit,
	}.Normalize()
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
