package model

import "time"

// Config holds the full runtime configuration.
type Config struct {
	Iconclass   IconclassConfig   `yaml:"iconclass"`
	LLM         LLMConfig         `yaml:"llm"`
	HTTP        HTTPConfig        `yaml:"http"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// IconclassConfig controls the subject classification stage.
type IconclassConfig struct {
	// Enable toggles the whole classification stage.
	Enable bool `yaml:"enable"`

	// TopK is the maximum number of subjects per object (1-10).
	TopK int `yaml:"top_k"`

	// Language is the preferred label language ("de" or "en").
	Language string `yaml:"language"`

	// Validate toggles per-notation lookups against the vocabulary
	// service. When false all syntactically valid candidates pass.
	Validate bool `yaml:"validate"`

	// SearchURL optionally points at a term-search endpoint used to
	// seed candidates from extracted keywords.
	SearchURL string `yaml:"search_url"`

	// BaseURL is the vocabulary resolution base.
	BaseURL string `yaml:"base_url"`

	// MaxPerDivision caps candidates sharing an Iconclass main division.
	MaxPerDivision int `yaml:"max_per_division"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	// Provider name: "openai", "anthropic", "ollama", "" (disabled).
	Provider string `yaml:"provider"`

	// Model name (provider-specific).
	Model string `yaml:"model"`

	// APIKey for OpenAI/Anthropic.
	APIKey string `yaml:"-"`

	// BaseURL for custom endpoints (e.g. Ollama).
	BaseURL string `yaml:"base_url"`

	// Timeout for API requests, in seconds.
	Timeout int `yaml:"timeout"`

	// MaxTokens limits response length; 0 uses per-call defaults.
	MaxTokens int `yaml:"max_tokens"`

	// Proxy settings.
	HTTPProxy  string `yaml:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy"`
	NoProxy    string `yaml:"no_proxy"`
}

// HTTPConfig applies to feed and image fetching.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// ConcurrencyConfig bounds parallelism against external services.
type ConcurrencyConfig struct {
	// Objects is the number of metadata objects enhanced in parallel.
	Objects int `yaml:"objects"`

	// LookupRate limits vocabulary lookups per second.
	LookupRate float64 `yaml:"lookup_rate"`

	// LookupBurst is the lookup rate limiter burst size.
	LookupBurst int `yaml:"lookup_burst"`
}

// OutputConfig controls reporting.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Iconclass: IconclassConfig{
			Enable:         true,
			TopK:           5,
			Language:       "de",
			Validate:       true,
			BaseURL:        IconclassBase,
			MaxPerDivision: 2,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Timeout:   30,
			MaxTokens: 0,
		},
		HTTP: HTTPConfig{
			Timeout:      60 * time.Second,
			UserAgent:    "Enrich/0.1 (+https://github.com/culthera/enrich)",
			MaxBodyBytes: 20_000_000,
		},
		Concurrency: ConcurrencyConfig{
			Objects:     1,
			LookupRate:  10,
			LookupBurst: 5,
		},
		Output: OutputConfig{},
	}
}
