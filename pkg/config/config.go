package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the project configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Sources     SourcesConfig     `yaml:"sources"`
	Cache       CacheConfig       `yaml:"cache"`
	Finder      FinderConfig      `yaml:"finder"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	DB          DBConfig          `yaml:"db"`
}

// ServerConfig HTTP listener settings.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Timeout string `yaml:"timeout"`
}

// LLMConfig settings for the OpenAI-compatible chat model used for
// ranking and location expansion.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// SearchConfig web search provider settings.
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig Tavily API settings.
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG instance settings.
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// SourcesConfig toggles and endpoints for the site providers.
type SourcesConfig struct {
	FabLab      SourceConfig `yaml:"fablab"`
	VisiteSP    SourceConfig `yaml:"visite_sp"`
	WikiMuseums SourceConfig `yaml:"wiki_museums"`
}

// SourceConfig one site provider.
type SourceConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"`
}

// CacheConfig refresh intervals, in seconds.
type CacheConfig struct {
	EventsRefreshSeconds int `yaml:"events_refresh_seconds"`
	SearchRefreshSeconds int `yaml:"search_refresh_seconds"`
}

// FinderConfig caps applied before and after the ranking call.
type FinderConfig struct {
	MaxSuggestions  int `yaml:"max_suggestions"`
	MaxScrapedShown int `yaml:"max_scraped_shown"`
	MaxWebResults   int `yaml:"max_web_results"`
	MaxWebShown     int `yaml:"max_web_shown"`
}

// LogConfig logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig rate limits for LLM calls.
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// DBConfig session-audit database settings; leave Host empty to disable.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// LoadConfig reads and parses the config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.EventsRefreshSeconds <= 0 {
		c.Cache.EventsRefreshSeconds = 3600
	}
	if c.Cache.SearchRefreshSeconds <= 0 {
		c.Cache.SearchRefreshSeconds = 1800
	}
	if c.Finder.MaxSuggestions <= 0 {
		c.Finder.MaxSuggestions = 3
	}
	if c.Finder.MaxScrapedShown <= 0 {
		c.Finder.MaxScrapedShown = 75
	}
	if c.Finder.MaxWebResults <= 0 {
		c.Finder.MaxWebResults = 7
	}
	if c.Finder.MaxWebShown <= 0 {
		c.Finder.MaxWebShown = 5
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 30
	}
}
