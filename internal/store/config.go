package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		FrontendOrigin string `yaml:"frontend_origin"`
	} `yaml:"server"`

	Ollama struct {
		Host                string  `yaml:"host"`
		Model               string  `yaml:"model"`
		TimeoutSeconds      int     `yaml:"timeout_seconds"`
		DecisionTemperature float64 `yaml:"decision_temperature"`
		AnswerTemperature   float64 `yaml:"answer_temperature"`
		TopP                float64 `yaml:"top_p"`
		MaxTokens           int     `yaml:"max_tokens"`
	} `yaml:"ollama"`

	News struct {
		Feeds []Feed `yaml:"feeds"`
		// SymbolLimit caps articles fetched per symbol during analysis.
		SymbolLimit    int  `yaml:"symbol_limit"`
		MarketLimit    int  `yaml:"market_limit"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
		GoogleFallback bool `yaml:"google_fallback"`
	} `yaml:"news"`

	Market struct {
		HistoryRange string `yaml:"history_range"`
	} `yaml:"market"`

	Session struct {
		MaxHistory   int `yaml:"max_history"`
		ContextTurns int `yaml:"context_turns"`
	} `yaml:"session"`
}

type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// OllamaHostNone disables the model backend: the service runs with a
// fallback generator instead of calling out to Ollama.
const OllamaHostNone = "none"

func defaultFeeds() []Feed {
	return []Feed{
		{Name: "reuters", URL: "https://feeds.reuters.com/reuters/businessNews"},
		{Name: "cnbc", URL: "https://feeds.cnbc.com/cnbc/financialnews"},
		{Name: "marketwatch", URL: "https://feeds.marketwatch.com/marketwatch/topstories/"},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Ollama.Model == "" {
		return fmt.Errorf("ollama.model cannot be empty")
	}
	if c.Ollama.DecisionTemperature < 0 || c.Ollama.DecisionTemperature > 1 {
		return fmt.Errorf("ollama.decision_temperature must be 0-1, got %.2f", c.Ollama.DecisionTemperature)
	}
	if c.Ollama.AnswerTemperature < 0 || c.Ollama.AnswerTemperature > 1 {
		return fmt.Errorf("ollama.answer_temperature must be 0-1, got %.2f", c.Ollama.AnswerTemperature)
	}
	if c.Session.MaxHistory <= 0 {
		return fmt.Errorf("session.max_history must be positive, got %d", c.Session.MaxHistory)
	}
	switch c.Market.HistoryRange {
	case "1mo", "3mo", "6mo", "1y", "2y":
	default:
		return fmt.Errorf("market.history_range must be one of 1mo/3mo/6mo/1y/2y, got '%s'", c.Market.HistoryRange)
	}
	return nil
}

// DefaultConfig returns the built-in defaults: a fully working local setup
// with Ollama on localhost.
func DefaultConfig() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// LoadConfig reads the YAML file at path. A missing file is not an error:
// the defaults describe a fully working local setup (Ollama on localhost).
func LoadConfig(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.FrontendOrigin == "" {
		c.Server.FrontendOrigin = "http://localhost:3000"
	}
	if c.Ollama.Host == "" {
		c.Ollama.Host = "http://localhost:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "mistral"
	}
	if c.Ollama.TimeoutSeconds == 0 {
		c.Ollama.TimeoutSeconds = 30
	}
	if c.Ollama.DecisionTemperature == 0 {
		c.Ollama.DecisionTemperature = 0.3
	}
	if c.Ollama.AnswerTemperature == 0 {
		c.Ollama.AnswerTemperature = 0.7
	}
	if c.Ollama.TopP == 0 {
		c.Ollama.TopP = 0.9
	}
	if c.Ollama.MaxTokens == 0 {
		c.Ollama.MaxTokens = 2048
	}
	if len(c.News.Feeds) == 0 {
		c.News.Feeds = defaultFeeds()
	}
	if c.News.SymbolLimit == 0 {
		c.News.SymbolLimit = 10
	}
	if c.News.MarketLimit == 0 {
		c.News.MarketLimit = 20
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 10
	}
	if c.Market.HistoryRange == "" {
		c.Market.HistoryRange = "1y"
	}
	if c.Session.MaxHistory == 0 {
		c.Session.MaxHistory = 50
	}
	if c.Session.ContextTurns == 0 {
		c.Session.ContextTurns = 10
	}
}
