package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Slack     SlackConfig     `yaml:"slack" mapstructure:"slack"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Profile   ProfileConfig   `yaml:"profile" mapstructure:"profile"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SlackConfig holds Slack credentials and channel filtering.
type SlackConfig struct {
	BotToken      string `yaml:"bot_token" mapstructure:"bot_token"`
	SigningSecret string `yaml:"signing_secret" mapstructure:"signing_secret"`
	ChannelID     string `yaml:"channel_id" mapstructure:"channel_id"`
	TestChannelID string `yaml:"test_channel_id" mapstructure:"test_channel_id"`
	// SenderName is the automation username recognized by the business filter.
	SenderName string `yaml:"sender_name" mapstructure:"sender_name"`
}

// AnthropicConfig holds Anthropic API settings. Each stage has its own model
// so triage can run on the cheap tier.
type AnthropicConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	TriageModel   string `yaml:"triage_model" mapstructure:"triage_model"`
	ResearchModel string `yaml:"research_model" mapstructure:"research_model"`
	ScoringModel  string `yaml:"scoring_model" mapstructure:"scoring_model"`
}

// SearchConfig configures the web-search tool used by the research stage.
type SearchConfig struct {
	JinaKey       string `yaml:"jina_key" mapstructure:"jina_key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
	// MaxSearches is the hard per-lead budget on search-tool calls.
	MaxSearches int `yaml:"max_searches" mapstructure:"max_searches"`
	// RatePerMinute caps search calls across concurrent leads.
	RatePerMinute int `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
}

// PipelineConfig configures lead processing behavior.
type PipelineConfig struct {
	// DryRun suppresses outbound posting; outcomes are logged instead.
	DryRun bool `yaml:"dry_run" mapstructure:"dry_run"`
	// MaxConcurrentLeads bounds batch-mode concurrency.
	MaxConcurrentLeads int `yaml:"max_concurrent_leads" mapstructure:"max_concurrent_leads"`
}

// ProfileConfig points at the ideal-client-profile file.
type ProfileConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// StoreConfig configures the local delivery journal.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the event webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so their keys are known to the env
	// binding even without a config file.
	v.SetDefault("slack.bot_token", "")
	v.SetDefault("slack.signing_secret", "")
	v.SetDefault("slack.channel_id", "")
	v.SetDefault("slack.test_channel_id", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("search.jina_key", "")
	v.SetDefault("slack.sender_name", "hubspot")
	v.SetDefault("anthropic.triage_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.research_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.scoring_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("search.base_url", "https://r.jina.ai")
	v.SetDefault("search.search_base_url", "https://s.jina.ai")
	v.SetDefault("search.max_searches", 4)
	v.SetDefault("search.rate_per_minute", 30)
	v.SetDefault("pipeline.dry_run", true)
	v.SetDefault("pipeline.max_concurrent_leads", 4)
	v.SetDefault("profile.path", "profile.yaml")
	v.SetDefault("store.path", "leads.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// RequireSlack validates that the settings needed for live event handling
// are present.
func (c *Config) RequireSlack() error {
	var missing []string
	if c.Slack.BotToken == "" {
		missing = append(missing, "slack.bot_token")
	}
	if c.Slack.SigningSecret == "" {
		missing = append(missing, "slack.signing_secret")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required Slack settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MaskSecret renders a secret for display, keeping only the first few
// characters visible.
func MaskSecret(secret string) string {
	const visible = 4
	if secret == "" {
		return "[not set]"
	}
	if len(secret) <= visible {
		return "***"
	}
	return secret[:visible] + strings.Repeat("*", len(secret)-visible)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
