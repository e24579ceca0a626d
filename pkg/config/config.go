// Package config loads settings from .daccia.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	// Model backend
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`

	// Medium publishing
	MediumToken         string `mapstructure:"medium_token"`
	MediumPublishStatus string `mapstructure:"medium_publish_status"`

	// Site and storage paths
	SiteRoot         string `mapstructure:"site_root"`
	DataDir          string `mapstructure:"data_dir"`
	StyleProfilesDir string `mapstructure:"style_profiles_dir"`
	DraftsDir        string `mapstructure:"drafts_dir"`

	LogLevel string `mapstructure:"log_level"`

	// Research
	ResearchFeeds       []string `mapstructure:"research_feeds"`
	ResearchMaxArticles int      `mapstructure:"research_max_articles"`
}

// IndexPath is the homepage file rewritten by the publish flow.
func (s *Settings) IndexPath() string {
	return filepath.Join(s.SiteRoot, "index.html")
}

// Load reads .daccia.yaml from the working directory or home directory and
// applies DACCIA_-prefixed environment overrides. A missing config file is
// fine; every setting has a default.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetConfigName(".daccia")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix("DACCIA")
	v.AutomaticEnv()

	// Credentials come from the conventional unprefixed variables.
	_ = v.BindEnv("api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("medium_token", "MEDIUM_TOKEN")

	v.SetDefault("base_url", "https://api.anthropic.com/v1")
	v.SetDefault("model", "claude-sonnet-4-20250514")
	v.SetDefault("max_tokens", 4096)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("medium_publish_status", "draft")
	v.SetDefault("site_root", ".")
	v.SetDefault("data_dir", "data")
	v.SetDefault("style_profiles_dir", filepath.Join("data", "style_profiles"))
	v.SetDefault("drafts_dir", filepath.Join("data", "drafts"))
	v.SetDefault("log_level", "info")
	v.SetDefault("research_feeds", []string{
		"https://news.mit.edu/topic/artificial-intelligence2/feed",
		"https://healthitanalytics.com/feed",
	})
	v.SetDefault("research_max_articles", 10)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &s, nil
}
