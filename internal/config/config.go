package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Site   SiteConfig   `mapstructure:"site"`
	Scrape ScrapeConfig `mapstructure:"scrape"`
	Output OutputConfig `mapstructure:"output"`
	Images ImagesConfig `mapstructure:"images"`
}

// SiteConfig holds the target site configuration
type SiteConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Timeout   int    `mapstructure:"timeout"` // seconds, connect + read
	UserAgent string `mapstructure:"user_agent"`
}

// ScrapeConfig bounds the throttle delay applied before every fetch
type ScrapeConfig struct {
	MinDelayMs int `mapstructure:"min_delay_ms"`
	MaxDelayMs int `mapstructure:"max_delay_ms"`
}

// OutputConfig holds the workbook destination
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// ImagesConfig controls the optional post-scrape image download
type ImagesConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Dir                  string `mapstructure:"dir"`
	MaxWorkers           int    `mapstructure:"max_workers"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
}

// Load loads configuration from an optional config.yaml with
// environment variable overrides. The scraper has to run with no
// flags and no environment, so a missing file just means defaults.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.Scrape.MinDelayMs > config.Scrape.MaxDelayMs {
		return nil, fmt.Errorf("scrape.min_delay_ms (%d) must not exceed scrape.max_delay_ms (%d)",
			config.Scrape.MinDelayMs, config.Scrape.MaxDelayMs)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("site.base_url", "https://igold.bg")
	viper.SetDefault("site.timeout", 30)
	viper.SetDefault("site.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	viper.SetDefault("scrape.min_delay_ms", 1500)
	viper.SetDefault("scrape.max_delay_ms", 2000)

	viper.SetDefault("output.path", "igold_data.xlsx")

	viper.SetDefault("images.enabled", false)
	viper.SetDefault("images.dir", "downloaded_images")
	viper.SetDefault("images.max_workers", 4)
	viper.SetDefault("images.max_requests_per_second", 5)
}
