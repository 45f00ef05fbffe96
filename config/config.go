package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds settings for both the dashboard and the backend server.
type Config struct {
	APIBaseURL      string        `yaml:"api_base_url"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	Locale          string        `yaml:"locale"`
	Animations      bool          `yaml:"animations"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`

	Server struct {
		ListenAddr      string        `yaml:"listen_addr"`
		CoinGeckoURL    string        `yaml:"coingecko_url"`
		TopLimit        int           `yaml:"top_limit"`
		HistoryDays     int           `yaml:"history_days"`
		VsCurrency      string        `yaml:"vs_currency"`
		UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
		WarmSchedule    string        `yaml:"warm_schedule"`
	} `yaml:"server"`

	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
}

const envPrefix = "CRYPTOTRACKER_"

// DefaultPath is ~/.config/cryptotracker/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "cryptotracker", "config.yaml"), nil
}

// Default returns the built-in settings.
func Default() *Config {
	cfg := &Config{
		APIBaseURL:      "http://127.0.0.1:5000",
		RefreshInterval: 60 * time.Second,
		Locale:          "es",
		Animations:      true,
	}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Server.ListenAddr = ":5000"
	cfg.Server.CoinGeckoURL = "https://api.coingecko.com/api/v3"
	cfg.Server.TopLimit = 10
	cfg.Server.HistoryDays = 7
	cfg.Server.VsCurrency = "usd"
	cfg.Server.UpstreamTimeout = 10 * time.Second
	return cfg
}

// Load reads an optional .env file and an optional YAML file, then applies
// CRYPTOTRACKER_* environment overrides. Missing files are not an error.
func Load(path, envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v := os.Getenv(envPrefix + key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = d
		return nil
	}
	num := func(key string, dst *int) error {
		v := os.Getenv(envPrefix + key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = n
		return nil
	}

	str("API_BASE_URL", &c.APIBaseURL)
	str("LOCALE", &c.Locale)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_FILE", &c.Log.File)
	str("LISTEN_ADDR", &c.Server.ListenAddr)
	str("COINGECKO_URL", &c.Server.CoinGeckoURL)
	str("VS_CURRENCY", &c.Server.VsCurrency)
	str("WARM_SCHEDULE", &c.Server.WarmSchedule)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)

	if v := os.Getenv(envPrefix + "ANIMATIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sANIMATIONS: %w", envPrefix, err)
		}
		c.Animations = b
	}

	for key, dst := range map[string]*time.Duration{
		"REFRESH_INTERVAL": &c.RefreshInterval,
		"REQUEST_TIMEOUT":  &c.RequestTimeout,
		"UPSTREAM_TIMEOUT": &c.Server.UpstreamTimeout,
		"REDIS_TTL":        &c.Redis.TTL,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*int{
		"TOP_LIMIT":    &c.Server.TopLimit,
		"HISTORY_DAYS": &c.Server.HistoryDays,
		"REDIS_DB":     &c.Redis.DB,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the dashboard settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

// ValidateServer checks the backend settings.
func (c *Config) ValidateServer() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	if c.Server.CoinGeckoURL == "" {
		return fmt.Errorf("server.coingecko_url is required")
	}
	if c.Server.TopLimit <= 0 {
		return fmt.Errorf("server.top_limit must be positive")
	}
	if c.Server.HistoryDays <= 0 {
		return fmt.Errorf("server.history_days must be positive")
	}
	return nil
}
