package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/univalle-bu/bu-client/pkg/apiclient"
	"github.com/univalle-bu/bu-client/pkg/env"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName            string        `mapstructure:"app_name"`
	Env                string        `mapstructure:"app_env"`
	LogLevel           string        `mapstructure:"log_level"`
	APIURL             string        `mapstructure:"vite_api_url"`
	WSURL              string        `mapstructure:"vite_ws_url"`
	HeadersFile        string        `mapstructure:"headers_file"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "bu-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("vite_api_url", apiclient.DefaultBaseURL)
	v.SetDefault("vite_ws_url", env.DefaultWebSocketURL)
	v.SetDefault("headers_file", "")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/local_storage.db")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	if cfg.APIURL == "" {
		cfg.APIURL = apiclient.DefaultBaseURL
	}
	cfg.WSURL = strings.TrimSpace(cfg.WSURL)
	if cfg.WSURL == "" {
		cfg.WSURL = env.DefaultWebSocketURL
	}

	if err := validateURL("vite_api_url", cfg.APIURL, "http", "https"); err != nil {
		return nil, err
	}
	if err := validateURL("vite_ws_url", cfg.WSURL, "ws", "wss"); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must not be negative)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	return &cfg, nil
}

func validateURL(key, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q (expected %s URL)", key, raw, strings.Join(schemes, " or "))
}

// ClientConfig returns the settings for the shared API client.
func (c *Config) ClientConfig(headers map[string]string) apiclient.Config {
	return apiclient.Config{
		BaseURL: c.APIURL,
		Headers: headers,
		Timeout: c.HTTPTimeout,
	}
}

// RuntimeEnv returns the runtime environment published to the rest of the application.
func (c *Config) RuntimeEnv() env.Env {
	return env.Publish(c.WSURL)
}
