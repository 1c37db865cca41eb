// Package config resolves somnium settings from .somnium.yaml, SOMNIUM_*
// environment variables and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds resolved settings.
type Config struct {
	Path    string
	Backend string

	LogLevel string
	LogFile  string

	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string

	PaymentBusiness     string
	PaymentCallbackAddr string
}

const (
	DefaultPath         = "~/.somnium.db"
	DefaultBackend      = "diskv"
	DefaultTextModel    = "gemini-2.5-flash"
	DefaultImageModel   = "gemini-2.5-flash-image"
	DefaultCallbackAddr = "127.0.0.1:8765"
)

// Load reads configuration. A missing config file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("path", DefaultPath)
	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("log.level", "warn")
	v.SetDefault("gemini.text_model", DefaultTextModel)
	v.SetDefault("gemini.image_model", DefaultImageModel)
	v.SetDefault("payment.callback_addr", DefaultCallbackAddr)
	v.SetConfigName(".somnium") // .yaml is implicit
	v.SetEnvPrefix("SOMNIUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("SOMNIUM_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}

	cfg := &Config{
		Path:                path,
		Backend:             strings.ToLower(v.GetString("backend")),
		LogLevel:            v.GetString("log.level"),
		LogFile:             v.GetString("log.file"),
		GeminiAPIKey:        v.GetString("gemini.api_key"),
		GeminiTextModel:     v.GetString("gemini.text_model"),
		GeminiImageModel:    v.GetString("gemini.image_model"),
		PaymentBusiness:     v.GetString("payment.business"),
		PaymentCallbackAddr: v.GetString("payment.callback_addr"),
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = firstEnv("GEMINI_API_KEY", "API_KEY")
	}
	if cfg.LogFile != "" {
		if cfg.LogFile, err = homedir.Expand(cfg.LogFile); err != nil {
			return nil, fmt.Errorf("config: expand log file: %w", err)
		}
	}
	return cfg, nil
}

// BasePath is where durable blobs live.
func (c *Config) BasePath() string {
	return c.Path
}

// BackendKind names the storage backend.
func (c *Config) BackendKind() string {
	return c.Backend
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
