package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the run needs, resolved once at startup.
// All values come from the environment with the defaults below.
type Config struct {
	OllamaBaseURL string
	Model         string
	Temperature   float64
	OutputDir     string

	// MaxWorkers bounds concurrent remark-normalization calls. Categorization
	// is always sequential regardless of this value.
	MaxWorkers int

	// RequestTimeout applies to each individual completion call.
	RequestTimeout time.Duration
}

// Load resolves configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("OLLAMA_BASE_URL", "http://localhost:11434")
	v.SetDefault("OLLAMA_MODEL", "gemma3:latest")
	v.SetDefault("TEMPERATURE", 0.1)
	v.SetDefault("OUTPUT_DIR", "./output")
	v.SetDefault("MAX_CONCURRENT_WORKERS", 10)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 120)

	cfg := &Config{
		OllamaBaseURL:  v.GetString("OLLAMA_BASE_URL"),
		Model:          v.GetString("OLLAMA_MODEL"),
		Temperature:    v.GetFloat64("TEMPERATURE"),
		OutputDir:      v.GetString("OUTPUT_DIR"),
		MaxWorkers:     v.GetInt("MAX_CONCURRENT_WORKERS"),
		RequestTimeout: time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.OllamaBaseURL == "" {
		return fmt.Errorf("OLLAMA_BASE_URL must not be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("OLLAMA_MODEL must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("TEMPERATURE %v out of range [0, 2]", c.Temperature)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("MAX_CONCURRENT_WORKERS must be >= 1, got %d", c.MaxWorkers)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	return nil
}
