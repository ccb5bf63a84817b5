// Package config loads aiquery settings from defaults, an optional
// aiquery.yaml, and environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the full runtime configuration.
type Config struct {
	Ollama struct {
		Host           string `mapstructure:"host"`
		Model          string `mapstructure:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"ollama"`
	Search struct {
		Market     string `mapstructure:"market"`
		MaxResults int    `mapstructure:"max_results"`
		Endpoint   string `mapstructure:"endpoint"`
	} `mapstructure:"search"`
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	Logging struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"logging"`
	Prompts struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"prompts"`
}

// OllamaTimeout returns the configured request timeout.
func (c *Config) OllamaTimeout() time.Duration {
	return time.Duration(c.Ollama.TimeoutSeconds) * time.Second
}

// Manager owns the viper instance so server mode can watch the config file.
type Manager struct {
	v      *viper.Viper
	logger *zap.Logger

	mu      sync.RWMutex
	current *Config
}

// Load reads configuration. path may be empty, in which case ./aiquery.yaml
// is used when present; a missing config file is not an error.
func Load(path string, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := viper.New()

	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2:1B")
	v.SetDefault("ollama.timeout_seconds", 120)
	v.SetDefault("search.market", "br-pt")
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.endpoint", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "aiquery.log")
	v.SetDefault("prompts.path", "")

	v.SetEnvPrefix("AIQUERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Legacy variable names kept from the original .env convention.
	_ = v.BindEnv("ollama.host", "AIQUERY_OLLAMA_HOST", "OLLAMA_HOST")
	_ = v.BindEnv("ollama.model", "AIQUERY_OLLAMA_MODEL", "OLLAMA_MODEL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("aiquery")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &Manager{v: v, logger: logger, current: &cfg}, nil
}

// Config returns the current snapshot.
func (m *Manager) Config() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Watch reloads the config file on change and invokes onChange with the new
// snapshot. Intended for server mode.
func (m *Manager) Watch(onChange func(*Config)) {
	m.v.OnConfigChange(func(e fsnotify.Event) {
		var cfg Config
		if err := m.v.Unmarshal(&cfg); err != nil {
			m.logger.Warn("config reload failed", zap.Error(err))
			return
		}
		m.mu.Lock()
		m.current = &cfg
		m.mu.Unlock()
		m.logger.Info("config reloaded", zap.String("file", e.Name))
		if onChange != nil {
			onChange(&cfg)
		}
	})
	m.v.WatchConfig()
}
