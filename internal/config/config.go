package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server  ServerConfig
	Model   ModelConfig
	Storage StorageConfig
	Chat    ChatConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type ModelConfig struct {
	Name   string
	APIKey string
}

type StorageConfig struct {
	DataDir string
}

type ChatConfig struct {
	// SessionTTLMinutes is the idle time after which an abandoned conversation
	// is swept.
	SessionTTLMinutes int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4000,
		},
		Model: ModelConfig{
			Name: "gemini-2.0-flash",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Chat: ChatConfig{
			SessionTTLMinutes: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/talktome/config.json, then applies TALKTOME_* environment
// overrides. The Gemini API key is secret and comes from the environment only.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if cfg.Model.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: Gemini API key. Set it via environment variable TALKTOME_MODEL_API_KEY")
	}
	if cfg.Chat.SessionTTLMinutes <= 0 {
		return Config{}, fmt.Errorf("chat.session_ttl_minutes must be positive, got %d", cfg.Chat.SessionTTLMinutes)
	}

	return cfg, nil
}

// SessionTTL returns the configured idle TTL as a duration.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Chat.SessionTTLMinutes) * time.Minute
}
