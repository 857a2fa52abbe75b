package domain

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type BackendType string

const (
	BackendMongoDB  BackendType = "mongodb"
	BackendEmbedded BackendType = "embedded"
	BackendMemory   BackendType = "memory"
)

// Config describes how to reach the collection that backs the store.
type Config struct {
	Backend    BackendType `json:"backend" yaml:"backend"`
	URI        string      `json:"uri" yaml:"uri"`
	Database   string      `json:"database" yaml:"database"`
	Collection string      `json:"collection" yaml:"collection"`
	DataDir    string      `json:"data_dir" yaml:"data_dir"`

	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMongoDB:
		if c.URI == "" {
			return &InvalidArgumentError{Op: "config", Reason: "mongodb backend requires a uri"}
		}
		if c.Database == "" || c.Collection == "" {
			return &InvalidArgumentError{Op: "config", Reason: "mongodb backend requires database and collection names"}
		}
	case BackendEmbedded:
		if c.DataDir == "" {
			return &InvalidArgumentError{Op: "config", Reason: "embedded backend requires a data_dir"}
		}
	case BackendMemory:
	default:
		return &InvalidArgumentError{Op: "config", Reason: fmt.Sprintf("unknown backend %q", c.Backend)}
	}
	return nil
}

// LoadConfig reads a JSON or YAML config file, chosen by extension, and
// applies defaults to whatever the file leaves unset.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return Config{}, &InvalidArgumentError{Op: "config", Reason: fmt.Sprintf("unsupported config extension %q", ext)}
	}

	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}
