package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
)

// Filename is the name of the config file looked up in the package directory.
const Filename = "preconstruct.json"

const (
	DefaultDistDir       = "dist"
	DefaultLogLevel      = "info"
	DefaultWatchInterval = 100 * time.Millisecond
	DefaultCacheSize     = 64
)

type Config struct {
	DistDir       string `json:"distDir,omitempty"`
	MaxConditions int    `json:"maxConditions,omitempty"`
	LogLevel      string `json:"logLevel,omitempty"`
	LogDir        string `json:"logDir,omitempty"`
	WatchInterval string `json:"watchInterval,omitempty"`
	CacheSize     int    `json:"cacheSize,omitempty"`

	// PollInterval is the parsed WatchInterval.
	PollInterval time.Duration `json:"-"`
}

// Load loads config from the given file, comments and trailing commas are allowed.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("fail to read config file: %w", err)
	}

	var cfg Config
	err = json.Unmarshal(jsonc.ToJSON(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("fail to parse config: %w", err)
	}

	if cfg.LogDir != "" && !filepath.IsAbs(cfg.LogDir) {
		cfg.LogDir = filepath.Join(filepath.Dir(filename), cfg.LogDir)
	}
	return fixConfig(&cfg)
}

// LoadFromDir loads the config file of the package directory, or returns the
// default config if the directory has none.
func LoadFromDir(dir string) (*Config, error) {
	filename := filepath.Join(dir, Filename)
	if _, err := os.Stat(filename); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return Load(filename)
}

func Default() *Config {
	cfg, err := fixConfig(&Config{})
	if err != nil {
		panic(err)
	}
	return cfg
}

func fixConfig(c *Config) (*Config, error) {
	if c.DistDir == "" {
		v := os.Getenv("PRECONSTRUCT_DIST_DIR")
		if v != "" {
			c.DistDir = v
		} else {
			c.DistDir = DefaultDistDir
		}
	}
	c.DistDir = strings.TrimPrefix(path.Clean("/"+c.DistDir), "/")
	if c.DistDir == "" {
		return nil, fmt.Errorf("invalid distDir: the package root can't be the dist directory")
	}
	if c.MaxConditions < 0 {
		return nil, fmt.Errorf("invalid maxConditions: %d", c.MaxConditions)
	}
	if v := os.Getenv("PRECONSTRUCT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return nil, fmt.Errorf("invalid logLevel: %s", c.LogLevel)
	}
	if c.LogDir == "" {
		c.LogDir = os.Getenv("PRECONSTRUCT_LOG_DIR")
	}
	if c.WatchInterval != "" {
		d, err := time.ParseDuration(c.WatchInterval)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid watchInterval: %s", c.WatchInterval)
		}
		c.PollInterval = d
	} else {
		c.PollInterval = DefaultWatchInterval
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	return c, nil
}
