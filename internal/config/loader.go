package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"modelview/internal/common/fsutil"
)

// Defaults for fields left unset.
const (
	DefaultURL                  = "ws://127.0.0.1:8000/ws"
	DefaultRequestTimeoutMS     = 5000
	DefaultWriteTimeoutMS       = 5000
	DefaultSlotSpacing          = 3.0
	DefaultMinCameraDistance    = 5.0
	DefaultCameraDistanceFactor = 2.0
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "console"
	DefaultMaxFrameBytes        = 64 << 20
)

// Config holds runtime parameters for the viewer.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	URL                  string  `json:"url" yaml:"url" toml:"url"`
	RequestTimeoutMS     int     `json:"request_timeout_ms" yaml:"request_timeout_ms" toml:"request_timeout_ms"`
	WriteTimeoutMS       int     `json:"write_timeout_ms" yaml:"write_timeout_ms" toml:"write_timeout_ms"`
	MaxFrameBytes        int64   `json:"max_frame_bytes" yaml:"max_frame_bytes" toml:"max_frame_bytes"`
	SlotSpacing          float32 `json:"slot_spacing" yaml:"slot_spacing" toml:"slot_spacing"`
	MinCameraDistance    float32 `json:"min_camera_distance" yaml:"min_camera_distance" toml:"min_camera_distance"`
	CameraDistanceFactor float32 `json:"camera_distance_factor" yaml:"camera_distance_factor" toml:"camera_distance_factor"`
	StatusAddr           string  `json:"status_addr" yaml:"status_addr" toml:"status_addr"`
	AccessLog            string  `json:"access_log" yaml:"access_log" toml:"access_log"`
	LogLevel             string  `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat            string  `json:"log_format" yaml:"log_format" toml:"log_format"`
	CORS                 CORS    `json:"cors" yaml:"cors" toml:"cors"`
}

// CORS configures cross-origin access to the status API. Disabled unless
// Enabled is set.
type CORS struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// SearchPaths are tried in order when no config path is given.
var SearchPaths = []string{
	"modelview.yaml",
	"modelview.yml",
	"modelview.toml",
	"modelview.json",
	"~/.config/modelview/config.yaml",
	"~/.config/modelview/config.toml",
	"~/.config/modelview/config.json",
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", p, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", p, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", p, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Discover loads path when set, otherwise the first file in SearchPaths.
// No file at all yields an empty Config.
func Discover(path string) (Config, string, error) {
	if path == "" {
		path = fsutil.FirstExisting(SearchPaths...)
		if path == "" {
			return Config{}, "", nil
		}
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the
// process environment. Missing files are skipped; existing variables win.
func LoadDotEnv(paths ...string) []string {
	var loaded []string
	for _, p := range paths {
		if !fsutil.PathExists(p) {
			continue
		}
		if err := godotenv.Load(p); err == nil {
			loaded = append(loaded, p)
		}
	}
	return loaded
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.RequestTimeoutMS <= 0 {
		c.RequestTimeoutMS = DefaultRequestTimeoutMS
	}
	if c.WriteTimeoutMS <= 0 {
		c.WriteTimeoutMS = DefaultWriteTimeoutMS
	}
	if c.MaxFrameBytes <= 0 {
		c.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if c.SlotSpacing <= 0 {
		c.SlotSpacing = DefaultSlotSpacing
	}
	if c.MinCameraDistance <= 0 {
		c.MinCameraDistance = DefaultMinCameraDistance
	}
	if c.CameraDistanceFactor <= 0 {
		c.CameraDistanceFactor = DefaultCameraDistanceFactor
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}

// Validate rejects values that cannot work.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.URL, "ws://") && !strings.HasPrefix(c.URL, "wss://") {
		return fmt.Errorf("url must use ws:// or wss://, got %q", c.URL)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log_format: %s", c.LogFormat)
	}
	return nil
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// WriteTimeout returns WriteTimeoutMS as a duration.
func (c Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}
