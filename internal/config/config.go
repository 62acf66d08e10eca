package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTTLSeconds = 300
	DefaultListenPort = 8080
	DefaultConfigFile = "inkstream.yml"
)

// Config holds everything the server and CLI need. The workspace URL may
// be empty: the site then runs with zero dynamic items instead of
// refusing to start.
type Config struct {
	WorkspaceURL    string `yaml:"workspace_url"`
	BaseURL         string `yaml:"base_url"`
	SiteTitle       string `yaml:"site_title"`
	SiteDescription string `yaml:"site_description"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	SnapshotDir     string `yaml:"snapshot_dir"`
	ListenPort      int    `yaml:"listen_port"`
	AdminToken      string `yaml:"admin_token"`
	LogLevel        string `yaml:"log_level"`
	LogJSON         bool   `yaml:"log_json"`
}

// Load reads the config file (optional unless the path was given
// explicitly), then applies environment overrides, then validates.
func Load(path string) (*Config, error) {
	cfg := &Config{
		SiteTitle:       "inkstream",
		CacheTTLSeconds: DefaultTTLSeconds,
		ListenPort:      DefaultListenPort,
		LogLevel:        "info",
	}

	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// env-only operation is fine
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := lookup("INKSTREAM_WORKSPACE_URL"); ok {
		c.WorkspaceURL = v
	}
	if v, ok := lookup("INKSTREAM_BASE_URL"); ok {
		c.BaseURL = v
	}
	if v, ok := lookup("INKSTREAM_SITE_TITLE"); ok {
		c.SiteTitle = v
	}
	if v, ok := lookup("INKSTREAM_ADMIN_TOKEN"); ok {
		c.AdminToken = v
	}
	if v, ok := lookup("INKSTREAM_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("INKSTREAM_SNAPSHOT_DIR"); ok {
		c.SnapshotDir = v
	}
	if v, ok := lookup("INKSTREAM_CACHE_TTL"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.CacheTTLSeconds = n
		}
	}
	if v, ok := lookup("INKSTREAM_LISTEN_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.ListenPort = n
		}
	}
}

func (c *Config) validate() error {
	if c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("cache_ttl_seconds must be positive, got %d", c.CacheTTLSeconds)
	}
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("listen_port out of range: %d", c.ListenPort)
	}
	return nil
}

// HasWorkspace reports whether a remote source is configured.
func (c *Config) HasWorkspace() bool {
	return strings.TrimSpace(c.WorkspaceURL) != ""
}

// CacheTTL returns the configured cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}
