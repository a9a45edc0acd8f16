package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "intelwatch"

// Environment overrides, also read from a .env file by the CLI.
const (
	EnvRedisAddr     = "INTELWATCH_REDIS_ADDR"
	EnvRedisPassword = "INTELWATCH_REDIS_PASSWORD"
	EnvDataDir       = "INTELWATCH_DATA_DIR"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

type CacheConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path,omitempty"`
	Redis   RedisConfig `yaml:"redis"`
}

type Config struct {
	Timeframe    string          `yaml:"timeframe"`
	Interval     string          `yaml:"interval"`
	CacheTTL     string          `yaml:"cache_ttl"`
	FetchTimeout string          `yaml:"fetch_timeout"`
	Retries      *int            `yaml:"retries,omitempty"`
	Concurrency  int             `yaml:"concurrency,omitempty"`
	UserAgent    string          `yaml:"user_agent,omitempty"`
	DataDir      string          `yaml:"data_dir,omitempty"`
	Retention    string          `yaml:"retention"`
	Synthesis    string          `yaml:"synthesis,omitempty"` // "curated" or "data"
	Cache        CacheConfig     `yaml:"cache"`
	Sources      []source.Source `yaml:"sources"`
}

// DefaultTimeframe returns the configured timeframe, falling back to 24h.
func (c *Config) DefaultTimeframe() alert.Timeframe {
	tf, err := alert.ParseTimeframe(c.Timeframe)
	if err != nil {
		return alert.DefaultFrame
	}
	return tf
}

func (c *Config) IntervalDuration() time.Duration {
	return durationOr(c.Interval, time.Hour)
}

func (c *Config) CacheTTLDuration() time.Duration {
	return durationOr(c.CacheTTL, 30*time.Minute)
}

func (c *Config) FetchTimeoutDuration() time.Duration {
	return durationOr(c.FetchTimeout, 10*time.Second)
}

func (c *Config) RetentionDuration() time.Duration {
	return durationOr(c.Retention, 30*24*time.Hour)
}

// RetryCount is the number of extra attempts per source, default 1.
func (c *Config) RetryCount() int {
	if c.Retries == nil || *c.Retries < 0 {
		return 1
	}
	return *c.Retries
}

func (c *Config) CacheBackend() string {
	if c.Cache.Backend == "" {
		return BackendSQLite
	}
	return c.Cache.Backend
}

func (c *Config) EnabledSources() []source.Source {
	var out []source.Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) SourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		names = append(names, s.Name)
	}
	return names
}

// Registry builds the source registry from the enabled sources.
func (c *Config) Registry() (*source.Registry, error) {
	return source.NewRegistry(c.EnabledSources())
}

// ParseDuration accepts Go durations plus an "Nd" day suffix.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days >= 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (use e.g. 30m, 6h, 7d)", s)
	}
	return d, nil
}

func durationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// DataDirPath is where reports and the latest summary are written.
func (c *Config) DataDirPath() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return filepath.Join(xdg.DataHome, appName)
}

// CachePath is the SQLite cache file.
func (c *Config) CachePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(xdg.CacheHome, appName, "cache.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (DefaultConfigPath when empty), merges the
// built-in sources and applies environment overrides. A missing file is
// created from the defaults.
func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Best effort: the embedded defaults work without a file.
			_ = writeDefaults(path)
			applyEnv(defaults)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	mergeDefaultSources(&cfg, defaults)
	fillSourceDefaults(&cfg)
	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// mergeDefaultSources fills the fields a user left empty on a built-in
// source they list and appends the built-ins they do not list. Values the
// user set always win.
func mergeDefaultSources(cfg, defaults *Config) {
	index := make(map[string]int, len(cfg.Sources))
	for i, s := range cfg.Sources {
		index[s.Name] = i
	}
	for _, d := range defaults.Sources {
		i, ok := index[d.Name]
		if !ok {
			cfg.Sources = append(cfg.Sources, d)
			continue
		}
		s := &cfg.Sources[i]
		if s.URL == "" {
			s.URL = d.URL
		}
		if s.Kind == "" {
			s.Kind = d.Kind
		}
		if s.Category == "" {
			s.Category = d.Category
		}
		if s.Priority == "" {
			s.Priority = d.Priority
		}
	}
}

func fillSourceDefaults(cfg *Config) {
	for i := range cfg.Sources {
		if cfg.Sources[i].Priority == "" {
			cfg.Sources[i].Priority = source.Medium
		}
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
}

func validate(cfg *Config) error {
	if cfg.Timeframe != "" {
		if _, err := alert.ParseTimeframe(cfg.Timeframe); err != nil {
			return fmt.Errorf("timeframe: %w", err)
		}
	}
	switch cfg.CacheBackend() {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("cache: unknown backend %q (valid: memory, sqlite, redis)", cfg.Cache.Backend)
	}
	if cfg.Synthesis != "" && cfg.Synthesis != "curated" && cfg.Synthesis != "data" {
		return fmt.Errorf("synthesis: unknown strategy %q (valid: curated, data)", cfg.Synthesis)
	}

	seen := map[string]bool{}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("source %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
		if !source.ValidKind(s.Kind) {
			return fmt.Errorf("source %q: unknown kind %q (valid: feed, api, scrape, curated)", s.Name, s.Kind)
		}
		if !source.ValidCategory(s.Category) {
			return fmt.Errorf("source %q: unknown category %q", s.Name, s.Category)
		}
		if s.Priority != "" && !source.ValidPriority(s.Priority) {
			return fmt.Errorf("source %q: unknown priority %q (valid: high, medium, low)", s.Name, s.Priority)
		}
	}
	return nil
}
