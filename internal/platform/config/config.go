package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type Config struct {
	VaultPath string
	DBPath    string
	LogPath   string

	Store    StoreConfig    `toml:"store"`
	Cache    CacheConfig    `toml:"cache"`
	Identity IdentityConfig `toml:"identity"`
	Log      LogConfig      `toml:"log"`
	HTTP     HTTPConfig     `toml:"http"`
	Gesture  GestureConfig  `toml:"gesture"`
}

type StoreConfig struct {
	Backend     string `toml:"backend" env:"STORE_BACKEND"`
	DatabaseURL string `toml:"database_url" env:"DATABASE_URL"`
}

type CacheConfig struct {
	Kind     string        `toml:"kind" env:"CACHE_KIND"`
	TTL      duration      `toml:"ttl" env:"CACHE_TTL"`
	Size     int           `toml:"size" env:"CACHE_SIZE"`
	RedisURL string        `toml:"redis_url" env:"REDIS_URL"`
	Timeout  time.Duration `toml:"-"`
}

type IdentityConfig struct {
	UserID      string `toml:"user_id" env:"USER_ID"`
	AccessToken string `toml:"-" env:"ACCESS_TOKEN"`
	JWTSecret   string `toml:"-" env:"JWT_SECRET"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"`
}

type HTTPConfig struct {
	ListenAddr  string   `toml:"listen_addr" env:"LISTEN_ADDR"`
	LoadTimeout duration `toml:"load_timeout" env:"LOAD_TIMEOUT"`
	MaxPDFBytes int64    `toml:"max_pdf_bytes" env:"MAX_PDF_BYTES"`
}

type GestureConfig struct {
	SwipeThreshold float64 `toml:"swipe_threshold" env:"SWIPE_THRESHOLD"`
	TapSlop        float64 `toml:"tap_slop" env:"TAP_SLOP"`
	DoubleTapMS    int     `toml:"double_tap_ms" env:"DOUBLE_TAP_MS"`
}

// duration lets TOML carry "168h" style strings.
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// New builds the configuration for a vault: defaults, then
// <vault>/.granth/config.toml, then GRANTH_* environment variables.
func New(vaultPath string) (Config, error) {
	if vaultPath == "" {
		return Config{}, fmt.Errorf("vault path is required")
	}
	cfg := defaults(vaultPath)
	if err := cfg.loadFile(filepath.Join(vaultPath, ".granth", "config.toml")); err != nil {
		return Config{}, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "GRANTH_"}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults(vaultPath string) Config {
	return Config{
		VaultPath: vaultPath,
		DBPath:    filepath.Join(vaultPath, ".granth", "granth.db"),
		LogPath:   filepath.Join(vaultPath, ".granth", "granth.log"),
		Store:     StoreConfig{Backend: BackendSQLite},
		Cache: CacheConfig{
			Kind:    CacheMemory,
			TTL:     duration{7 * 24 * time.Hour},
			Size:    512,
			Timeout: 2 * time.Second,
		},
		Identity: IdentityConfig{UserID: "local"},
		Log:      LogConfig{Level: "info", Format: "text"},
		HTTP: HTTPConfig{
			ListenAddr:  "127.0.0.1:8787",
			LoadTimeout: duration{2 * time.Minute},
			MaxPDFBytes: 200 << 20,
		},
		Gesture: GestureConfig{SwipeThreshold: 50, TapSlop: 10, DoubleTapMS: 300},
	}
}

func (c *Config) loadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat config: %w", err)
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store backend %q requires a database url", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unsupported store backend %q", c.Store.Backend)
	}
	switch c.Cache.Kind {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("redis cache requires a redis url")
		}
	default:
		return fmt.Errorf("unsupported cache kind %q", c.Cache.Kind)
	}
	if c.Gesture.SwipeThreshold <= 0 || c.Gesture.TapSlop < 0 {
		return fmt.Errorf("gesture thresholds must be positive")
	}
	return nil
}

// CacheTTL and LoadTimeout unwrap the TOML-friendly duration fields.
func (c Config) CacheTTL() time.Duration    { return c.Cache.TTL.Duration }
func (c Config) LoadTimeout() time.Duration { return c.HTTP.LoadTimeout.Duration }
