// Package config loads the engine settings from defaults, an optional
// YAML/JSON/TOML file and TABLELIMIT_* environment variables, in that order
// of precedence from lowest to highest.
//
//	TABLELIMIT_STATE_BACKEND=redis TABLELIMIT_STATE_REDIS_ADDR=localhost:6379 tablelimit serve
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/manojoshi/tablelimit/limit"
	"github.com/manojoshi/tablelimit/match"
	"github.com/manojoshi/tablelimit/repository"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "TABLELIMIT"

// State backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the full engine configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	State    StateConfig    `mapstructure:"state"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Locale   string         `mapstructure:"locale"`
	Timezone string         `mapstructure:"timezone"`
	MaxRows  int            `mapstructure:"max_rows"`
	Workers  int            `mapstructure:"workers"`
	Shard    int            `mapstructure:"shard_size"`
	Columns  []ColumnConfig `mapstructure:"columns"`
}

// LogConfig picks the logrus level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
	Color  bool   `mapstructure:"color"`
}

// StateConfig selects where descriptors are kept between requests.
type StateConfig struct {
	Backend     string        `mapstructure:"backend"`
	Size        int           `mapstructure:"size"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	TTL         time.Duration `mapstructure:"ttl"`
	SQLitePath  string        `mapstructure:"sqlite_path"`
}

type HTTPConfig struct {
	Addr      string `mapstructure:"addr"`
	TablesDir string `mapstructure:"tables_dir"`
}

// ColumnConfig binds a property to a matcher, for rows that are not
// described by tagged structs.
type ColumnConfig struct {
	Property string `mapstructure:"property"`
	Matcher  string `mapstructure:"matcher"`
	Pattern  string `mapstructure:"pattern"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Log:   LogConfig{Level: "info", Format: "text", Color: true},
		State: StateConfig{
			Backend:     BackendMemory,
			Size:        4096,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "tablelimit:",
			TTL:         time.Hour,
			SQLitePath:  "tablelimit.db",
		},
		HTTP:     HTTPConfig{Addr: ":8080", TablesDir: "tables"},
		Locale:   "en",
		Timezone: "UTC",
		MaxRows:  limit.DefaultMaxRows,
		Workers:  0,
		Shard:    repository.DefaultShardSize,
	}
}

// Load reads path (if not empty) over the defaults, then the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.color", d.Log.Color)
	v.SetDefault("state.backend", d.State.Backend)
	v.SetDefault("state.size", d.State.Size)
	v.SetDefault("state.redis_addr", d.State.RedisAddr)
	v.SetDefault("state.redis_prefix", d.State.RedisPrefix)
	v.SetDefault("state.ttl", d.State.TTL)
	v.SetDefault("state.sqlite_path", d.State.SQLitePath)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.tables_dir", d.HTTP.TablesDir)
	v.SetDefault("locale", d.Locale)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("shard_size", d.Shard)
}

// Validate checks every field that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	switch c.State.Backend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return errors.Errorf("state.backend: unknown backend %q", c.State.Backend)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return errors.Wrap(err, "locale")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return errors.Wrap(err, "timezone")
	}
	for i, col := range c.Columns {
		if strings.TrimSpace(col.Property) == "" {
			return errors.Errorf("columns[%d]: property is empty", i)
		}
	}
	return nil
}

// RequestContext is the locale and location requests fall back to.
func (c *Config) RequestContext() match.RequestContext {
	rctx := match.DefaultContext()
	if tag, err := language.Parse(c.Locale); err == nil {
		rctx.Locale = tag
	}
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		rctx.Location = loc
	}
	return rctx
}

// Registry returns a matcher registry with the configured columns bound.
func (c *Config) Registry() (*match.Registry, error) {
	reg := match.NewRegistry()
	for _, col := range c.Columns {
		if err := reg.Bind(col.Property, col.Matcher, col.Pattern); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Repository returns a repository using reg and the configured sharding.
func (c *Config) Repository(reg *match.Registry) *repository.Repository {
	return repository.New(
		repository.WithRegistry(reg),
		repository.WithWorkers(c.Workers),
		repository.WithShardSize(c.Shard),
	)
}
