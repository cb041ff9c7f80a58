// Package config loads server settings: built-in defaults, then an optional
// YAML file, then COACHDESK_* environment overrides.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COACHDESK_"

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Admin    AdminConfig    `yaml:"admin"`
	Security SecurityConfig `yaml:"security"`
	Email    EmailConfig    `yaml:"email"`
	Log      LogConfig      `yaml:"log"`
	Perf     PerfConfig     `yaml:"perf"`
	Workers  WorkerConfig   `yaml:"workers"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	Env       string `yaml:"env"`
	StaticDir string `yaml:"static_dir"`
	SeedDemo  bool   `yaml:"seed_demo"`
}

type DatabaseConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type SecurityConfig struct {
	CSRFKey            string        `yaml:"csrf_key"` // 64 hex characters
	JWTSecret          string        `yaml:"jwt_secret"`
	TokenTTL           time.Duration `yaml:"token_ttl"`
	SessionTTL         time.Duration `yaml:"session_ttl"`
	TrustedOrigins     []string      `yaml:"trusted_origins"`
	RateLimitPerSecond int           `yaml:"rate_limit_per_second"`
}

type EmailConfig struct {
	ResendKey string `yaml:"resend_key"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type PerfConfig struct {
	RingSize    int           `yaml:"ring_size"`
	SlowRequest time.Duration `yaml:"slow_request"`
	SlowQuery   time.Duration `yaml:"slow_query"`
}

type WorkerConfig struct {
	OutboxInterval time.Duration `yaml:"outbox_interval"`
	EditorIdle     time.Duration `yaml:"editor_idle"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080", Env: EnvDevelopment, StaticDir: "static", SeedDemo: true},
		Database: DatabaseConfig{Path: "coachdesk.db", MaxOpenConns: 25},
		Admin:    AdminConfig{Email: "admin@coachdesk.local", Password: "change me please"},
		Security: SecurityConfig{
			TokenTTL:           12 * time.Hour,
			SessionTTL:         24 * time.Hour,
			RateLimitPerSecond: 10,
		},
		Email: EmailConfig{From: "CoachDesk <noreply@coachdesk.local>", ReplyTo: "support@coachdesk.local"},
		Log:   LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Perf:  PerfConfig{RingSize: 10000, SlowRequest: 500 * time.Millisecond, SlowQuery: 100 * time.Millisecond},
		Workers: WorkerConfig{
			OutboxInterval: time.Minute,
			EditorIdle:     30 * time.Minute,
		},
	}
}

// Load builds the configuration. A missing file at path is not an error;
// an unreadable or malformed one is.
// POST: returned config has passed Validate
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &c); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(&c, os.Getenv); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func applyEnv(c *Config, getenv func(string) string) error {
	str := func(dst *string, key string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(dst *int, key string) {
		if v := getenv(EnvPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(dst *time.Duration, key string) {
		if v := getenv(EnvPrefix + key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str(&c.Server.Addr, "ADDR")
	str(&c.Server.Env, "ENV")
	str(&c.Server.StaticDir, "STATIC_DIR")
	if v := getenv(EnvPrefix + "SEED_DEMO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED_DEMO: %w", EnvPrefix, err))
		} else {
			c.Server.SeedDemo = b
		}
	}
	str(&c.Database.Path, "DB_PATH")
	num(&c.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS")
	str(&c.Admin.Email, "ADMIN_EMAIL")
	str(&c.Admin.Password, "ADMIN_PASSWORD")
	str(&c.Security.CSRFKey, "CSRF_KEY")
	str(&c.Security.JWTSecret, "JWT_SECRET")
	dur(&c.Security.TokenTTL, "TOKEN_TTL")
	dur(&c.Security.SessionTTL, "SESSION_TTL")
	if v := getenv(EnvPrefix + "TRUSTED_ORIGINS"); v != "" {
		c.Security.TrustedOrigins = splitList(v)
	}
	num(&c.Security.RateLimitPerSecond, "RATE_LIMIT")
	str(&c.Email.ResendKey, "RESEND_KEY")
	str(&c.Email.From, "RESEND_FROM")
	str(&c.Email.ReplyTo, "REPLY_TO")
	str(&c.Log.Level, "LOG_LEVEL")
	str(&c.Log.File, "LOG_FILE")
	dur(&c.Perf.SlowRequest, "SLOW_REQUEST")
	dur(&c.Perf.SlowQuery, "SLOW_QUERY")
	dur(&c.Workers.OutboxInterval, "OUTBOX_INTERVAL")
	dur(&c.Workers.EditorIdle, "EDITOR_IDLE")
	return errors.Join(errs...)
}

// Validate checks settings that would otherwise fail at first use.
// Production requires explicit secrets.
func (c Config) Validate() error {
	if c.Server.Env != EnvDevelopment && c.Server.Env != EnvProduction {
		return fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Server.Env)
	}
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Security.CSRFKey != "" {
		if key, err := hex.DecodeString(c.Security.CSRFKey); err != nil || len(key) != 32 {
			return errors.New("csrf key must be 64 hex characters (32 bytes)")
		}
	}
	if c.IsProduction() {
		if c.Security.CSRFKey == "" {
			return errors.New("csrf key is required in production")
		}
		if len(c.Security.JWTSecret) < 32 {
			return errors.New("jwt secret of at least 32 characters is required in production")
		}
	}
	if c.Workers.OutboxInterval <= 0 || c.Workers.EditorIdle <= 0 {
		return errors.New("worker intervals must be positive")
	}
	if c.Security.TokenTTL <= 0 || c.Security.SessionTTL <= 0 {
		return errors.New("token and session lifetimes must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

// CSRFKeyBytes returns the decoded CSRF key, or a random one when none is
// configured. generated reports the random case; sessions won't survive a restart.
func (c Config) CSRFKeyBytes() (key []byte, generated bool, err error) {
	if c.Security.CSRFKey != "" {
		key, err = hex.DecodeString(c.Security.CSRFKey)
		return key, false, err
	}
	return randomBytes(32)
}

// JWTKey returns the token signing key, or a random one when none is configured.
func (c Config) JWTKey() ([]byte, bool, error) {
	if c.Security.JWTSecret != "" {
		return []byte(c.Security.JWTSecret), false, nil
	}
	return randomBytes(32)
}

func randomBytes(n int) ([]byte, bool, error) {
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("generate key: %w", err)
	}
	return key, true, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
