package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Cache    CacheConfig    `koanf:"cache"`
	Storage  StorageConfig  `koanf:"storage"`
	Events   EventsConfig   `koanf:"events"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string     `koanf:"host"`
	Port int        `koanf:"port"`
	Mode string     `koanf:"mode"`
	CORS CORSConfig `koanf:"cors"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver      string         `koanf:"driver"`
	AutoMigrate bool           `koanf:"auto_migrate"`
	SQLite      SQLiteConfig   `koanf:"sqlite"`
	Postgres    PostgresConfig `koanf:"postgres"`
	Pool        PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret   string `koanf:"jwt_secret"`
	TokenExpiry string `koanf:"token_expiry"`
	Issuer      string `koanf:"issuer"`
}

// TMDBConfig holds settings for the upstream movie catalog.
type TMDBConfig struct {
	BaseURL      string `koanf:"base_url"`
	ImageBaseURL string `koanf:"image_base_url"`
	APIKey       string `koanf:"api_key"`
	Language     string `koanf:"language"`
	Timeout      string `koanf:"timeout"`
}

// CacheConfig holds the Redis settings for the catalog response cache.
type CacheConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	TTL      string `koanf:"ttl"`
}

// StorageConfig holds the S3-compatible object storage settings for avatars.
type StorageConfig struct {
	Enabled       bool   `koanf:"enabled"`
	Endpoint      string `koanf:"endpoint"`
	AccessKey     string `koanf:"access_key"`
	SecretKey     string `koanf:"secret_key"`
	Bucket        string `koanf:"bucket"`
	UseSSL        bool   `koanf:"use_ssl"`
	PublicBaseURL string `koanf:"public_base_url"`
	MaxSizeMB     int    `koanf:"max_size_mb"`
}

// EventsConfig holds the RabbitMQ settings for activity events.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	Queue   string `koanf:"queue"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__TMDB__API_KEY=... overrides tmdb.api_key.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values, and fills
// defaults for optional fields.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateLog()
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	c.Server.CORS.MaxAge = strings.TrimSpace(c.Server.CORS.MaxAge)
	if ma := c.Server.CORS.MaxAge; ma != "" {
		if _, err := positiveDuration("server.cors.max_age", ma); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		sqlitePath := strings.TrimSpace(c.Database.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = sqlitePath
	case "postgres":
		pg := &c.Database.Postgres
		pg.Host = strings.TrimSpace(pg.Host)
		pg.User = strings.TrimSpace(pg.User)
		pg.DBName = strings.TrimSpace(pg.DBName)
		pg.SSLMode = strings.TrimSpace(pg.SSLMode)
		if pg.Host == "" {
			return fmt.Errorf("database.postgres.host is required when driver is postgres")
		}
		if pg.Port < 1 || pg.Port > 65535 {
			return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
		}
		if pg.User == "" {
			return fmt.Errorf("database.postgres.user is required when driver is postgres")
		}
		if pg.DBName == "" {
			return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
		}
		switch pg.SSLMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
		}
		if c.Server.Mode == gin.ReleaseMode {
			switch pg.SSLMode {
			case "require", "verify-ca", "verify-full":
			default:
				return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", pg.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
			}
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	c.Database.Pool.ConnMaxLifetime = strings.TrimSpace(c.Database.Pool.ConnMaxLifetime)
	if lm := c.Database.Pool.ConnMaxLifetime; lm != "" {
		if _, err := positiveDuration("database.pool.conn_max_lifetime", lm); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateAuth() error {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(secret) < 32 {
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	}
	if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(secret) < 3 {
		return fmt.Errorf("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}
	c.Auth.JWTSecret = secret

	c.Auth.TokenExpiry = strings.TrimSpace(c.Auth.TokenExpiry)
	if c.Auth.TokenExpiry == "" {
		c.Auth.TokenExpiry = "720h"
	}
	if _, err := positiveDuration("auth.token_expiry", c.Auth.TokenExpiry); err != nil {
		return err
	}

	c.Auth.Issuer = strings.TrimSpace(c.Auth.Issuer)
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "movie-discovery-app"
	}
	return nil
}

func (c *Config) validateTMDB() error {
	t := &c.TMDB
	t.BaseURL = strings.TrimRight(strings.TrimSpace(t.BaseURL), "/")
	t.ImageBaseURL = strings.TrimRight(strings.TrimSpace(t.ImageBaseURL), "/")
	t.APIKey = strings.TrimSpace(t.APIKey)
	t.Language = strings.TrimSpace(t.Language)
	t.Timeout = strings.TrimSpace(t.Timeout)

	if t.BaseURL == "" {
		t.BaseURL = "https://api.themoviedb.org/3"
	}
	if t.ImageBaseURL == "" {
		t.ImageBaseURL = "https://image.tmdb.org/t/p"
	}
	if t.Language == "" {
		t.Language = "en-US"
	}
	if t.Timeout == "" {
		t.Timeout = "10s"
	}
	for _, f := range []struct{ name, value string }{
		{"tmdb.base_url", t.BaseURL},
		{"tmdb.image_base_url", t.ImageBaseURL},
	} {
		u, err := url.Parse(f.value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid %s %q: must be an absolute http(s) URL", f.name, f.value)
		}
	}
	if _, err := positiveDuration("tmdb.timeout", t.Timeout); err != nil {
		return err
	}
	if t.APIKey == "" && c.Server.Mode == gin.ReleaseMode {
		return fmt.Errorf("tmdb.api_key is required in release mode")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	c.Cache.Addr = strings.TrimSpace(c.Cache.Addr)
	if c.Cache.Addr == "" {
		return fmt.Errorf("cache.addr is required when cache is enabled")
	}
	if c.Cache.DB < 0 {
		return fmt.Errorf("invalid cache.db %d: must not be negative", c.Cache.DB)
	}
	c.Cache.TTL = strings.TrimSpace(c.Cache.TTL)
	if c.Cache.TTL == "" {
		c.Cache.TTL = "10m"
	}
	if _, err := positiveDuration("cache.ttl", c.Cache.TTL); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	s := &c.Storage
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	s.Bucket = strings.TrimSpace(s.Bucket)
	s.PublicBaseURL = strings.TrimRight(strings.TrimSpace(s.PublicBaseURL), "/")
	if s.Endpoint == "" {
		return fmt.Errorf("storage.endpoint is required when storage is enabled")
	}
	if s.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	if strings.TrimSpace(s.AccessKey) == "" || strings.TrimSpace(s.SecretKey) == "" {
		return fmt.Errorf("storage.access_key and storage.secret_key are required when storage is enabled")
	}
	if s.MaxSizeMB < 0 {
		return fmt.Errorf("invalid storage.max_size_mb %d: must not be negative", s.MaxSizeMB)
	}
	if s.MaxSizeMB == 0 {
		s.MaxSizeMB = 2
	}
	if s.PublicBaseURL == "" {
		scheme := "http"
		if s.UseSSL {
			scheme = "https"
		}
		s.PublicBaseURL = scheme + "://" + s.Endpoint + "/" + s.Bucket
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	c.Events.URL = strings.TrimSpace(c.Events.URL)
	c.Events.Queue = strings.TrimSpace(c.Events.Queue)
	if c.Events.URL == "" {
		return fmt.Errorf("events.url is required when events are enabled")
	}
	if !strings.HasPrefix(c.Events.URL, "amqp://") && !strings.HasPrefix(c.Events.URL, "amqps://") {
		return fmt.Errorf("invalid events.url: must use the amqp:// or amqps:// scheme")
	}
	if c.Events.Queue == "" {
		c.Events.Queue = "movie.activity"
	}
	return nil
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}
	return nil
}

func positiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be greater than 0", name, value)
	}
	return d, nil
}

// MustDuration parses a duration that Validate has already checked.
// Invalid input yields fallback.
func MustDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in the given secret string.
func CountSecretClasses(secret string) int {
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	classes := 0
	for _, ok := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if ok {
			classes++
		}
	}
	return classes
}
