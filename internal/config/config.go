package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "maintenance.db"
	defaultLockTTL         = "30s"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultMaxOpenConns    = "25"
	defaultMaxIdleConns    = "5"
	defaultConnMaxLifetime = "30m"
	defaultAutoMigrate     = "true"
)

type Config struct {
	AppEnv             string
	HTTPAddr           string
	DatabaseURL        string
	RedisAddr          string
	LockTTL            time.Duration
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBConnMaxLifetime  time.Duration
	AutoMigrate        bool
}

// fileConfig is the optional TOML file layout. Every key may be overridden by
// the matching environment variable.
type fileConfig struct {
	AppEnv             string   `toml:"app_env"`
	HTTPAddr           string   `toml:"http_addr"`
	DatabaseURL        string   `toml:"database_url"`
	RedisAddr          string   `toml:"redis_addr"`
	LockTTL            string   `toml:"lock_ttl"`
	LogLevel           string   `toml:"log_level"`
	LogFormat          string   `toml:"log_format"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	DBMaxOpenConns     int      `toml:"db_max_open_conns"`
	DBMaxIdleConns     int      `toml:"db_max_idle_conns"`
	DBConnMaxLifetime  string   `toml:"db_conn_max_lifetime"`
	AutoMigrate        *bool    `toml:"auto_migrate"`
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the process
// environment. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	file, err := loadFile(strings.TrimSpace(os.Getenv("CONFIG_FILE")))
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	appEnv := strings.TrimSpace(getEnv("APP_ENV", orDefault(file.AppEnv, os.Getenv("ENV"))))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", orDefault(file.HTTPAddr, defaultHTTPAddr)))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", orDefault(file.DatabaseURL, defaultDatabaseURL)))
	cfg.RedisAddr = strings.TrimSpace(getEnv("REDIS_ADDR", file.RedisAddr))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", orDefault(file.LogLevel, defaultLogLevel))))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", orDefault(file.LogFormat, defaultLogFormat))))

	cfg.CORSAllowedOrigins = file.CORSAllowedOrigins
	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		cfg.CORSAllowedOrigins = splitList(extra)
	}

	cfg.LockTTL, err = parseDurationEnv("LOCK_TTL", orDefault(file.LockTTL, defaultLockTTL))
	if err != nil {
		return nil, err
	}
	cfg.DBConnMaxLifetime, err = parseDurationEnv("DB_CONN_MAX_LIFETIME", orDefault(file.DBConnMaxLifetime, defaultConnMaxLifetime))
	if err != nil {
		return nil, err
	}
	cfg.DBMaxOpenConns, err = parseIntEnv("DB_MAX_OPEN_CONNS", orDefaultInt(file.DBMaxOpenConns, defaultMaxOpenConns))
	if err != nil {
		return nil, err
	}
	cfg.DBMaxIdleConns, err = parseIntEnv("DB_MAX_IDLE_CONNS", orDefaultInt(file.DBMaxIdleConns, defaultMaxIdleConns))
	if err != nil {
		return nil, err
	}

	autoMigrate := defaultAutoMigrate
	if file.AutoMigrate != nil {
		autoMigrate = strconv.FormatBool(*file.AutoMigrate)
	}
	cfg.AutoMigrate = parseBoolEnv("AUTO_MIGRATE", autoMigrate)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	if path == "" {
		return fc, nil
	}
	if _, err := toml.DecodeFile(path, fc); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return fc, nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be > 0")
	}
	if cfg.DBMaxOpenConns < 0 || cfg.DBMaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS and DB_MAX_IDLE_CONNS must be >= 0")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be one of: json, text")
	}

	if isProdLike(cfg.AppEnv) {
		if IsSQLite(cfg.DatabaseURL) {
			return fmt.Errorf("in prod/release DATABASE_URL must point to PostgreSQL or MySQL")
		}
		if cfg.AutoMigrate {
			return fmt.Errorf("in prod/release AUTO_MIGRATE must be false")
		}
	}

	return nil
}

// IsSQLite reports whether dsn is handled by the SQLite driver.
func IsSQLite(dsn string) bool {
	dsn = strings.ToLower(strings.TrimSpace(dsn))
	return !strings.HasPrefix(dsn, "postgres://") &&
		!strings.HasPrefix(dsn, "postgresql://") &&
		!strings.HasPrefix(dsn, "mysql://")
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func orDefaultInt(v int, def string) string {
	if v == 0 {
		return def
	}
	return strconv.Itoa(v)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
