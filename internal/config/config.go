package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	JWT       JWTConfig
	Log       LogConfig
	Tracing   TracingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
	// TimeZone decides what "today" means for age, expiry and daily counts.
	TimeZone string
}

// Location falls back to UTC when TimeZone is unknown; validate reports it.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host               string
	Port               int
	Name               string
	User               string
	Password           string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// AuthConfig switches operator sign-in on or off for both the pages and the API.
type AuthConfig struct {
	Enabled      bool
	CookieName   string
	CookieSecure bool
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string // host:port of the OTLP/HTTP collector
	Insecure     bool
	SampleRate   float64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

type RateLimitConfig struct {
	// Global Rate limit per IP
	RequestsPerSecond float64
	BurstSize         int
	// Auth endpoints have stricter limits
	AuthRequestsPerMinute int
}

var defaults = map[string]any{
	"APP_NAME":                "saludvital",
	"APP_ENV":                 "development",
	"APP_VERSION":             "0.0.0",
	"APP_TIMEZONE":            "America/Santiago",
	"SERVER_HOST":             "0.0.0.0",
	"SERVER_PORT":             8080,
	"SERVER_READ_TIMEOUT":     15 * time.Second,
	"SERVER_WRITE_TIMEOUT":    15 * time.Second,
	"SERVER_IDLE_TIMEOUT":     60 * time.Second,
	"SERVER_SHUTDOWN_TIMEOUT": 30 * time.Second,
	"DB_HOST":                 "localhost",
	"DB_PORT":                 5432,
	"DB_NAME":                 "saludvital",
	"DB_USER":                 "saludvital",
	"DB_PASSWORD":             "",
	"DB_SSLMODE":              "disable",
	"DB_MAX_OPEN_CONNS":       25,
	"DB_MAX_IDLE_CONNS":       10,
	"DB_CONN_MAX_LIFETIME":    30 * time.Minute,
	"DB_CONN_MAX_IDLE_TIME":   5 * time.Minute,
	"DB_SLOW_QUERY_THRESHOLD": 200 * time.Millisecond,
	"AUTH_ENABLED":            false,
	"AUTH_COOKIE_NAME":        "saludvital_session",
	"AUTH_COOKIE_SECURE":      false,
	"JWT_SECRET":              "",
	"JWT_ACCESS_TTL":          15 * time.Minute,
	"JWT_REFRESH_TTL":         7 * 24 * time.Hour,
	"JWT_ISSUER":              "saludvital",
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "json",
	"LOG_OUTPUT":              "stdout",
	"TRACING_ENABLED":         false,
	"TRACING_SERVICE_NAME":    "saludvital",
	"OTLP_ENDPOINT":           "localhost:4318",
	"OTLP_INSECURE":           true,
	"TRACING_SAMPLE_RATE":     0.1,
	"CORS_ALLOWED_ORIGINS":    "http://localhost:8080",
	"CORS_ALLOWED_METHODS":    "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	"CORS_ALLOWED_HEADERS":    "Authorization,Content-Type,X-Request-ID",
	"CORS_MAX_AGE":            12 * time.Hour,
	"RATE_LIMIT_RPS":          100.0,
	"RATE_LIMIT_BURST":        200,
	"RATE_LIMIT_AUTH_RPM":     10,
}

// Load reads a .env file when present, then the environment, then an
// optional file named by CONFIG_FILE for anything the environment leaves unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := fromViper(v)
	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Environment: v.GetString("APP_ENV"),
			Version:     v.GetString("APP_VERSION"),
			TimeZone:    v.GetString("APP_TIMEZONE"),
		},
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetInt("DB_PORT"),
			Name:               v.GetString("DB_NAME"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:    v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime:    v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
			SlowQueryThreshold: v.GetDuration("DB_SLOW_QUERY_THRESHOLD"),
		},
		Auth: AuthConfig{
			Enabled:      v.GetBool("AUTH_ENABLED"),
			CookieName:   v.GetString("AUTH_COOKIE_NAME"),
			CookieSecure: v.GetBool("AUTH_COOKIE_SECURE"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessTokenTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTokenTTL: v.GetDuration("JWT_REFRESH_TTL"),
			Issuer:          v.GetString("JWT_ISSUER"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			OutputPath: v.GetString("LOG_OUTPUT"),
		},
		Tracing: TracingConfig{
			Enabled:      v.GetBool("TRACING_ENABLED"),
			ServiceName:  v.GetString("TRACING_SERVICE_NAME"),
			OTLPEndpoint: v.GetString("OTLP_ENDPOINT"),
			Insecure:     v.GetBool("OTLP_INSECURE"),
			SampleRate:   v.GetFloat64("TRACING_SAMPLE_RATE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(v.GetString("CORS_ALLOWED_HEADERS")),
			MaxAge:         v.GetDuration("CORS_MAX_AGE"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond:     v.GetFloat64("RATE_LIMIT_RPS"),
			BurstSize:             v.GetInt("RATE_LIMIT_BURST"),
			AuthRequestsPerMinute: v.GetInt("RATE_LIMIT_AUTH_RPM"),
		},
	}
}

// validate enforces production security requirements.
func validate(cfg *Config) error {
	var errs []string

	if cfg.Auth.Enabled {
		if cfg.JWT.Secret == "" {
			errs = append(errs, "JWT_SECRET is required when AUTH_ENABLED=true")
		} else if len(cfg.JWT.Secret) < 32 && cfg.App.IsProduction() {
			errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
		}
	}

	if cfg.App.IsProduction() && !cfg.Auth.Enabled {
		errs = append(errs, "AUTH_ENABLED must be true in production")
	}

	if cfg.Database.Password == "" && cfg.App.Environment != "development" {
		errs = append(errs, "DB_PASSWORD is required in non-development environments")
	}

	if cfg.Database.SSLMode == "disable" && cfg.App.IsProduction() {
		errs = append(errs, "DB_SSLMODE=disable is not allowed in production")
	}

	if _, err := time.LoadLocation(cfg.App.TimeZone); err != nil {
		errs = append(errs, fmt.Sprintf("APP_TIMEZONE %q is not a known time zone", cfg.App.TimeZone))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			result = append(result, t)
		}
	}
	return result
}
