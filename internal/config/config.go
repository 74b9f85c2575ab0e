package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	MailerLog      = "log"
	MailerSendGrid = "sendgrid"
	MailerResend   = "resend"

	RateLimitRedis  = "redis"
	RateLimitMemory = "memory"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Outbox      OutboxConfig
	Mailer      MailerConfig
	NATS        NATSConfig
	RateLimit   RateLimitConfig
	Reminders   RemindersConfig
	Monitor     MonitorConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

type DatabaseConfig struct {
	Driver          string
	URI             string
	Name            string
	ConnectTimeout  time.Duration
	MaxPoolSize     uint64
	UseTransactions bool
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type OutboxConfig struct {
	Path           string
	RetentionHours int
	Interval       time.Duration
	BatchSize      int
	MaxRetry       int
}

type MailerConfig struct {
	Provider string
	APIKey   string
	From     string
	FromName string
	AppURL   string
}

type NATSConfig struct {
	Enabled       bool
	URL           string
	SubjectPrefix string
}

type RateLimitConfig struct {
	Backend       string
	AdminRequests int
	AdminWindow   time.Duration
	AuthRequests  int
	AuthWindow    time.Duration
}

type RemindersConfig struct {
	Enabled   bool
	Interval  time.Duration
	BatchSize int
}

type MonitorConfig struct {
	Interval time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "taskdesk"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getString("DATABASE_DRIVER", DriverMongo)),
			URI:             getString("MONGO_URI", "mongodb://localhost:27017"),
			Name:            getString("MONGO_DATABASE", "taskdesk"),
			ConnectTimeout:  getDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
			MaxPoolSize:     uint64(getInt("MONGO_MAX_POOL_SIZE", 50)),
			UseTransactions: getBool("MONGO_USE_TRANSACTIONS", false),
		},
		Redis: RedisConfig{
			Enabled:  getBool("REDIS_ENABLED", true),
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "taskdesk"),
			TTL:    getDuration("JWT_TTL", 24*time.Hour),
		},
		Outbox: OutboxConfig{
			Path:           getString("OUTBOX_PATH", "./data/outbox.db"),
			RetentionHours: getInt("OUTBOX_RETENTION_HOURS", 72),
			Interval:       getDuration("OUTBOX_INTERVAL", 15*time.Second),
			BatchSize:      getInt("OUTBOX_BATCH_SIZE", 50),
			MaxRetry:       getInt("OUTBOX_MAX_RETRY", 5),
		},
		Mailer: MailerConfig{
			Provider: strings.ToLower(getString("MAILER_PROVIDER", MailerLog)),
			APIKey:   os.Getenv("MAILER_API_KEY"),
			From:     getString("MAILER_FROM", "no-reply@taskdesk.local"),
			FromName: getString("MAILER_FROM_NAME", "TaskDesk"),
			AppURL:   getString("APP_URL", "http://localhost:3000"),
		},
		NATS: NATSConfig{
			Enabled:       getBool("NATS_ENABLED", false),
			URL:           getString("NATS_URL", "nats://localhost:4222"),
			SubjectPrefix: getString("NATS_SUBJECT_PREFIX", "taskdesk"),
		},
		RateLimit: RateLimitConfig{
			Backend:       strings.ToLower(getString("RATE_LIMIT_BACKEND", RateLimitMemory)),
			AdminRequests: getInt("ADMIN_RATE_LIMIT", 100),
			AdminWindow:   getDuration("ADMIN_RATE_WINDOW", 15*time.Minute),
			AuthRequests:  getInt("AUTH_RATE_LIMIT", 20),
			AuthWindow:    getDuration("AUTH_RATE_WINDOW", 15*time.Minute),
		},
		Reminders: RemindersConfig{
			Enabled:   getBool("REMINDERS_ENABLED", true),
			Interval:  getDuration("REMINDERS_INTERVAL", 10*time.Minute),
			BatchSize: getInt("REMINDERS_BATCH_SIZE", 100),
		},
		Monitor: MonitorConfig{
			Interval: getDuration("MONITOR_INTERVAL", 10*time.Second),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./migrations"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverMongo, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver))
	}
	switch c.Mailer.Provider {
	case MailerLog:
	case MailerSendGrid, MailerResend:
		if c.Mailer.APIKey == "" {
			errs = append(errs, fmt.Errorf("MAILER_API_KEY is required for provider %q", c.Mailer.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAILER_PROVIDER %q", c.Mailer.Provider))
	}
	switch c.RateLimit.Backend {
	case RateLimitMemory:
	case RateLimitRedis:
		if !c.Redis.Enabled {
			errs = append(errs, errors.New("RATE_LIMIT_BACKEND=redis requires REDIS_ENABLED"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimit.Backend))
	}
	if c.JWT.Secret == "" {
		if c.IsDevelopment() {
			c.JWT.Secret = "development-secret"
		} else {
			errs = append(errs, errors.New("JWT_SECRET is required outside development"))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "test"
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
