package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	DB        DBConfig        `envPrefix:"DB_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	MinIO     MinIOConfig     `envPrefix:"MINIO_"`
	CORS      CORSConfig      `envPrefix:"CORS_"`
	SMTP      SMTPConfig      `envPrefix:"SMTP_"`
	Firebase  FirebaseConfig  `envPrefix:"FIREBASE_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Presence  PresenceConfig  `envPrefix:"PRESENCE_"`
	Browse    BrowseConfig    `envPrefix:"BROWSE_"`
	Notify    NotifyConfig    `envPrefix:"NOTIFY_"`
}

type AppConfig struct {
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`
}

// IsProduction reports whether the app runs with production settings
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type LogConfig struct {
	Level     string `env:"LEVEL" envDefault:"info"`
	Format    string `env:"FORMAT" envDefault:"text"`
	Component string `env:"COMPONENT" envDefault:"spark-api"`
	Source    bool   `env:"SOURCE" envDefault:"false"`
}

type DBConfig struct {
	Driver   string `env:"DRIVER" envDefault:"postgres"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"spark"`
	Password string `env:"PASSWORD" envDefault:"spark"`
	Name     string `env:"NAME" envDefault:"spark"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	TimeZone string `env:"TIMEZONE" envDefault:"UTC"`
	// Path is the database file used by the sqlite driver
	Path string `env:"PATH" envDefault:"spark.db"`
}

// DSN returns the connection string for the configured driver
func (d DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode +
		" TimeZone=" + d.TimeZone
}

// URL returns the PostgreSQL connection URL (for golang-migrate)
func (d DBConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.Name + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret string        `env:"SECRET" envDefault:"default-secret"`
	Expiry time.Duration `env:"EXPIRY" envDefault:"24h"`
}

type MinIOConfig struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	PublicURL string `env:"PUBLIC_URL"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string `env:"SECRET_KEY" envDefault:"minioadmin"`
	Bucket    string `env:"BUCKET" envDefault:"spark-photos"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

type CORSConfig struct {
	Origins []string `env:"ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type SMTPConfig struct {
	Host     string `env:"HOST" envDefault:"mailpit"`
	Port     string `env:"PORT" envDefault:"1025"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"noreply@spark.local"`
	FromName string `env:"FROM_NAME" envDefault:"Spark"`
}

type FirebaseConfig struct {
	CredentialsFile string `env:"CREDENTIALS_FILE"`
}

// RateLimitRule is the per-action-kind window configuration
type RateLimitRule struct {
	Max    int64         `env:"MAX"`
	Window time.Duration `env:"WINDOW"`
}

type RateLimitConfig struct {
	// Store selects the counter backend: "redis" or "memory"
	Store   string        `env:"STORE" envDefault:"redis"`
	Swipe   RateLimitRule `envPrefix:"SWIPE_"`
	Message RateLimitRule `envPrefix:"MESSAGE_"`
	Report  RateLimitRule `envPrefix:"REPORT_"`
	Block   RateLimitRule `envPrefix:"BLOCK_"`
}

type PresenceConfig struct {
	Store string        `env:"STORE" envDefault:"redis"`
	TTL   time.Duration `env:"TTL" envDefault:"5m"`
	// Sweep is how often stale entries are evicted
	Sweep time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
}

type BrowseConfig struct {
	Limit int `env:"LIMIT" envDefault:"30"`
}

type NotifyConfig struct {
	Workers   int `env:"WORKERS" envDefault:"4"`
	QueueSize int `env:"QUEUE_SIZE" envDefault:"256"`
}

// Defaults returns the configuration with every envDefault applied and the
// rate-limit rules of the product.
func Defaults() *Config {
	cfg := &Config{}
	_ = env.Parse(cfg)
	applyRateLimitDefaults(&cfg.RateLimit)
	return cfg
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	// Load .env file (ignore error if not exists - e.g. in Docker)
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, reading from environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		slog.Error("invalid environment configuration", "error", err)
		cfg = Defaults()
	}
	applyRateLimitDefaults(&cfg.RateLimit)
	return cfg
}

func applyRateLimitDefaults(rl *RateLimitConfig) {
	fill := func(r *RateLimitRule, max int64, window time.Duration) {
		if r.Max <= 0 {
			r.Max = max
		}
		if r.Window <= 0 {
			r.Window = window
		}
	}
	fill(&rl.Swipe, 100, 24*time.Hour)
	fill(&rl.Message, 30, time.Minute)
	fill(&rl.Report, 5, time.Hour)
	fill(&rl.Block, 20, 24*time.Hour)
}
