package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	S3        S3        `yaml:"s3"`
	Capture   Capture   `yaml:"capture"`
	Actor     Actor     `yaml:"actor"`
	LLM       LLM       `yaml:"llm"`
	Scheduler Scheduler `yaml:"scheduler"`
	Report    Report    `yaml:"report"`
	Log       Log       `yaml:"log"`
}

// Server holds HTTP server configuration
type Server struct {
	Host           string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port           string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"90s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"60s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Database holds database configuration
type Database struct {
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL" env-required:"true"`

	// Connection pool settings
	MaxOpenConns int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnLifetime time.Duration `yaml:"conn_lifetime" env:"DB_CONN_LIFETIME" env-default:"5m"`
	AutoMigrate  bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
}

// S3 holds S3/MinIO storage configuration for published documents
type S3 struct {
	Enabled         bool   `yaml:"enabled" env:"S3_ENABLED" env-default:"true"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"reports"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL" env-default:"http://localhost:9000/reports"`
	Prefix          string `yaml:"prefix" env:"S3_PREFIX" env-default:"exports"`
}

// Capture holds the dashboard capture service configuration. Empty BaseURL disables visual exports.
type Capture struct {
	BaseURL         string        `yaml:"base_url" env:"CAPTURE_BASE_URL"`
	APIKey          string        `yaml:"api_key" env:"CAPTURE_API_KEY"`
	ViewportWidth   int           `yaml:"viewport_width" env:"CAPTURE_VIEWPORT_WIDTH" env-default:"1280"`
	Timeout         time.Duration `yaml:"timeout" env:"CAPTURE_TIMEOUT" env-default:"45s"`
	BreakerMinCalls uint32        `yaml:"breaker_min_calls" env:"CAPTURE_BREAKER_MIN_CALLS" env-default:"5"`
	BreakerRatio    float64       `yaml:"breaker_ratio" env:"CAPTURE_BREAKER_RATIO" env-default:"0.6"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" env:"CAPTURE_BREAKER_COOLDOWN" env-default:"30s"`
}

// Actor holds the scraping actor API configuration. Empty Token disables collection.
type Actor struct {
	BaseURL        string        `yaml:"base_url" env:"ACTOR_BASE_URL" env-default:"https://api.apify.com"`
	Token          string        `yaml:"token" env:"ACTOR_TOKEN"`
	InstagramActor string        `yaml:"instagram_actor" env:"ACTOR_INSTAGRAM_ID"`
	TikTokActor    string        `yaml:"tiktok_actor" env:"ACTOR_TIKTOK_ID"`
	RunsPerSecond  float64       `yaml:"runs_per_second" env:"ACTOR_RUNS_PER_SECOND" env-default:"0.5"`
	Burst          int           `yaml:"burst" env:"ACTOR_BURST" env-default:"1"`
	Timeout        time.Duration `yaml:"timeout" env:"ACTOR_TIMEOUT" env-default:"5m"`
}

// LLM holds the chat model configuration. Empty APIKey means rule based recommendations only.
type LLM struct {
	BaseURL     string        `yaml:"base_url" env:"LLM_BASE_URL" env-default:"https://api.openai.com/v1"`
	APIKey      string        `yaml:"api_key" env:"LLM_API_KEY"`
	Model       string        `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	Temperature float64       `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.3"`
	MaxTokens   int           `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1500"`
	Timeout     time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"60s"`
}

// Scheduler holds scheduler configuration
type Scheduler struct {
	Enabled  bool          `yaml:"enabled" env:"SCHEDULER_ENABLED" env-default:"false"`
	Interval time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"1h"`
}

// Report holds document layout settings
type Report struct {
	PageSize    string `yaml:"page_size" env:"REPORT_PAGE_SIZE" env-default:"A4"`
	Attribution string `yaml:"attribution" env:"REPORT_ATTRIBUTION" env-default:"Generated by UGC Dashboard"`
}

// Log holds logger configuration
type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Load reads configuration from the environment, loading .env first when present
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("reading config from env: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration or exits
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	return cfg
}

// LoadFromFile loads configuration from a YAML file, with env overrides
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	return cfg, nil
}
