package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of the server. Values come from an optional
// YAML file (CONFIG_FILE) and are then overridden by environment variables.
type Config struct {
	AppEnv    string          `yaml:"app_env"`
	Port      string          `yaml:"port"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	Webhooks  WebhookConfig   `yaml:"webhooks"`
	Apify     ApifyConfig     `yaml:"apify"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Callback  CallbackConfig  `yaml:"callback"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"` // postgres or sqlite
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Name       string `yaml:"name"`
	Password   string `yaml:"password"`
	SQLitePath string `yaml:"sqlite_path"`
}

// DSN returns the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type CacheConfig struct {
	Backend         string        `yaml:"backend"` // memory or redis
	TableListTTL    time.Duration `yaml:"table_list_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

type WebhookConfig struct {
	SalesNavigatorURL  string `yaml:"sales_navigator_url"`
	EmailExtractionURL string `yaml:"email_extraction_url"`
	AIEmailURL         string `yaml:"ai_email_url"`
	Concurrency        int    `yaml:"concurrency"`
}

type ApifyConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Token        string        `yaml:"token"`
	ActorID      string        `yaml:"actor_id"`
	PollInterval time.Duration `yaml:"poll_interval"`
	PollTimeout  time.Duration `yaml:"poll_timeout"`
}

type SheetsConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// CallbackConfig controls the signed URLs handed to enrichment webhooks.
type CallbackConfig struct {
	Secret        string        `yaml:"secret"`
	PublicBaseURL string        `yaml:"public_base_url"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		AppEnv: "development",
		Port:   "8080",
		Database: DatabaseConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       "5432",
			SQLitePath: "leadboard.db",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Cache: CacheConfig{
			Backend:         "memory",
			TableListTTL:    30 * time.Second,
			CleanupInterval: 10 * time.Minute,
		},
		Webhooks: WebhookConfig{
			Concurrency: 4,
		},
		Apify: ApifyConfig{
			BaseURL:      "https://api.apify.com/v2",
			PollInterval: 5 * time.Second,
			PollTimeout:  30 * time.Minute,
		},
		Sheets: SheetsConfig{
			BaseURL: "https://sheets.googleapis.com/v4",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Callback: CallbackConfig{
			PublicBaseURL: "http://localhost:8080",
			TokenTTL:      24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             5,
		},
	}
}

// Load builds the configuration from defaults, CONFIG_FILE and the environment.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return cfg, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Cache.Backend != "memory" && cfg.Cache.Backend != "redis" {
		return cfg, fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.Cache.Backend)
	}
	if cfg.Apify.PollInterval <= 0 {
		return cfg, fmt.Errorf("APIFY_POLL_INTERVAL must be positive, got %s", cfg.Apify.PollInterval)
	}
	if cfg.Webhooks.Concurrency < 1 {
		cfg.Webhooks.Concurrency = 1
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.AppEnv, "APP_ENV")
	setString(&cfg.Port, "PORT")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "PG_HOST")
	setString(&cfg.Database.Port, "PG_PORT")
	setString(&cfg.Database.User, "PG_USER")
	setString(&cfg.Database.Name, "PG_DB")
	setString(&cfg.Database.Password, "PG_PASSWORD")
	setString(&cfg.Database.SQLitePath, "SQLITE_PATH")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setString(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.Cache.Backend, "CACHE_BACKEND")

	setString(&cfg.Webhooks.SalesNavigatorURL, "WEBHOOK_SALES_NAVIGATOR_URL")
	setString(&cfg.Webhooks.EmailExtractionURL, "WEBHOOK_EMAIL_EXTRACTION_URL")
	setString(&cfg.Webhooks.AIEmailURL, "WEBHOOK_AI_EMAIL_URL")

	setString(&cfg.Apify.BaseURL, "APIFY_BASE_URL")
	setString(&cfg.Apify.Token, "APIFY_TOKEN")
	setString(&cfg.Apify.ActorID, "APIFY_ACTOR_ID")

	setString(&cfg.Sheets.BaseURL, "GOOGLE_SHEETS_BASE_URL")
	setString(&cfg.Sheets.APIKey, "GOOGLE_SHEETS_API_KEY")

	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "GEMINI_MODEL")
	setString(&cfg.Gemini.BaseURL, "GEMINI_BASE_URL")

	setString(&cfg.Callback.Secret, "CALLBACK_SECRET")
	setString(&cfg.Callback.PublicBaseURL, "PUBLIC_BASE_URL")

	if err := setInt(&cfg.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Cache.TableListTTL, "CACHE_TABLE_LIST_TTL"); err != nil {
		return err
	}
	if err := setInt(&cfg.Webhooks.Concurrency, "WEBHOOK_CONCURRENCY"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Apify.PollInterval, "APIFY_POLL_INTERVAL"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Apify.PollTimeout, "APIFY_POLL_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Callback.TokenTTL, "CALLBACK_TOKEN_TTL"); err != nil {
		return err
	}
	if err := setFloat(&cfg.RateLimit.RequestsPerSecond, "RATE_LIMIT_RPS"); err != nil {
		return err
	}
	return setInt(&cfg.RateLimit.Burst, "RATE_LIMIT_BURST")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
