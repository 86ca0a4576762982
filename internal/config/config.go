package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings sourced from the environment (and an optional .env file).
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Storage    StorageConfig    `mapstructure:"storage"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	PDF        PDFConfig        `mapstructure:"pdf"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Drafts     DraftsConfig     `mapstructure:"drafts"`
	Cleanup    CleanupConfig    `mapstructure:"cleanup"`
	Generation GenerationConfig `mapstructure:"generation"`
	Clamd      ClamdConfig      `mapstructure:"clamd"`
	Log        LogConfig        `mapstructure:"log"`

	v *viper.Viper
}

// APIConfig contains HTTP server settings.
// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is honoured; empty trusts none.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// GeminiConfig contains upstream generation settings.
// APIKey is the value seen at load time; use Config.GeminiAPIKey for the live value.
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig selects where exported and uploaded files live.
type StorageConfig struct {
	Driver         string `mapstructure:"driver"`
	GeneratedDir   string `mapstructure:"generated_dir"`
	UploadsDir     string `mapstructure:"uploads_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Region           string `mapstructure:"region"`
	Bucket           string `mapstructure:"bucket"`
	Prefix           string `mapstructure:"prefix"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// PDFConfig controls the headless browser used for PDF export.
type PDFConfig struct {
	Engine     string        `mapstructure:"engine"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ChromePath string        `mapstructure:"chrome_path"`
}

// RedisConfig enables the Redis-backed draft store, rate limiting and cleanup tasks when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DraftsConfig controls how long generated content stays exportable by id.
type DraftsConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// CleanupConfig controls deletion of exported files. Retention 0 keeps files forever.
type CleanupConfig struct {
	Retention time.Duration `mapstructure:"retention"`
	Schedule  string        `mapstructure:"schedule"`
}

// GenerationConfig holds request-level limits for the generation endpoints.
type GenerationConfig struct {
	RateLimit int `mapstructure:"rate_limit"`
}

// ClamdConfig enables virus scanning of uploads when Addr is set.
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig selects slog handler and level.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

// GeminiAPIKey returns the credential as currently present in the environment.
// The value is re-read on every call so a rotated key takes effect without a restart.
func (c *Config) GeminiAPIKey() string {
	if c.v == nil {
		return strings.TrimSpace(c.Gemini.APIKey)
	}
	return strings.TrimSpace(c.v.GetString("gemini.api_key"))
}

// Load reads configuration from environment variables, after loading the given .env files if present.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// missing .env is normal outside local development
		_ = godotenv.Load(f)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.v = v
	cfg.API.TrustedProxies = splitList(cfg.API.TrustedProxies)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 3000)
	v.SetDefault("api.trusted_proxies", []string{})
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.timeout", 90*time.Second)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.generated_dir", "generated")
	v.SetDefault("storage.uploads_dir", "uploads")
	v.SetDefault("storage.max_upload_bytes", int64(10<<20))
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "ai-resume")
	v.SetDefault("minio.prefix", "")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("pdf.engine", "rod")
	v.SetDefault("pdf.timeout", 60*time.Second)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("drafts.ttl", 24*time.Hour)
	v.SetDefault("cleanup.retention", time.Duration(0))
	v.SetDefault("cleanup.schedule", "@every 10m")
	v.SetDefault("generation.rate_limit", 0)
	v.SetDefault("clamd.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                 "PORT",
		"api.trusted_proxies":      "TRUSTED_PROXIES",
		"gemini.api_key":           "GEMINI_API_KEY",
		"gemini.model":             "GEMINI_MODEL",
		"gemini.timeout":           "GEMINI_TIMEOUT",
		"storage.driver":           "STORAGE_DRIVER",
		"storage.generated_dir":    "GENERATED_DIR",
		"storage.uploads_dir":      "UPLOADS_DIR",
		"storage.max_upload_bytes": "MAX_UPLOAD_BYTES",
		"minio.endpoint":           "MINIO_ENDPOINT",
		"minio.access_key_id":      "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":  "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":            "MINIO_USE_SSL",
		"minio.region":             "MINIO_REGION",
		"minio.bucket":             "MINIO_BUCKET",
		"minio.prefix":             "MINIO_PREFIX",
		"minio.auto_create_bucket": "MINIO_AUTO_CREATE_BUCKET",
		"pdf.engine":               "PDF_ENGINE",
		"pdf.timeout":              "PDF_TIMEOUT",
		"pdf.chrome_path":          "CHROME_PATH",
		"redis.addr":               "REDIS_ADDR",
		"redis.password":           "REDIS_PASSWORD",
		"redis.db":                 "REDIS_DB",
		"drafts.ttl":               "DRAFT_TTL",
		"cleanup.retention":        "FILE_RETENTION",
		"cleanup.schedule":         "CLEANUP_SCHEDULE",
		"generation.rate_limit":    "GENERATION_RATE_LIMIT",
		"clamd.addr":               "CLAMD_ADDR",
		"log.level":                "LOG_LEVEL",
		"log.format":               "LOG_FORMAT",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// splitList flattens comma separated entries and drops blanks.
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	for _, proxy := range cfg.API.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			return fmt.Errorf("trusted proxy %q is not an IP or CIDR", proxy)
		}
	}
	if strings.TrimSpace(cfg.Gemini.Model) == "" {
		return errors.New("gemini model is required")
	}
	if cfg.Gemini.Timeout <= 0 {
		return errors.New("gemini timeout must be positive")
	}
	switch cfg.Storage.Driver {
	case "local":
		if strings.TrimSpace(cfg.Storage.GeneratedDir) == "" {
			return errors.New("generated dir is required")
		}
	case "minio":
		if cfg.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.UploadsDir) == "" {
		return errors.New("uploads dir is required")
	}
	if cfg.Storage.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	switch cfg.PDF.Engine {
	case "rod", "chromedp":
	default:
		return fmt.Errorf("unknown pdf engine %q", cfg.PDF.Engine)
	}
	if cfg.PDF.Timeout <= 0 {
		return errors.New("pdf timeout must be positive")
	}
	if cfg.Drafts.TTL <= 0 {
		return errors.New("draft ttl must be positive")
	}
	if cfg.Cleanup.Retention < 0 {
		return errors.New("file retention must not be negative")
	}
	if cfg.Generation.RateLimit < 0 {
		return errors.New("generation rate limit must not be negative")
	}
	return nil
}
