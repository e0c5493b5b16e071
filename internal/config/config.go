package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// AI providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Models used when ai.model is left empty.
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// DefaultModel for provider, or "" when the provider is unknown.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderGemini:
		return DefaultGeminiModel
	}
	return ""
}

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		Env         string   `yaml:"env"`
		CORSOrigins []string `yaml:"corsOrigins"`
		// RequestTimeoutSec bounds every handler, including the outbound AI call.
		RequestTimeoutSec int `yaml:"requestTimeoutSec"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`

	Database struct {
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
		// pool; zero means the driver package default
		MaxOpenConns       int `yaml:"maxOpenConns"`
		MaxIdleConns       int `yaml:"maxIdleConns"`
		ConnMaxLifetimeMin int `yaml:"connMaxLifetimeMin"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
		// PresignMinutes > 0 makes export URLs presigned GET links.
		PresignMinutes int `yaml:"presignMinutes"`
	} `yaml:"minio"`

	AI AI `yaml:"ai"`

	Auth struct {
		// APIKeys maps tenant -> key. Empty disables auth.
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		// AnalysesPerMinute applies per tenant+IP to generation endpoints.
		AnalysesPerMinute int `yaml:"analysesPerMinute"`
		Burst             int `yaml:"burst"`
	} `yaml:"rateLimit"`
}

type AI struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"apiKey"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"baseURL"`
}

var placeholderKeys = []string{
	"sk-your-openai-api-key-here",
	"your-api-key",
	"changeme",
}

// Configured is false when no usable key is set; the service then runs
// the heuristic analyzer.
func (a AI) Configured() bool {
	key := strings.TrimSpace(a.APIKey)
	if key == "" {
		return false
	}
	lower := strings.ToLower(key)
	for _, p := range placeholderKeys {
		if lower == p {
			return false
		}
	}
	return !strings.HasPrefix(lower, "your-") && !strings.HasPrefix(lower, "sk-your-")
}

// Default returns the config used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Server.Env = "development"
	cfg.Server.RequestTimeoutSec = 60
	cfg.Log.Level = "info"
	cfg.Database.Driver = DriverMemory
	cfg.AI.Provider = ProviderOpenAI
	cfg.RateLimit.AnalysesPerMinute = 10
	cfg.RateLimit.Burst = 5
	return &cfg
}

// Load baca config.yaml (kalau ada), lalu .env, lalu environment variables.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// .env tidak wajib; existing env vars win
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("APP_ENV", &c.Server.Env)
	str("LOG_LEVEL", &c.Log.Level)
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.JSON = strings.EqualFold(v, "json")
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	str("DB_DRIVER", &c.Database.Driver)
	str("DB_HOST", &c.Database.Host)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)
	str("DB_SSLMODE", &c.Database.SSLMode)

	str("MINIO_ENDPOINT", &c.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &c.Minio.SecretKey)
	str("MINIO_BUCKET", &c.Minio.BucketName)
	str("MINIO_REGION", &c.Minio.Region)

	str("AI_PROVIDER", &c.AI.Provider)
	c.AI.Provider = strings.ToLower(c.AI.Provider)
	str("AI_API_KEY", &c.AI.APIKey)
	str("AI_MODEL", &c.AI.Model)
	switch c.AI.Provider {
	case ProviderGemini:
		str("GEMINI_API_KEY", &c.AI.APIKey)
		str("GEMINI_MODEL", &c.AI.Model)
	default:
		str("OPENAI_API_KEY", &c.AI.APIKey)
		str("OPENAI_MODEL", &c.AI.Model)
		str("OPENAI_BASE_URL", &c.AI.BaseURL)
	}
	if c.AI.Model == "" {
		c.AI.Model = DefaultModel(c.AI.Provider)
	}

	if v := os.Getenv("API_KEYS"); v != "" {
		keys, err := parseAPIKeys(v)
		if err != nil {
			return err
		}
		c.Auth.APIKeys = keys
	}

	for key, dst := range map[string]*int{
		"PORT":                  &c.Server.Port,
		"REQUEST_TIMEOUT_SEC":   &c.Server.RequestTimeoutSec,
		"DB_PORT":               &c.Database.Port,
		"DB_MAX_OPEN_CONNS":     &c.Database.MaxOpenConns,
		"DB_MAX_IDLE_CONNS":     &c.Database.MaxIdleConns,
		"MINIO_PRESIGN_MINUTES": &c.Minio.PresignMinutes,
		"RATE_LIMIT_PER_MINUTE": &c.RateLimit.AnalysesPerMinute,
		"RATE_LIMIT_BURST":      &c.RateLimit.Burst,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the combinations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.host and database.name are required for %s", c.Database.Driver))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("database.driver %q must be one of mysql, postgres, memory", c.Database.Driver))
	}
	switch c.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("ai.provider %q must be openai or gemini", c.AI.Provider))
	}
	if c.RateLimit.AnalysesPerMinute < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rateLimit values must not be negative"))
	}
	return errors.Join(errs...)
}

// MinioEnabled reports whether exports can be uploaded.
func (c *Config) MinioEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.BucketName != ""
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	port := c.Database.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq keyword DSN.
func (c *Config) PostgresDSN() string {
	port := c.Database.Port
	if port == 0 {
		port = 5432
	}
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, port, c.Database.User, c.Database.Password, c.Database.Name, ssl)
}

// parseAPIKeys reads "tenant:key,tenant2:key2".
func parseAPIKeys(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range splitList(s) {
		tenant, key, ok := strings.Cut(pair, ":")
		tenant, key = strings.TrimSpace(tenant), strings.TrimSpace(key)
		if !ok || tenant == "" || key == "" {
			return nil, fmt.Errorf("API_KEYS entry %q must be tenant:key", pair)
		}
		out[tenant] = key
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
