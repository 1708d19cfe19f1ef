package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageBackendDB   = "db"
	StorageBackendJSON = "json"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// StorageBackend selects the case store implementation: "db" or "json".
	StorageBackend string
	// CasesJSONPath is the document path for the json backend.
	CasesJSONPath string
	// ManualsPath is the root of the static manual bundles.
	ManualsPath string

	// AdminUIDs may change status / resolve any case, not only their own.
	AdminUIDs []string

	GeminiAPIKey string
	GeminiModel  string

	// KafkaBrokers/KafkaTopicCase — if set, case lifecycle events are
	// produced to Kafka (best-effort).
	KafkaBrokers   []string
	KafkaTopicCase string

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:        getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:       firstEnv("APP_PORT", "HTTP_PORT", "8098"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StorageBackend: getEnv("STORAGE_BACKEND", StorageBackendDB),
		CasesJSONPath:  getEnv("CASES_JSON_PATH", "data/cases.json"),
		ManualsPath:    getEnv("MANUALS_PATH", "data/manuals"),
		AdminUIDs:      splitList(os.Getenv("ADMIN_UIDS")),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", ""),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicCase: getEnv("KAFKA_TOPIC_CASE", ""),
	}
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "forkliftia")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageBackendDB:
		if c.DB.Host == "" || c.DB.Database == "" {
			return errors.New("config: DB_HOST and DB_DATABASE are required")
		}
		if c.AppEnv == "production" && c.DB.Password == "" {
			return errors.New("config: in production DB_PASSWORD is required")
		}
	case StorageBackendJSON:
		if c.CasesJSONPath == "" {
			return errors.New("config: CASES_JSON_PATH is required for the json backend")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q (want db or json)", c.StorageBackend)
	}
	return nil
}

// IsAdmin reports whether uid is on the admin allow-list.
func (c *Config) IsAdmin(uid string) bool {
	for _, a := range c.AdminUIDs {
		if a == uid {
			return true
		}
	}
	return false
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func splitList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
