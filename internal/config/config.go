package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gemini   GeminiConfig
	Trainer  TrainerConfig
}

type AppConfig struct {
	Name        string
	Environment string
	HTTPPort    string
	ModelDir    string
	Debug       bool
	JSONLog     bool
}

// DatabaseConfig points at the warehouse holding the feature tables. The DSN
// is optional: when empty the trainer reads snapshot files instead.
type DatabaseConfig struct {
	DSN            string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	CacheTTL time.Duration
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	Dimensions int
}

type TrainerConfig struct {
	CandidatesFile string
	JobsFile       string
	Seed           int64
	ModelVersion   string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "workgallery")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_PORT", "8000")
	v.SetDefault("MODEL_DIR", "models")
	v.SetDefault("DB_CONNECT_TIMEOUT", "10s")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("GEMINI_MODEL", "gemini-embedding-001")
	v.SetDefault("GEMINI_DIMENSIONS", 384)
	v.SetDefault("TRAIN_SEED", 42)
	v.SetDefault("MODEL_VERSION", "v1")
	v.SetDefault("CANDIDATES_FILE", "data/candidates.json")
	v.SetDefault("JOBS_FILE", "data/jobs.json")

	cfg := Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Environment: v.GetString("APP_ENV"),
			HTTPPort:    v.GetString("HTTP_PORT"),
			ModelDir:    v.GetString("MODEL_DIR"),
			Debug:       v.GetBool("APP_DEBUG"),
			JSONLog:     v.GetBool("LOG_JSON"),
		},
		Database: DatabaseConfig{
			DSN:            strings.TrimSpace(v.GetString("WAREHOUSE_DSN")),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			CacheTTL: v.GetDuration("CACHE_TTL"),
		},
		Gemini: GeminiConfig{
			APIKey:     strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
			Model:      v.GetString("GEMINI_MODEL"),
			Dimensions: v.GetInt("GEMINI_DIMENSIONS"),
		},
		Trainer: TrainerConfig{
			CandidatesFile: v.GetString("CANDIDATES_FILE"),
			JobsFile:       v.GetString("JOBS_FILE"),
			Seed:           v.GetInt64("TRAIN_SEED"),
			ModelVersion:   v.GetString("MODEL_VERSION"),
		},
	}

	return cfg, nil
}

// RequireForServer validates the settings the serving binary cannot start
// without.
func (c Config) RequireForServer() error {
	var missing []string
	if strings.TrimSpace(c.App.HTTPPort) == "" {
		missing = append(missing, "HTTP_PORT")
	}
	if strings.TrimSpace(c.App.ModelDir) == "" {
		missing = append(missing, "MODEL_DIR")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	return nil
}

// RequireForTrainer validates the settings the offline pipeline cannot run
// without.
func (c Config) RequireForTrainer() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", errMissingRequiredEnv)
	}
	return nil
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", strings.TrimSpace(r.Host), strings.TrimSpace(r.Port))
}
