package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration. Values come from an optional YAML
// file with environment variables layered on top; secrets are env-only.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	OCR      OCRConfig      `yaml:"ocr"`
	Insight  InsightConfig  `yaml:"insight"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// PipelineConfig controls the queue and worker pool.
type PipelineConfig struct {
	// Workers is the fixed worker-pool size.
	Workers int `yaml:"workers"`
	// QueueCapacity bounds the work queue; 0 keeps it unbounded.
	QueueCapacity int `yaml:"queue_capacity"`
	// FullPolicy is "block" or "reject" and only applies to a bounded queue.
	FullPolicy string `yaml:"full_policy"`
	// DrainOnShutdown lets workers finish queued tasks before exit.
	DrainOnShutdown bool `yaml:"drain_on_shutdown"`
}

// StorageConfig selects the upload blob store.
type StorageConfig struct {
	// Backend is "local", "minio" or "s3".
	Backend string `yaml:"backend"`
	// LocalDir is the upload directory for the local backend.
	LocalDir string `yaml:"local_dir"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig enables the redis-backed task status registry when Addr is
// set; otherwise statuses are tracked in memory.
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// OCRConfig selects the image text-recognition engine.
type OCRConfig struct {
	// Engine is "tesseract" or "textract".
	Engine string `yaml:"engine"`
	// Languages passed to tesseract, e.g. ["eng"].
	Languages []string `yaml:"languages"`
}

// InsightConfig holds the external summary/definition/search integrations.
type InsightConfig struct {
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIKey     string `yaml:"-"`
	GoogleAPIKey  string `yaml:"-"`
	GoogleCX      string `yaml:"-"`
}

type LogConfig struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"output_paths"`
}

// Load reads the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{Addr: ":8080"},
		Pipeline: PipelineConfig{
			Workers:         3,
			QueueCapacity:   0,
			FullPolicy:      "block",
			DrainOnShutdown: true,
		},
		Storage:  StorageConfig{Backend: "local", LocalDir: "uploads"},
		Database: DatabaseConfig{Path: "data/sentidoc.db"},
		OCR:      OCRConfig{Engine: "tesseract", Languages: []string{"eng"}},
		Insight: InsightConfig{
			OpenAIBaseURL: "https://api.openai.com/v1",
			OpenAIModel:   "gpt-3.5-turbo",
		},
		Log: LogConfig{
			Level:       "info",
			Encoding:    "json",
			OutputPaths: []string{"stdout", "logs/app.log"},
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PIPELINE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.Workers = n
		}
	}
	if v := os.Getenv("QUEUE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Pipeline.QueueCapacity = n
		}
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.Storage.LocalDir = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("OCR_ENGINE"); v != "" {
		cfg.OCR.Engine = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Insight.OpenAIBaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Insight.OpenAIModel = v
	}
	cfg.Insight.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Insight.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	cfg.Insight.GoogleCX = os.Getenv("GOOGLE_CX")
}
