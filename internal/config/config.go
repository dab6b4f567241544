package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	Recognizer RecognizerConfig
	AI         AIConfig
	Preprocess PreprocessConfig
	Pipeline   PipelineConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds settings for the upload archive bucket.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig holds settings for a single cloud OCR engine.
type EngineConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Endpoint    string `mapstructure:"endpoint"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// LocalOCRConfig holds settings for the on-device tesseract engine.
type LocalOCRConfig struct {
	Tesseract   string `mapstructure:"tesseract"`
	Language    string `mapstructure:"language"`
	PSM         int    `mapstructure:"psm"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	WorkDir     string `mapstructure:"work_dir"`
}

// RecognizerConfig holds settings for the OCR engine chain.
type RecognizerConfig struct {
	Google EngineConfig   `mapstructure:"google"`
	Azure  EngineConfig   `mapstructure:"azure"`
	Local  LocalOCRConfig `mapstructure:"local"`
}

// AIConfig holds settings for the text classification/extraction provider.
type AIConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Endpoint    string `mapstructure:"endpoint"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// PreprocessConfig holds image preprocessing thresholds.
type PreprocessConfig struct {
	CompressThresholdKB int `mapstructure:"compress_threshold_kb"`
	MaxDimensionPx      int `mapstructure:"max_dimension_px"`
	JPEGQuality         int `mapstructure:"jpeg_quality"`
	LocalOCRMaxPx       int `mapstructure:"local_ocr_max_px"`
}

// PipelineConfig holds orchestrator-level settings.
type PipelineConfig struct {
	BudgetSecs int `mapstructure:"budget_secs"`
}

// Budget returns the overall wall-clock budget for one ingestion.
func (p *PipelineConfig) Budget() time.Duration {
	return time.Duration(p.BudgetSecs) * time.Second
}

// Load reads configuration from environment variables with the LIFEDASH_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LIFEDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "lifedash")
	v.SetDefault("db.password", "lifedash_secret")
	v.SetDefault("db.name", "lifedash_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "lifedash-archive")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 25)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Recognizer defaults
	v.SetDefault("recognizer.google.api_key", "")
	v.SetDefault("recognizer.google.endpoint", "")
	v.SetDefault("recognizer.google.timeout_secs", 30)
	v.SetDefault("recognizer.azure.api_key", "")
	v.SetDefault("recognizer.azure.endpoint", "")
	v.SetDefault("recognizer.azure.timeout_secs", 30)
	v.SetDefault("recognizer.local.tesseract", "tesseract")
	v.SetDefault("recognizer.local.language", "eng")
	v.SetDefault("recognizer.local.psm", 6)
	v.SetDefault("recognizer.local.timeout_secs", 60)
	v.SetDefault("recognizer.local.work_dir", "")

	// AI defaults
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.endpoint", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout_secs", 60)

	// Preprocess defaults
	v.SetDefault("preprocess.compress_threshold_kb", 500)
	v.SetDefault("preprocess.max_dimension_px", 2000)
	v.SetDefault("preprocess.jpeg_quality", 85)
	v.SetDefault("preprocess.local_ocr_max_px", 1600)

	// Pipeline defaults
	v.SetDefault("pipeline.budget_secs", 120)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
