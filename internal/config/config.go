package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Log      LogConfig
	CORS     CORSConfig
	Queue    QueueConfig
	Linker   LinkerConfig
	Detector DetectorConfig
	Email    EmailConfig
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

// S3Config holds the raw EDI archive settings.
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

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// QueueConfig holds ingest queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// LinkerConfig holds the episode completion policy. Payer behavior varies,
// so the reconciliation threshold is configuration, not a constant.
type LinkerConfig struct {
	// ReconciliationTolerance is the residual (as a fraction of billed
	// charges) within which payments plus adjustments count as fully
	// reconciled.
	ReconciliationTolerance float64 `mapstructure:"reconciliation_tolerance"`
	// CompleteOnFinalIndicator closes an episode when a remittance carries a
	// final claim status, regardless of the amount residue.
	CompleteOnFinalIndicator bool `mapstructure:"complete_on_final_indicator"`
}

// DetectorConfig holds denial pattern detection settings.
type DetectorConfig struct {
	// MinFrequency is the minimum occurrence frequency for a pattern to be
	// emitted.
	MinFrequency float64 `mapstructure:"min_frequency"`
	// SaturationK tunes how quickly confidence saturates with sample size.
	SaturationK float64 `mapstructure:"saturation_k"`
	// DefaultDaysBack is the trailing window when the caller does not give one.
	DefaultDaysBack int `mapstructure:"default_days_back"`
	// AlertConfidence is the confidence floor above which new patterns
	// trigger an operator alert.
	AlertConfidence float64 `mapstructure:"alert_confidence"`
}

// EmailConfig holds pattern alert delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ToAddress   string `mapstructure:"to_address"`
}

// Load reads configuration from environment variables with the CLAIMSIGHT_
// prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLAIMSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "claimsight")
	v.SetDefault("db.password", "claimsight_secret")
	v.SetDefault("db.name", "claimsight_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "claimsight-edi")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	// Linker defaults
	v.SetDefault("linker.reconciliation_tolerance", 0.01)
	v.SetDefault("linker.complete_on_final_indicator", true)

	// Detector defaults
	v.SetDefault("detector.min_frequency", 0.05)
	v.SetDefault("detector.saturation_k", 5.0)
	v.SetDefault("detector.default_days_back", 90)
	v.SetDefault("detector.alert_confidence", 0.3)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@claimsight.local")
	v.SetDefault("email.from_name", "Claimsight")
	v.SetDefault("email.to_address", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                        "CLAIMSIGHT_SERVER_PORT",
		"server.read_timeout":                "CLAIMSIGHT_SERVER_READ_TIMEOUT",
		"server.write_timeout":               "CLAIMSIGHT_SERVER_WRITE_TIMEOUT",
		"server.environment":                 "CLAIMSIGHT_SERVER_ENVIRONMENT",
		"db.host":                            "CLAIMSIGHT_DB_HOST",
		"db.port":                            "CLAIMSIGHT_DB_PORT",
		"db.user":                            "CLAIMSIGHT_DB_USER",
		"db.password":                        "CLAIMSIGHT_DB_PASSWORD",
		"db.name":                            "CLAIMSIGHT_DB_NAME",
		"db.sslmode":                         "CLAIMSIGHT_DB_SSLMODE",
		"db.max_open":                        "CLAIMSIGHT_DB_MAX_OPEN",
		"db.max_idle":                        "CLAIMSIGHT_DB_MAX_IDLE",
		"s3.region":                          "CLAIMSIGHT_S3_REGION",
		"s3.bucket":                          "CLAIMSIGHT_S3_BUCKET",
		"s3.endpoint":                        "CLAIMSIGHT_S3_ENDPOINT",
		"s3.access_key":                      "CLAIMSIGHT_S3_ACCESS_KEY",
		"s3.secret_key":                      "CLAIMSIGHT_S3_SECRET_KEY",
		"s3.max_file_size_mb":                "CLAIMSIGHT_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                  "CLAIMSIGHT_S3_PRESIGN_EXPIRY",
		"log.level":                          "CLAIMSIGHT_LOG_LEVEL",
		"log.format":                         "CLAIMSIGHT_LOG_FORMAT",
		"cors.allowed_origins":               "CLAIMSIGHT_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":           "CLAIMSIGHT_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":                  "CLAIMSIGHT_QUEUE_MAX_RETRIES",
		"queue.concurrency":                  "CLAIMSIGHT_QUEUE_CONCURRENCY",
		"linker.reconciliation_tolerance":    "CLAIMSIGHT_LINKER_RECONCILIATION_TOLERANCE",
		"linker.complete_on_final_indicator": "CLAIMSIGHT_LINKER_COMPLETE_ON_FINAL_INDICATOR",
		"detector.min_frequency":             "CLAIMSIGHT_DETECTOR_MIN_FREQUENCY",
		"detector.saturation_k":              "CLAIMSIGHT_DETECTOR_SATURATION_K",
		"detector.default_days_back":         "CLAIMSIGHT_DETECTOR_DEFAULT_DAYS_BACK",
		"detector.alert_confidence":          "CLAIMSIGHT_DETECTOR_ALERT_CONFIDENCE",
		"email.provider":                     "CLAIMSIGHT_EMAIL_PROVIDER",
		"email.region":                       "CLAIMSIGHT_EMAIL_REGION",
		"email.from_address":                 "CLAIMSIGHT_EMAIL_FROM_ADDRESS",
		"email.from_name":                    "CLAIMSIGHT_EMAIL_FROM_NAME",
		"email.to_address":                   "CLAIMSIGHT_EMAIL_TO_ADDRESS",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Comma-separated origins arrive as a single string from the environment.
	if len(cfg.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.CORS.AllowedOrigins[0], ",") {
		cfg.CORS.AllowedOrigins = strings.Split(cfg.CORS.AllowedOrigins[0], ",")
	}
	for i := range cfg.CORS.AllowedOrigins {
		cfg.CORS.AllowedOrigins[i] = strings.TrimSpace(cfg.CORS.AllowedOrigins[i])
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.Environment == "production" {
		if os.Getenv("CLAIMSIGHT_DB_PASSWORD") == "" {
			return fmt.Errorf("CLAIMSIGHT_DB_PASSWORD must be set in production")
		}
	}
	if cfg.Linker.ReconciliationTolerance < 0 {
		return fmt.Errorf("linker.reconciliation_tolerance must be >= 0")
	}
	if cfg.Detector.MinFrequency < 0 || cfg.Detector.MinFrequency > 1 {
		return fmt.Errorf("detector.min_frequency must be within [0, 1]")
	}
	return nil
}
