package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	DefaultGatekeeperURL    = "http://127.0.0.1:7861"
	DefaultResultTimeoutSec = 300
)

type ConfigLoader struct {
	logger *zap.Logger
	v      *viper.Viper
}

func NewConfigLoader(logger *zap.Logger) *ConfigLoader {
	v := viper.New()
	v.SetConfigType("yaml")
	return &ConfigLoader{
		logger: logger,
		v:      v,
	}
}

func (cl *ConfigLoader) Load(filePath string) (*Config, error) {
	cl.v.SetConfigFile(filePath)
	if err := cl.v.ReadInConfig(); err != nil {
		cl.logger.Error("Failed to read config file", zap.String("file", filePath), zap.Error(err))
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := cl.v.Unmarshal(&cfg); err != nil {
		cl.logger.Error("Failed to unmarshal config", zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cl.validate(&cfg); err != nil {
		cl.logger.Error("Config validation failed", zap.Error(err))
		return nil, err
	}

	cl.logger.Info("Config loaded successfully", zap.String("file", filePath))
	return &cfg, nil
}

func (cl *ConfigLoader) validate(cfg *Config) error {
	if cfg.Gatekeeper.BaseURL == "" {
		cfg.Gatekeeper.BaseURL = DefaultGatekeeperURL
	}
	if !strings.HasPrefix(cfg.Gatekeeper.BaseURL, "http://") && !strings.HasPrefix(cfg.Gatekeeper.BaseURL, "https://") {
		return fmt.Errorf("gatekeeper.base_url must be an http(s) URL, got: %s", cfg.Gatekeeper.BaseURL)
	}
	if cfg.Gatekeeper.ResultTimeoutSec < 0 {
		return fmt.Errorf("gatekeeper.result_timeout_sec must be non-negative")
	}
	if cfg.Gatekeeper.ResultTimeoutSec == 0 {
		cfg.Gatekeeper.ResultTimeoutSec = DefaultResultTimeoutSec
	}

	if cfg.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts must be non-negative")
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialIntervalSec <= 0 {
		cfg.Retry.InitialIntervalSec = 1.0
	}
	if cfg.Retry.BackoffCoefficient <= 1 {
		cfg.Retry.BackoffCoefficient = 2.0
	}

	storageType := strings.ToLower(cfg.Storage.Type)
	switch storageType {
	case "s3":
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region required")
		}
		if cfg.Storage.S3.AccessKeyID == "" || cfg.Storage.S3.SecretAccessKey == "" {
			return fmt.Errorf("s3 access_key and secret_key required")
		}
	case "local":
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("base_path required for local storage")
		}
	case "":
		// No backend configured: items must carry their binaries inline.
	default:
		return fmt.Errorf("invalid storage backend: %s", storageType)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if !isValidLogLevel(cfg.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "console"
	}
	if cfg.Logging.Output == "file" && cfg.Logging.FilePath == "" {
		return fmt.Errorf("file_path required for file logging")
	}

	return nil
}

func isValidLogLevel(level string) bool {
	levels := []string{"debug", "info", "warn", "error"}
	for _, l := range levels {
		if strings.ToLower(level) == l {
			return true
		}
	}
	return false
}
