package types

type GatekeeperConfig struct {
	BaseURL          string `mapstructure:"base_url" json:"base_url"`
	ResultTimeoutSec int    `mapstructure:"result_timeout_sec" json:"result_timeout_sec"`
}

type RetryConfig struct {
	MaxAttempts        int32   `mapstructure:"max_attempts" json:"max_attempts"`
	InitialIntervalSec float64 `mapstructure:"initial_interval_sec" json:"initial_interval_sec"`
	BackoffCoefficient float64 `mapstructure:"backoff_coefficient" json:"backoff_coefficient"`
}

type StorageConfig struct {
	Type  string      `mapstructure:"type" json:"type"`
	Local LocalConfig `mapstructure:"local" json:"local"`
	S3    S3Config    `mapstructure:"s3" json:"s3"`
}

type LocalConfig struct {
	BasePath string `mapstructure:"base_path" json:"base_path"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket" json:"bucket"`
	Region          string `mapstructure:"region" json:"region"`
	AccessKeyID     string `mapstructure:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" json:"secret_access_key"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level" json:"level"`
	Output   string `mapstructure:"output" json:"output"`
	FilePath string `mapstructure:"file_path" json:"file_path"`
}
