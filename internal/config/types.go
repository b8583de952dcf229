package config

import (
	types "MuseLink/pkg"
)

type Config struct {
	Gatekeeper types.GatekeeperConfig `mapstructure:"gatekeeper" json:"gatekeeper"`
	Storage    types.StorageConfig    `mapstructure:"storage" json:"storage"`
	Retry      types.RetryConfig      `mapstructure:"retry" json:"retry"`
	Node       map[string]interface{} `mapstructure:"node" json:"node"`
	Logging    types.LoggingConfig    `mapstructure:"logging" json:"logging"`
}
