package config

import "time"

type Config interface {
	EnvConfig
	ClientConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

type ClientConfig interface {
	GetBaseURL() string
	GetProtectedPrefix() string
	GetHTTPTimeout() time.Duration
}

type StorageConfig interface {
	GetStoragePath() string
	GetStorageKey() []byte
	GetRedisAddr() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
