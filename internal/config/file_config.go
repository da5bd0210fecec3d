package config

import (
	"encoding/hex"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fileSettings mirrors the optional YAML configuration file. Any field left
// empty falls back to the environment (and its defaults).
type fileSettings struct {
	AppName            string `yaml:"appName"`
	BaseURL            string `yaml:"baseUrl"`
	ProtectedPrefix    string `yaml:"protectedPrefix"`
	HTTPTimeoutSeconds int    `yaml:"httpTimeoutSeconds"`
	StoragePath        string `yaml:"storagePath"`
	StorageKey         string `yaml:"storageKey"` // hex-encoded 32 bytes
	RedisAddr          string `yaml:"redisAddr"`
}

type fileConfig struct {
	EnvVars
	settings fileSettings
}

// LoadFile returns a Config whose values come from the YAML file at path,
// falling back to environment variables for anything the file leaves unset.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "[LoadFile] read config file")
	}

	var settings fileSettings
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return nil, errors.Wrap(err, "[LoadFile] parse config file")
	}

	return fileConfig{settings: settings}, nil
}

func (c fileConfig) GetAppName() string {
	if c.settings.AppName != "" {
		return c.settings.AppName
	}
	return c.EnvVars.GetAppName()
}

func (c fileConfig) GetBaseURL() string {
	if c.settings.BaseURL != "" {
		return c.settings.BaseURL
	}
	return c.EnvVars.GetBaseURL()
}

func (c fileConfig) GetProtectedPrefix() string {
	if c.settings.ProtectedPrefix != "" {
		return c.settings.ProtectedPrefix
	}
	return c.EnvVars.GetProtectedPrefix()
}

func (c fileConfig) GetHTTPTimeout() time.Duration {
	if c.settings.HTTPTimeoutSeconds > 0 {
		return time.Duration(c.settings.HTTPTimeoutSeconds) * time.Second
	}
	return c.EnvVars.GetHTTPTimeout()
}

func (c fileConfig) GetStoragePath() string {
	if c.settings.StoragePath != "" {
		return c.settings.StoragePath
	}
	return c.EnvVars.GetStoragePath()
}

func (c fileConfig) GetStorageKey() []byte {
	if c.settings.StorageKey != "" {
		key, err := hex.DecodeString(c.settings.StorageKey)
		if err != nil {
			return nil
		}
		return key
	}
	return c.EnvVars.GetStorageKey()
}

func (c fileConfig) GetRedisAddr() string {
	if c.settings.RedisAddr != "" {
		return c.settings.RedisAddr
	}
	return c.EnvVars.GetRedisAddr()
}
