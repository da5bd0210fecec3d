package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	appNameVar         = "APP_NAME"
	baseURLVar         = "BASE_URL"
	protectedPrefixVar = "PROTECTED_PREFIX"
	httpTimeoutVar     = "HTTP_TIMEOUT_SECONDS"
	storagePathVar     = "AUTH_STORAGE_PATH"
	storageKeyVar      = "AUTH_STORAGE_KEY"
	redisAddrVar       = "REDIS_ADDR"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Portfolio Admin")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the API root every request is addressed under
// (e.g. "https://example.com/api").
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080/api")
}

// GetProtectedPrefix returns the path prefix under which requests carry the
// bearer credential.
func (EnvVars) GetProtectedPrefix() string {
	return GetEnv(protectedPrefixVar, "/api/")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(httpTimeoutVar, "15"))
	if err != nil || seconds <= 0 {
		seconds = 15
	}
	return time.Duration(seconds) * time.Second
}

func (EnvVars) GetStoragePath() string {
	if path := os.Getenv(storagePathVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "portfolio-session.json"
	}
	return filepath.Join(home, ".portfolio-admin", "session.json")
}

// GetStorageKey returns the hex-decoded 32-byte key sealing the session
// file, or nil when the file is stored in the clear.
func (EnvVars) GetStorageKey() []byte {
	raw := os.Getenv(storageKeyVar)
	if raw == "" {
		return nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil
	}
	return key
}

// GetRedisAddr returns the Redis address for shared session storage, or ""
// when the file store is used.
func (EnvVars) GetRedisAddr() string {
	return os.Getenv(redisAddrVar)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
