package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StorageMode selects the durable session storage backend.
type StorageMode string

const (
	// StorageModeFile persists the session mirror to a local JSON file.
	StorageModeFile StorageMode = "file"
	// StorageModeRedis persists the session mirror to Redis, for shared
	// workstations where the mirror must live off the local disk.
	StorageModeRedis StorageMode = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageMode.
func (m *StorageMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "file", "redis":
		*m = StorageMode(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageMode: %q (valid options: file, redis)", v)
	}
}

// RedisConfig configures the Redis session mirror.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"       envDefault:"0"`

	// Key is the hash key the mirror lives under; distinct per user profile.
	Key string `env:"KEY" envDefault:"portal:session"`
}

// StorageConfig groups durable session storage configuration.
type StorageConfig struct {
	// Mode selects the backend.
	Mode StorageMode `env:"STORAGE_MODE" envDefault:"file"`

	// FilePath locates the JSON mirror when Mode=file. Defaults under the
	// user config directory when empty.
	FilePath string `env:"FILE_PATH"`

	// Redis configuration (used when Mode=redis).
	Redis RedisConfig `envPrefix:"REDIS_"`
}

// Sanitize applies guardrails and fills in the default file location.
func (c *StorageConfig) Sanitize() {
	if c.Mode == "" {
		c.Mode = StorageModeFile
	}
	if c.FilePath == "" {
		c.FilePath = defaultSessionPath()
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "portal", "session.json")
}
