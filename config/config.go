// Package config resolves the settings for a session once at start-up.
//
// Values are layered, later sources winning: built-in defaults, the YAML
// config file, a .env file, DATISESSION_* environment variables, and finally
// command-line flags that were set explicitly.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Atrox/homedir"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DATISESSION_"

// Token store kinds.
const (
	StoreFile       = "file"
	StoreKubeconfig = "kubeconfig"
	StoreRedis      = "redis"
	StoreMemory     = "memory"
)

// Config holds everything needed to build a session manager.
type Config struct {
	BaseURL         string        `koanf:"base-url"`
	Timeout         time.Duration `koanf:"timeout"`
	TokenStore      string        `koanf:"token-store"`
	TokenPath       string        `koanf:"token-path"`
	Kubeconfig      string        `koanf:"kubeconfig"`
	KubeUser        string        `koanf:"kube-user"`
	RedisURL        string        `koanf:"redis-url"`
	RedisKey        string        `koanf:"redis-key"`
	RedisTTL        time.Duration `koanf:"redis-ttl"`
	EvictStaleToken bool          `koanf:"evict-stale-token"`
	LogLevel        string        `koanf:"log-level"`
	LogFormat       string        `koanf:"log-format"`
	Verbose         bool          `koanf:"verbose"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		BaseURL:    "http://localhost:3000",
		Timeout:    15 * time.Second,
		TokenStore: StoreFile,
		KubeUser:   "datica",
		RedisKey:   "datisession:token",
		LogLevel:   "warn",
		LogFormat:  "text",
	}
}

// DefaultFile returns $XDG_CONFIG_HOME/datisession/config.yaml, falling back to ~/.config.
func DefaultFile() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := homedir.Dir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "datisession", "config.yaml")
}

// Load resolves the configuration. configFile may be empty, in which case
// DefaultFile is read if it exists. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS").Wrap(err)
	}

	explicit := configFile != ""
	if !explicit {
		configFile = DefaultFile()
	}
	if configFile != "" {
		path, err := homedir.Expand(configFile)
		if err != nil {
			return nil, oops.Code("CONFIG_FILE").With("path", configFile).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, oops.Code("CONFIG_FILE").With("path", path).Wrap(err)
			}
		}
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS").Wrap(err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_DECODE").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps DATISESSION_BASE_URL to base-url.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", "-")
}

// Validate checks that the configuration can build a working session manager.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("base-url", c.BaseURL).Wrap(err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return oops.Code("CONFIG_INVALID").With("base-url", c.BaseURL).
			Errorf("base-url must be an absolute http(s) URL")
	}
	if c.Timeout <= 0 {
		return oops.Code("CONFIG_INVALID").With("timeout", c.Timeout.String()).
			Errorf("timeout must be positive")
	}
	switch c.TokenStore {
	case StoreFile, StoreKubeconfig, StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return oops.Code("CONFIG_INVALID").Errorf("redis-url is required for the redis token store")
		}
	default:
		return oops.Code("CONFIG_INVALID").With("token-store", c.TokenStore).
			Errorf("unknown token store %q", c.TokenStore)
	}
	return nil
}

// String renders the configuration without secrets, for verbose output.
func (c *Config) String() string {
	return fmt.Sprintf("base-url=%s token-store=%s timeout=%s evict-stale-token=%t",
		c.BaseURL, c.TokenStore, c.Timeout, c.EvictStaleToken)
}
