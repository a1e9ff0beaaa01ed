package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/vehicle-tco/internal/config"
	"github.com/iwvelando/vehicle-tco/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// Environment variables that override the server config file.
const (
	EnvAddress   = "VTCO_ADDRESS"
	EnvRedisAddr = "VTCO_REDIS_ADDR"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address         string               `yaml:"address"`
	MaxUploadSize   string               `yaml:"maxUploadSize"`
	RateLimit       RateLimitConfig      `yaml:"rateLimit"`
	Cache           CacheConfig          `yaml:"cache"`
	Logging         config.LoggingConfig `yaml:"logging"`
	uploadSizeBytes int64
}

// RateLimitConfig bounds how many requests one client may make per window.
// A non-positive Requests disables rate limiting.
type RateLimitConfig struct {
	Requests int    `yaml:"requests"`
	Window   string `yaml:"window"`
}

// CacheConfig selects where projection results are cached.
type CacheConfig struct {
	Backend   string `yaml:"backend"` // memory, redis, none
	RedisAddr string `yaml:"redisAddr"`
	TTL       string `yaml:"ttl"`

	// MaxEntries bounds the memory backend; non-positive selects the default.
	MaxEntries int `yaml:"maxEntries"`
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   fmt.Sprintf("%d", constants.DefaultMaxUploadSizeBytes),
		Logging:         config.LoggingConfig{},
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read server config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the address and redis settings from the environment.
// Setting a redis address selects the redis cache backend.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if addr, ok := lookup(EnvAddress); ok && strings.TrimSpace(addr) != "" {
		c.Address = strings.TrimSpace(addr)
	}
	if addr, ok := lookup(EnvRedisAddr); ok && strings.TrimSpace(addr) != "" {
		c.Cache.RedisAddr = strings.TrimSpace(addr)
		c.Cache.Backend = CacheBackendRedis
	}
}

// UploadSizeBytes returns the configured upload size in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// RateWindow returns the rate limit refill window.
func (c *Config) RateWindow() time.Duration {
	window, err := time.ParseDuration(strings.TrimSpace(c.RateLimit.Window))
	if err != nil || window <= 0 {
		return time.Duration(constants.DefaultRateWindow) * time.Second
	}
	return window
}

// CacheTTL returns how long cached projections stay valid.
func (c *Config) CacheTTL() time.Duration {
	ttl, err := time.ParseDuration(strings.TrimSpace(c.Cache.TTL))
	if err != nil || ttl <= 0 {
		return time.Duration(constants.DefaultCacheTTL) * time.Second
	}
	return ttl
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = constants.DefaultRateLimit
	}
	if strings.TrimSpace(c.RateLimit.Window) != "" {
		if _, err := time.ParseDuration(strings.TrimSpace(c.RateLimit.Window)); err != nil {
			return fmt.Errorf("invalid rate limit window %q: %w", c.RateLimit.Window, err)
		}
	}

	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = CacheBackendMemory
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if strings.TrimSpace(c.Cache.RedisAddr) == "" {
			return fmt.Errorf("redis cache backend requires redisAddr")
		}
	default:
		return fmt.Errorf("unsupported cache backend %q", c.Cache.Backend)
	}
	if strings.TrimSpace(c.Cache.TTL) != "" {
		if _, err := time.ParseDuration(strings.TrimSpace(c.Cache.TTL)); err != nil {
			return fmt.Errorf("invalid cache ttl %q: %w", c.Cache.TTL, err)
		}
	}

	sizeStr := strings.TrimSpace(c.MaxUploadSize)
	if sizeStr == "" {
		c.uploadSizeBytes = constants.DefaultMaxUploadSizeBytes
		c.MaxUploadSize = fmt.Sprintf("%d", constants.DefaultMaxUploadSizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 || (n != 0 && result/multiplier != n) {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
