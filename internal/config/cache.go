package config

import (
	"os"
	"strconv"
	"time"
)

// CacheConfig defines settings for the catalog read cache. When Enabled is
// false or no Redis client is configured, services skip the cache entirely
// and read straight from the database. TTL bounds how long a serialized
// listing or tree stays valid; Prefix namespaces the keys so several
// deployments can share one Redis instance.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: getenv("CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("CACHE_TTL", "1h")),
		Prefix:  getenv("CACHE_PREFIX", "babyshop"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Hour
	}
	return d
}
