package api

import "time"

// DefaultMaxNumber bounds encoding when Config.MaxNumber is unset. Its
// numeral is 100 characters long.
const DefaultMaxNumber = 100000

// Config holds server configuration.
type Config struct {
	Port           int
	Version        string
	CacheTTL       time.Duration // Lifetime of memoised conversions (0 = disabled)
	CacheSize      int           // Maximum memoised conversions (0 = unbounded)
	MaxBatchBytes  int64         // Maximum POST /batch body size
	MaxNumber      int           // Largest integer encoded (0 = DefaultMaxNumber)
	BatchWorkers   int           // Concurrent conversions per batch (0 = GOMAXPROCS)
	AllowedOrigins []string      // CORS allowed origins (empty = allow all)
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Port:          8080,
		Version:       "dev",
		CacheTTL:      10 * time.Minute,
		CacheSize:     10000,
		MaxBatchBytes: 1 << 20,
		MaxNumber:     DefaultMaxNumber,
	}
}
