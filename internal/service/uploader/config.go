package uploader

import (
	"github.com/cenkalti/backoff/v4"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/spf13/viper"
	"time"
)

type Config struct {
	DefaultChunkSize   int
	MaxChunkSize       int
	DefaultConcurrency int
	MaxConcurrency     int
	// RequestsPerSecond bounds insert attempts across all workers; 0 disables it.
	RequestsPerSecond int
	MaxAttempts       int
	ProgressInterval  time.Duration
	NewBackOff        func() backoff.BackOff
}

func DefaultConfig() Config {
	return Config{
		DefaultChunkSize:   5000,
		MaxChunkSize:       5000,
		DefaultConcurrency: 4,
		MaxConcurrency:     16,
		RequestsPerSecond:  20,
		MaxAttempts:        3,
		ProgressInterval:   120 * time.Millisecond,
		NewBackOff:         defaultBackOff,
	}
}

func ConfigFromViper() Config {
	cfg := DefaultConfig()
	cfg.DefaultChunkSize = viper.GetInt(constants.ViperUploadChunkSize)
	cfg.MaxChunkSize = viper.GetInt(constants.ViperUploadMaxChunkSize)
	cfg.DefaultConcurrency = viper.GetInt(constants.ViperUploadConcurrency)
	cfg.MaxConcurrency = viper.GetInt(constants.ViperUploadMaxConcurrency)
	cfg.RequestsPerSecond = viper.GetInt(constants.ViperUploadRequestsPerSecond)
	cfg.MaxAttempts = viper.GetInt(constants.ViperUploadMaxAttempts)
	return cfg
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.RandomizationFactor = 0.5
	b.Multiplier = 2
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// ChunkSize is the effective chunk size for a requested one.
func (c Config) ChunkSize(requested int) int {
	size := requested
	if size <= 0 {
		size = c.DefaultChunkSize
	}
	if c.MaxChunkSize > 0 && size > c.MaxChunkSize {
		size = c.MaxChunkSize
	}
	return max(size, 1)
}

func (c Config) concurrency(requested int) int {
	n := requested
	if n <= 0 {
		n = c.DefaultConcurrency
	}
	if c.MaxConcurrency > 0 && n > c.MaxConcurrency {
		n = c.MaxConcurrency
	}
	return max(n, 1)
}

func (c Config) retries() uint64 {
	if c.MaxAttempts <= 1 {
		return 0
	}
	return uint64(c.MaxAttempts - 1)
}
