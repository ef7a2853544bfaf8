package config

import (
	"fmt"
	"time"
)

const (
	RateStoreMemory = "memory"
	RateStoreRedis  = "redis"
)

// SOSConfig tunes the alert pipeline: the per-origin limiter and the
// notification fan-out deadlines.
type SOSConfig struct {
	RateWindow       time.Duration `yaml:"rate_window"`
	RateMax          int           `yaml:"rate_max"`
	RateStore        string        `yaml:"rate_store"`
	SweepSchedule    string        `yaml:"sweep_schedule"`
	SendTimeout      time.Duration `yaml:"send_timeout"`
	DispatchTimeout  time.Duration `yaml:"dispatch_timeout"`
	MaxParallelSends int           `yaml:"max_parallel_sends"`
	MapURL           string        `yaml:"map_url"`
	GeocodeTimeout   time.Duration `yaml:"geocode_timeout"`
}

func loadSOSConfig() *SOSConfig {
	return &SOSConfig{
		RateWindow:       getEnvAsDuration("SOS_RATE_WINDOW", 15*time.Minute),
		RateMax:          getEnvAsInt("SOS_RATE_MAX", 3),
		RateStore:        getEnv("SOS_RATE_STORE", RateStoreMemory),
		SweepSchedule:    getEnv("SOS_SWEEP_SCHEDULE", "@every 5m"),
		SendTimeout:      getEnvAsDuration("SOS_SEND_TIMEOUT", 5*time.Second),
		DispatchTimeout:  getEnvAsDuration("SOS_DISPATCH_TIMEOUT", 20*time.Second),
		MaxParallelSends: getEnvAsInt("SOS_MAX_PARALLEL_SENDS", 8),
		MapURL:           getEnv("SOS_MAP_URL", "https://www.google.com/maps"),
		GeocodeTimeout:   getEnvAsDuration("SOS_GEOCODE_TIMEOUT", 2*time.Second),
	}
}

func (c *SOSConfig) Validate() error {
	if c.RateWindow <= 0 {
		return fmt.Errorf("SOS_RATE_WINDOW must be positive")
	}
	if c.RateMax <= 0 {
		return fmt.Errorf("SOS_RATE_MAX must be positive")
	}
	if c.RateStore != RateStoreMemory && c.RateStore != RateStoreRedis {
		return fmt.Errorf("unsupported SOS_RATE_STORE %q", c.RateStore)
	}
	if c.SendTimeout <= 0 || c.DispatchTimeout <= 0 {
		return fmt.Errorf("SOS send and dispatch timeouts must be positive")
	}
	if c.MaxParallelSends <= 0 {
		return fmt.Errorf("SOS_MAX_PARALLEL_SENDS must be positive")
	}
	return nil
}
