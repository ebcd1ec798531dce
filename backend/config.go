package main

import (
	"os"
	"sync"

	"github.com/inarow/inarow/engine"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel         string              `json:"log_level" yaml:"log_level"`
	LogSearchStats   bool                `json:"log_search_stats" yaml:"log_search_stats"`
	TickIntervalMs   int                 `json:"tick_interval_ms" yaml:"tick_interval_ms"`
	AiMaxDepth       int                 `json:"ai_max_depth" yaml:"ai_max_depth"` // 0 keeps the difficulty's depth
	AiCacheCapacity  int                 `json:"ai_cache_capacity" yaml:"ai_cache_capacity"`
	ZobristSeed      uint64              `json:"zobrist_seed" yaml:"zobrist_seed"` // 0 draws a random table per match
	ShutdownTimeoutS int                 `json:"shutdown_timeout_s" yaml:"shutdown_timeout_s"`
	Heuristics       engine.ShapeWeights `json:"heuristics" yaml:"heuristics"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		LogLevel:       "info",
		LogSearchStats: false,
		TickIntervalMs: 50,

		// Difficulty decides the depth unless this is set.
		AiMaxDepth:      0,
		AiCacheCapacity: engine.DefaultCacheCapacity,

		ZobristSeed:      0,
		ShutdownTimeoutS: 5,
		Heuristics:       engine.DefaultShapeWeights(),
	}
}

func (c Config) Validate() error {
	if c.TickIntervalMs <= 0 {
		return errors.Errorf("tick_interval_ms must be positive, got %d", c.TickIntervalMs)
	}
	if c.AiMaxDepth < 0 {
		return errors.Errorf("ai_max_depth must not be negative, got %d", c.AiMaxDepth)
	}
	if c.AiCacheCapacity <= 0 {
		return errors.Errorf("ai_cache_capacity must be positive, got %d", c.AiCacheCapacity)
	}
	return errors.Wrap(c.Heuristics.Validate(), "heuristics")
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default value.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "parse config %s", path)
	}
	if err := config.Validate(); err != nil {
		return config, errors.Wrapf(err, "config %s", path)
	}
	return config, nil
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}
