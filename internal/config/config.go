package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Errors
var (
	ErrNoTargetSpecified  = errors.New("must specify either --prefix or --suffix")
	ErrInvalidWordSize    = errors.New("word size must be 12, 15, 18, 21, or 24")
	ErrInvalidThreads     = errors.New("thread count must be a positive integer")
	ErrInvalidBatchSize   = errors.New("batch size must be a positive integer")
	ErrInvalidLogInterval = errors.New("log interval must be a positive integer")
)

// Config holds the application configuration
type Config struct {
	Prefix      string `yaml:"prefix"`
	Suffix      string `yaml:"suffix"`
	WordSize    int    `yaml:"word_size"`
	Threads     int    `yaml:"threads"`
	BatchSize   int    `yaml:"batch_size"`
	LogInterval int    `yaml:"log_interval"` // Progress interval in seconds
	LogFile     string `yaml:"log_file"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		WordSize:    24,
		Threads:     runtime.NumCPU(),
		BatchSize:   1000,
		LogInterval: 2, // Default 2 seconds
	}
}

// Validate validates the configuration. Pattern hex validation happens
// in the match constructors; everything else is checked here.
func (c *Config) Validate() error {
	if c.Prefix == "" && c.Suffix == "" {
		return ErrNoTargetSpecified
	}
	switch c.WordSize {
	case 12, 15, 18, 21, 24:
	default:
		return ErrInvalidWordSize
	}
	if c.Threads <= 0 {
		return ErrInvalidThreads
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.LogInterval <= 0 {
		return ErrInvalidLogInterval
	}
	return nil
}

// LoadFile overlays values from a YAML file onto c. Keys absent from
// the file leave the current values untouched.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
