// Package config holds the runtime knobs for a training run, loadable
// from a YAML file with command-line overrides on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Optimizer names accepted by the trainer.
const (
	OptimizerSGD  = "sgd"
	OptimizerAdam = "adam"
)

// Config captures the knobs for one training run.
type Config struct {
	Dataset     string  `yaml:"dataset"`     // "mnist" or "fashion"
	DataDir     string  `yaml:"data_dir"`    // cache directory for IDX files
	Epochs      int     `yaml:"epochs"`      // full passes over the training set
	BatchSize   int     `yaml:"batch_size"`  // samples per update step
	Optimizer   string  `yaml:"optimizer"`   // "sgd" or "adam"
	LR          float32 `yaml:"lr"`          // learning rate
	Momentum    float32 `yaml:"momentum"`    // SGD momentum, ignored by Adam
	Hidden      []int   `yaml:"hidden"`      // hidden layer sizes
	ValRatio    float32 `yaml:"val_ratio"`   // fraction of train split held out
	Seed        int64   `yaml:"seed"`        // shuffle seed
	Standardize bool    `yaml:"standardize"` // mean/std normalization after [0,1] scaling
	Checkpoint  string  `yaml:"checkpoint"`  // output path for the trained model
}

// Default returns the tutorial defaults: the classic digits lesson
// with the 784-128-64-10 network and plain SGD.
func Default() *Config {
	return &Config{
		Dataset:     "mnist",
		DataDir:     "data",
		Epochs:      5,
		BatchSize:   64,
		Optimizer:   OptimizerSGD,
		LR:          0.003,
		Momentum:    0.9,
		Hidden:      []int{128, 64},
		ValRatio:    0.2,
		Seed:        42,
		Standardize: true,
		Checkpoint:  "model.born",
	}
}

// Load reads a YAML config file on top of the defaults and validates
// the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overrides captures CLI-supplied values. Zero values mean "keep the
// config file / default value".
type Overrides struct {
	Dataset    string
	DataDir    string
	Epochs     int
	BatchSize  int
	Optimizer  string
	LR         float64
	Seed       int64
	Hidden     []int
	Checkpoint string
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Dataset != "" {
		c.Dataset = o.Dataset
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Optimizer != "" {
		c.Optimizer = o.Optimizer
	}
	if o.LR > 0 {
		c.LR = float32(o.LR)
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if len(o.Hidden) > 0 {
		c.Hidden = o.Hidden
	}
	if o.Checkpoint != "" {
		c.Checkpoint = o.Checkpoint
	}
}

// Validate rejects configs the trainer cannot run.
func (c *Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0, got %d", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0, got %d", c.BatchSize)
	}
	if c.LR <= 0 {
		return fmt.Errorf("lr must be > 0, got %g", c.LR)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("momentum must be in [0, 1), got %g", c.Momentum)
	}
	if c.ValRatio < 0 || c.ValRatio >= 1 {
		return fmt.Errorf("val_ratio must be in [0, 1), got %g", c.ValRatio)
	}
	if c.Optimizer != OptimizerSGD && c.Optimizer != OptimizerAdam {
		return fmt.Errorf("optimizer must be %q or %q, got %q", OptimizerSGD, OptimizerAdam, c.Optimizer)
	}
	for _, h := range c.Hidden {
		if h <= 0 {
			return fmt.Errorf("hidden layer sizes must be > 0, got %d", h)
		}
	}
	return nil
}
