package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
dataset: fashion
epochs: 12
batch_size: 128
optimizer: adam
lr: 0.001
hidden: [256, 128]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fashion", cfg.Dataset)
	assert.Equal(t, 12, cfg.Epochs)
	assert.Equal(t, 128, cfg.BatchSize)
	assert.Equal(t, OptimizerAdam, cfg.Optimizer)
	assert.Equal(t, []int{256, 128}, cfg.Hidden)

	// Unset keys keep their defaults.
	assert.Equal(t, Default().ValRatio, cfg.ValRatio)
	assert.Equal(t, Default().Seed, cfg.Seed)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero epochs", "epochs: 0"},
		{"negative lr", "lr: -0.5"},
		{"bad optimizer", "optimizer: rmsprop"},
		{"momentum out of range", "momentum: 1.5"},
		{"val ratio out of range", "val_ratio: 1.0"},
		{"bad hidden size", "hidden: [128, 0]"},
		{"not yaml", ":\t{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{
		Dataset:   "fashion",
		Epochs:    3,
		Optimizer: OptimizerAdam,
		LR:        0.01,
		Hidden:    []int{32},
	})

	assert.Equal(t, "fashion", cfg.Dataset)
	assert.Equal(t, 3, cfg.Epochs)
	assert.Equal(t, OptimizerAdam, cfg.Optimizer)
	assert.Equal(t, float32(0.01), cfg.LR)
	assert.Equal(t, []int{32}, cfg.Hidden)

	// Zero-valued overrides leave the config untouched.
	before := *cfg
	cfg.ApplyOverrides(Overrides{})
	assert.Equal(t, before.Dataset, cfg.Dataset)
	assert.Equal(t, before.Epochs, cfg.Epochs)
	assert.Equal(t, before.LR, cfg.LR)
}
