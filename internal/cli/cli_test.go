package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmviz/kmviz/internal/config"
	"github.com/kmviz/kmviz/internal/visualize"
)

func TestOptions_Load(t *testing.T) {
	t.Setenv("KMVIZ_CONFIG", "")
	t.Setenv("KMVIZ_DATASET_PATH", "env.bin")

	var stderr bytes.Buffer
	fs, opts := NewFlagSet("show", &stderr)
	fs.StringVar(&opts.Sink, "sink", "", "")
	require.NoError(t, fs.Parse([]string{"-centroids", "c.bin", "-sink", "file", "-byte-order", "little"}))

	cfg, err := opts.Load()
	require.NoError(t, err)
	assert.Equal(t, "env.bin", cfg.DatasetPath)
	assert.Equal(t, "c.bin", cfg.CentroidPath)
	assert.Equal(t, config.SinkFile, cfg.Render.Sink)
	assert.Equal(t, "little", cfg.ByteOrder)
}

func TestOptions_LoadFlagBeatsEnv(t *testing.T) {
	t.Setenv("KMVIZ_CONFIG", "")
	t.Setenv("KMVIZ_DATASET_PATH", "env.bin")

	opts := &Options{DatasetPath: "flag.bin"}
	cfg, err := opts.Load()
	require.NoError(t, err)
	assert.Equal(t, "flag.bin", cfg.DatasetPath)
}

func TestOptions_LoadMissingConfigFile(t *testing.T) {
	opts := &Options{ConfigPath: filepath.Join(t.TempDir(), "nope.toml")}
	_, err := opts.Load()
	assert.Error(t, err)
}

func TestExecute(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.TextfilePath = filepath.Join(t.TempDir(), "kmviz.prom")

	var stderr bytes.Buffer
	called := false
	code := Execute(cfg, visualize.Deps{}, &stderr, func(ctx context.Context, cfg *config.Config, deps visualize.Deps) error {
		called = true
		assert.NotNil(t, deps.Logger)
		return nil
	})
	assert.Equal(t, 0, code)
	assert.True(t, called)

	data, err := os.ReadFile(cfg.Metrics.TextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "go_goroutines")
}

func TestExecute_Error(t *testing.T) {
	var stderr bytes.Buffer
	code := Execute(config.Default(), visualize.Deps{}, &stderr, func(context.Context, *config.Config, visualize.Deps) error {
		return errors.New("file not found or size mismatch")
	})
	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: file not found or size mismatch\n", stderr.String())
}

func TestExecute_BadLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "loud"

	var stderr bytes.Buffer
	code := Execute(cfg, visualize.Deps{}, &stderr, func(context.Context, *config.Config, visualize.Deps) error {
		t.Fatal("should not run")
		return nil
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: unknown log level")
}

func TestParse(t *testing.T) {
	var stderr bytes.Buffer

	fs, _ := NewFlagSet("inspect", &stderr)
	code, ok := Parse(fs, []string{"-dataset", "x.bin"})
	assert.True(t, ok)
	assert.Equal(t, 0, code)

	fs, _ = NewFlagSet("inspect", &stderr)
	code, ok = Parse(fs, []string{"-h"})
	assert.False(t, ok)
	assert.Equal(t, 0, code)

	fs, _ = NewFlagSet("inspect", &stderr)
	code, ok = Parse(fs, []string{"-nope"})
	assert.False(t, ok)
	assert.Equal(t, 1, code)
}
