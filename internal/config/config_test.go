package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultSuitesDir, cfg.SuitesDir)
	assert.Equal(t, DefaultSuitePattern, cfg.SuitePattern)
	assert.Equal(t, "**/*", cfg.SuitePattern)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultRetention, cfg.Retention)
	assert.Equal(t, DefaultBench.Iterations, cfg.Bench.Iterations)
	assert.Equal(t, DefaultBench.MinTime, cfg.Bench.MinTime)
	assert.Equal(t, DefaultStress, cfg.Stress)
	assert.Equal(t, DefaultOutput, cfg.Output)
}

func TestLoadFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
suites_dir: ~/logs
db_path: /tmp/results.db
bench:
  iterations: 3
  min_time: 2s
  exclude: ["long"]
stress:
  workers: 2
output:
  color: false
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "logs"), cfg.SuitesDir)
	assert.Equal(t, "/tmp/results.db", cfg.DBPath)
	assert.Equal(t, 3, cfg.Bench.Iterations)
	assert.Equal(t, 2*time.Second, cfg.Bench.MinTime)
	assert.Equal(t, []string{"long"}, cfg.Bench.Exclude)
	assert.Equal(t, 2, cfg.Stress.Workers)
	assert.Equal(t, DefaultStress.Duration, cfg.Stress.Duration)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PATHNORM_BENCH_ITERATIONS", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Bench.Iterations)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := Load(writeConfig(t, "output:\n  format: xml\n"))
	assert.ErrorContains(t, err, "output.format")

	_, err = Load(writeConfig(t, "bench:\n  iterations: 0\n"))
	assert.ErrorContains(t, err, "bench.iterations")

	_, err = Load(writeConfig(t, "suites_dir: [unterminated\n"))
	assert.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
}
