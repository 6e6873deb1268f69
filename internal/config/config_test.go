package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Matrix.Rows)
	assert.Equal(t, 3, cfg.Matrix.Cols)
	assert.Equal(t, 7, cfg.Matrix.MaxSize)
	assert.Equal(t, 10, cfg.Entry.MaxLength)
	assert.True(t, cfg.Entry.Deferred)
	assert.Equal(t, "Eigen", cfg.Decomposition)
	assert.True(t, cfg.UI.Splash)
	assert.Equal(t, 12, cfg.UI.CellWidth)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "eigen.log", cfg.Log.File)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
matrix:
  rows: 2
  cols: 5
entry:
  deferred: false
decomposition: Cholesky
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Matrix.Rows)
	assert.Equal(t, 5, cfg.Matrix.Cols)
	assert.False(t, cfg.Entry.Deferred)
	assert.Equal(t, "Cholesky", cfg.Decomposition)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 7, cfg.Matrix.MaxSize)
	assert.Equal(t, 10, cfg.Entry.MaxLength)
}

func TestLoadExplicitFile(t *testing.T) {
	chdirTemp(t)
	path := filepath.Join(t.TempDir(), "eigen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  splash: false\n"), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.False(t, cfg.UI.Splash)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
matrix:
  rows: 2
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("EIGEN_MATRIX_ROWS", "6")
	t.Setenv("EIGEN_LOG_LEVEL", "warn")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, 6, cfg.Matrix.Rows)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("EIGEN_MATRIX_COLS", "2")

	flags := pflag.NewFlagSet("eigen", pflag.ContinueOnError)
	flags.Int("rows", 3, "")
	flags.Int("cols", 3, "")
	require.NoError(t, flags.Parse([]string{"--cols", "4"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Matrix.Cols)
	// Unchanged flags do not shadow defaults
	assert.Equal(t, 3, cfg.Matrix.Rows)
}

func TestValidate(t *testing.T) {
	chdirTemp(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)

	cfg.Matrix.Rows = 8
	cfg.Entry.MaxLength = 0
	cfg.Decomposition = "Schur"

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matrix.rows")
	assert.Contains(t, err.Error(), "entry.max_length")
	assert.Contains(t, err.Error(), "decomposition")
	assert.NotContains(t, err.Error(), "matrix.cols")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eigen.log")
	err := InitLogger(LogConfig{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	zap.L().Info("hello")
	_ = zap.L().Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"hello"`)
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
