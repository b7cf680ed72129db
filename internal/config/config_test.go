package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/drivesync/internal/config"
)

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.At)
	assert.Nil(t, cfg.Defaults.BWLimit)
	assert.Nil(t, cfg.Defaults.Quiet)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "drivesync")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := `
[defaults]
at = "03:30"
bwlimit = "50M"
copy_milestone = 250
skip_milestone = 5000
quiet = true
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.At)
	assert.Equal(t, "03:30", *cfg.Defaults.At)

	require.NotNil(t, cfg.Defaults.BWLimit)
	assert.Equal(t, "50M", *cfg.Defaults.BWLimit)

	require.NotNil(t, cfg.Defaults.CopyMilestone)
	assert.Equal(t, int64(250), *cfg.Defaults.CopyMilestone)

	require.NotNil(t, cfg.Defaults.SkipMilestone)
	assert.Equal(t, int64(5000), *cfg.Defaults.SkipMilestone)

	require.NotNil(t, cfg.Defaults.Quiet)
	assert.True(t, *cfg.Defaults.Quiet)
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "drivesync")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := `
[defaults]
at = "23:00"
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.At)
	assert.Equal(t, "23:00", *cfg.Defaults.At)

	// Unset fields remain nil.
	assert.Nil(t, cfg.Defaults.BWLimit)
	assert.Nil(t, cfg.Defaults.CopyMilestone)
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "drivesync")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("invalid [[["), 0o644))

	_, err := config.Load()
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/drivesync/config.toml", config.Path())
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "100", want: 100},
		{in: "100B", want: 100},
		{in: "1K", want: 1024},
		{in: "1k", want: 1024},
		{in: "100M", want: 100 * 1024 * 1024},
		{in: "2G", want: 2 * 1024 * 1024 * 1024},
		{in: "1T", want: 1024 * 1024 * 1024 * 1024},
		{in: "1.5K", want: 1536},
		{in: " 10M ", want: 10 * 1024 * 1024},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "M", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := config.ParseSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
