package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "/", cfg.Root)
	assert.Equal(t, &Range{Start: 0, End: 65535}, cfg.Range)
	assert.Equal(t, "/usr/bin/nologin", cfg.Shells.NoLogin)
	assert.True(t, *cfg.Color)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lusers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
root: /mnt/image
rule_dirs: [/etc/sysusers.d]
range:
  start: 100
  end: 999
shells:
  nologin: /sbin/nologin
journal_dir: /var/lib/lusers
color: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/image", cfg.Root)
	assert.Equal(t, []string{"/etc/sysusers.d"}, cfg.RuleDirs)
	assert.Equal(t, &Range{Start: 100, End: 999}, cfg.Range)
	assert.Equal(t, "/bin/sh", cfg.Shells.Root)
	assert.Equal(t, "/sbin/nologin", cfg.Shells.NoLogin)
	assert.Equal(t, "/var/lib/lusers", cfg.JournalDir)
	assert.False(t, *cfg.Color)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("range: [1, 2"), 0o644))
	_, err := Load(bad)
	require.Error(t, err)

	inverted := filepath.Join(dir, "inverted.yaml")
	require.NoError(t, os.WriteFile(inverted, []byte("range: {start: 10, end: 5}\n"), 0o644))
	_, err = Load(inverted)
	require.ErrorContains(t, err, "above end")
}
