package xdg_test

import (
	"path/filepath"
	"testing"

	"github.com/programme-lv/kernval/internal/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirsFollowEnvironment(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))

	d := xdg.NewXDGDirs()
	assert.Equal(t, filepath.Join(root, "cache", "kernval", "work", "rvv"), d.WorkDir("rvv"))
	assert.Equal(t, filepath.Join(root, "state", "kernval", "reports"), d.ReportDir())
	assert.Equal(t, filepath.Join(root, "config", "kernval", "catalog.toml"), d.CatalogFile())

	require.NoError(t, d.EnsureDir(d.WorkDir("rvv")))
	assert.DirExists(t, d.WorkDir("rvv"))
}

func TestRelativeXDGValuesAreIgnored(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "relative/cache")

	d := xdg.NewXDGDirs()
	assert.Equal(t, filepath.Join(home, ".cache", "kernval", "work", "rvv"), d.WorkDir("rvv"))
}
