package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cthulhu-project/cthulhu/internal/config"
)

func TestLoadParsesDriversAndRoots(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cthulhu.yaml")
	doc := "drivers:\n  - id: demo\n    roots: [src, vendor/demo]\n  - id: other\n    roots: [lib]\nstdlibPreamble: true\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, []string{"demo", "other"}, cfg.DriverIDs())
	require.Equal(t, []string{"src", "vendor/demo", "lib"}, cfg.Roots())
	require.True(t, cfg.StdlibPreamble)
}

func TestLoadReportsMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
