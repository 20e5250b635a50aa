package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	song := filepath.Join(dir, "tune.XM")
	require.NoError(t, os.WriteFile(song, nil, 0o644))

	require.NoError(t, validatePath(song))
	require.ErrorContains(t, validatePath(filepath.Join(dir, "tune.txt")), "extensions")
	require.ErrorContains(t, validatePath(filepath.Join(dir, "missing.mod")), "cannot stat")
}

func TestLoadConfigFile(t *testing.T) {
	logger, _ = test.NewNullLogger()

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sfx_voices: 4\n"), 0o644))
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.SfxVoices)

	_, err = loadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
}
