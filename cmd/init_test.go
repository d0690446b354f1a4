package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OliveiraNt/polyglot/internal/config"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polyglot.yml")
	t.Cleanup(func() { initForce = false })

	out, err := runRoot(t, "init", path)
	require.NoError(t, err)
	require.Contains(t, out, "wrote "+path)

	cfg, err := config.ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, config.Defaults().Manifest, cfg.Manifest)
	require.Equal(t, config.Defaults().HTTP.Addr, cfg.HTTP.Addr)
	require.Equal(t, config.Defaults().Kafka.Topic, cfg.Kafka.Topic)
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polyglot.yml")
	require.NoError(t, os.WriteFile(path, []byte("manifest: mine.json\n"), 0o644))
	t.Cleanup(func() { initForce = false })

	_, err := runRoot(t, "init", path)
	require.ErrorContains(t, err, "already exists")

	cfg, err := config.ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "mine.json", cfg.Manifest)

	_, err = runRoot(t, "init", path, "--force")
	require.NoError(t, err)
	cfg, err = config.ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "language.json", cfg.Manifest)
}
