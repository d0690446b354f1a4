package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OliveiraNt/polyglot/internal/catalog"
	"github.com/OliveiraNt/polyglot/internal/domain"
	"github.com/OliveiraNt/polyglot/internal/testutil"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/stretchr/testify/require"
)

func init() {
	utils.InitLogger()
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		checkFormat = "text"
		configPath = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheck_Text(t *testing.T) {
	manifest := testutil.WriteDefaultTree(t)

	out, err := runRoot(t, "check", manifest, "--format", "text")
	require.NoError(t, err)
	require.Contains(t, out, "manifest: "+manifest+"\n")
	require.Contains(t, out, "default: en_us (4 keys)")
	require.Contains(t, out, "CODE")
	require.Regexp(t, `pt_br\s+Português \(Brasil\)\s+2\s+2\s+1\s+50\.0%`, out)
	require.Regexp(t, `de_de\s+Deutsch\s+1\s+3\s+0\s+25\.0%`, out)
	require.NotContains(t, out, "xx_pirate")
}

func TestCheck_JSON(t *testing.T) {
	manifest := testutil.WriteDefaultTree(t)

	out, err := runRoot(t, "check", manifest, "-f", "json")
	require.NoError(t, err)

	var report domain.StatusReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, "en_us", report.Default)
	require.Len(t, report.Languages, 3)
	require.Equal(t, []string{"legacy"}, report.Languages[1].ExtraKeys)
}

func TestCheck_Markdown(t *testing.T) {
	manifest := testutil.WriteDefaultTree(t)

	out, err := runRoot(t, "check", manifest, "--format", "markdown")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "# Translation status"))
	require.Contains(t, out, "| `pt_br` | Português (Brasil) | 2 | 2 | 1 | 50.0% |")
	require.Contains(t, out, "## Missing in `de_de`")
	require.Contains(t, out, "- `kick.success`")
	require.NotContains(t, out, "## Missing in `en_us`")
}

func TestCheck_InvalidManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "language.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{"en": {"enabled": true, "name": "English", "location": "en"}}`), 0o644))

	_, err := runRoot(t, "check", manifest)
	require.ErrorIs(t, err, catalog.ErrNoDefault)
	require.ErrorContains(t, err, manifest)
}

func TestCheck_UnknownFormat(t *testing.T) {
	manifest := testutil.WriteDefaultTree(t)

	_, err := runRoot(t, "check", manifest, "--format", "xml")
	require.ErrorContains(t, err, `unknown format "xml"`)
}

func TestCheck_ManifestFromConfig(t *testing.T) {
	manifest := testutil.WriteDefaultTree(t)
	cfgPath := filepath.Join(t.TempDir(), "polyglot.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("manifest: "+manifest+"\n"), 0o644))

	out, err := runRoot(t, "--config", cfgPath, "check", "--format", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"default": "en_us"`)
}
