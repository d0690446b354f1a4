package repository

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/OliveiraNt/polyglot/internal/catalog"
	"github.com/OliveiraNt/polyglot/internal/domain"
	"github.com/OliveiraNt/polyglot/internal/testutil"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/stretchr/testify/require"
)

func init() {
	utils.InitLogger()
}

func TestLoadFromFile(t *testing.T) {
	path := testutil.WriteDefaultTree(t)
	repo := NewCatalogRepository(path)
	require.Nil(t, repo.Current())

	var events []domain.ReloadEvent
	repo.Subscribe(func(ev domain.ReloadEvent) { events = append(events, ev) })

	require.NoError(t, repo.LoadFromFile())
	require.NoError(t, repo.LastError())

	c := repo.Current()
	require.NotNil(t, c)
	require.Equal(t, "en_us", c.DefaultCode())
	require.Equal(t, []string{"en_us", "pt_br", "de_de"}, c.ListEnabled())

	require.Len(t, events, 1)
	require.Equal(t, "en_us", events[0].Default)
	require.Equal(t, []string{"en_us", "pt_br", "de_de"}, events[0].Languages)
	require.Equal(t, path, events[0].Manifest)
	require.NotEmpty(t, events[0].ID)
}

func TestLoadFromFile_FailureKeepsPreviousCatalog(t *testing.T) {
	path := testutil.WriteDefaultTree(t)
	repo := NewCatalogRepository(path)
	require.NoError(t, repo.LoadFromFile())
	before := repo.Current()

	notified := 0
	repo.Subscribe(func(domain.ReloadEvent) { notified++ })

	require.NoError(t, os.WriteFile(path, []byte(`{"en_us": {"enabled": true}}`), 0o644))
	err := repo.LoadFromFile()
	require.ErrorIs(t, err, catalog.ErrInvalidEntry)
	require.ErrorIs(t, repo.LastError(), catalog.ErrInvalidEntry)

	require.Same(t, before, repo.Current())
	require.Zero(t, notified)
}

func TestLoadFromFile_MissingManifest(t *testing.T) {
	repo := NewCatalogRepository(filepath.Join(t.TempDir(), "language.json"))
	require.ErrorIs(t, repo.LoadFromFile(), catalog.ErrMalformed)
	require.Nil(t, repo.Current())
}

func TestRefreshWatchSet(t *testing.T) {
	path := testutil.WriteDefaultTree(t)
	repo := NewCatalogRepository(path)
	require.NoError(t, repo.LoadFromFile())

	dir := filepath.Dir(path)
	require.True(t, repo.relevant(path))
	require.True(t, repo.relevant(filepath.Join(dir, "languages/en_us/new.json")))
	require.True(t, repo.relevant(filepath.Join(dir, "languages/de_de/main.json")))
	require.False(t, repo.relevant(filepath.Join(dir, "languages/de_de/other.json")))
	require.False(t, repo.relevant(filepath.Join(dir, "languages/pirate/x.json")))
	require.False(t, repo.relevant(filepath.Join(dir, "README.md")))
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := testutil.WriteDefaultTree(t)
	repo := NewCatalogRepository(path)
	require.NoError(t, repo.LoadFromFile())
	require.NoError(t, repo.Watch())
	t.Cleanup(func() { _ = repo.Close() })

	var mu sync.Mutex
	var events []domain.ReloadEvent
	repo.Subscribe(func(ev domain.ReloadEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})

	msgFile := filepath.Join(filepath.Dir(path), "languages/pt_br/fun.json")
	require.NoError(t, os.WriteFile(msgFile, []byte(`{"greeting": "olá"}`), 0o644))

	require.Eventually(t, func() bool {
		b, ok := repo.Current().Get("pt_br")
		if !ok {
			return false
		}
		v, _ := b.Get("greeting")
		return v == "olá"
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, events)
}

func TestWatch_ManifestChangeAddsLanguage(t *testing.T) {
	path := testutil.WriteDefaultTree(t)
	repo := NewCatalogRepository(path)
	require.NoError(t, repo.LoadFromFile())
	require.NoError(t, repo.Watch())
	t.Cleanup(func() { _ = repo.Close() })

	dir := filepath.Dir(path)
	testutil.WriteTree(t, dir, map[string]string{"languages/fr_fr/a.json": `{"greeting": "salut"}`})
	require.NoError(t, os.WriteFile(path, []byte(`{
  "en_us": {"is_default": true, "enabled": true, "name": "English", "location": "languages/en_us"},
  "fr_fr": {"enabled": true, "name": "Français", "location": "languages/fr_fr"}
}`), 0o644))

	require.Eventually(t, func() bool {
		_, ok := repo.Current().Get("fr_fr")
		return ok
	}, 5*time.Second, 50*time.Millisecond)
	require.Equal(t, []string{"en_us", "fr_fr"}, repo.Current().ListEnabled())
	require.True(t, repo.relevant(filepath.Join(dir, "languages/fr_fr/b.json")))
}

func TestClose_Idempotent(t *testing.T) {
	repo := NewCatalogRepository(testutil.WriteDefaultTree(t))
	require.NoError(t, repo.Close())
	require.NoError(t, repo.Watch())
	require.NoError(t, repo.Close())
	require.NoError(t, repo.Close())
}

func TestWatch_Twice(t *testing.T) {
	repo := NewCatalogRepository(testutil.WriteDefaultTree(t))
	require.NoError(t, repo.LoadFromFile())
	require.NoError(t, repo.Watch())
	t.Cleanup(func() { _ = repo.Close() })

	first := repo.watcher
	require.ErrorIs(t, repo.Watch(), ErrAlreadyWatching)
	require.Same(t, first, repo.watcher)

	require.NoError(t, repo.Close())
	require.NoError(t, repo.Watch())
}
