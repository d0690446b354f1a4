// Package testutil provides test doubles and on-disk language fixtures shared by package tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/OliveiraNt/polyglot/internal/catalog"
	"github.com/OliveiraNt/polyglot/internal/domain"
)

// DefaultManifest declares three enabled languages (en_us default) and one disabled.
const DefaultManifest = `{
  "notes": "test manifest",
  "en_us": {"is_default": true, "enabled": true, "name": "English (US)", "author": "core", "location": "languages/en_us/"},
  "pt_br": {"enabled": true, "name": "Português (Brasil)", "author": "Ana", "location": "languages/pt_br/"},
  "de_de": {"enabled": true, "name": "Deutsch", "location": "languages/de_de/main.json"},
  "xx_pirate": {"enabled": false, "name": "Pirate", "location": "languages/pirate/"}
}`

// DefaultFiles are the message files referenced by DefaultManifest.
var DefaultFiles = map[string]string{
	"languages/en_us/fun.json":  `{"greeting": "hi", "joke.error": "No jokes", "farewell": "bye"}`,
	"languages/en_us/mod.json":  `{"data": {"kick.success": "Kicked {user}"}}`,
	"languages/pt_br/fun.json":  `{"greeting": "oi", "joke.error": "Sem piadas", "legacy": "antigo"}`,
	"languages/de_de/main.json": `{"greeting": "hallo"}`,
}

// WriteTree writes files below dir, creating parent directories.
func WriteTree(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}

// WriteDefaultTree writes DefaultManifest and DefaultFiles into a temp dir and
// returns the manifest path.
func WriteDefaultTree(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{"language.json": DefaultManifest}
	for k, v := range DefaultFiles {
		files[k] = v
	}
	WriteTree(t, dir, files)
	return filepath.Join(dir, "language.json")
}

// LoadDefaultCatalog loads the default fixture catalog.
func LoadDefaultCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(WriteDefaultTree(t))
	if err != nil {
		t.Fatalf("load fixture catalog: %v", err)
	}
	return c
}

// FakeRepository is a domain.CatalogRepository serving a fixed catalog.
type FakeRepository struct {
	mu          sync.Mutex
	Catalog     *catalog.Catalog
	LoadErr     error
	Loads       int
	subscribers []func(domain.ReloadEvent)
}

func (f *FakeRepository) Current() *catalog.Catalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Catalog
}

func (f *FakeRepository) LoadFromFile() error {
	f.mu.Lock()
	f.Loads++
	err := f.LoadErr
	c := f.Catalog
	subs := append([]func(domain.ReloadEvent){}, f.subscribers...)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	ev := domain.ReloadEvent{ID: "fake", Default: c.DefaultCode(), Languages: c.ListEnabled()}
	for _, fn := range subs {
		fn(ev)
	}
	return nil
}

func (f *FakeRepository) Subscribe(fn func(domain.ReloadEvent)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
}

func (f *FakeRepository) Watch() error { return nil }

// FakePublisher records published events.
type FakePublisher struct {
	mu       sync.Mutex
	Events   []domain.ReloadEvent
	Err      error
	Attempts int
	Closed   bool
}

func (f *FakePublisher) Publish(_ context.Context, ev domain.ReloadEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Attempts++
	if f.Err != nil {
		return f.Err
	}
	f.Events = append(f.Events, ev)
	return nil
}

func (f *FakePublisher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
}

// SetErr changes the error returned by Publish.
func (f *FakePublisher) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

// AttemptCount returns how many times Publish was called.
func (f *FakePublisher) AttemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Attempts
}

// Published returns a copy of the recorded events.
func (f *FakePublisher) Published() []domain.ReloadEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ReloadEvent, len(f.Events))
	copy(out, f.Events)
	return out
}
