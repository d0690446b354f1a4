package repository

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OliveiraNt/polyglot/internal/catalog"
	"github.com/OliveiraNt/polyglot/internal/domain"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

const debounceDelay = 350 * time.Millisecond

// ErrAlreadyWatching is returned by Watch when a watcher is already running.
var ErrAlreadyWatching = errors.New("catalog repository is already watching")

// CatalogRepository holds the current language catalog and swaps it atomically on reload.
type CatalogRepository struct {
	manifestPath string
	current      atomic.Pointer[catalog.Catalog]
	loadMu       sync.Mutex

	mu          sync.Mutex
	lastErr     error
	subscribers []func(domain.ReloadEvent)
	watcher     *fsnotify.Watcher
	watchDirs   map[string]struct{}
	files       map[string]struct{}
	dirs        map[string]struct{}
	timer       *time.Timer
}

// NewCatalogRepository creates a repository for the manifest at manifestPath.
func NewCatalogRepository(manifestPath string) *CatalogRepository {
	return &CatalogRepository{
		manifestPath: manifestPath,
		watchDirs:    make(map[string]struct{}),
		files:        make(map[string]struct{}),
		dirs:         make(map[string]struct{}),
	}
}

// Current returns the catalog in use, or nil before the first successful load.
func (r *CatalogRepository) Current() *catalog.Catalog {
	return r.current.Load()
}

// LastError returns the error of the most recent load, nil if it succeeded.
func (r *CatalogRepository) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Subscribe registers fn to be called after every successful load.
func (r *CatalogRepository) Subscribe(fn func(domain.ReloadEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// LoadFromFile builds a new catalog from the manifest. On failure the previous
// catalog stays in place.
func (r *CatalogRepository) LoadFromFile() error {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	c, err := catalog.Load(r.manifestPath, catalog.WithLogger(utils.Logger))

	r.mu.Lock()
	r.lastErr = err
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.current.Store(c)
	if err := r.refreshWatchSet(c); err != nil {
		utils.Logger.Warn("failed to refresh watched paths", "err", err)
	}

	ev := domain.ReloadEvent{
		ID:        uuid.NewString(),
		Manifest:  r.manifestPath,
		Default:   c.DefaultCode(),
		Languages: c.ListEnabled(),
		LoadedAt:  time.Now().UTC(),
	}

	r.mu.Lock()
	subs := make([]func(domain.ReloadEvent), len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
	return nil
}

// Watch sets a fsnotify watcher on the manifest and every enabled language
// location for hot reload.
func (r *CatalogRepository) Watch() error {
	r.mu.Lock()
	if r.watcher != nil {
		r.mu.Unlock()
		return ErrAlreadyWatching
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.watcher = w
	r.mu.Unlock()

	if err := r.refreshWatchSet(r.Current()); err != nil {
		_ = r.Close()
		return err
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !r.relevant(ev.Name) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					r.scheduleReload()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				utils.Logger.Warn("fsnotify error", "err", err)
			}
		}
	}()

	return nil
}

// Close stops the watcher.
func (r *CatalogRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	if r.watcher == nil {
		return nil
	}
	err := r.watcher.Close()
	r.watcher = nil
	r.watchDirs = make(map[string]struct{})
	return err
}

func (r *CatalogRepository) scheduleReload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer == nil {
		r.timer = time.AfterFunc(debounceDelay, r.reload)
		return
	}
	r.timer.Reset(debounceDelay)
}

func (r *CatalogRepository) reload() {
	abs, _ := filepath.Abs(r.manifestPath)
	// Editors that replace files may leave the manifest briefly missing.
	for i := 0; i < 10; i++ {
		if _, err := os.Stat(abs); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	utils.Logger.Info("language files changed, reloading", "manifest", abs)
	if err := r.LoadFromFile(); err != nil {
		logLoadError(err)
		return
	}
	utils.Logger.Info("languages reloaded", "default", r.Current().DefaultCode())
}

func (r *CatalogRepository) relevant(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[name]; ok {
		return true
	}
	_, ok := r.dirs[filepath.Dir(name)]
	return ok
}

// refreshWatchSet recomputes which paths trigger a reload and, when watching,
// adds or removes directories on the watcher accordingly.
func (r *CatalogRepository) refreshWatchSet(c *catalog.Catalog) error {
	manifestAbs, err := filepath.Abs(r.manifestPath)
	if err != nil {
		return err
	}

	files := map[string]struct{}{manifestAbs: {}}
	dirs := map[string]struct{}{}
	want := map[string]struct{}{filepath.Dir(manifestAbs): {}}

	if c != nil {
		manifestDir := filepath.Dir(manifestAbs)
		for _, e := range c.Entries() {
			loc := e.Location
			if !filepath.IsAbs(loc) {
				loc = filepath.Join(manifestDir, filepath.FromSlash(loc))
			}
			loc = filepath.Clean(loc)
			info, err := os.Stat(loc)
			if err != nil {
				continue
			}
			if info.IsDir() {
				dirs[loc] = struct{}{}
				want[loc] = struct{}{}
			} else {
				files[loc] = struct{}{}
				want[filepath.Dir(loc)] = struct{}{}
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.files = files
	r.dirs = dirs
	if r.watcher == nil {
		return nil
	}

	var errs []error
	for dir := range want {
		if _, ok := r.watchDirs[dir]; ok {
			continue
		}
		if err := r.watcher.Add(dir); err != nil {
			errs = append(errs, err)
			continue
		}
		r.watchDirs[dir] = struct{}{}
	}
	for dir := range r.watchDirs {
		if _, ok := want[dir]; ok {
			continue
		}
		_ = r.watcher.Remove(dir)
		delete(r.watchDirs, dir)
	}
	return errors.Join(errs...)
}

func logLoadError(err error) {
	var me *catalog.ManifestError
	var be *catalog.BundleError
	switch {
	case errors.As(err, &me):
		utils.Logger.Error("failed to reload languages", "kind", me.Kind, "code", me.Code, "err", err)
	case errors.As(err, &be):
		utils.Logger.Error("failed to reload languages", "file", be.File, "err", err)
	default:
		utils.Logger.Error("failed to reload languages", "err", err)
	}
}
