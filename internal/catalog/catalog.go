// Package catalog resolves a language manifest into an immutable catalog of
// message bundles.
//
// The manifest maps language codes to metadata:
//
//	{
//	  "en_us": {
//	    "is_default": true,
//	    "enabled": true,
//	    "name": "English (US)",
//	    "author": "core team",
//	    "location": "languages/en_us/"
//	  }
//	}
//
// Load validates every entry, picks the single enabled default, checks that
// each enabled location exists relative to the manifest directory and loads
// its bundle. Disabled entries are skipped entirely. A Catalog never changes
// after Load returns and may be shared between goroutines without locking.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
)

// Catalog is the validated, in-memory result of loading a manifest.
type Catalog struct {
	manifestPath string
	entries      []LanguageEntry
	bundles      map[string]*Bundle
	defaultCode  string
	matcher      language.Matcher
	matchCodes   []string
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	logger *log.Logger
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *loadOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Load reads the manifest at manifestPath and every enabled language bundle.
func Load(manifestPath string, opts ...Option) (*Catalog, error) {
	o := loadOptions{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	m, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	for _, e := range m.Entries {
		if !e.Enabled {
			o.logger.Debug("skipping disabled language", "code", e.Code)
		}
	}
	enabled := m.Enabled()

	def, err := resolveDefault(m)
	if err != nil {
		return nil, err
	}

	for _, e := range enabled {
		if _, err := os.Stat(m.ResolveLocation(e)); err != nil {
			return nil, &ManifestError{Kind: ErrPathNotFound, Code: e.Code, Path: m.ResolveLocation(e), Err: err}
		}
	}

	c := &Catalog{
		manifestPath: manifestPath,
		entries:      enabled,
		bundles:      make(map[string]*Bundle, len(enabled)),
		defaultCode:  def.Code,
	}
	for _, e := range enabled {
		loc := m.ResolveLocation(e)
		b, err := loadBundle(loc, o.logger.With("code", e.Code))
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", e.Code, err)
		}
		b.Code = e.Code
		c.bundles[e.Code] = b
		o.logger.Debug("loaded language", "code", e.Code, "location", loc, "messages", b.Len())
	}
	c.buildMatcher()

	o.logger.Info("languages loaded", "default", c.defaultCode, "enabled", c.ListEnabled())
	return c, nil
}

// Get returns the bundle for an enabled language code.
func (c *Catalog) Get(code string) (*Bundle, bool) {
	b, ok := c.bundles[code]
	return b, ok
}

// Default returns the default language bundle.
func (c *Catalog) Default() *Bundle {
	return c.bundles[c.defaultCode]
}

// DefaultCode returns the code of the default language.
func (c *Catalog) DefaultCode() string {
	return c.defaultCode
}

// ManifestPath returns the manifest the catalog was loaded from.
func (c *Catalog) ManifestPath() string {
	return c.manifestPath
}

// ListEnabled returns the enabled language codes in manifest order.
func (c *Catalog) ListEnabled() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Code
	}
	return out
}

// Entry returns the manifest entry for an enabled language code.
func (c *Catalog) Entry(code string) (LanguageEntry, bool) {
	for _, e := range c.entries {
		if e.Code == code {
			return e, true
		}
	}
	return LanguageEntry{}, false
}

// Entries returns a copy of the enabled manifest entries in manifest order.
func (c *Catalog) Entries() []LanguageEntry {
	out := make([]LanguageEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Language returns the bundle for code, or the default bundle when code is
// empty or not enabled.
func (c *Catalog) Language(code string) *Bundle {
	if b, ok := c.bundles[code]; ok {
		return b
	}
	return c.Default()
}

// Lookup returns the message for key in the given language, falling back to
// the default language when the language, the key or its value is missing.
// fallback reports whether the value came from the default language.
func (c *Catalog) Lookup(code, key string) (value string, fallback bool, ok bool) {
	if b, found := c.bundles[code]; found {
		if v, hit := b.Get(key); hit && v != "" {
			return v, false, true
		}
	}
	if v, hit := c.Default().Get(key); hit {
		return v, code != c.defaultCode, true
	}
	return "", false, false
}

// Match returns the enabled code that best matches the given preferences.
// Each preference may be an Accept-Language header value or a language code.
// The default code is returned when nothing matches.
func (c *Catalog) Match(preferences ...string) string {
	var tags []language.Tag
	for _, p := range preferences {
		if p == "" {
			continue
		}
		if _, ok := c.bundles[p]; ok {
			return p
		}
		if parsed, _, err := language.ParseAcceptLanguage(normalizeCode(p)); err == nil {
			tags = append(tags, parsed...)
		}
	}
	if len(tags) == 0 || c.matcher == nil {
		return c.defaultCode
	}

	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(c.matchCodes) {
		return c.defaultCode
	}
	return c.matchCodes[idx]
}

func (c *Catalog) buildMatcher() {
	// The default goes first so it is the matcher's fallback.
	codes := []string{c.defaultCode}
	for _, e := range c.entries {
		if e.Code != c.defaultCode {
			codes = append(codes, e.Code)
		}
	}

	tags := make([]language.Tag, 0, len(codes))
	matchCodes := make([]string, 0, len(codes))
	for _, code := range codes {
		tag, err := language.Parse(normalizeCode(code))
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		matchCodes = append(matchCodes, code)
	}
	if len(tags) == 0 {
		return
	}
	c.matcher = language.NewMatcher(tags)
	c.matchCodes = matchCodes
}

// normalizeCode turns manifest style codes such as "en_us" into BCP 47 form.
func normalizeCode(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
}
