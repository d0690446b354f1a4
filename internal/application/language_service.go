package application

import (
	"math"
	"sort"

	"github.com/OliveiraNt/polyglot/internal/catalog"
	"github.com/OliveiraNt/polyglot/internal/domain"
	"github.com/OliveiraNt/polyglot/internal/utils"
)

// LanguageService provides read operations over the current language catalog.
type LanguageService struct {
	repo domain.CatalogRepository
}

// NewLanguageService creates a new language service.
func NewLanguageService(repo domain.CatalogRepository) *LanguageService {
	return &LanguageService{repo: repo}
}

func (s *LanguageService) current() (*catalog.Catalog, error) {
	c := s.repo.Current()
	if c == nil {
		return nil, ErrCatalogNotLoaded
	}
	return c, nil
}

// ListLanguages lists enabled languages in manifest order.
func (s *LanguageService) ListLanguages() ([]domain.Language, error) {
	c, err := s.current()
	if err != nil {
		return nil, err
	}
	entries := c.Entries()
	out := make([]domain.Language, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLanguage(c, e))
	}
	return out, nil
}

// GetLanguage retrieves one enabled language.
func (s *LanguageService) GetLanguage(code string) (domain.Language, error) {
	c, err := s.current()
	if err != nil {
		return domain.Language{}, err
	}
	e, ok := c.Entry(code)
	if !ok {
		return domain.Language{}, ErrLanguageNotFound
	}
	return toLanguage(c, e), nil
}

// DefaultLanguage retrieves the default language.
func (s *LanguageService) DefaultLanguage() (domain.Language, error) {
	c, err := s.current()
	if err != nil {
		return domain.Language{}, err
	}
	return s.GetLanguage(c.DefaultCode())
}

// Messages returns all messages of an enabled language.
func (s *LanguageService) Messages(code string) (map[string]string, error) {
	c, err := s.current()
	if err != nil {
		return nil, err
	}
	b, ok := c.Get(code)
	if !ok {
		return nil, ErrLanguageNotFound
	}
	return b.Messages(), nil
}

// Translate resolves key in the given language, falling back to the default
// language. Code in the result is the language the value was taken from.
func (s *LanguageService) Translate(code, key string) (domain.Translation, error) {
	c, err := s.current()
	if err != nil {
		return domain.Translation{}, err
	}
	value, fallback, ok := c.Lookup(code, key)
	if !ok {
		utils.Logger.Debug("message not found", "code", code, "key", key)
		return domain.Translation{}, ErrMessageNotFound
	}
	from := code
	if fallback {
		from = c.DefaultCode()
	}
	return domain.Translation{Code: from, Key: key, Value: value, Fallback: fallback}, nil
}

// Negotiate picks the enabled language that best matches the given preferences.
func (s *LanguageService) Negotiate(preferences ...string) (string, error) {
	c, err := s.current()
	if err != nil {
		return "", err
	}
	return c.Match(preferences...), nil
}

// Reload asks the repository to rebuild the catalog from disk.
func (s *LanguageService) Reload() error {
	return s.repo.LoadFromFile()
}

// Status reports translation coverage of each enabled language against the default language.
func (s *LanguageService) Status() (domain.StatusReport, error) {
	c, err := s.current()
	if err != nil {
		return domain.StatusReport{}, err
	}

	base := c.Default()
	baseKeys := base.Keys()
	report := domain.StatusReport{
		Manifest:  c.ManifestPath(),
		Default:   c.DefaultCode(),
		BaseKeys:  len(baseKeys),
		Languages: make([]domain.LanguageStatus, 0, len(c.ListEnabled())),
	}

	for _, e := range c.Entries() {
		b, _ := c.Get(e.Code)
		st := domain.LanguageStatus{
			Code:        e.Code,
			Name:        e.Name,
			MissingKeys: []string{},
			ExtraKeys:   []string{},
		}
		for _, k := range baseKeys {
			if v, ok := b.Get(k); ok && v != "" {
				st.Translated++
			} else {
				st.MissingKeys = append(st.MissingKeys, k)
			}
		}
		for _, k := range b.Keys() {
			if _, ok := base.Get(k); !ok {
				st.ExtraKeys = append(st.ExtraKeys, k)
			}
		}
		sort.Strings(st.ExtraKeys)
		st.Missing = len(st.MissingKeys)
		st.Extra = len(st.ExtraKeys)
		st.Completion = completion(st.Translated, len(baseKeys))
		report.Languages = append(report.Languages, st)
	}

	return report, nil
}

func completion(translated, total int) float64 {
	if total == 0 {
		return 100
	}
	return math.Round(float64(translated)/float64(total)*1000) / 10
}

func toLanguage(c *catalog.Catalog, e catalog.LanguageEntry) domain.Language {
	b, _ := c.Get(e.Code)
	return domain.Language{
		Code:      e.Code,
		Name:      e.Name,
		Author:    e.Author,
		Notes:     e.Notes,
		IsDefault: e.Code == c.DefaultCode(),
		Messages:  b.Len(),
	}
}
