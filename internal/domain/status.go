package domain

// StatusReport describes translation coverage of every enabled language
// against the default language.
type StatusReport struct {
	Manifest  string           `json:"manifest"`
	Default   string           `json:"default"`
	BaseKeys  int              `json:"base_keys"`
	Languages []LanguageStatus `json:"languages"`
}

// LanguageStatus holds coverage numbers for one language
type LanguageStatus struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Translated  int      `json:"translated"`
	Missing     int      `json:"missing"`
	Extra       int      `json:"extra"`
	Completion  float64  `json:"completion"`
	MissingKeys []string `json:"missing_keys"`
	ExtraKeys   []string `json:"extra_keys"`
}
