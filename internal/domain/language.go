// Package domain defines the entities exchanged between the language catalog,
// the application services and the adapters: language summaries, translations,
// coverage reports and reload events, plus the repository and publisher
// abstractions the application layer depends on.
package domain

import "time"

// Language summarises one enabled language of the catalog.
type Language struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Author    string `json:"author,omitempty"`
	Notes     string `json:"notes,omitempty"`
	IsDefault bool   `json:"is_default"`
	Messages  int    `json:"messages"`
}

// Translation is the result of resolving one message key.
type Translation struct {
	Code     string `json:"code"`
	Key      string `json:"key"`
	Value    string `json:"value"`
	Fallback bool   `json:"fallback"`
}

// ReloadEvent announces that a new catalog replaced the previous one.
type ReloadEvent struct {
	ID        string    `json:"id"`
	Manifest  string    `json:"manifest"`
	Default   string    `json:"default"`
	Languages []string  `json:"languages"`
	LoadedAt  time.Time `json:"loaded_at"`
}
