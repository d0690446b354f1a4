package application

import "errors"

var (
	// ErrLanguageNotFound is returned when a language code is not enabled in the catalog
	ErrLanguageNotFound = errors.New("language not found")

	// ErrMessageNotFound is returned when a key exists neither in the language nor in the default language
	ErrMessageNotFound = errors.New("message not found")

	// ErrCatalogNotLoaded is returned when no catalog has been loaded yet
	ErrCatalogNotLoaded = errors.New("language catalog not loaded")
)
