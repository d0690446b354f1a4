package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned when the manifest is not a valid key/value document.
	ErrMalformed = errors.New("manifest is malformed")

	// ErrInvalidEntry is returned when a language entry misses a required field or has a wrong type.
	ErrInvalidEntry = errors.New("invalid language entry")

	// ErrNoDefault is returned when no enabled entry is marked as default.
	ErrNoDefault = errors.New("no default language")

	// ErrMultipleDefaults is returned when more than one enabled entry is marked as default.
	ErrMultipleDefaults = errors.New("multiple default languages")

	// ErrPathNotFound is returned when an enabled entry's location does not exist.
	ErrPathNotFound = errors.New("language location not found")

	// ErrBundleMalformed is returned when a message file cannot be parsed.
	ErrBundleMalformed = errors.New("message file is malformed")
)

// ManifestError describes a failure to turn the manifest into a catalog.
// Kind is one of the manifest sentinel errors.
type ManifestError struct {
	Kind  error
	Code  string
	Path  string
	Codes []string
	Err   error
}

func (e *ManifestError) Error() string {
	msg := e.Kind.Error()
	switch {
	case e.Code != "":
		msg = fmt.Sprintf("%s: %q", msg, e.Code)
	case len(e.Codes) > 0:
		msg = fmt.Sprintf("%s: %q", msg, e.Codes)
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the error's kind.
func (e *ManifestError) Is(target error) bool {
	return target == e.Kind
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// BundleError describes a message file that could not be loaded.
type BundleError struct {
	File string
	Err  error
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrBundleMalformed, e.File, e.Err)
}

func (e *BundleError) Is(target error) bool {
	return target == ErrBundleMalformed
}

func (e *BundleError) Unwrap() error {
	return e.Err
}

func malformed(path string, err error) *ManifestError {
	return &ManifestError{Kind: ErrMalformed, Path: path, Err: err}
}
