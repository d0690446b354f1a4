// Package locales provides the embedded service strings of polyglot (en, pt-BR)
// used for localised API errors and the status page.
package locales

import "embed"

//go:embed en.yaml
//go:embed pt-BR.yaml

// Content is an embedded file system containing the localized resource files.
var Content embed.FS
