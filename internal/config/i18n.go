package config

import (
	"github.com/OliveiraNt/polyglot/locales"
	"github.com/invopop/ctxi18n"
)

// DefaultLocale is the service locale used when a request matches none of the embedded ones.
const DefaultLocale = "en"

// InitI18n loads the embedded service strings.
func InitI18n() {
	err := ctxi18n.LoadWithDefault(locales.Content, DefaultLocale)
	if err != nil {
		panic(err)
	}
}
