// Package mid provides HTTP middleware implementations for request processing.
package mid

import (
	"net/http"
	"time"

	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/invopop/ctxi18n"
)

const (
	langCookie = "ui_lang"
	langQuery  = "ui_lang"
)

// I18n sets the request locale of service strings from the ui_lang cookie,
// the ui_lang query parameter or Accept-Language, in that order. A query
// value is remembered in the cookie.
func I18n(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var lang string

		if c, err := r.Cookie(langCookie); err == nil {
			lang = c.Value
		}

		if q := r.URL.Query().Get(langQuery); q != "" {
			lang = q
		}

		if lang == "" {
			lang = r.Header.Get("Accept-Language")
		}

		ctx, err := ctxi18n.WithLocale(r.Context(), lang)
		if err != nil {
			utils.Logger.Debug("failed to set locale", "lang", lang, "err", err)
			ctx = r.Context()
		}

		if r.URL.Query().Has(langQuery) && ctxi18n.Locale(ctx) != nil {
			http.SetCookie(w, &http.Cookie{
				Name:     langCookie,
				Value:    ctxi18n.Locale(ctx).Code().String(),
				Path:     "/",
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			})
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
