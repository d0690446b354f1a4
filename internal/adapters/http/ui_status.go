package httpserver

import (
	"errors"
	"net/http"

	"github.com/OliveiraNt/polyglot/internal/adapters/http/ui/templates/pages"
	"github.com/OliveiraNt/polyglot/internal/application"
	"github.com/OliveiraNt/polyglot/internal/config"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/a-h/templ"
	"github.com/invopop/ctxi18n"
)

func (s *Server) uiStatus(w http.ResponseWriter, r *http.Request) {
	lang := config.DefaultLocale
	if l := ctxi18n.Locale(r.Context()); l != nil {
		lang = l.Code().String()
	}

	report, err := s.languageService.Status()
	switch {
	case err == nil:
		templ.Handler(pages.StatusPage(lang, &report)).ServeHTTP(w, r)
	case errors.Is(err, application.ErrCatalogNotLoaded):
		templ.Handler(pages.StatusPage(lang, nil), templ.WithStatus(http.StatusServiceUnavailable)).ServeHTTP(w, r)
	default:
		utils.Logger.Error("ui status failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
