package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/OliveiraNt/polyglot/internal/application"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/invopop/ctxi18n/i18n"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Logger.Error("encode response failed", "err", err)
	}
}

// writeError responds with a localised message for key.
func writeError(w http.ResponseWriter, r *http.Request, status int, key string, args i18n.M) {
	writeJSON(w, status, errorResponse{
		Error: i18n.T(r.Context(), key, args),
		Code:  key,
	})
}

// writeServiceError maps application errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, code, key string) {
	switch {
	case errors.Is(err, application.ErrLanguageNotFound):
		writeError(w, r, http.StatusNotFound, "api.errors.language_not_found", i18n.M{"code": code})
	case errors.Is(err, application.ErrMessageNotFound):
		writeError(w, r, http.StatusNotFound, "api.errors.message_not_found", i18n.M{"key": key})
	case errors.Is(err, application.ErrCatalogNotLoaded):
		writeError(w, r, http.StatusServiceUnavailable, "api.errors.catalog_not_loaded", nil)
	default:
		utils.Logger.Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, r, http.StatusInternalServerError, "api.errors.internal", nil)
	}
}

func (s *Server) apiListLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := s.languageService.ListLanguages()
	if err != nil {
		writeServiceError(w, r, err, "", "")
		return
	}
	utils.Logger.Debug("api list languages", "count", len(langs))
	writeJSON(w, http.StatusOK, langs)
}

func (s *Server) apiDefaultLanguage(w http.ResponseWriter, r *http.Request) {
	lang, err := s.languageService.DefaultLanguage()
	if err != nil {
		writeServiceError(w, r, err, "", "")
		return
	}
	writeJSON(w, http.StatusOK, lang)
}

func (s *Server) apiGetLanguage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	lang, err := s.languageService.GetLanguage(code)
	if err != nil {
		writeServiceError(w, r, err, code, "")
		return
	}
	writeJSON(w, http.StatusOK, lang)
}

func (s *Server) apiLanguageMessages(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	msgs, err := s.languageService.Messages(code)
	if err != nil {
		writeServiceError(w, r, err, code, "")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) apiTranslate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	key := chi.URLParam(r, "key")
	tr, err := s.languageService.Translate(code, key)
	if err != nil {
		writeServiceError(w, r, err, code, key)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// apiNegotiate picks a language from ?lang= or, failing that, Accept-Language.
func (s *Server) apiNegotiate(w http.ResponseWriter, r *http.Request) {
	prefs := r.URL.Query()["lang"]
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		prefs = append(prefs, accept)
	}
	code, err := s.languageService.Negotiate(prefs...)
	if err != nil {
		writeServiceError(w, r, err, "", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

func (s *Server) apiStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.languageService.Status()
	if err != nil {
		writeServiceError(w, r, err, "", "")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) apiReload(w http.ResponseWriter, r *http.Request) {
	if err := s.languageService.Reload(); err != nil {
		utils.Logger.Warn("api reload failed", "err", err)
		writeError(w, r, http.StatusUnprocessableEntity, "api.errors.reload_failed", i18n.M{"reason": err.Error()})
		return
	}
	langs, err := s.languageService.ListLanguages()
	if err != nil {
		writeServiceError(w, r, err, "", "")
		return
	}
	utils.Logger.Info("catalog reloaded via api", "languages", len(langs))
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   i18n.T(r.Context(), "api.reload.ok"),
		"languages": langs,
	})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	lang, err := s.languageService.DefaultLanguage()
	if err != nil {
		writeServiceError(w, r, err, "", "")
		return
	}
	resp := map[string]string{"status": "ok", "default": lang.Code}
	if s.broker != nil {
		resp["broker"] = "up"
		if !s.broker.IsHealthy(r.Context()) {
			resp["broker"] = "down"
			resp["status"] = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
