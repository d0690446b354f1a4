// Package httpserver exposes the language catalog over HTTP: a JSON API, a
// websocket stream of reload events and an HTML translation status page.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/OliveiraNt/polyglot/internal/adapters/http/mid"
	"github.com/OliveiraNt/polyglot/internal/adapters/http/ui"
	"github.com/OliveiraNt/polyglot/internal/application"
	"github.com/OliveiraNt/polyglot/internal/domain"
	"github.com/OliveiraNt/polyglot/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

// Server provides the HTTP API and Web UI endpoints for polyglot.
type Server struct {
	languageService *application.LanguageService
	hub             *ReloadHub
	broker          domain.HealthChecker
}

// New creates a new HTTP server instance. Reload events of repo are relayed
// to websocket clients.
func New(languageService *application.LanguageService, repo domain.CatalogRepository) *Server {
	hub := NewReloadHub()
	repo.Subscribe(hub.Broadcast)
	return &Server{
		languageService: languageService,
		hub:             hub,
	}
}

// WithBrokerHealth makes /healthz report the state of the event broker.
func (s *Server) WithBrokerHealth(h domain.HealthChecker) *Server {
	s.broker = h
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(mid.I18n)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)

	cacheDuration := 7 * 24 * time.Hour
	r.Handle("/static/*", http.StripPrefix("/static/", StaticWithCache(cacheDuration)))

	r.Get("/", s.uiStatus)
	r.Get("/healthz", s.healthz)
	r.Get("/ws/reloads", s.wsReloads)

	r.Route("/api", func(r chi.Router) {
		r.Get("/languages", s.apiListLanguages)
		r.Get("/languages/default", s.apiDefaultLanguage)
		r.Get("/languages/{code}", s.apiGetLanguage)
		r.Get("/languages/{code}/messages", s.apiLanguageMessages)
		r.Get("/languages/{code}/messages/{key}", s.apiTranslate)
		r.Get("/negotiate", s.apiNegotiate)
		r.Get("/status", s.apiStatus)
		r.Post("/reload", s.apiReload)
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	utils.Logger.Info("HTTP server shutting down")
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		dur := time.Since(start)
		utils.Logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", dur.String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// StaticWithCache serves the embedded UI assets applying a public max-age cache header.
func StaticWithCache(maxAge time.Duration) http.Handler {
	files := http.FileServerFS(ui.Static())
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
		files.ServeHTTP(w, r)
	})
}
