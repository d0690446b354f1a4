package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/OliveiraNt/polyglot/internal/application"
	"github.com/OliveiraNt/polyglot/internal/config"
	"github.com/OliveiraNt/polyglot/internal/testutil"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/go-chi/chi/v5"
)

func init() {
	utils.InitLogger()
	config.InitI18n()
}

// buildServer builds a Server over the fixture catalog
func buildServer(t *testing.T) (*Server, *testutil.FakeRepository) {
	t.Helper()
	repo := &testutil.FakeRepository{Catalog: testutil.LoadDefaultCatalog(t)}
	return New(application.NewLanguageService(repo), repo), repo
}

// serve runs a request through the full router
func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

// chiCtxWithParam adds a single URL param to request context for handler funcs using chi.URLParam
func chiCtxWithParam(key, val string, req *http.Request) context.Context {
	return chiCtxWithParams(map[string]string{key: val}, req)
}

// chiCtxWithParams adds multiple URL params to request context
func chiCtxWithParams(params map[string]string, req *http.Request) context.Context {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
}
