package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/OliveiraNt/polyglot/internal/application"
	"github.com/OliveiraNt/polyglot/internal/catalog"
	"github.com/OliveiraNt/polyglot/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestUIStatus(t *testing.T) {
	s, _ := buildServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))

	body := rec.Body.String()
	require.Contains(t, body, "<h1>Translation status</h1>")
	require.Contains(t, body, `<tr class="default"><td>en_us</td>`)
	require.Contains(t, body, "<td>pt_br</td><td>Português (Brasil)</td>")
	require.Contains(t, body, `<progress max="100" value="50.0"></progress> 50.0%`)
	require.Contains(t, body, "<strong>en_us</strong>")
	require.Contains(t, body, "farewell, kick.success")
	require.Contains(t, body, `/static/reloads.js`)
}

func TestUIStatus_Localised(t *testing.T) {
	s, _ := buildServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "pt-BR")
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<h1>Status das traduções</h1>")
	require.Contains(t, rec.Body.String(), `<html lang="pt-BR">`)
}

func TestUIStatus_EscapesNames(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"language.json": `{"en": {"is_default": true, "enabled": true, "name": "<b>English</b>", "location": "en.json"}}`,
		"en.json":       `{"a": "1"}`,
	})
	c, err := catalog.Load(dir + "/language.json")
	require.NoError(t, err)

	repo := &testutil.FakeRepository{Catalog: c}
	s := New(application.NewLanguageService(repo), repo)

	body := serve(s, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	require.Contains(t, body, "&lt;b&gt;English&lt;/b&gt;")
	require.NotContains(t, body, "<b>English</b>")
}

func TestUIStatus_NotLoaded(t *testing.T) {
	repo := &testutil.FakeRepository{}
	s := New(application.NewLanguageService(repo), repo)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "No catalog loaded yet.")
}
