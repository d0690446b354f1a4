package mid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/OliveiraNt/polyglot/internal/config"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/invopop/ctxi18n"
	"github.com/stretchr/testify/require"
)

func init() {
	utils.InitLogger()
	config.InitI18n()
}

func localeOf(t *testing.T, req *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var got string
	h := I18n(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l := ctxi18n.Locale(r.Context()); l != nil {
			got = l.Code().String()
		}
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return got, rec
}

func TestI18n(t *testing.T) {
	t.Run("default locale", func(t *testing.T) {
		got, rec := localeOf(t, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, "en", got)
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("accept language", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")
		got, _ := localeOf(t, req)
		require.Equal(t, "pt-BR", got)
	})

	t.Run("cookie beats header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "pt-BR")
		req.AddCookie(&http.Cookie{Name: langCookie, Value: "en"})
		got, _ := localeOf(t, req)
		require.Equal(t, "en", got)
	})

	t.Run("query is remembered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?ui_lang=pt-BR", nil)
		req.AddCookie(&http.Cookie{Name: langCookie, Value: "en"})
		got, rec := localeOf(t, req)
		require.Equal(t, "pt-BR", got)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, langCookie, cookies[0].Name)
		require.Equal(t, "pt-BR", cookies[0].Value)
	})

	t.Run("unknown locale falls back", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?ui_lang=xx", nil)
		got, _ := localeOf(t, req)
		require.Equal(t, "en", got)
	})
}
