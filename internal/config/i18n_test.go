package config_test

import (
	"context"
	"testing"

	"github.com/OliveiraNt/polyglot/internal/config"
	"github.com/invopop/ctxi18n"
	"github.com/invopop/ctxi18n/i18n"
	"github.com/stretchr/testify/require"
)

func TestInitI18n(t *testing.T) {
	config.InitI18n()

	ctx, err := ctxi18n.WithLocale(context.Background(), "pt-BR")
	require.NoError(t, err)
	require.Equal(t, "O idioma fr_fr não está habilitado",
		i18n.T(ctx, "api.errors.language_not_found", i18n.M{"code": "fr_fr"}))

	ctx, err = ctxi18n.WithLocale(context.Background(), config.DefaultLocale)
	require.NoError(t, err)
	require.Equal(t, "Message greeting was not found",
		i18n.T(ctx, "api.errors.message_not_found", i18n.M{"key": "greeting"}))
}
