package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/OliveiraNt/polyglot/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestReloadEvent_WireFormat(t *testing.T) {
	t.Parallel()
	ev := domain.ReloadEvent{
		ID:        "id-1",
		Manifest:  "language.json",
		Default:   "en_us",
		Languages: []string{"en_us", "pt_br"},
		LoadedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	require.JSONEq(t, `{
  "id": "id-1",
  "manifest": "language.json",
  "default": "en_us",
  "languages": ["en_us", "pt_br"],
  "loaded_at": "2026-01-02T03:04:05Z"
}`, string(b))
}
