package faq

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const returConfigJSON = `{
  "faq_structured": {
    "categorii": [
      {
        "id": "retur",
        "nume": "Retur",
        "emoji": "↩️",
        "keywords": ["retur", "cum fac retur"],
        "responses": {
          "standard": "Ai 14 zile.",
          "complete": "Ai 14 zile... (full policy)"
        }
      },
      {
        "id": "livrare",
        "nume": "Livrare",
        "emoji": "🚚",
        "keywords": ["livrare", "cat costa livrarea", "transport gratuit"],
        "responses": {
          "quick": "19 lei.",
          "standard": "Livrarea costă 19 lei, gratuită peste 200 lei.",
          "complete": "Livrarea costă 19 lei și este gratuită pentru comenzi peste 200 lei. Ajunge în 1-3 zile."
        }
      }
    ]
  }
}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestMatcher(t *testing.T, content string) *Matcher {
	t.Helper()
	path := writeConfig(t, "faq_config.json", content)
	m := New(path, WithLogger(quietLogger()))
	require.NotEmpty(t, m.Categories())
	return m
}
