package localization_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawpair/backend/internal/localization"
)

func writeLocale(t *testing.T, dir, lang, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lang+".json"), []byte(body), 0o600))
}

func TestGetString_Fallback(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en", `{"greeting": "hello", "only_en": "english"}`)
	writeLocale(t, dir, "ko", `{"greeting": "안녕"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o600))

	l, err := localization.NewLocalizer(dir, "")
	require.NoError(t, err)

	assert.Equal(t, "안녕", l.GetString("ko", "greeting"))
	assert.Equal(t, "english", l.GetString("ko", "only_en"))
	assert.Equal(t, "hello", l.GetString("fr", "greeting"))
	assert.Equal(t, "missing", l.GetString("en", "missing"))
	assert.ElementsMatch(t, []string{"en", "ko"}, l.Languages())
}

func TestNewLocalizer_Errors(t *testing.T) {
	_, err := localization.NewLocalizer(filepath.Join(t.TempDir(), "nope"), "en")
	assert.Error(t, err)

	dir := t.TempDir()
	writeLocale(t, dir, "en", `{not json`)
	_, err = localization.NewLocalizer(dir, "en")
	assert.Error(t, err)

	dir = t.TempDir()
	writeLocale(t, dir, "ko", `{}`)
	_, err = localization.NewLocalizer(dir, "en")
	assert.Error(t, err, "the default language must be present")
}

func TestShippedLocales(t *testing.T) {
	l, err := localization.NewLocalizer("../../locales", "en")
	require.NoError(t, err)

	for _, lang := range l.Languages() {
		for _, key := range []string{"chat.enter", "chat.leave", "match.created"} {
			assert.Contains(t, l.GetString(lang, key), "%s", "%s/%s", lang, key)
		}
	}
}
