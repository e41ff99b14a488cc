package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllLanguagesHaveSameKeys(t *testing.T) {
	for _, lang := range AvailableLanguages() {
		assert.Len(t, translations[lang], len(translations[RU]), lang)
		for key := range translations[RU] {
			assert.Contains(t, translations[lang], key, "%s: %s", lang, key)
		}
	}
}

func TestTranslate(t *testing.T) {
	t.Cleanup(func() { SetLanguage(RU) })

	SetLanguage(EN)
	assert.Equal(t, "Quit", T("tray_quit"))
	assert.Equal(t, "missing_key", T("missing_key"))
	assert.Equal(t, "Model x (5 MB) is not downloaded. Download now?", Tf("dialog_download_text", "x", 5))

	SetLanguage("xx")
	assert.Equal(t, EN, GetLanguage())

	SetLanguage(DE)
	assert.Equal(t, "Beenden", T("tray_quit"))
}
