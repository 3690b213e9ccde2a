package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranslator(t *testing.T) *Translator {
	t.Helper()
	translator, err := New()
	require.NoError(t, err)
	return translator
}

func TestTranslator_LoadsLocales(t *testing.T) {
	translator := newTranslator(t)

	assert.Contains(t, translator.Languages(), "en")
	assert.Contains(t, translator.Languages(), "ar")
	assert.Equal(t, "en", translator.Language())
}

func TestTranslator_T(t *testing.T) {
	translator := newTranslator(t)

	assert.Equal(t, "+15 Gems!", translator.T("rewards.gems", map[string]string{"count": "15"}))
	assert.Equal(t, "Not enough gems.", translator.T("store.notEnoughGems", nil))
}

func TestTranslator_MissingKeyResolvesToKey(t *testing.T) {
	translator := newTranslator(t)

	assert.Equal(t, "no.such.key", translator.T("no.such.key", nil))
}

func TestTranslator_SetLanguage(t *testing.T) {
	translator := newTranslator(t)

	require.NoError(t, translator.SetLanguage("ar"))
	assert.Equal(t, "ar", translator.Language())
	assert.NotEqual(t, "Not enough gems.", translator.T("store.notEnoughGems", nil))

	assert.Error(t, translator.SetLanguage("xx"))
	assert.Equal(t, "ar", translator.Language())
}

func TestTranslator_In(t *testing.T) {
	translator := newTranslator(t)

	english := translator.In("en", "rewards.gems", map[string]string{"count": "10"})
	arabic := translator.In("ar", "rewards.gems", map[string]string{"count": "10"})

	assert.Equal(t, "+10 Gems!", english)
	assert.NotEqual(t, english, arabic)
	assert.Contains(t, arabic, "10")

	// Unknown languages fall back to English.
	assert.Equal(t, english, translator.In("xx", "rewards.gems", map[string]string{"count": "10"}))
}
