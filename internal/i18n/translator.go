// Package i18n resolves player-facing strings from embedded locale tables.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator holds the loaded locale tables and the active language.
// Switching languages swaps the active table wholesale; lookups against the
// old language stop resolving immediately.
type Translator struct {
	mu     sync.RWMutex
	active string
	tables map[string]map[string]string
}

// New loads every embedded locale. Nested JSON objects flatten into dotted
// keys.
func New() (*Translator, error) {
	t := &Translator{
		active: "en",
		tables: make(map[string]map[string]string),
	}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	for _, entry := range entries {
		lang := strings.TrimSuffix(entry.Name(), ".json")

		data, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", lang, err)
		}

		var nested map[string]any
		if err := json.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", lang, err)
		}

		table := make(map[string]string)
		flatten("", nested, table)
		t.tables[lang] = table
	}

	if _, ok := t.tables["en"]; !ok {
		return nil, fmt.Errorf("english locale missing")
	}

	return t, nil
}

// Languages returns the loaded language codes.
func (t *Translator) Languages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	langs := make([]string, 0, len(t.tables))
	for lang := range t.tables {
		langs = append(langs, lang)
	}
	return langs
}

// SetLanguage switches the active table. Unknown languages are rejected.
func (t *Translator) SetLanguage(lang string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tables[lang]; !ok {
		return fmt.Errorf("unsupported language %q", lang)
	}
	t.active = lang
	return nil
}

// Language returns the active language code.
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// T resolves a dotted key in the active language, interpolating {{name}}
// placeholders from vars. A missing key resolves to the key itself so a
// translation gap shows up on screen instead of crashing.
func (t *Translator) T(key string, vars map[string]string) string {
	t.mu.RLock()
	value, ok := t.tables[t.active][key]
	t.mu.RUnlock()

	if !ok {
		return key
	}

	for name, replacement := range vars {
		value = strings.ReplaceAll(value, "{{"+name+"}}", replacement)
	}
	return value
}

// In resolves a key in a specific language regardless of the active one.
// Unknown languages fall back to English.
func (t *Translator) In(lang, key string, vars map[string]string) string {
	t.mu.RLock()
	value, ok := t.tables[lang][key]
	if !ok {
		value, ok = t.tables["en"][key]
	}
	t.mu.RUnlock()

	if !ok {
		return key
	}

	for name, replacement := range vars {
		value = strings.ReplaceAll(value, "{{"+name+"}}", replacement)
	}
	return value
}

func flatten(prefix string, nested map[string]any, out map[string]string) {
	for key, value := range nested {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			out[full] = v
		case map[string]any:
			flatten(full, v, out)
		}
	}
}
