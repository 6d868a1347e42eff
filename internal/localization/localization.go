// Package localization loads translation strings from JSON files, one file
// per language code (e.g. "en.json"), and looks them up with a fallback.
package localization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Localizer holds the translations of every loaded language.
type Localizer struct {
	translations map[string]map[string]string
	defaultLang  string
	mu           sync.RWMutex
}

// NewLocalizer loads every *.json file in path. defaultLang is used when a
// key is missing in the requested language; "en" if empty.
func NewLocalizer(path, defaultLang string) (*Localizer, error) {
	if defaultLang == "" {
		defaultLang = "en"
	}
	l := &Localizer{
		translations: make(map[string]map[string]string),
		defaultLang:  defaultLang,
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := os.ReadFile(filepath.Join(path, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[lang] = translations
	}

	if _, ok := l.translations[defaultLang]; !ok {
		return nil, fmt.Errorf("no translations for default language %q in %s", defaultLang, path)
	}
	return l, nil
}

// GetString returns the string for key in lang, then in the default
// language, then the key itself.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if value, ok := l.translations[lang][key]; ok {
		return value
	}
	if value, ok := l.translations[l.defaultLang][key]; ok {
		return value
	}
	return key
}

// Languages lists the loaded language codes.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	langs := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		langs = append(langs, lang)
	}
	return langs
}
