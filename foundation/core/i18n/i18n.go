// File: i18n.go
// Title: Core Internationalization Implementation
// Description: Implements the i18n Manager that loads message catalogs from
//              the embedded defaults and an optional directory of TOML or
//              YAML files, resolves dotted keys with fallback to the default
//              locale and renders text/template placeholders.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with TOML/YAML support
// - 2025-07-26 v0.1.1: Fixed template cache collision issue in pluralization
// - 2026-10-17 v0.2.0: Embedded catalogs, context locales, race free
//                      template cache, polling watcher and plurals removed

package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
)

//go:embed locales/*.toml
var embeddedLocales embed.FS

// DefaultLocale is used when Options.DefaultLocale is empty
const DefaultLocale = "en"

// Options defines configuration options for the i18n manager
type Options struct {
	DefaultLocale   string // Default locale (e.g., "en")
	LocalesDir      string // Optional directory whose files override the embedded catalogs
	DisableFallback bool   // Do not fall back to the default locale for missing keys
	SkipEmbedded    bool   // Load only LocalesDir
}

// TranslationData represents the structure of a translation file
type TranslationData map[string]interface{}

// Manager manages message catalogs for an application
type Manager struct {
	mu            sync.RWMutex
	defaultLocale string
	localesDir    string
	fallback      bool
	skipEmbedded  bool
	translations  map[string]TranslationData // locale -> translations

	templates sync.Map // template source -> *template.Template
}

// New creates a new i18n manager with the specified options
func New(options Options) (*Manager, error) {
	if strings.TrimSpace(options.DefaultLocale) == "" {
		options.DefaultLocale = DefaultLocale
	}

	m := &Manager{
		defaultLocale: NormalizeLocale(options.DefaultLocale),
		localesDir:    options.LocalesDir,
		fallback:      !options.DisableFallback,
		skipEmbedded:  options.SkipEmbedded,
	}
	if m.defaultLocale == "" {
		return nil, mdwerror.New("invalid default locale").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("i18n.New").
			WithDetail("locale", options.DefaultLocale)
	}

	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

var (
	defaultOnce    sync.Once
	defaultManager *Manager
)

// Default returns a manager over the embedded catalogs only
func Default() *Manager {
	defaultOnce.Do(func() {
		m, err := New(Options{})
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded catalogs are broken: %v", err))
		}
		defaultManager = m
	})
	return defaultManager
}

// Reload re-reads the embedded catalogs and the locales directory and
// swaps them in. On error the previous catalogs stay active.
func (m *Manager) Reload() error {
	translations := make(map[string]TranslationData)

	if !m.skipEmbedded {
		if err := loadFS(embeddedLocales, "locales", translations); err != nil {
			return mdwerror.Wrap(err, "failed to load embedded locales").
				WithCode(mdwerror.CodeInternal).
				WithOperation("i18n.Reload")
		}
	}

	if m.localesDir != "" {
		if _, err := os.Stat(m.localesDir); err != nil {
			return mdwerror.New("locales directory not found").
				WithCode(mdwerror.CodeNotFound).
				WithOperation("i18n.Reload").
				WithDetail("directory", m.localesDir)
		}
		if err := loadFS(os.DirFS(m.localesDir), ".", translations); err != nil {
			return mdwerror.Wrap(err, "failed to load locales").
				WithCode(mdwerror.CodeConfigError).
				WithOperation("i18n.Reload").
				WithDetail("directory", m.localesDir)
		}
	}

	if _, exists := translations[m.defaultLocale]; !exists {
		return mdwerror.Newf("default locale '%s' not found", m.defaultLocale).
			WithCode(mdwerror.CodeConfigError).
			WithOperation("i18n.Reload")
	}

	m.mu.Lock()
	m.translations = translations
	m.mu.Unlock()
	return nil
}

// loadFS reads every *.toml, *.yaml and *.yml file in dir and merges it
// into translations. Files for the same locale are merged key by key.
func loadFS(fsys fs.FS, dir string, translations map[string]TranslationData) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read locales directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".toml" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		locale := ParseLocaleFromFilename(name)
		if locale == "" {
			continue
		}

		content, err := fs.ReadFile(fsys, pathJoin(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", name, err)
		}

		var data TranslationData
		if ext == ".toml" {
			err = toml.Unmarshal(content, &data)
		} else {
			err = yaml.Unmarshal(content, &data)
		}
		if err != nil {
			return fmt.Errorf("failed to parse locale file %s: %w", name, err)
		}

		if existing, ok := translations[locale]; ok {
			mergeTranslations(existing, data)
		} else {
			translations[locale] = data
		}
	}
	return nil
}

func pathJoin(dir, name string) string {
	if dir == "." || dir == "" {
		return name
	}
	return dir + "/" + name
}

func mergeTranslations(dst, src map[string]interface{}) {
	for k, v := range src {
		srcMap, srcIsMap := asMap(v)
		dstMap, dstIsMap := asMap(dst[k])
		if srcIsMap && dstIsMap {
			mergeTranslations(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case TranslationData:
		return m, true
	default:
		return nil, false
	}
}

// T translates a key in the default locale with optional template data.
// Unknown keys render as "[key]".
func (m *Manager) T(key string, data ...map[string]interface{}) string {
	translation, err := m.TryT(key, data...)
	if err != nil && translation == "" {
		return "[" + key + "]"
	}
	return translation
}

// TryT translates a key and returns an error if translation fails
func (m *Manager) TryT(key string, data ...map[string]interface{}) (string, error) {
	return m.TryTLocale(m.defaultLocale, key, data...)
}

// TryTLocale translates a key in the given locale
func (m *Manager) TryTLocale(locale, key string, data ...map[string]interface{}) (string, error) {
	m.mu.RLock()
	translation := m.getTranslation(key, NormalizeLocale(locale))
	m.mu.RUnlock()

	if translation == "" {
		return "", mdwerror.New("translation not found").
			WithCode(mdwerror.CodeNotFound).
			WithOperation("i18n.TryT").
			WithDetail("key", key).
			WithDetail("locale", locale)
	}

	if len(data) > 0 && data[0] != nil {
		rendered, err := m.renderTemplate(translation, data[0])
		if err != nil {
			return translation, mdwerror.Wrap(err, "template rendering failed").
				WithCode(mdwerror.CodeInvalidInput).
				WithOperation("i18n.renderTemplate").
				WithDetail("key", key)
		}
		return rendered, nil
	}

	return translation, nil
}

// TLocaleWithFallback translates key in locale. When the key does not
// resolve, fallbackMsg is rendered with the same template data.
func (m *Manager) TLocaleWithFallback(locale, key, fallbackMsg string, data ...map[string]interface{}) string {
	if translation, err := m.TryTLocale(locale, key, data...); err == nil {
		return translation
	}

	if len(data) > 0 && data[0] != nil {
		if rendered, err := m.renderTemplate(fallbackMsg, data[0]); err == nil {
			return rendered
		}
	}
	return fallbackMsg
}

// Text resolves a message for the locale carried by ctx, or the default
// locale when ctx has none.
func (m *Manager) Text(ctx context.Context, key, fallbackMsg string, data map[string]interface{}) string {
	locale := LocaleFromContext(ctx)
	if locale == "" {
		locale = m.defaultLocale
	}
	return m.TLocaleWithFallback(locale, key, fallbackMsg, data)
}

// getTranslation retrieves a translation for a specific locale with
// fallback. Callers hold m.mu.
func (m *Manager) getTranslation(key, locale string) string {
	if translations, exists := m.translations[locale]; exists {
		if value := getNestedValue(translations, key); value != "" {
			return value
		}
	}

	// "de-AT" falls back to "de" before the default locale
	if lang, _ := SplitLocale(locale); lang != "" && lang != locale {
		if translations, exists := m.translations[lang]; exists {
			if value := getNestedValue(translations, key); value != "" {
				return value
			}
		}
	}

	if m.fallback && locale != m.defaultLocale {
		if translations, exists := m.translations[m.defaultLocale]; exists {
			return getNestedValue(translations, key)
		}
	}

	return ""
}

// getNestedValue retrieves a nested value using dot notation
func getNestedValue(data map[string]interface{}, key string) string {
	keys := strings.Split(key, ".")
	current := data

	for i, k := range keys {
		if i == len(keys)-1 {
			value, ok := current[k]
			if !ok {
				return ""
			}
			if _, isMap := asMap(value); isMap {
				return ""
			}
			return fmt.Sprintf("%v", value)
		}

		next, ok := asMap(current[k])
		if !ok {
			return ""
		}
		current = next
	}

	return ""
}

// renderTemplate renders a message template with data. Compiled templates
// are cached by source text.
func (m *Manager) renderTemplate(source string, data map[string]interface{}) (string, error) {
	if !strings.Contains(source, "{{") {
		return source, nil
	}

	var tmpl *template.Template
	if cached, ok := m.templates.Load(source); ok {
		tmpl = cached.(*template.Template)
	} else {
		compiled, err := template.New("msg").Option("missingkey=zero").Parse(source)
		if err != nil {
			return source, fmt.Errorf("template compilation failed: %w", err)
		}
		actual, _ := m.templates.LoadOrStore(source, compiled)
		tmpl = actual.(*template.Template)
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return source, fmt.Errorf("template execution failed: %w", err)
	}
	return result.String(), nil
}

// GetDefaultLocale returns the default locale
func (m *Manager) GetDefaultLocale() string {
	return m.defaultLocale
}

// GetAvailableLocales returns a sorted list of loaded locales
func (m *Manager) GetAvailableLocales() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	locales := make([]string, 0, len(m.translations))
	for locale := range m.translations {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// HasLocale checks if a locale is loaded
func (m *Manager) HasLocale(locale string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.translations[locale]
	return exists
}

// GetTranslationKeys returns all keys of the default locale, sorted
func (m *Manager) GetTranslationKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := collectKeys(m.translations[m.defaultLocale], "")
	sort.Strings(keys)
	return keys
}

func collectKeys(data map[string]interface{}, prefix string) []string {
	var keys []string
	for k, v := range data {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if nested, ok := asMap(v); ok {
			keys = append(keys, collectKeys(nested, full)...)
			continue
		}
		keys = append(keys, full)
	}
	return keys
}
