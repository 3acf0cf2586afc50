// File: locale.go
// Title: Locale Detection and Context Propagation
// Description: Locale normalization, Accept-Language matching against the
//              loaded catalogs and carrying the request locale in a
//              context.Context so capabilities render messages per request.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation of locale detection
// - 2026-10-17 v0.2.0: Context locales, display name tables removed

package i18n

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
)

type localeKey struct{}

// WithLocale returns a context carrying the normalized locale
func WithLocale(ctx context.Context, locale string) context.Context {
	normalized := NormalizeLocale(locale)
	if normalized == "" {
		return ctx
	}
	return context.WithValue(ctx, localeKey{}, normalized)
}

// LocaleFromContext returns the locale stored by WithLocale, or ""
func LocaleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	locale, _ := ctx.Value(localeKey{}).(string)
	return locale
}

// LocalePreference represents a locale preference with quality score
type LocalePreference struct {
	Locale  string  // Locale code (e.g., "en", "en-US", "de-DE")
	Quality float64 // Quality score (0.0 - 1.0)
}

// DetectLocale detects the best matching loaded locale from an
// Accept-Language header value
func (m *Manager) DetectLocale(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return m.defaultLocale
	}

	preferences := ParseAcceptLanguage(acceptLanguage)
	if len(preferences) == 0 {
		return m.defaultLocale
	}

	if best := findBestLocaleMatch(preferences, m.GetAvailableLocales()); best != "" {
		return best
	}
	return m.defaultLocale
}

// ParseAcceptLanguage parses an Accept-Language header into locale
// preferences ordered by quality, highest first
func ParseAcceptLanguage(acceptLang string) []LocalePreference {
	var preferences []LocalePreference

	for _, part := range strings.Split(acceptLang, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// "en-US;q=0.9", "en;q=0.8" or "de"
		locale := part
		quality := 1.0
		if idx := strings.Index(part, ";"); idx >= 0 {
			locale = strings.TrimSpace(part[:idx])
			for _, param := range strings.Split(part[idx+1:], ";") {
				param = strings.TrimSpace(param)
				if q, ok := strings.CutPrefix(param, "q="); ok {
					if parsed, err := strconv.ParseFloat(q, 64); err == nil {
						quality = parsed
					}
					break
				}
			}
		}

		if locale != "" && locale != "*" && quality > 0 {
			preferences = append(preferences, LocalePreference{Locale: locale, Quality: quality})
		}
	}

	sort.SliceStable(preferences, func(i, j int) bool {
		return preferences[i].Quality > preferences[j].Quality
	})
	return preferences
}

func findBestLocaleMatch(preferences []LocalePreference, available []string) string {
	for _, pref := range preferences {
		locale := NormalizeLocale(pref.Locale)
		if locale == "" {
			continue
		}

		for _, candidate := range available {
			if strings.EqualFold(locale, candidate) {
				return candidate
			}
		}

		// "en-US" matches "en", "en" matches "en-GB"
		lang, _ := SplitLocale(locale)
		for _, candidate := range available {
			if candidate == lang {
				return candidate
			}
		}
		for _, candidate := range available {
			if strings.HasPrefix(candidate, lang+"-") {
				return candidate
			}
		}
	}
	return ""
}

// NormalizeLocale normalizes a locale string to "ll" or "ll-CC". It
// returns "" for malformed input.
func NormalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		return ""
	}
	locale = strings.ReplaceAll(locale, "_", "-")

	parts := strings.Split(locale, "-")
	language := parts[0]
	if len(language) != 2 && len(language) != 3 {
		return ""
	}
	for _, r := range language {
		if r < 'a' || r > 'z' {
			return ""
		}
	}

	if len(parts) > 1 && len(parts[1]) == 2 {
		return language + "-" + strings.ToUpper(parts[1])
	}
	return language
}

// ValidateLocale validates if a locale string is in valid format
func ValidateLocale(locale string) error {
	if strings.TrimSpace(locale) == "" {
		return mdwerror.New("locale cannot be empty").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("i18n.ValidateLocale")
	}

	if NormalizeLocale(locale) == "" {
		return mdwerror.New("invalid locale format").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("i18n.ValidateLocale").
			WithDetail("locale", locale).
			WithDetail("expected_format", "e.g., 'en', 'en-US'")
	}
	return nil
}

// SplitLocale splits a locale into language and country parts
func SplitLocale(locale string) (language, country string) {
	normalized := NormalizeLocale(locale)
	if normalized == "" {
		return "", ""
	}
	language, country, _ = strings.Cut(normalized, "-")
	return language, country
}

// ParseLocaleFromFilename extracts the locale from a catalog file name
// such as "de_AT.yaml"
func ParseLocaleFromFilename(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return NormalizeLocale(strings.ReplaceAll(name, "_", "-"))
}
