// File: doc.go
// Title: Internationalization (i18n) Package Documentation
// Description: Package i18n provides message catalogs for formplan with
//              TOML and YAML language files, locale detection and template
//              interpolation.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with TOML/YAML support
// - 2026-10-17 v0.2.0: Embedded validation catalogs and context locales

/*
Package i18n provides the message catalogs used by the validation engine and
the built-in capabilities.

The embedded catalogs (locales/en.toml, locales/de.toml) hold every message
key emitted by formplan, for example:

	[validation]
	required = "This field is required"

	[validation.number]
	range = "Must be between {{.min}} and {{.max}}"

A directory configured through Options.LocalesDir is loaded on top of the
embedded files. Files are named after their locale ("de.toml",
"pt_BR.yaml") and merged key by key, so an override file only needs the
keys it changes.

# Lookup

Keys are dotted paths into the nested catalog. A lookup tries the requested
locale, then its base language ("de-AT" -> "de"), then the default locale.
Messages containing "{{" are rendered with text/template; compiled
templates are cached per message text.

	m, err := i18n.New(i18n.Options{DefaultLocale: "en", LocalesDir: "./locales"})
	if err != nil {
		return err
	}
	msg := m.TLocaleWithFallback("de", "validation.number.range", "out of range",
		map[string]interface{}{"min": 1, "max": 20000})

# Request locales

Servers resolve the caller's locale once and store it in the context:

	ctx = i18n.WithLocale(ctx, m.DetectLocale(acceptLanguage))
	msg := m.Text(ctx, "validation.required", "This field is required", nil)

Manager is safe for concurrent use. Reload swaps in freshly read catalogs
and keeps the old ones when reading fails.
*/
package i18n
