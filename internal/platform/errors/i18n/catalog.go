// Package i18n renders localized hunt error messages keyed by error code.
package i18n

import (
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/trailhunt/internal/platform/i18n/catalog"
)

// Catalog holds one locale's error message templates, keyed by the
// machine-readable error code (a string here to avoid an import cycle
// with the errors package).
type Catalog struct {
	locale    string
	templates map[string]*messageTemplate
}

// messageTemplate keeps the raw text next to the parsed template so a
// template that fails to parse or execute still renders as its raw text.
type messageTemplate struct {
	raw  string
	tmpl *template.Template
}

var (
	catalogsMu sync.RWMutex
	// catalogs holds override and runtime-built catalogs by locale.
	catalogs = map[string]*Catalog{}
)

// GetCatalog returns the catalog for the given locale, building it from
// the embedded errors namespace on first use. Unknown locales fall back
// to en-US.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}

	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	resolvedLocale, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(requested, "errors")
	if c, ok := lookupCatalog(resolvedLocale); ok {
		return c
	}

	return storeCatalogIfAbsent(resolvedLocale, NewCatalog(resolvedLocale, messages))
}

// NewCatalog builds a catalog from code-to-template pairs, parsing each
// template once up front.
func NewCatalog(locale string, messages map[string]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		templates: make(map[string]*messageTemplate, len(messages)),
	}
	for code, raw := range messages {
		mt := &messageTemplate{raw: raw}
		if t, err := template.New(code).Parse(raw); err == nil {
			mt.tmpl = t
		}
		c.templates[code] = mt
	}
	return c
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template for code with the given metadata.
// Unknown codes render as the code itself. Templates always execute,
// even with nil metadata, so variables without metadata render empty.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	mt, ok := c.templates[code]
	if !ok {
		return code
	}
	if mt.tmpl == nil {
		return mt.raw
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	var buf strings.Builder
	if err := mt.tmpl.Execute(&buf, metadata); err != nil {
		return mt.raw
	}
	return buf.String()
}

// RegisterCatalog registers a catalog for the given locale, replacing
// any built one. This is primarily for testing purposes. Callers should
// only use this during init or in single-threaded test setup.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

func storeCatalogIfAbsent(locale string, candidate *Catalog) *Catalog {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[locale]; ok {
		return existing
	}
	catalogs[locale] = candidate
	return candidate
}
