// Package i18n renders localized messages for domain error codes. Templates
// live in the "errors" namespace of the shared locale catalogs and use
// text/template syntax over the error metadata.
package i18n

import (
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/theorem-trail/internal/platform/i18n/catalog"
)

// Namespace is the catalog namespace holding error templates.
const Namespace = "errors"

// Catalog renders error templates for one locale.
type Catalog struct {
	locale    string
	raw       map[string]string
	templates map[string]*template.Template
}

// catalogs caches one Catalog per resolved locale of the default bundle.
var catalogs sync.Map

// GetCatalog returns the catalog for locale. Locales resolve through the
// shared bundle, and codes a locale leaves out use the base template.
func GetCatalog(locale string) *Catalog {
	bundle := i18ncatalog.Default()
	resolved := bundle.Resolve(locale)
	if cached, ok := catalogs.Load(resolved); ok {
		return cached.(*Catalog)
	}
	_, templates := bundle.Namespace(resolved, Namespace)
	cached, _ := catalogs.LoadOrStore(resolved, NewCatalog(resolved, templates))
	return cached.(*Catalog)
}

// NewCatalog parses templates keyed by error code. Templates that fail to
// parse render verbatim.
func NewCatalog(locale string, templates map[string]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		raw:       make(map[string]string, len(templates)),
		templates: make(map[string]*template.Template, len(templates)),
	}
	for code, text := range templates {
		c.raw[code] = text
		if !strings.Contains(text, "{{") {
			continue
		}
		if tmpl, err := template.New(code).Option("missingkey=zero").Parse(text); err == nil {
			c.templates[code] = tmpl
		}
	}
	return c
}

// Locale returns the locale this catalog renders.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the template for code with metadata. Unknown codes render
// as the code itself, and templates that fail to execute render verbatim.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	text, ok := c.raw[code]
	if !ok {
		return code
	}
	tmpl, ok := c.templates[code]
	if !ok {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, metadata); err != nil {
		return text
	}
	return out.String()
}
