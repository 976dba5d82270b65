// Package catalog loads the locale catalogs that back narrative copy, quest
// titles, dialogue scripts and error templates.
//
// Each file under locales/<locale>/<namespace>.yaml contributes flat
// "messages" (strings) and structured "objects" (dialogue lists and similar).
// Requested locales are matched against the loaded ones ("pt" finds "pt-BR"),
// lookups fall back to the base locale, and translators return the key itself
// on a miss.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the source locale every other locale falls back to.
const BaseLocale = "en-US"

// coreNamespace owns the "core." keys shared by every screen.
const coreNamespace = "core"

// file is one locales/<locale>/<namespace>.yaml document.
type file struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
	Objects   map[string]any    `yaml:"objects"`
}

func (f file) validate(name string) error {
	dirLocale := path.Base(path.Dir(name))
	fileNamespace := strings.TrimSuffix(path.Base(name), path.Ext(name))
	switch {
	case strings.TrimSpace(f.Locale) == "":
		return fmt.Errorf("catalog %s: locale is required", name)
	case f.Locale != dirLocale:
		return fmt.Errorf("catalog %s: locale %q must match directory %q", name, f.Locale, dirLocale)
	case strings.TrimSpace(f.Namespace) == "":
		return fmt.Errorf("catalog %s: namespace is required", name)
	case f.Namespace != fileNamespace:
		return fmt.Errorf("catalog %s: namespace %q must match file name %q", name, f.Namespace, fileNamespace)
	case len(f.Messages) == 0 && len(f.Objects) == 0:
		return fmt.Errorf("catalog %s: messages or objects are required", name)
	}
	return nil
}

// table holds everything one locale defines.
type table struct {
	namespaces map[string]map[string]string
	messages   map[string]string
	objects    map[string]any
}

func newTable() *table {
	return &table{
		namespaces: map[string]map[string]string{},
		messages:   map[string]string{},
		objects:    map[string]any{},
	}
}

// Bundle is an immutable set of locale catalogs.
type Bundle struct {
	tables  map[string]*table
	locales []string
	// matched lists the locale behind each matcher tag, base first.
	matched []string
	matcher language.Matcher
	builder *catalog.Builder
}

//go:embed locales/*/*.yaml
var embedded embed.FS

var defaultBundle = mustLoadEmbedded()

// Default returns the process-wide embedded bundle.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embedded)
}

// LoadFromFS loads every locales/*/*.yaml file of fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	names, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(names)

	b := &Bundle{tables: map[string]*table{}}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", name, err)
		}
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", name, err)
		}
		if err := f.validate(name); err != nil {
			return nil, err
		}
		if err := b.add(name, f); err != nil {
			return nil, err
		}
	}
	if _, ok := b.tables[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	if err := b.index(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) add(name string, f file) error {
	t, ok := b.tables[f.Locale]
	if !ok {
		t = newTable()
		b.tables[f.Locale] = t
	}
	if _, exists := t.namespaces[f.Namespace]; exists {
		return fmt.Errorf("catalog %s: namespace %q already defined for %s", name, f.Namespace, f.Locale)
	}

	namespace := make(map[string]string, len(f.Messages))
	for rawKey, value := range f.Messages {
		key, err := checkKey(name, f.Namespace, rawKey)
		if err != nil {
			return err
		}
		if _, exists := t.messages[key]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in %s", name, key, f.Locale)
		}
		t.messages[key] = value
		namespace[key] = value
	}
	for rawKey, value := range f.Objects {
		key, err := checkKey(name, f.Namespace, rawKey)
		if err != nil {
			return err
		}
		if _, exists := t.objects[key]; exists {
			return fmt.Errorf("catalog %s: duplicate object %q in %s", name, key, f.Locale)
		}
		t.objects[key] = value
	}
	t.namespaces[f.Namespace] = namespace
	return nil
}

func checkKey(name, namespace, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("catalog %s: message key cannot be blank", name)
	}
	if strings.HasPrefix(key, coreNamespace+".") && namespace != coreNamespace {
		return "", fmt.Errorf("catalog %s: key %q must be defined in core namespace", name, key)
	}
	return key, nil
}

// index builds the locale matcher, base locale first, and a printf catalog
// holding every locale's messages completed with base values.
func (b *Bundle) index() error {
	b.locales = make([]string, 0, len(b.tables))
	for locale := range b.tables {
		b.locales = append(b.locales, locale)
	}
	sort.Strings(b.locales)

	tags := []language.Tag{language.MustParse(BaseLocale)}
	b.matched = []string{BaseLocale}
	b.builder = catalog.NewBuilder(catalog.Fallback(tags[0]))
	for _, locale := range b.locales {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		if locale != BaseLocale {
			tags = append(tags, tag)
			b.matched = append(b.matched, locale)
		}
		for key, value := range b.Messages(locale) {
			if err := b.builder.SetString(tag, key, value); err != nil {
				return fmt.Errorf("register %s %q: %w", locale, key, err)
			}
		}
	}
	b.matcher = language.NewMatcher(tags)
	return nil
}

// HasLocale reports whether the bundle defines exactly locale.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.tables[strings.TrimSpace(locale)]
	return ok
}

// Locales returns the sorted locale identifiers.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.locales...)
}

// Resolve maps a requested locale onto a loaded one. Exact names win, then
// the closest language match; anything else resolves to BaseLocale.
func (b *Bundle) Resolve(locale string) string {
	locale = strings.TrimSpace(locale)
	if b == nil || b.HasLocale(locale) {
		return locale
	}
	tag, err := language.Parse(locale)
	if err != nil || b.matcher == nil {
		return BaseLocale
	}
	_, index, confidence := b.matcher.Match(tag)
	if confidence == language.No || index < 0 || index >= len(b.matched) {
		return BaseLocale
	}
	return b.matched[index]
}

// Messages returns the locale's messages completed with base values.
func (b *Bundle) Messages(locale string) map[string]string {
	out := map[string]string{}
	for _, candidate := range b.fallbacks(locale) {
		for key, value := range b.tables[candidate].messages {
			if _, ok := out[key]; !ok {
				out[key] = value
			}
		}
	}
	return out
}

// Message returns one message with base-locale fallback.
func (b *Bundle) Message(locale string, key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	for _, candidate := range b.fallbacks(locale) {
		if value, ok := b.tables[candidate].messages[key]; ok {
			return value, true
		}
	}
	return "", false
}

// Object returns one structured value with base-locale fallback. The value is
// shared with the bundle and must be treated as read-only.
func (b *Bundle) Object(locale string, key string) (any, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	for _, candidate := range b.fallbacks(locale) {
		if value, ok := b.tables[candidate].objects[key]; ok {
			return value, true
		}
	}
	return nil, false
}

// Namespace returns the messages of one namespace for the resolved locale,
// completed with base values, along with the locale that was resolved.
func (b *Bundle) Namespace(locale string, namespace string) (string, map[string]string) {
	resolved := b.Resolve(locale)
	namespace = strings.TrimSpace(namespace)
	out := map[string]string{}
	for _, candidate := range b.fallbacks(resolved) {
		for key, value := range b.tables[candidate].namespaces[namespace] {
			if _, ok := out[key]; !ok {
				out[key] = value
			}
		}
	}
	return resolved, out
}

// Translator resolves copy for one locale.
func (b *Bundle) Translator(locale string) *Translator {
	resolved := b.Resolve(locale)
	if !b.HasLocale(resolved) {
		resolved = BaseLocale
	}
	var printer *message.Printer
	if b != nil && b.builder != nil {
		printer = message.NewPrinter(language.MustParse(resolved), message.Catalog(b.builder))
	}
	return &Translator{bundle: b, locale: resolved, printer: printer}
}

// fallbacks lists the loaded locales consulted for locale, most specific
// first.
func (b *Bundle) fallbacks(locale string) []string {
	if b == nil {
		return nil
	}
	locale = strings.TrimSpace(locale)
	out := make([]string, 0, 2)
	if _, ok := b.tables[locale]; ok {
		out = append(out, locale)
	}
	if locale != BaseLocale {
		if _, ok := b.tables[BaseLocale]; ok {
			out = append(out, BaseLocale)
		}
	}
	return out
}

func mustLoadEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return bundle
}
