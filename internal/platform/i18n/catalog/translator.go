package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/message"
)

// Translator looks up copy for a single locale.
type Translator struct {
	bundle  *Bundle
	locale  string
	printer *message.Printer
}

// Locale returns the locale the translator resolved to.
func (t *Translator) Locale() string {
	return t.locale
}

// Text returns the message for key, or key itself when it is missing.
func (t *Translator) Text(key string) string {
	return t.Format(key)
}

// Format renders the message for key with printf-style arguments. Missing
// keys render as the key itself.
func (t *Translator) Format(key string, args ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if t.printer != nil {
		return t.printer.Sprintf(key, args...)
	}
	if value, ok := t.bundle.Message(t.locale, key); ok {
		return fmt.Sprintf(value, args...)
	}
	return key
}

// Object returns the structured value for key. Missing keys return the key
// string, which callers treat as malformed data.
func (t *Translator) Object(key string) any {
	if value, ok := t.bundle.Object(t.locale, key); ok {
		return value
	}
	return key
}
