package catalog

import (
	"math"
	"sort"
	"strings"
)

// Coverage summarises how much of the base locale a locale translates
// itself. Keys it leaves out fall back to the base locale at runtime.
type Coverage struct {
	Locale     string
	BaseKeys   int
	Translated int
	Missing    []string
	Extra      []string
	Completion float64
}

// Coverage compares the messages and objects of locale with BaseLocale.
func (b *Bundle) Coverage(locale string) Coverage {
	locale = strings.TrimSpace(locale)
	base := b.keySet(BaseLocale)
	target := b.keySet(locale)

	missing := missingKeys(base, target)
	translated := len(base) - len(missing)
	return Coverage{
		Locale:     locale,
		BaseKeys:   len(base),
		Translated: translated,
		Missing:    missing,
		Extra:      missingKeys(target, base),
		Completion: percent(translated, len(base)),
	}
}

func (b *Bundle) keySet(locale string) map[string]struct{} {
	out := map[string]struct{}{}
	if b == nil {
		return out
	}
	t, ok := b.tables[locale]
	if !ok {
		return out
	}
	for key := range t.messages {
		out[key] = struct{}{}
	}
	for key := range t.objects {
		out[key] = struct{}{}
	}
	return out
}

// missingKeys returns the sorted keys of base absent from target.
func missingKeys(base, target map[string]struct{}) []string {
	out := make([]string, 0)
	for key := range base {
		if _, ok := target[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func percent(numerator int, denominator int) float64 {
	if denominator <= 0 {
		return 100
	}
	value := float64(numerator) * 100 / float64(denominator)
	return math.Round(value*10) / 10
}
