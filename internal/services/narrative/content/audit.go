package content

import (
	"errors"
	"fmt"
	"slices"

	"github.com/louisbranch/theorem-trail/internal/platform/i18n/catalog"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/dialogue"
)

// Audit checks that every dialogue and title key referenced by the content
// resolves in the locale catalog. All problems are reported together.
func (c *Content) Audit(bundle *catalog.Bundle, locale string) error {
	if bundle == nil {
		return invalid("catalog", errors.New("bundle is required"))
	}
	if !bundle.HasLocale(locale) {
		return invalid("catalog", fmt.Errorf("unknown locale %q", locale))
	}

	var problems []error
	for _, key := range c.DialogueKeys() {
		obj, ok := bundle.Object(locale, key)
		if !ok {
			problems = append(problems, invalid(locale, fmt.Errorf("dialogue %q is missing", key)))
			continue
		}
		if _, ok := dialogue.FromObject(obj); !ok {
			problems = append(problems, invalid(locale, fmt.Errorf("dialogue %q is malformed", key)))
		}
	}
	for _, key := range c.TitleKeys() {
		if _, ok := bundle.Message(locale, key); !ok {
			problems = append(problems, invalid(locale, fmt.Errorf("title %q is missing", key)))
		}
	}
	return errors.Join(problems...)
}

// DialogueKeys lists every dialogue key referenced by scenes and quests.
func (c *Content) DialogueKeys() []string {
	var keys []string
	for _, d := range c.Scenes.Scenes() {
		keys = appendKey(keys, d.DialogueKey)
		keys = appendKey(keys, d.IntroDialogueKey)
	}
	for _, q := range c.Quests.All() {
		keys = appendKey(keys, q.DialogueKey)
	}
	slices.Sort(keys)
	return keys
}

// TitleKeys lists every title key referenced by scenes and quests.
func (c *Content) TitleKeys() []string {
	var keys []string
	for _, d := range c.Scenes.Scenes() {
		keys = appendKey(keys, d.TitleKey)
	}
	for _, q := range c.Quests.All() {
		keys = appendKey(keys, q.TitleKey)
	}
	slices.Sort(keys)
	return keys
}

func appendKey(keys []string, key string) []string {
	if key == "" || slices.Contains(keys, key) {
		return keys
	}
	return append(keys, key)
}
