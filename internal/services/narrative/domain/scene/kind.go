package scene

import (
	"fmt"
	"strings"
)

// Kind is the closed set of scene variants.
type Kind int

const (
	KindUnknown Kind = iota
	KindLoading
	KindTitle
	KindNarrator
	KindMainCharacter
	KindInteractive
	KindLibrary
	KindMap
	KindEnding
)

var kindNames = map[Kind]string{
	KindLoading:       "loading",
	KindTitle:         "title",
	KindNarrator:      "narrator",
	KindMainCharacter: "mainCharacter",
	KindInteractive:   "interactive",
	KindLibrary:       "library",
	KindMap:           "map",
	KindEnding:        "ending",
}

// String returns the content name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a content name to a Kind.
func ParseKind(name string) (Kind, error) {
	trimmed := strings.TrimSpace(name)
	for kind, candidate := range kindNames {
		if candidate == trimmed {
			return kind, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown scene kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Dialogue reports whether scenes of this kind run a dialogue sequence of
// their own.
func (k Kind) Dialogue() bool {
	switch k {
	case KindNarrator, KindMainCharacter, KindInteractive:
		return true
	case KindLoading, KindTitle, KindLibrary, KindMap, KindEnding:
		return false
	default:
		return false
	}
}

// Hub reports whether the kind launches branch-only quest scenes.
func (k Kind) Hub() bool {
	return k == KindLibrary || k == KindMap
}
