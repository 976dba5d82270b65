// Package scene resolves scene ids against the static, ordered scene
// sequence that defines the primary linear path of the game.
//
// Branch-only scenes (quest scenes launched from the library or the map) are
// deliberately absent from the sequence: Resolve, Next and Previous never
// return them, and routing into or out of them is decided by the router.
package scene

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Well-known scene ids the router and quest tracker route to.
const (
	IDTitle   = "title"
	IDLibrary = "library"
	IDMap     = "map"
	IDEnding  = "ending"
)

// Branch-only scene ids.
const (
	LibraryInteractive = "library-interactive"
	MapInteractive     = "map-interactive"
)

// IsBranch reports whether id names a branch-only scene.
func IsBranch(id string) bool {
	return id == LibraryInteractive || id == MapInteractive
}

// BranchOwner returns the hub scene id that launches the branch scene.
func BranchOwner(id string) (string, bool) {
	switch id {
	case LibraryInteractive:
		return IDLibrary, true
	case MapInteractive:
		return IDMap, true
	default:
		return "", false
	}
}

// BranchFor returns the branch scene id launched from a hub scene.
func BranchFor(hubID string) (string, bool) {
	switch hubID {
	case IDLibrary:
		return LibraryInteractive, true
	case IDMap:
		return MapInteractive, true
	default:
		return "", false
	}
}

// Descriptor is one static scene. Only the fields relevant to Kind are set.
type Descriptor struct {
	ID   string `yaml:"id" validate:"required"`
	Kind Kind   `yaml:"kind" validate:"required"`

	// Assets lists preload paths for loading scenes.
	Assets []string `yaml:"assets,omitempty" validate:"omitempty,dive,required"`
	// TitleKey is the translation key for title, ending and interactive scenes.
	TitleKey string `yaml:"titleKey,omitempty"`
	// DialogueKey selects the dialogue for narrator, mainCharacter and interactive scenes.
	DialogueKey string `yaml:"dialogueKey,omitempty"`
	// ResumeFromLast resumes narrator and mainCharacter scenes at the last shown line.
	ResumeFromLast bool `yaml:"resumeFromLast,omitempty"`
	// QuestID is the quest hosted by an interactive scene.
	QuestID string `yaml:"questId,omitempty"`
	// IntroDialogueKey is the one-shot intro shown by library and map scenes.
	IntroDialogueKey string `yaml:"introDialogueKey,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateKindFields, Descriptor{})
	return v
}

func validateKindFields(sl validator.StructLevel) {
	d := sl.Current().Interface().(Descriptor)
	require := func(value string, field string) {
		if strings.TrimSpace(value) == "" {
			sl.ReportError(value, field, field, "required_for_kind", d.Kind.String())
		}
	}
	switch d.Kind {
	case KindLoading:
	case KindTitle, KindEnding:
		require(d.TitleKey, "TitleKey")
	case KindNarrator, KindMainCharacter:
		require(d.DialogueKey, "DialogueKey")
	case KindInteractive:
		require(d.DialogueKey, "DialogueKey")
		require(d.QuestID, "QuestID")
		require(d.TitleKey, "TitleKey")
	case KindLibrary, KindMap:
		require(d.IntroDialogueKey, "IntroDialogueKey")
	case KindUnknown:
	}
}

// Validate checks the descriptor against its kind.
func (d Descriptor) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("scene %q: %w", d.ID, err)
	}
	return nil
}

// Graph is the ordered scene sequence.
type Graph struct {
	scenes []Descriptor
	index  map[string]int
}

// NewGraph validates scenes and builds the lookup index. Ids must be unique
// and branch-only ids may not appear in the sequence.
func NewGraph(scenes []Descriptor) (*Graph, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("scene sequence is empty")
	}
	g := &Graph{
		scenes: make([]Descriptor, len(scenes)),
		index:  make(map[string]int, len(scenes)),
	}
	for i, d := range scenes {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if IsBranch(d.ID) {
			return nil, fmt.Errorf("scene %q: branch-only ids cannot be part of the sequence", d.ID)
		}
		if _, exists := g.index[d.ID]; exists {
			return nil, fmt.Errorf("scene %q: duplicate id", d.ID)
		}
		d.Assets = append([]string(nil), d.Assets...)
		g.scenes[i] = d
		g.index[d.ID] = i
	}
	return g, nil
}

// Resolve looks id up in the sequence.
func (g *Graph) Resolve(id string) (Descriptor, bool) {
	i, ok := g.index[id]
	if !ok {
		return Descriptor{}, false
	}
	return g.scenes[i], true
}

// Next returns the scene after id, or false at the end of the sequence or for
// ids outside it.
func (g *Graph) Next(id string) (Descriptor, bool) {
	i, ok := g.index[id]
	if !ok || i+1 >= len(g.scenes) {
		return Descriptor{}, false
	}
	return g.scenes[i+1], true
}

// Previous returns the scene before id, or false at the start of the sequence
// or for ids outside it.
func (g *Graph) Previous(id string) (Descriptor, bool) {
	i, ok := g.index[id]
	if !ok || i == 0 {
		return Descriptor{}, false
	}
	return g.scenes[i-1], true
}

// First returns the first scene of the sequence.
func (g *Graph) First() Descriptor {
	return g.scenes[0]
}

// Scenes returns a copy of the sequence.
func (g *Graph) Scenes() []Descriptor {
	out := make([]Descriptor, len(g.scenes))
	copy(out, g.scenes)
	return out
}

// Known reports whether id is either in the sequence or a branch-only id.
func (g *Graph) Known(id string) bool {
	_, ok := g.index[id]
	return ok || IsBranch(id)
}
