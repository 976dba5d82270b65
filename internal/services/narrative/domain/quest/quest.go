// Package quest tracks quest completion and decides where the player goes
// when an interactive scene ends.
package quest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Owner is the context that launches a quest.
type Owner int

const (
	OwnerUnknown Owner = iota
	// OwnerLinear quests live in an interactive scene of the main sequence.
	OwnerLinear
	// OwnerLibrary quests are launched from the library hub.
	OwnerLibrary
	// OwnerMap quests are launched from the map hub.
	OwnerMap
)

var ownerNames = map[Owner]string{
	OwnerLinear:  "linear",
	OwnerLibrary: "library",
	OwnerMap:     "map",
}

func (o Owner) String() string {
	if name, ok := ownerNames[o]; ok {
		return name
	}
	return "unknown"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Owner) UnmarshalText(text []byte) error {
	for owner, name := range ownerNames {
		if name == strings.TrimSpace(string(text)) {
			*o = owner
			return nil
		}
	}
	return fmt.Errorf("unknown quest owner %q", text)
}

// Kind classifies a quest for routing and the totality check.
type Kind int

const (
	KindUnknown Kind = iota
	KindLesson
	KindProof
	KindChallenge
)

var kindNames = map[Kind]string{
	KindLesson:    "lesson",
	KindProof:     "proof",
	KindChallenge: "challenge",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == strings.TrimSpace(string(text)) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown quest kind %q", text)
}

// Descriptor is one static quest.
type Descriptor struct {
	ID          string   `yaml:"id" validate:"required"`
	Owner       Owner    `yaml:"owner" validate:"required"`
	Kind        Kind     `yaml:"kind" validate:"required"`
	DialogueKey string   `yaml:"dialogueKey" validate:"required"`
	TitleKey    string   `yaml:"titleKey" validate:"required"`
	Requires    []string `yaml:"requires,omitempty" validate:"omitempty,dive,required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Registry indexes the static quest list.
type Registry struct {
	quests []Descriptor
	index  map[string]int
}

// NewRegistry validates quests. Ids must be unique and every requirement must
// name another known quest.
func NewRegistry(quests []Descriptor) (*Registry, error) {
	r := &Registry{
		quests: make([]Descriptor, 0, len(quests)),
		index:  make(map[string]int, len(quests)),
	}
	for _, q := range quests {
		if err := validate.Struct(q); err != nil {
			return nil, fmt.Errorf("quest %q: %w", q.ID, err)
		}
		if _, exists := r.index[q.ID]; exists {
			return nil, fmt.Errorf("quest %q: duplicate id", q.ID)
		}
		q.Requires = slices.Clone(q.Requires)
		r.index[q.ID] = len(r.quests)
		r.quests = append(r.quests, q)
	}
	for _, q := range r.quests {
		for _, required := range q.Requires {
			if required == q.ID {
				return nil, fmt.Errorf("quest %q: requires itself", q.ID)
			}
			if _, ok := r.index[required]; !ok {
				return nil, fmt.Errorf("quest %q: requires unknown quest %q", q.ID, required)
			}
		}
	}
	return r, nil
}

// Get returns the quest with id.
func (r *Registry) Get(id string) (Descriptor, bool) {
	i, ok := r.index[strings.TrimSpace(id)]
	if !ok {
		return Descriptor{}, false
	}
	return r.quests[i], true
}

// All returns the quests in declaration order.
func (r *Registry) All() []Descriptor {
	return slices.Clone(r.quests)
}

// OwnedBy returns the quests launched by owner, in declaration order.
func (r *Registry) OwnedBy(owner Owner) []Descriptor {
	var out []Descriptor
	for _, q := range r.quests {
		if q.Owner == owner {
			out = append(out, q)
		}
	}
	return out
}

// IDsOfKind returns the ids of every quest of kind, in declaration order.
func (r *Registry) IDsOfKind(kind Kind) []string {
	var out []string
	for _, q := range r.quests {
		if q.Kind == kind {
			out = append(out, q.ID)
		}
	}
	return out
}
