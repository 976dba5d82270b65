// Package content loads the static scene sequence, quest list and event
// gates embedded in the binary.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	apperrors "github.com/louisbranch/theorem-trail/internal/platform/errors"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/gate"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/quest"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/scene"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embeddedFS embed.FS

var (
	loadEmbeddedOnce sync.Once
	embeddedContent  *Content
	embeddedErr      error
)

// Content is the validated static game data. It is immutable.
type Content struct {
	Scenes *scene.Graph
	Quests *quest.Registry
	Gates  *gate.Evaluator
}

type scenesDocument struct {
	Scenes []scene.Descriptor `yaml:"scenes"`
}

type questsDocument struct {
	Quests []quest.Descriptor `yaml:"quests"`
}

type gatesDocument struct {
	Gates gate.Config `yaml:"gates"`
}

// Embedded returns the content compiled into the binary. It is decoded and
// validated once.
func Embedded() (*Content, error) {
	loadEmbeddedOnce.Do(func() {
		embeddedContent, embeddedErr = Load(embeddedFS)
	})
	return embeddedContent, embeddedErr
}

// Load reads data/scenes.yaml, data/quests.yaml and data/gates.yaml from fsys.
func Load(fsys fs.FS) (*Content, error) {
	var scenes scenesDocument
	if err := decode(fsys, "data/scenes.yaml", &scenes); err != nil {
		return nil, err
	}
	var quests questsDocument
	if err := decode(fsys, "data/quests.yaml", &quests); err != nil {
		return nil, err
	}
	var gates gatesDocument
	if err := decode(fsys, "data/gates.yaml", &gates); err != nil {
		return nil, err
	}

	graph, err := scene.NewGraph(scenes.Scenes)
	if err != nil {
		return nil, invalid("scenes", err)
	}
	registry, err := quest.NewRegistry(quests.Quests)
	if err != nil {
		return nil, invalid("quests", err)
	}
	evaluator, err := gate.NewEvaluator(gates.Gates, gate.LadderSteps)
	if err != nil {
		return nil, invalid("gates", err)
	}

	c := &Content{Scenes: graph, Quests: registry, Gates: evaluator}
	if err := c.crossCheck(); err != nil {
		return nil, invalid("cross references", err)
	}
	return c, nil
}

func decode(fsys fs.FS, path string, out any) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return invalid(path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return invalid(path, err)
	}
	return nil
}

func (c *Content) crossCheck() error {
	wellKnown := map[string]scene.Kind{
		scene.IDTitle:   scene.KindTitle,
		scene.IDLibrary: scene.KindLibrary,
		scene.IDMap:     scene.KindMap,
		scene.IDEnding:  scene.KindEnding,
	}
	for id, kind := range wellKnown {
		d, ok := c.Scenes.Resolve(id)
		if !ok {
			return fmt.Errorf("scene %q is required", id)
		}
		if d.Kind != kind {
			return fmt.Errorf("scene %q must be of kind %s, got %s", id, kind, d.Kind)
		}
	}

	dialogueKeys := map[string]bool{}
	for _, d := range c.Scenes.Scenes() {
		if d.DialogueKey != "" {
			dialogueKeys[d.DialogueKey] = true
		}
		if d.Kind != scene.KindInteractive {
			continue
		}
		q, ok := c.Quests.Get(d.QuestID)
		if !ok {
			return fmt.Errorf("scene %q hosts unknown quest %q", d.ID, d.QuestID)
		}
		if q.Owner != quest.OwnerLinear {
			return fmt.Errorf("scene %q hosts quest %q owned by %s", d.ID, q.ID, q.Owner)
		}
	}

	for _, q := range c.Quests.All() {
		dialogueKeys[q.DialogueKey] = true
	}
	for _, id := range quest.Proofs {
		if err := requireQuest(c.Quests, id, quest.KindProof); err != nil {
			return err
		}
	}
	for _, id := range quest.Challenges {
		if err := requireQuest(c.Quests, id, quest.KindChallenge); err != nil {
			return err
		}
	}

	for _, key := range c.Gates.DialogueKeys() {
		if !dialogueKeys[key] {
			return fmt.Errorf("gate for unknown dialogue %q", key)
		}
	}
	return nil
}

func requireQuest(registry *quest.Registry, id string, kind quest.Kind) error {
	q, ok := registry.Get(id)
	if !ok {
		return fmt.Errorf("quest %q is required", id)
	}
	if q.Kind != kind || q.Owner != quest.OwnerMap {
		return fmt.Errorf("quest %q must be a map %s", id, kind)
	}
	return nil
}

func invalid(what string, cause error) error {
	reason := fmt.Sprintf("%s: %v", what, cause)
	return apperrors.WrapWithMetadata(apperrors.CodeContentInvalid, "invalid content: "+reason, map[string]string{"Reason": reason}, cause)
}
