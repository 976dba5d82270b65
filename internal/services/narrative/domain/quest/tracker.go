package quest

import (
	"slices"

	apperrors "github.com/louisbranch/theorem-trail/internal/platform/errors"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/scene"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/state"
)

// Totality sets: the game ends once every proof and every challenge is done.
var (
	Proofs     = []string{"pouring", "dissection"}
	Challenges = []string{"pebble", "ladder", "final"}
)

var (
	// ErrNotFound is returned for quest ids missing from the registry.
	ErrNotFound = apperrors.New(apperrors.CodeQuestNotFound, "quest not found")
	// ErrLocked is returned when a quest's requirements are not completed.
	ErrLocked = apperrors.New(apperrors.CodeQuestLocked, "quest is locked")
	// ErrNotSelectable is returned when a hub tries to launch a quest it does not own.
	ErrNotSelectable = apperrors.New(apperrors.CodeQuestNotSelectable, "quest cannot be launched from this scene")
)

// Outcome describes the result of finishing a quest.
type Outcome struct {
	QuestID string
	// Destination is the scene id to route to.
	Destination string
	// FirstCompletion is false when the quest was already completed.
	FirstCompletion bool
	// Totality reports whether every proof and challenge is now completed.
	Totality bool
}

// Progress summarises completion for the progress bar.
type Progress struct {
	Completed  int
	Total      int
	Proofs     int
	Challenges int
}

// Tracker applies quest completion to the game state.
type Tracker struct {
	registry   *Registry
	graph      *scene.Graph
	proofs     []string
	challenges []string
}

// NewTracker creates a tracker using the fixed totality sets.
func NewTracker(registry *Registry, graph *scene.Graph) *Tracker {
	return &Tracker{
		registry:   registry,
		graph:      graph,
		proofs:     slices.Clone(Proofs),
		challenges: slices.Clone(Challenges),
	}
}

// Registry returns the quest registry.
func (t *Tracker) Registry() *Registry {
	return t.registry
}

// Complete records questID as completed. Completing twice is a no-op.
func Complete(questID string) state.Updater {
	return state.CompleteQuest(questID)
}

// Finish completes questID and returns where to route next. The destination
// is computed against the state after the quest id was recorded, inside the
// same atomic update, and the active quest is cleared.
func (t *Tracker) Finish(store *state.Store, questID string) (Outcome, error) {
	quest, ok := t.registry.Get(questID)
	if !ok {
		return Outcome{}, apperrors.WithMetadata(apperrors.CodeQuestNotFound, "finish unknown quest "+questID, map[string]string{"QuestID": questID})
	}

	outcome := Outcome{QuestID: quest.ID}
	store.Update(func(prev state.GameState) state.GameState {
		outcome.FirstCompletion = !prev.HasCompletedQuest(quest.ID)
		next := Complete(quest.ID)(prev)
		next = state.ClearActiveQuest()(next)
		if outcome.FirstCompletion && quest.Owner != OwnerLinear {
			next = state.AddFadingBadge(quest.ID)(next)
		}
		outcome.Totality = t.Totality(next)
		outcome.Destination = t.destination(quest, next)
		return next
	})
	return outcome, nil
}

func (t *Tracker) destination(quest Descriptor, next state.GameState) string {
	switch quest.Owner {
	case OwnerLibrary:
		return scene.IDLibrary
	case OwnerMap:
		if quest.Kind == KindChallenge && t.Totality(next) {
			return scene.IDEnding
		}
		return scene.IDMap
	case OwnerLinear:
		for _, d := range t.graph.Scenes() {
			if d.Kind == scene.KindInteractive && d.QuestID == quest.ID {
				if following, ok := t.graph.Next(d.ID); ok {
					return following.ID
				}
			}
		}
		return scene.IDTitle
	default:
		return scene.IDMap
	}
}

// Totality reports whether every proof and every challenge is completed.
func (t *Tracker) Totality(current state.GameState) bool {
	for _, id := range t.proofs {
		if !current.HasCompletedQuest(id) {
			return false
		}
	}
	for _, id := range t.challenges {
		if !current.HasCompletedQuest(id) {
			return false
		}
	}
	return true
}

// Unlocked reports whether every requirement of questID is completed.
func (t *Tracker) Unlocked(current state.GameState, questID string) bool {
	quest, ok := t.registry.Get(questID)
	if !ok {
		return false
	}
	for _, required := range quest.Requires {
		if !current.HasCompletedQuest(required) {
			return false
		}
	}
	return true
}

// CanSelect checks that the hub scene may launch questID now.
func (t *Tracker) CanSelect(current state.GameState, hubID, questID string) error {
	quest, ok := t.registry.Get(questID)
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeQuestNotFound, "select unknown quest "+questID, map[string]string{"QuestID": questID})
	}
	if ownerScene(quest.Owner) != hubID {
		return apperrors.WithMetadata(apperrors.CodeQuestNotSelectable, "quest "+questID+" is not launched from "+hubID, map[string]string{"QuestID": questID, "SceneID": hubID})
	}
	if !t.Unlocked(current, questID) {
		return apperrors.WithMetadata(apperrors.CodeQuestLocked, "quest "+questID+" is locked", map[string]string{"QuestID": questID})
	}
	return nil
}

// Progress counts completed quests.
func (t *Tracker) Progress(current state.GameState) Progress {
	var progress Progress
	for _, quest := range t.registry.All() {
		progress.Total++
		if !current.HasCompletedQuest(quest.ID) {
			continue
		}
		progress.Completed++
		switch quest.Kind {
		case KindProof:
			progress.Proofs++
		case KindChallenge:
			progress.Challenges++
		case KindLesson, KindUnknown:
		}
	}
	return progress
}

func ownerScene(owner Owner) string {
	switch owner {
	case OwnerLibrary:
		return scene.IDLibrary
	case OwnerMap:
		return scene.IDMap
	default:
		return ""
	}
}
