// Package state holds the single progression record of a game session.
//
// GameState values are treated as immutable snapshots: every write goes through
// Store.Update with a pure updater that derives the next state from the freshest
// previous one, so rapid user actions and timer callbacks never overwrite each
// other's changes.
package state

import (
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// GameState captures progression for one session.
type GameState struct {
	// SessionID identifies the play session in logs and traces.
	SessionID string
	// CurrentSceneID is the active scene node (a sequence id or a branch id).
	CurrentSceneID string
	// ActiveQuest selects the quest variant played inside a shared interactive scene.
	// Empty means no quest is active.
	ActiveQuest string
	// CompletedQuests keeps first-completion order; ids are unique.
	CompletedQuests []string
	// CompletedEvents is the append-only set of interactive event ids.
	CompletedEvents mapset.Set[string]
	// SceneDialogueStates maps a scene key to the last dialogue index shown.
	SceneDialogueStates map[string]int
	// LibraryDialogueShown marks one-shot dialogues that were already displayed.
	LibraryDialogueShown map[string]bool
	// FadingBadges lists quest badges playing their exit animation.
	FadingBadges []string
}

// New returns an empty state positioned at the given scene.
func New(sessionID, sceneID string) GameState {
	return GameState{
		SessionID:            sessionID,
		CurrentSceneID:       sceneID,
		CompletedQuests:      []string{},
		CompletedEvents:      mapset.New[string](),
		SceneDialogueStates:  map[string]int{},
		LibraryDialogueShown: map[string]bool{},
		FadingBadges:         []string{},
	}
}

// HasCompletedQuest reports whether questID was completed.
func (s GameState) HasCompletedQuest(questID string) bool {
	return slices.Contains(s.CompletedQuests, questID)
}

// HasCompletedEvent reports whether eventID was recorded.
func (s GameState) HasCompletedEvent(eventID string) bool {
	return s.CompletedEvents.Has(eventID)
}

// CompletedEventIDs returns the recorded event ids sorted for stable output.
func (s GameState) CompletedEventIDs() []string {
	out := make([]string, 0, s.CompletedEvents.Size())
	s.CompletedEvents.Each(func(id string) {
		out = append(out, id)
	})
	slices.Sort(out)
	return out
}

// DialogueIndex returns the stored dialogue index for a scene key.
func (s GameState) DialogueIndex(sceneKey string) (int, bool) {
	index, ok := s.SceneDialogueStates[sceneKey]
	return index, ok
}

// Clone returns a deep copy safe to hand to readers.
func (s GameState) Clone() GameState {
	cloned := s
	cloned.CompletedQuests = slices.Clone(s.CompletedQuests)
	if cloned.CompletedQuests == nil {
		cloned.CompletedQuests = []string{}
	}
	cloned.CompletedEvents = cloneSet(s.CompletedEvents)
	cloned.SceneDialogueStates = make(map[string]int, len(s.SceneDialogueStates))
	for key, value := range s.SceneDialogueStates {
		cloned.SceneDialogueStates[key] = value
	}
	cloned.LibraryDialogueShown = make(map[string]bool, len(s.LibraryDialogueShown))
	for key, value := range s.LibraryDialogueShown {
		cloned.LibraryDialogueShown[key] = value
	}
	cloned.FadingBadges = slices.Clone(s.FadingBadges)
	if cloned.FadingBadges == nil {
		cloned.FadingBadges = []string{}
	}
	return cloned
}

func cloneSet(source mapset.Set[string]) mapset.Set[string] {
	cloned := mapset.New[string]()
	source.Each(func(id string) {
		cloned.Put(id)
	})
	return cloned
}
