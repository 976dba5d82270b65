package state

import (
	"slices"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// Updater derives the next state from the previous one.
//
// Updaters must not mutate prev: fields they change are copied first, fields they
// leave alone are shared with prev.
type Updater func(prev GameState) GameState

// Compose chains updaters left to right into one atomic update.
func Compose(updaters ...Updater) Updater {
	return func(prev GameState) GameState {
		next := prev
		for _, update := range updaters {
			if update == nil {
				continue
			}
			next = update(next)
		}
		return next
	}
}

// EnterScene moves the session to sceneID.
func EnterScene(sceneID string) Updater {
	return func(prev GameState) GameState {
		prev.CurrentSceneID = sceneID
		return prev
	}
}

// SelectQuest sets the quest variant for the next interactive scene.
func SelectQuest(questID string) Updater {
	return func(prev GameState) GameState {
		prev.ActiveQuest = strings.TrimSpace(questID)
		return prev
	}
}

// ClearActiveQuest drops the active quest selection.
func ClearActiveQuest() Updater {
	return func(prev GameState) GameState {
		prev.ActiveQuest = ""
		return prev
	}
}

// CompleteQuest appends questID unless it is already present.
func CompleteQuest(questID string) Updater {
	return func(prev GameState) GameState {
		questID = strings.TrimSpace(questID)
		if questID == "" || slices.Contains(prev.CompletedQuests, questID) {
			return prev
		}
		quests := make([]string, 0, len(prev.CompletedQuests)+1)
		quests = append(quests, prev.CompletedQuests...)
		prev.CompletedQuests = append(quests, questID)
		return prev
	}
}

// CompleteEvent adds eventID to the completed event set unless present.
func CompleteEvent(eventID string) Updater {
	return func(prev GameState) GameState {
		eventID = strings.TrimSpace(eventID)
		if eventID == "" || prev.CompletedEvents.Has(eventID) {
			return prev
		}
		events := mapset.New[string]()
		prev.CompletedEvents.Each(func(id string) {
			events.Put(id)
		})
		events.Put(eventID)
		prev.CompletedEvents = events
		return prev
	}
}

// RememberDialogueIndex stores the last shown dialogue index for a scene key.
// Negative indexes are clamped to zero.
func RememberDialogueIndex(sceneKey string, index int) Updater {
	return func(prev GameState) GameState {
		if index < 0 {
			index = 0
		}
		if current, ok := prev.SceneDialogueStates[sceneKey]; ok && current == index {
			return prev
		}
		states := make(map[string]int, len(prev.SceneDialogueStates)+1)
		for key, value := range prev.SceneDialogueStates {
			states[key] = value
		}
		states[sceneKey] = index
		prev.SceneDialogueStates = states
		return prev
	}
}

// MarkDialogueShown flags a one-shot dialogue as displayed.
func MarkDialogueShown(dialogueKey string) Updater {
	return func(prev GameState) GameState {
		if prev.LibraryDialogueShown[dialogueKey] {
			return prev
		}
		shown := make(map[string]bool, len(prev.LibraryDialogueShown)+1)
		for key, value := range prev.LibraryDialogueShown {
			shown[key] = value
		}
		shown[dialogueKey] = true
		prev.LibraryDialogueShown = shown
		return prev
	}
}

// AddFadingBadge queues a quest badge exit animation.
func AddFadingBadge(questID string) Updater {
	return func(prev GameState) GameState {
		if slices.Contains(prev.FadingBadges, questID) {
			return prev
		}
		badges := make([]string, 0, len(prev.FadingBadges)+1)
		badges = append(badges, prev.FadingBadges...)
		prev.FadingBadges = append(badges, questID)
		return prev
	}
}

// RemoveFadingBadge ends a quest badge exit animation.
func RemoveFadingBadge(questID string) Updater {
	return func(prev GameState) GameState {
		if !slices.Contains(prev.FadingBadges, questID) {
			return prev
		}
		badges := make([]string, 0, len(prev.FadingBadges))
		for _, id := range prev.FadingBadges {
			if id != questID {
				badges = append(badges, id)
			}
		}
		prev.FadingBadges = badges
		return prev
	}
}
