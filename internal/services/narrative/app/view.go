package app

import (
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/dialogue"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/quest"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/scene"
)

// View is what the shell renders for the active scene.
type View struct {
	SceneID string
	Kind    scene.Kind
	// Known is false when the scene id resolves to nothing; Unknown is set then.
	Known bool
	// Branch is set for quest scenes launched from a hub.
	Branch  bool
	HubID   string
	QuestID string
	Title   string

	Descriptor scene.Descriptor
	Dialogue   *DialogueView
	Hub        *HubView
	Unknown    *UnknownView
	Progress   quest.Progress
	// Loading is set while the loading scene waits for preloading.
	Loading bool
}

// DialogueView is the current dialogue step of the scene.
type DialogueView struct {
	Key      string
	SceneKey string
	// Intro marks the one-shot hub intro.
	Intro bool
	dialogue.Step
}

// HubView lists the quests a hub scene can launch.
type HubView struct {
	Quests []QuestCard
}

// QuestCard is one quest entry on a hub.
type QuestCard struct {
	ID        string
	Title     string
	Kind      quest.Kind
	Completed bool
	Unlocked  bool
	// Fading is set while the completion badge plays its exit animation.
	Fading bool
}

// UnknownView is the placeholder for unresolvable scenes.
type UnknownView struct {
	Title string
	Body  string
	// Reason is the localized cause, when one is known.
	Reason string
}
