package app

import (
	"context"

	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/dialogue"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/pacing"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/scene"
)

// visit is everything mounted for one scene.
type visit struct {
	sceneID    string
	descriptor scene.Descriptor
	known      bool
	branch     bool
	hubID      string
	questID    string
	loading    bool
	// cause is set when the visit renders the unknown-scene placeholder.
	cause error

	dialogue    *dialogue.Sequencer
	dialogueKey string
	sceneKey    string
	intro       bool

	timers *pacing.Group
	ctx    context.Context
	cancel context.CancelFunc
}

func (v *visit) close() {
	if v.dialogue != nil {
		v.dialogue.Close()
	}
	v.timers.Cancel()
	v.cancel()
}

// branchSceneKey is the dialogue state key of a quest played in a branch scene.
func branchSceneKey(branchID, questID string) string {
	return branchID + ":" + questID
}
