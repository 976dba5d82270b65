package quest

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/theorem-trail/internal/platform/errors"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/scene"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T) *Tracker {
	t.Helper()
	registry, err := NewRegistry([]Descriptor{
		{ID: "measuring", Owner: OwnerLinear, Kind: KindLesson, DialogueKey: "measuring", TitleKey: "quest.measuring.title"},
		{ID: "thales", Owner: OwnerLibrary, Kind: KindLesson, DialogueKey: "thales", TitleKey: "quest.thales.title"},
		{ID: "pouring", Owner: OwnerMap, Kind: KindProof, DialogueKey: "pouring", TitleKey: "quest.pouring.title"},
		{ID: "dissection", Owner: OwnerMap, Kind: KindProof, DialogueKey: "dissection", TitleKey: "quest.dissection.title"},
		{ID: "pebble", Owner: OwnerMap, Kind: KindChallenge, DialogueKey: "pebble", TitleKey: "quest.pebble.title", Requires: []string{"pouring", "dissection"}},
		{ID: "ladder", Owner: OwnerMap, Kind: KindChallenge, DialogueKey: "ladder", TitleKey: "quest.ladder.title", Requires: []string{"pebble"}},
		{ID: "final", Owner: OwnerMap, Kind: KindChallenge, DialogueKey: "final", TitleKey: "quest.final.title", Requires: []string{"ladder"}},
	})
	require.NoError(t, err)
	graph, err := scene.NewGraph([]scene.Descriptor{
		{ID: scene.IDTitle, Kind: scene.KindTitle, TitleKey: "scene.title.name"},
		{ID: "measuring", Kind: scene.KindInteractive, DialogueKey: "measuring", QuestID: "measuring", TitleKey: "scene.measuring.name"},
		{ID: scene.IDLibrary, Kind: scene.KindLibrary, IntroDialogueKey: "libraryIntro"},
		{ID: scene.IDMap, Kind: scene.KindMap, IntroDialogueKey: "mapIntro"},
		{ID: scene.IDEnding, Kind: scene.KindEnding, TitleKey: "scene.ending.name"},
	})
	require.NoError(t, err)
	return NewTracker(registry, graph)
}

func storeWith(completed ...string) *state.Store {
	initial := state.New("session", scene.MapInteractive)
	for _, id := range completed {
		initial = state.CompleteQuest(id)(initial)
	}
	initial = state.SelectQuest("final")(initial)
	return state.NewStoreFrom(initial)
}

func TestFinalChallengeWithEverythingDoneRoutesToEnding(t *testing.T) {
	tracker := newTracker(t)
	store := storeWith("pouring", "dissection", "pebble", "ladder")

	outcome, err := tracker.Finish(store, "final")
	require.NoError(t, err)

	assert.Equal(t, scene.IDEnding, outcome.Destination)
	assert.True(t, outcome.Totality)
	assert.True(t, outcome.FirstCompletion)
	assert.Equal(t, []string{"pouring", "dissection", "pebble", "ladder", "final"}, store.Snapshot().CompletedQuests)
}

func TestFinalChallengeWithMissingQuestsRoutesToMap(t *testing.T) {
	tracker := newTracker(t)
	store := storeWith("pouring")

	outcome, err := tracker.Finish(store, "final")
	require.NoError(t, err)

	assert.Equal(t, scene.IDMap, outcome.Destination)
	assert.False(t, outcome.Totality)
	assert.Empty(t, store.Snapshot().ActiveQuest)
}

func TestAnyChallengeCompletingTheSetRoutesToEnding(t *testing.T) {
	tracker := newTracker(t)
	store := storeWith("pouring", "dissection", "final", "ladder")

	outcome, err := tracker.Finish(store, "pebble")
	require.NoError(t, err)
	assert.Equal(t, scene.IDEnding, outcome.Destination)
}

func TestProofReturnsToMapAndClearsActiveQuest(t *testing.T) {
	tracker := newTracker(t)
	store := storeWith("dissection", "pebble", "ladder", "final")
	store.Update(state.SelectQuest("pouring"))

	outcome, err := tracker.Finish(store, "pouring")
	require.NoError(t, err)

	assert.Equal(t, scene.IDMap, outcome.Destination)
	assert.True(t, outcome.Totality)
	snapshot := store.Snapshot()
	assert.Empty(t, snapshot.ActiveQuest)
	assert.Equal(t, []string{"pouring"}, snapshot.FadingBadges)
}

func TestLibraryQuestReturnsToLibrary(t *testing.T) {
	tracker := newTracker(t)
	store := storeWith()

	outcome, err := tracker.Finish(store, "thales")
	require.NoError(t, err)
	assert.Equal(t, scene.IDLibrary, outcome.Destination)
}

func TestLinearQuestContinuesTheSequence(t *testing.T) {
	tracker := newTracker(t)
	store := storeWith()

	outcome, err := tracker.Finish(store, "measuring")
	require.NoError(t, err)
	assert.Equal(t, scene.IDLibrary, outcome.Destination)
	assert.Empty(t, store.Snapshot().FadingBadges)
}

func TestFinishIsIdempotent(t *testing.T) {
	tracker := newTracker(t)
	store := storeWith("pouring")

	_, err := tracker.Finish(store, "dissection")
	require.NoError(t, err)
	again, err := tracker.Finish(store, "dissection")
	require.NoError(t, err)

	assert.False(t, again.FirstCompletion)
	assert.Equal(t, []string{"pouring", "dissection"}, store.Snapshot().CompletedQuests)
	assert.Equal(t, []string{"dissection"}, store.Snapshot().FadingBadges)
}

func TestFinishUnknownQuest(t *testing.T) {
	tracker := newTracker(t)
	_, err := tracker.Finish(storeWith(), "riddle")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCanSelect(t *testing.T) {
	tracker := newTracker(t)
	current := storeWith("pouring").Snapshot()

	assert.NoError(t, tracker.CanSelect(current, scene.IDMap, "dissection"))
	assert.True(t, errors.Is(tracker.CanSelect(current, scene.IDMap, "pebble"), ErrLocked))
	assert.True(t, errors.Is(tracker.CanSelect(current, scene.IDLibrary, "pouring"), ErrNotSelectable))
	assert.True(t, errors.Is(tracker.CanSelect(current, scene.IDMap, "measuring"), ErrNotSelectable))
	err := tracker.CanSelect(current, scene.IDMap, "riddle")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeQuestNotFound))
	assert.Equal(t, "riddle", apperrors.GetMetadata(err)["QuestID"])
}

func TestProgress(t *testing.T) {
	tracker := newTracker(t)
	progress := tracker.Progress(storeWith("measuring", "pouring", "ladder").Snapshot())

	assert.Equal(t, Progress{Completed: 3, Total: 7, Proofs: 1, Challenges: 1}, progress)
}

func TestNewRegistryRejectsInvalidQuests(t *testing.T) {
	valid := Descriptor{ID: "pouring", Owner: OwnerMap, Kind: KindProof, DialogueKey: "pouring", TitleKey: "t"}
	cases := map[string][]Descriptor{
		"duplicate":        {valid, valid},
		"missing owner":    {{ID: "x", Kind: KindProof, DialogueKey: "x", TitleKey: "t"}},
		"unknown require":  {{ID: "x", Owner: OwnerMap, Kind: KindProof, DialogueKey: "x", TitleKey: "t", Requires: []string{"y"}}},
		"self requirement": {{ID: "x", Owner: OwnerMap, Kind: KindProof, DialogueKey: "x", TitleKey: "t", Requires: []string{"x"}}},
	}
	for name, quests := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(quests)
			assert.Error(t, err)
		})
	}
}

func TestOwnerAndKindText(t *testing.T) {
	var owner Owner
	require.NoError(t, owner.UnmarshalText([]byte("library")))
	assert.Equal(t, OwnerLibrary, owner)
	assert.Error(t, owner.UnmarshalText([]byte("tavern")))

	var kind Kind
	require.NoError(t, kind.UnmarshalText([]byte("challenge")))
	assert.Equal(t, "challenge", kind.String())
	assert.Error(t, kind.UnmarshalText([]byte("riddle")))
}
