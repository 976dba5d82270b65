package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericQuestionCheck(t *testing.T) {
	q := Question{Kind: QuestionNumeric, Answer: "10", Tolerance: 0.01}
	assert.True(t, q.Check("10"))
	assert.True(t, q.Check(" 10,005 "))
	assert.False(t, q.Check("10.2"))
	assert.False(t, q.Check("ten"))
	assert.False(t, q.Check(""))

	exact := Question{Kind: QuestionNumeric, Answer: "25"}
	assert.True(t, exact.Check("25.0"))
	assert.False(t, exact.Check("25.1"))
}

func TestRadioQuestionCheck(t *testing.T) {
	q := Question{Kind: QuestionRadio, Answer: "similar", Options: []string{"similar", "none"}}
	assert.True(t, q.Check("Similar"))
	assert.False(t, q.Check("none"))
}

func TestFromObjectReadsTranslatedDialogue(t *testing.T) {
	obj := []any{
		map[string]any{"speaker": "Master", "avatar": "master", "text": "Plant the stick."},
		map[string]any{"speaker": "Master", "text": "How tall?", "question": map[string]any{"type": "numeric", "answer": 20}},
		map[string]any{"text": "Pick one.", "question": map[string]any{"type": "radio", "answer": "yes", "options": []any{"yes", "no"}}},
	}

	entries, ok := FromObject(obj)
	require.True(t, ok)
	require.Len(t, entries, 3)
	assert.Equal(t, "master", entries[0].Avatar)
	require.NotNil(t, entries[1].Question)
	assert.Equal(t, QuestionNumeric, entries[1].Question.Kind)
	assert.Equal(t, "20", entries[1].Question.Answer)
	assert.Equal(t, []string{"yes", "no"}, entries[2].Question.Options)
}

func TestFromObjectFallsBackToPlaceholder(t *testing.T) {
	cases := map[string]any{
		"missing key":       "dialogues.narrator",
		"nil":               nil,
		"empty":             []any{},
		"not a map":         []any{"hello"},
		"no text":           []any{map[string]any{"speaker": "Narrator"}},
		"bad question":      []any{map[string]any{"text": "q", "question": map[string]any{"type": "slider", "answer": 1}}},
		"answer not option": []any{map[string]any{"text": "q", "question": map[string]any{"type": "radio", "answer": "maybe", "options": []any{"yes", "no"}}}},
		"numeric nan":       []any{map[string]any{"text": "q", "question": map[string]any{"type": "numeric", "answer": "ten"}}},
	}
	for name, obj := range cases {
		t.Run(name, func(t *testing.T) {
			entries, ok := FromObject(obj)
			assert.False(t, ok)
			assert.Equal(t, Placeholder(), entries)
		})
	}
}

func TestAudioPath(t *testing.T) {
	assert.Equal(t, "audio/dialogs/pt-BR/narrator_2.mp3", AudioPath("pt-BR", "narrator", 2))
}
