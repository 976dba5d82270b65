package playthrough

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/theorem-trail/internal/platform/errors"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/app"
	"go.uber.org/zap"
)

func (r *Runner) runStep(s *session, step Step) error {
	switch step.Kind {
	case "advance":
		moved := s.router.Advance()
		return r.expectMoved(step, moved)
	case "retreat":
		moved := s.router.Retreat()
		return r.expectMoved(step, moved)
	case "skip_typing":
		s.router.SkipTyping()
		return nil
	case "event":
		data, _ := step.Args["data"].(map[string]any)
		s.router.OnInteractiveEventCompleted(stringArg(step.Args, "id"), data)
		return nil
	case "answer":
		return r.runAnswer(s, step)
	case "change_answer":
		return r.expectError(step, s.router.ChangeAnswer())
	case "wait":
		ms, _ := intArg(step.Args, "ms")
		s.clock.Advance(time.Duration(ms) * time.Millisecond)
		return nil
	case "select_quest":
		return r.expectError(step, s.router.SelectQuest(stringArg(step.Args, "id")))
	case "go_to":
		return r.expectError(step, s.router.GoTo(stringArg(step.Args, "id")))
	case "expect_scene":
		return r.expectScene(s, step)
	case "expect_index":
		return r.expectIndex(s, step)
	case "expect_phase":
		return r.expectPhase(s, step)
	case "expect_next_enabled":
		return r.expectNextEnabled(s, step)
	case "expect_completed":
		id := stringArg(step.Args, "id")
		if !s.store.Snapshot().HasCompletedQuest(id) {
			return r.assertions.Assertf("expected quest %s completed", id)
		}
		return nil
	case "expect_unknown":
		view := s.router.CurrentScene()
		if view.Known || view.Unknown == nil {
			return r.assertions.Assertf("expected unknown scene placeholder, got %q", view.SceneID)
		}
		if want := stringArg(step.Args, "reason"); want != "" && view.Unknown.Reason != want {
			return r.assertions.Assertf("unknown scene reason = %q, want %q", view.Unknown.Reason, want)
		}
		return nil
	default:
		return r.assertions.Failf("unknown step kind %q", step.Kind)
	}
}

// expectMoved checks the optional moved = bool expectation of a navigation step.
func (r *Runner) expectMoved(step Step, moved bool) error {
	want, ok := boolArg(step.Args, "moved")
	if !ok || want == moved {
		return nil
	}
	return r.assertions.Assertf("%s moved = %t, want %t", step.Kind, moved, want)
}

// expectError matches err against the optional error code of a step. A step
// without an expected code must succeed.
func (r *Runner) expectError(step Step, err error) error {
	code := stringArg(step.Args, "error")
	if code == "" {
		if err != nil {
			return r.assertions.Assertf("%s failed: %s: %v", step.Kind, apperrors.Localize(err, r.cfg.Locale), err)
		}
		return nil
	}
	if err == nil {
		return r.assertions.Assertf("%s: expected error %s", step.Kind, code)
	}
	if !apperrors.IsCode(err, apperrors.Code(code)) {
		return r.assertions.Assertf("%s: error code = %s, want %s", step.Kind, apperrors.GetCode(err), code)
	}
	return nil
}

func (r *Runner) runAnswer(s *session, step Step) error {
	value := stringArg(step.Args, "value")
	result, err := s.router.SubmitAnswer(value)
	if stringArg(step.Args, "error") != "" || err != nil {
		return r.expectError(step, err)
	}
	want, ok := boolArg(step.Args, "correct")
	if !ok {
		want = true
	}
	if result.IsCorrect != want {
		return r.assertions.Assertf("answer %q correct = %t, want %t", value, result.IsCorrect, want)
	}
	r.logf("answer submitted", zap.String("answer", value), zap.Bool("correct", result.IsCorrect))
	return nil
}

func (r *Runner) expectScene(s *session, step Step) error {
	want := stringArg(step.Args, "id")
	view := s.router.CurrentScene()
	if view.SceneID != want {
		return r.assertions.Assertf("scene = %q, want %q", view.SceneID, want)
	}
	if questID := stringArg(step.Args, "quest"); questID != "" && view.QuestID != questID {
		return r.assertions.Assertf("scene %s quest = %q, want %q", want, view.QuestID, questID)
	}
	return nil
}

func (r *Runner) expectIndex(s *session, step Step) error {
	want, _ := intArg(step.Args, "index")
	view := s.router.CurrentScene()
	if view.Dialogue == nil {
		return r.assertions.Assertf("scene %s has no dialogue", view.SceneID)
	}
	if view.Dialogue.Index != want {
		return r.assertions.Assertf("dialogue index = %d, want %d", view.Dialogue.Index, want)
	}
	return nil
}

func (r *Runner) expectPhase(s *session, step Step) error {
	want := strings.ToLower(stringArg(step.Args, "id"))
	got := currentPhase(s.router.CurrentScene())
	if got != want {
		return r.assertions.Assertf("dialogue phase = %q, want %q", got, want)
	}
	return nil
}

func (r *Runner) expectNextEnabled(s *session, step Step) error {
	want, _ := boolArg(step.Args, "value")
	view := s.router.CurrentScene()
	if view.Dialogue == nil {
		return r.assertions.Assertf("scene %s has no dialogue", view.SceneID)
	}
	key := view.Dialogue.Key
	index := view.Dialogue.Index
	if override := stringArg(step.Args, "key"); override != "" {
		key = override
	}
	if override, ok := intArg(step.Args, "index"); ok {
		index = override
	}
	if got := s.router.IsNextEnabled(key, index); got != want {
		return r.assertions.Assertf("next enabled for %s[%d] = %t, want %t", key, index, got, want)
	}
	return nil
}

func currentPhase(view app.View) string {
	if view.Dialogue == nil {
		return "none"
	}
	return view.Dialogue.Phase.String()
}
