package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeQuestLocked, "quest is locked")
	err := fmt.Errorf("select quest: %w", WithMetadata(CodeQuestLocked, "ladder is locked", map[string]string{"QuestID": "ladder"}))

	if !stderrors.Is(err, sentinel) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New(CodeQuestNotFound, "")) {
		t.Fatal("expected different code not to match")
	}
}

func TestGetCodeAndMetadata(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", WithMetadata(CodeUnknownScene, "unknown", map[string]string{"SceneID": "nowhere"}))
	if got := GetCode(err); got != CodeUnknownScene {
		t.Fatalf("code = %q", got)
	}
	if !IsCode(err, CodeUnknownScene) {
		t.Fatal("expected IsCode")
	}
	if got := GetMetadata(err)["SceneID"]; got != "nowhere" {
		t.Fatalf("metadata = %q", got)
	}
	if GetCode(stderrors.New("plain")) != CodeUnknown {
		t.Fatal("expected unknown code for plain errors")
	}
	if GetMetadata(stderrors.New("plain")) != nil {
		t.Fatal("expected nil metadata for plain errors")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := stderrors.New("yaml: bad indent")
	err := WrapWithMetadata(CodeContentInvalid, "load scenes", nil, cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if err.Error() != "load scenes" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestCategory(t *testing.T) {
	cases := map[Code]Category{
		CodeAnswerEmpty:        CategoryInvalidInput,
		CodeAnswerLocked:       CategoryFailedPrecondition,
		CodeQuestLocked:        CategoryFailedPrecondition,
		CodeQuestNotFound:      CategoryNotFound,
		CodeUnknownScene:       CategoryNotFound,
		CodeBranchQuestMissing: CategoryInternal,
		CodeContentInvalid:     CategoryInternal,
	}
	for code, want := range cases {
		if got := code.Category(); got != want {
			t.Fatalf("%s category = %s, want %s", code, got, want)
		}
	}
	if !CodeBranchQuestMissing.Internal() || CodeAnswerEmpty.Internal() {
		t.Fatal("unexpected Internal result")
	}
}

func TestLocalize(t *testing.T) {
	err := fmt.Errorf("go to: %w", WithMetadata(CodeUnknownScene, "missing", map[string]string{"SceneID": "nowhere"}))
	if got := Localize(err, ""); got != "Scene nowhere does not exist" {
		t.Fatalf("en-US = %q", got)
	}
	if got := Localize(err, "pt"); got != "A cena nowhere não existe" {
		t.Fatalf("pt = %q", got)
	}
	if Localize(nil, "en-US") != "" {
		t.Fatal("expected empty message for nil error")
	}
	if Localize(stderrors.New("boom"), "en-US") == "" {
		t.Fatal("expected generic message for plain errors")
	}
}

func TestFieldExpandsCodedErrors(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	cause := stderrors.New("quest pouring is not completed")
	logger.Info("coded", Field(WrapWithMetadata(CodeQuestLocked, "ladder is locked", map[string]string{"QuestID": "ladder"}, cause)))
	logger.Info("plain", Field(stderrors.New("boom")))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	coded, ok := entries[0].ContextMap()["error"].(map[string]any)
	if !ok {
		t.Fatalf("coded error field = %#v", entries[0].ContextMap()["error"])
	}
	if coded["code"] != "QUEST_LOCKED" || coded["category"] != "failed_precondition" {
		t.Fatalf("coded error = %#v", coded)
	}
	if coded["cause"] != cause.Error() {
		t.Fatalf("cause = %v", coded["cause"])
	}
	metadata, ok := coded["metadata"].(map[string]any)
	if !ok || metadata["QuestID"] != "ladder" {
		t.Fatalf("metadata = %#v", coded["metadata"])
	}
	if entries[1].ContextMap()["error"] != "boom" {
		t.Fatalf("plain error = %#v", entries[1].ContextMap()["error"])
	}
}
