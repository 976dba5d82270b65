package playthrough

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestChainingCreatesSteps(t *testing.T) {
	path := writePlaythroughFixture(t, `-- Setup
local p = Playthrough.new("chain", {scene = "map", completed = {"pouring", "dissection"}, shown = "mapIntro"})

p:select_quest("pebble"):event("pebble_rows_arranged", {rows = 4}):advance()
p:answer(10, {correct = true}):wait(1500)

return p
`)

	p, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load playthrough: %v", err)
	}
	if p.Name != "chain" {
		t.Fatalf("name = %q, want chain", p.Name)
	}
	if p.Seed.SceneID != "map" {
		t.Fatalf("seed scene = %q, want map", p.Seed.SceneID)
	}
	if strings.Join(p.Seed.CompletedQuests, ",") != "pouring,dissection" {
		t.Fatalf("seed completed = %v", p.Seed.CompletedQuests)
	}
	if len(p.Seed.DialogueShown) != 1 || p.Seed.DialogueShown[0] != "mapIntro" {
		t.Fatalf("seed shown = %v, want [mapIntro]", p.Seed.DialogueShown)
	}
	if len(p.Steps) != 5 {
		t.Fatalf("steps = %d, want %d", len(p.Steps), 5)
	}

	kinds := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		kinds = append(kinds, step.Kind)
	}
	if got := strings.Join(kinds, ","); got != "select_quest,event,advance,answer,wait" {
		t.Fatalf("kinds = %s", got)
	}

	event := p.Steps[1]
	if event.Args["id"] != "pebble_rows_arranged" {
		t.Fatalf("event id = %v", event.Args["id"])
	}
	data, ok := event.Args["data"].(map[string]any)
	if !ok || data["rows"] != 4 {
		t.Fatalf("event data = %v, want rows = 4", event.Args["data"])
	}

	answer := p.Steps[3]
	if answer.Args["value"] != "10" {
		t.Fatalf("answer value = %v, want 10", answer.Args["value"])
	}
	if answer.Args["correct"] != true {
		t.Fatalf("answer correct = %v, want true", answer.Args["correct"])
	}
	if p.Steps[4].Args["ms"] != 1500 {
		t.Fatalf("wait ms = %v, want 1500", p.Steps[4].Args["ms"])
	}
}

func TestNameDefaultsToFileName(t *testing.T) {
	path := writePlaythroughFixture(t, `return Playthrough.new()`)

	p, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load playthrough: %v", err)
	}
	if p.Name != "playthrough" {
		t.Fatalf("name = %q, want playthrough", p.Name)
	}
	if p.Seed.SceneID != "" {
		t.Fatalf("seed scene = %q, want empty", p.Seed.SceneID)
	}
}

func TestEventRequiresID(t *testing.T) {
	_, err := Load("missing_event", `local p = Playthrough.new("x")
p:event("  ")
return p
`)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "event id is required") {
		t.Fatalf("error = %q, want event id is required", err.Error())
	}
}

func TestWaitRejectsNegative(t *testing.T) {
	_, err := Load("negative_wait", `return Playthrough.new("x"):wait(-1)`)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "wait must not be negative") {
		t.Fatalf("error = %q, want wait must not be negative", err.Error())
	}
}

func TestScriptMustReturnPlaythrough(t *testing.T) {
	_, err := Load("no_return", `local p = Playthrough.new("x")`)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "must return Playthrough") {
		t.Fatalf("error = %q, want must return Playthrough", err.Error())
	}
}

func TestExpectNextEnabledRequiresBoolean(t *testing.T) {
	_, err := Load("bad_bool", `return Playthrough.new("x"):expect_next_enabled("yes")`)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestNestedListsBecomeSlices(t *testing.T) {
	p, err := Load("lists", `return Playthrough.new("x"):event("a", {points = {1, 2.5, "three"}, origin = {x = 0}})`)
	if err != nil {
		t.Fatalf("load playthrough: %v", err)
	}
	data := p.Steps[0].Args["data"].(map[string]any)
	points, ok := data["points"].([]any)
	if !ok || len(points) != 3 {
		t.Fatalf("points = %#v, want 3 items", data["points"])
	}
	if points[0] != 1 || points[1] != 2.5 || points[2] != "three" {
		t.Fatalf("points = %#v", points)
	}
	origin, ok := data["origin"].(map[string]any)
	if !ok || origin["x"] != 0 {
		t.Fatalf("origin = %#v, want x = 0", data["origin"])
	}
}

func TestTestdataScriptsLoad(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.lua"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no testdata scripts")
	}
	for _, path := range paths {
		if _, err := LoadFromFile(path); err != nil {
			t.Fatalf("load %s: %v", path, err)
		}
	}
}

func writePlaythroughFixture(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "playthrough.lua")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write playthrough: %v", err)
	}
	return path
}
