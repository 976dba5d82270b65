package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if !bundle.HasLocale(BaseLocale) {
		t.Fatalf("expected base locale %s", BaseLocale)
	}
	if !bundle.HasLocale("pt-BR") {
		t.Fatalf("expected locale pt-BR")
	}

	if got := strings.Join(bundle.Locales(), ","); got != "en-US,pt-BR" {
		t.Fatalf("locales = %s", got)
	}
	if got := len(bundle.Messages("en-US")); got == 0 {
		t.Fatalf("expected en-US messages")
	}
	if _, ok := bundle.Object("en-US", "narrator"); !ok {
		t.Fatal("expected narrator dialogue object")
	}
}

func TestLoadFromFSRejectsCoreKeyOutsideCoreNamespace(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/web.yaml"), `locale: "en-US"
namespace: "web"
messages:
  "core.bad": "nope"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/core.yaml"), `locale: "en-US"
namespace: "core"
messages:
  "core.good": "ok"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRejectsDuplicateKeysAcrossNamespaces(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/core.yaml"), `locale: "en-US"
namespace: "core"
messages:
  "a.key": "a"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/web.yaml"), `locale: "en-US"
namespace: "web"
messages:
  "a.key": "b"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromFSRejectsMismatchedLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/core.yaml"), `locale: "pt-BR"
namespace: "core"
messages:
  "core.good": "ok"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/core.yaml"), `locale: "pt-BR"
namespace: "core"
messages:
  "core.good": "ok"
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestResolveMatchesLanguages(t *testing.T) {
	tests := map[string]string{
		"pt-BR":   "pt-BR",
		" pt-BR ": "pt-BR",
		"pt":      "pt-BR",
		"en-GB":   "en-US",
		"fr-FR":   "en-US",
		"":        "en-US",
		"%%":      "en-US",
	}
	for requested, want := range tests {
		if got := Default().Resolve(requested); got != want {
			t.Fatalf("Resolve(%q) = %q, want %q", requested, got, want)
		}
	}
}

func TestNamespaceCompletesWithBase(t *testing.T) {
	resolved, messages := Default().Namespace("fr-FR", "errors")
	if resolved != "en-US" {
		t.Fatalf("resolved locale = %q, want en-US", resolved)
	}
	if len(messages) == 0 {
		t.Fatal("expected fallback errors namespace messages")
	}

	resolved, messages = Default().Namespace("pt", "errors")
	if resolved != "pt-BR" {
		t.Fatalf("resolved locale = %q, want pt-BR", resolved)
	}
	if messages["UNKNOWN_SCENE"] != "A cena {{.SceneID}} não existe" {
		t.Fatalf("UNKNOWN_SCENE = %q", messages["UNKNOWN_SCENE"])
	}
	if messages["BRANCH_QUEST_MISSING"] != "No quest is selected for {{.SceneID}}" {
		t.Fatalf("expected base template for untranslated code, got %q", messages["BRANCH_QUEST_MISSING"])
	}
}

func TestFileValidate(t *testing.T) {
	messages := map[string]string{"core.next": "Next"}
	tests := []struct {
		name string
		file file
		want string
	}{
		{name: "ok", file: file{Locale: "en-US", Namespace: "core", Messages: messages}},
		{name: "no locale", file: file{Namespace: "core", Messages: messages}, want: "locale is required"},
		{name: "wrong namespace", file: file{Locale: "en-US", Namespace: "web", Messages: messages}, want: "must match file name"},
		{name: "empty", file: file{Locale: "en-US", Namespace: "core"}, want: "messages or objects are required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.file.validate("locales/en-US/core.yaml")
			if tc.want == "" {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestTranslatorText(t *testing.T) {
	pt := Default().Translator("pt-BR")
	if got := pt.Text("core.next"); got != "Próximo" {
		t.Fatalf("pt-BR core.next = %q", got)
	}
	if got := pt.Text("scene.library.name"); got != "The Great Library" {
		t.Fatalf("expected base-locale fallback, got %q", got)
	}
	if got := pt.Text("missing.key"); got != "missing.key" {
		t.Fatalf("missing key = %q, want key itself", got)
	}
	if got := pt.Format("core.progress", 2, 5); got != "2 de 5 missões concluídas" {
		t.Fatalf("progress = %q", got)
	}
}

func TestTranslatorUnknownLocaleUsesBase(t *testing.T) {
	tr := Default().Translator("fr-FR")
	if tr.Locale() != BaseLocale {
		t.Fatalf("locale = %q", tr.Locale())
	}
	if got := tr.Text("core.next"); got != "Next" {
		t.Fatalf("core.next = %q", got)
	}
}

func TestTranslatorMatchesLanguage(t *testing.T) {
	tr := Default().Translator("pt")
	if tr.Locale() != "pt-BR" {
		t.Fatalf("locale = %q, want pt-BR", tr.Locale())
	}
	if got := tr.Text("core.next"); got != "Próximo" {
		t.Fatalf("core.next = %q", got)
	}
}

func TestTranslatorObject(t *testing.T) {
	pt := Default().Translator("pt-BR")
	narrator, ok := pt.Object("narrator").([]any)
	if !ok || len(narrator) == 0 {
		t.Fatalf("narrator object = %#v", pt.Object("narrator"))
	}
	first, ok := narrator[0].(map[string]any)
	if !ok || first["speaker"] != "Narrador" {
		t.Fatalf("first entry = %#v", narrator[0])
	}
	if _, ok := pt.Object("ladder").([]any); !ok {
		t.Fatal("expected base-locale fallback for ladder dialogue")
	}
	if got := pt.Object("missing"); got != "missing" {
		t.Fatalf("missing object = %#v, want key", got)
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
