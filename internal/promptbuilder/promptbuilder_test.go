package promptbuilder

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReadsYAMLPresets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rag.yaml"), []byte(
		"system_prompt: \"be helpful\"\nuser_prompt_template: \"Context:\\n{context}\\n\\nQuestion: {query}\"\n",
	), 0644); err != nil {
		t.Fatal(err)
	}

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !b.Has("rag") {
		t.Fatal("expected a preset named \"rag\"")
	}

	messages, err := b.Build("rag", map[string]string{"context": "doc text", "query": "what happened"})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "be helpful" {
		t.Errorf("system prompt = %q", messages[0].Content)
	}
	want := "Context:\ndoc text\n\nQuestion: what happened"
	if messages[1].Content != want {
		t.Errorf("user prompt = %q, want %q", messages[1].Content, want)
	}
}

func TestLoadMissingDirIsNotAnError(t *testing.T) {
	b, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Load() on missing dir should not error, got: %v", err)
	}
	if b.Has("rag") {
		t.Fatal("expected no presets loaded")
	}
}

func TestRegisterDefaultsFillsGaps(t *testing.T) {
	b, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	b.RegisterDefaults()
	if !b.Has("rag") {
		t.Fatal("expected default \"rag\" preset to be registered")
	}
	if !b.Has("ioc_enrichment") {
		t.Fatal("expected default \"ioc_enrichment\" preset to be registered")
	}
}

func TestRegisterDefaultsDoesNotOverrideLoaded(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rag.yaml"), []byte(
		"system_prompt: \"custom\"\nuser_prompt_template: \"{query}\"\n",
	), 0644); err != nil {
		t.Fatal(err)
	}
	b, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	b.RegisterDefaults()

	messages, err := b.Build("rag", nil)
	if err != nil {
		t.Fatal(err)
	}
	if messages[0].Content != "custom" {
		t.Errorf("expected loaded preset to win over default, got %q", messages[0].Content)
	}
}

func TestBuildUnknownPresetErrors(t *testing.T) {
	b, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build("nonexistent", nil); err == nil {
		t.Fatal("expected an error for an unregistered preset")
	}
}
