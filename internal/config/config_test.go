package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRetrievalTuningEmptyPath(t *testing.T) {
	tuning, err := LoadRetrievalTuning("")
	if err != nil {
		t.Fatalf("LoadRetrievalTuning() error = %v", err)
	}
	if tuning != (RetrievalTuning{}) {
		t.Fatalf("expected zero tuning, got %+v", tuning)
	}
}

func TestLoadRetrievalTuningParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	content := []byte("top_k: 8\nlexical_weight: 0.5\nsemantic_weight: 0.5\nmin_avg_similarity: 0.35\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tuning, err := LoadRetrievalTuning(path)
	if err != nil {
		t.Fatalf("LoadRetrievalTuning() error = %v", err)
	}
	if tuning.TopK != 8 || tuning.LexicalWeight != 0.5 || tuning.MinAvgSimilarity != 0.35 {
		t.Fatalf("unexpected tuning: %+v", tuning)
	}
	if tuning.MaxCandidates != 0 {
		t.Fatalf("unset fields must stay zero, got %d", tuning.MaxCandidates)
	}
}

func TestLoadRetrievalTuningRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("top_k: [broken"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadRetrievalTuning(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMustEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_FLOAT", "2.5")
	t.Setenv("TEST_BAD_INT", "nope")

	if got := mustEnv("TEST_STR", "fallback"); got != "value" {
		t.Fatalf("mustEnv = %q", got)
	}
	if got := mustEnv("TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("mustEnv fallback = %q", got)
	}
	if got := mustEnvInt("TEST_INT", 1); got != 42 {
		t.Fatalf("mustEnvInt = %d", got)
	}
	if got := mustEnvInt("TEST_BAD_INT", 7); got != 7 {
		t.Fatalf("mustEnvInt bad value = %d", got)
	}
	if got := mustEnvFloat("TEST_FLOAT", 1); got != 2.5 {
		t.Fatalf("mustEnvFloat = %v", got)
	}
}
