package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	testCases := []struct {
		name  string
		tuple Weights
	}{
		{"default", w.Default},
		{"write", w.Write},
		{"edit", w.Edit},
		{"rewrite", w.Rewrite},
		{"blank", w.Blank},
	}
	for _, tc := range testCases {
		if math.Abs(tc.tuple.Sum()-1.0) > 1e-9 {
			t.Errorf("%s weights sum to %v, want 1", tc.name, tc.tuple.Sum())
		}
	}
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if cfg.Engine.TopK != 5 || cfg.Engine.PoolCap != 320 {
		t.Errorf("unexpected engine defaults: %+v", cfg.Engine)
	}

	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if reloaded.Rerank.BlendOneWord != 0.74 {
		t.Errorf("blend_oneword = %v, want 0.74", reloaded.Rerank.BlendOneWord)
	}
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[engine]
top_k = "seven"
max_variants = 2

[rerank]
blend_oneword = 1

[weights.edit]
grammar = 0.5

[tagger]
backend = "Heuristic"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Engine.TopK != 5 {
		t.Errorf("top_k = %d, want default 5", cfg.Engine.TopK)
	}
	if cfg.Engine.MaxVariants != 2 {
		t.Errorf("max_variants = %d, want 2", cfg.Engine.MaxVariants)
	}
	if cfg.Rerank.BlendOneWord != 1 {
		t.Errorf("blend_oneword = %v, want 1", cfg.Rerank.BlendOneWord)
	}
	if cfg.Weights.Edit.Grammar != 0.5 || cfg.Weights.Edit.Semantic != 0.34 {
		t.Errorf("edit weights = %+v", cfg.Weights.Edit)
	}
	if cfg.Tagger.Backend != "heuristic" {
		t.Errorf("backend = %q, want heuristic", cfg.Tagger.Backend)
	}
}

func TestSanitizeRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.DriftBudget = 3
	cfg.Engine.TopK = -1
	cfg.Rerank.BlendLexical = 7
	cfg.Rerank.BlendOneWord = math.NaN()
	cfg.Rerank.BlendSuggest = 0
	cfg.Weights.Blank = Weights{}
	cfg.sanitize()

	if cfg.Engine.DriftBudget != 0.52 {
		t.Errorf("drift budget = %v", cfg.Engine.DriftBudget)
	}
	if cfg.Engine.TopK != 5 {
		t.Errorf("top_k = %d", cfg.Engine.TopK)
	}
	if cfg.Rerank.BlendLexical != 1 {
		t.Errorf("blend_lexical = %v, want clamped 1", cfg.Rerank.BlendLexical)
	}
	if cfg.Rerank.BlendOneWord != 0 || cfg.Rerank.BlendSuggest != 0 {
		t.Errorf("blend_oneword = %v, blend_suggest = %v, want 0", cfg.Rerank.BlendOneWord, cfg.Rerank.BlendSuggest)
	}
	if cfg.Weights.Blank.Grammar != 0.34 {
		t.Errorf("blank weights not restored: %+v", cfg.Weights.Blank)
	}
}

func TestEnvOverrides(t *testing.T) {
	testCases := []struct {
		value    string
		disabled bool
	}{
		{"1", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"", false},
		{"nope", false},
	}
	for _, tc := range testCases {
		t.Setenv(envDisableReranker, tc.value)
		t.Setenv(envRerankerArtifact, "/tmp/model.msgpack")
		cfg := DefaultConfig().withEnv()
		if cfg.Rerank.Disabled != tc.disabled {
			t.Errorf("%q: disabled = %v, want %v", tc.value, cfg.Rerank.Disabled, tc.disabled)
		}
		if cfg.Rerank.Artifact != "/tmp/model.msgpack" {
			t.Errorf("artifact override not applied: %q", cfg.Rerank.Artifact)
		}
	}
}

func TestRebuildConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	want := filepath.Join(home, ".config", "wordcraft", "config.toml")
	if err := os.MkdirAll(filepath.Dir(want), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(want, []byte("[engine]\ntop_k = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RebuildConfigFile(); err != nil {
		t.Fatalf("RebuildConfigFile: %v", err)
	}
	if got := GetActiveConfigPath(""); got != want {
		t.Errorf("GetActiveConfigPath(\"\") = %q, want %q", got, want)
	}
	cfg, err := LoadConfig(want)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.TopK != DefaultConfig().Engine.TopK {
		t.Errorf("top_k = %d after rebuild, want the default", cfg.Engine.TopK)
	}

	if got := GetActiveConfigPath("custom.toml"); !filepath.IsAbs(got) || filepath.Base(got) != "custom.toml" {
		t.Errorf("relative path resolved to %q", got)
	}
}
