package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestConfigUsesEnvAPIKeys(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	t.Setenv("LANGUAGE_API_KEY", "env-lang")
	t.Setenv("ANTHROPIC_API_KEY", "env-ant")
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("GOOGLE_API_KEY", "env-google")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LanguageAPIKey != "env-lang" || cfg.AnthropicAPIKey != "env-ant" || cfg.OpenAIAPIKey != "env-openai" || cfg.GoogleAPIKey != "env-google" {
		t.Fatalf("expected env API keys to be used")
	}
}

func TestConfigEnvOverridesFileKeys(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	configDir := filepath.Join(home, ".convogate")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data := []byte("api_keys:\n  language: file-lang\n  anthropic: file-ant\n")
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("LANGUAGE_API_KEY", "env-lang")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LanguageAPIKey != "env-lang" {
		t.Fatalf("expected env to win, got %q", cfg.LanguageAPIKey)
	}
	if cfg.AnthropicAPIKey != "file-ant" {
		t.Fatalf("expected file key when env unset, got %q", cfg.AnthropicAPIKey)
	}
}

func TestDefaultOrchestratorConfigIsBypass(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Orchestrator.Strategy != string(StrategyBypass) {
		t.Fatalf("expected bypass default, got %s", cfg.Orchestrator.Strategy)
	}
	if err := cfg.Orchestrator.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadOrchestratorConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orchestrator.yaml")
	data := []byte("strategy: clu\nclu:\n  endpoint: https://example.cognitiveservices.azure.com\n  project: orders\n  deployment: production\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	oc, err := LoadOrchestratorConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if oc.CLU.ConfidenceThreshold != 0.5 {
		t.Fatalf("expected default threshold 0.5, got %v", oc.CLU.ConfidenceThreshold)
	}
	if oc.AdapterTimeoutMs != 35000 {
		t.Fatalf("expected default timeout 35000, got %d", oc.AdapterTimeoutMs)
	}
	if err := oc.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestCLUThresholdEnvDefault(t *testing.T) {
	t.Setenv("CLU_CONFIDENCE_THRESHOLD", "0.7")

	oc := &OrchestratorConfig{Strategy: string(StrategyCLU)}
	applyOrchestratorDefaults(oc)
	if oc.CLU.ConfidenceThreshold != 0.7 {
		t.Fatalf("expected env threshold 0.7, got %v", oc.CLU.ConfidenceThreshold)
	}
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	oc := &OrchestratorConfig{Strategy: "guesswork"}
	applyOrchestratorDefaults(oc)

	err := oc.Validate()
	if err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
	if !IsConfigError(err) {
		t.Fatalf("expected config error, got %T", err)
	}
}

func TestValidateRejectsMissingProjectSettings(t *testing.T) {
	oc := &OrchestratorConfig{
		Strategy: string(StrategyCLU),
		CLU:      ProjectConfig{Endpoint: "https://example.com", Project: "orders"},
	}
	applyOrchestratorDefaults(oc)

	err := oc.Validate()
	if err == nil {
		t.Fatalf("expected error for missing deployment")
	}
	if !IsConfigError(err) {
		t.Fatalf("expected config error, got %T", err)
	}
}

func TestValidateAgentStrategiesNeedAgentAndBothProjects(t *testing.T) {
	oc := &OrchestratorConfig{
		Strategy: string(StrategyFunctionCalling),
		CLU:      ProjectConfig{Endpoint: "https://example.com", Project: "p", Deployment: "d"},
		CQA:      ProjectConfig{Endpoint: "https://example.com", Project: "p", Deployment: "d"},
	}
	applyOrchestratorDefaults(oc)

	if err := oc.Validate(); err == nil {
		t.Fatalf("expected error for missing agent")
	}

	oc.Agent = LLMConfig{Provider: "openai", Model: "gpt-5.2-instant"}
	if err := oc.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		if _, err := ParseStrategy(string(s)); err != nil {
			t.Fatalf("expected %s to parse: %v", s, err)
		}
	}
	if _, err := ParseStrategy("CLU"); err == nil {
		t.Fatalf("expected strategy values to be case sensitive")
	}
}

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}
