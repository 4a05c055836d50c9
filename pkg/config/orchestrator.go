package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Strategy selects which answering path handles incoming utterances.
type Strategy string

const (
	StrategyTriageAgent     Strategy = "triage_agent"
	StrategyFunctionCalling Strategy = "function_calling"
	StrategyCLU             Strategy = "clu"
	StrategyCQA             Strategy = "cqa"
	StrategyOrchestration   Strategy = "orchestration"
	StrategyBypass          Strategy = "bypass"
)

// Strategies lists every valid strategy value.
func Strategies() []Strategy {
	return []Strategy{
		StrategyTriageAgent,
		StrategyFunctionCalling,
		StrategyCLU,
		StrategyCQA,
		StrategyOrchestration,
		StrategyBypass,
	}
}

// ParseStrategy validates a raw strategy value.
func ParseStrategy(raw string) (Strategy, error) {
	s := Strategy(raw)
	for _, known := range Strategies() {
		if s == known {
			return s, nil
		}
	}
	return "", &Error{Field: "strategy", Reason: fmt.Sprintf("unknown value %q", raw)}
}

// OrchestratorConfig holds the routing strategy and per-backend settings.
// It is loaded once at process start and read-only afterwards.
type OrchestratorConfig struct {
	Strategy      string         `yaml:"strategy"`
	CLU           ProjectConfig  `yaml:"clu,omitempty"`
	CQA           ProjectConfig  `yaml:"cqa,omitempty"`
	Orchestration ProjectConfig  `yaml:"orchestration,omitempty"`
	Agent         LLMConfig      `yaml:"agent,omitempty"`
	Fallback      FallbackConfig `yaml:"fallback,omitempty"`

	// Per-adapter call limit. A timed-out adapter is recorded as failed
	// in the diagnostics, it never aborts the turn.
	AdapterTimeoutMs int `yaml:"adapter_timeout_ms,omitempty"`
}

// ProjectConfig identifies one Language-service project deployment.
type ProjectConfig struct {
	Endpoint            string  `yaml:"endpoint"`
	Project             string  `yaml:"project"`
	Deployment          string  `yaml:"deployment"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold,omitempty"`
}

// LLMConfig selects a provider and model for LLM-backed adapters.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// FallbackConfig configures the uniform fallback path. When Provider is
// empty the fallback degrades to the static Message.
type FallbackConfig struct {
	Provider     string `yaml:"provider,omitempty"`
	Model        string `yaml:"model,omitempty"`
	KnowledgeDir string `yaml:"knowledge_dir,omitempty"`
	Message      string `yaml:"message,omitempty"`
}

// LoadOrchestratorConfig reads orchestrator configuration from a YAML file.
func LoadOrchestratorConfig(path string) (*OrchestratorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg OrchestratorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyOrchestratorDefaults(&cfg)
	return &cfg, nil
}

// DefaultOrchestratorConfig returns the configuration used when no
// orchestrator.yaml exists: every turn goes straight to the fallback.
func DefaultOrchestratorConfig() *OrchestratorConfig {
	cfg := &OrchestratorConfig{
		Strategy: string(StrategyBypass),
		Fallback: FallbackConfig{
			Message: "Sorry, I could not find an answer to that.",
		},
	}

	applyOrchestratorDefaults(cfg)
	return cfg
}

func applyOrchestratorDefaults(cfg *OrchestratorConfig) {
	if cfg == nil {
		return
	}
	if cfg.CLU.ConfidenceThreshold == 0 {
		cfg.CLU.ConfidenceThreshold = defaultCLUThreshold()
	}
	if cfg.CQA.ConfidenceThreshold == 0 {
		cfg.CQA.ConfidenceThreshold = 0.5
	}
	if cfg.Orchestration.ConfidenceThreshold == 0 {
		cfg.Orchestration.ConfidenceThreshold = 0.5
	}
	if cfg.AdapterTimeoutMs == 0 {
		cfg.AdapterTimeoutMs = 35000
	}
	if cfg.Fallback.Message == "" {
		cfg.Fallback.Message = "Sorry, I could not find an answer to that."
	}
}

func defaultCLUThreshold() float64 {
	if raw := os.Getenv("CLU_CONFIDENCE_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 && v <= 1 {
			return v
		}
	}
	return 0.5
}

// Validate checks that every setting the configured strategy needs is
// present. It is called at construction so a bad configuration can never
// surface mid-call.
func (c *OrchestratorConfig) Validate() error {
	strategy, err := ParseStrategy(c.Strategy)
	if err != nil {
		return err
	}

	switch strategy {
	case StrategyCLU:
		return c.validateProject("clu", c.CLU)
	case StrategyCQA:
		return c.validateProject("cqa", c.CQA)
	case StrategyOrchestration:
		return c.validateProject("orchestration", c.Orchestration)
	case StrategyTriageAgent, StrategyFunctionCalling:
		if err := c.validateAgent(); err != nil {
			return err
		}
		if err := c.validateProject("clu", c.CLU); err != nil {
			return err
		}
		return c.validateProject("cqa", c.CQA)
	case StrategyBypass:
		return nil
	}
	return nil
}

func (c *OrchestratorConfig) validateProject(name string, p ProjectConfig) error {
	if p.Endpoint == "" {
		return &Error{Field: name + ".endpoint", Reason: "required"}
	}
	if p.Project == "" {
		return &Error{Field: name + ".project", Reason: "required"}
	}
	if p.Deployment == "" {
		return &Error{Field: name + ".deployment", Reason: "required"}
	}
	if p.ConfidenceThreshold <= 0 || p.ConfidenceThreshold > 1 {
		return &Error{Field: name + ".confidence_threshold", Reason: "must be in (0, 1]"}
	}
	return nil
}

func (c *OrchestratorConfig) validateAgent() error {
	if c.Agent.Provider == "" {
		return &Error{Field: "agent.provider", Reason: "required"}
	}
	if c.Agent.Model == "" {
		return &Error{Field: "agent.model", Reason: "required"}
	}
	return nil
}
