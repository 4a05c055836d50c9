package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	LanguageAPIKey  string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	Orchestrator    *OrchestratorConfig
	ConfigDir       string
}

// FileConfig represents the structure of ~/.convogate/config.yaml
type FileConfig struct {
	APIKeys APIKeysConfig `yaml:"api_keys"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Language  string `yaml:"language"`
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
}

// Load reads configuration from config files and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	cfg := loadKeys(configDir)

	orchestratorPath := filepath.Join(configDir, "orchestrator.yaml")
	if _, err := os.Stat(orchestratorPath); err == nil {
		oc, err := LoadOrchestratorConfig(orchestratorPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load orchestrator config: %w", err)
		}
		cfg.Orchestrator = oc
	} else {
		cfg.Orchestrator = DefaultOrchestratorConfig()
	}

	return cfg, nil
}

// LoadWithOrchestratorFile loads config with a specific orchestrator file.
func LoadWithOrchestratorFile(path string) (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	cfg := loadKeys(configDir)

	oc, err := LoadOrchestratorConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load orchestrator config from %s: %w", path, err)
	}
	cfg.Orchestrator = oc

	return cfg, nil
}

func loadKeys(configDir string) *Config {
	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	return &Config{
		LanguageAPIKey:  getEnvOrDefault("LANGUAGE_API_KEY", fileConfig.APIKeys.Language),
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		ConfigDir:       configDir,
	}
}

// HasProvider returns true if the API key for the given LLM provider is configured.
func (c *Config) HasProvider(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "mock":
		return true
	default:
		return false
	}
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // Return empty config if file doesn't exist
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".convogate")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
