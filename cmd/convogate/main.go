package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/zen-systems/convogate/pkg/backend"
	"github.com/zen-systems/convogate/pkg/config"
	"github.com/zen-systems/convogate/pkg/fallback"
	"github.com/zen-systems/convogate/pkg/llm"
	"github.com/zen-systems/convogate/pkg/orchestrator"
	"github.com/zen-systems/convogate/pkg/router"
	"github.com/zen-systems/convogate/pkg/server"
	"github.com/zen-systems/convogate/pkg/strategy"
)

var configFile string

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "convogate",
		Short: "Unified conversation orchestrator with strategy routing and fallback",
		Long: `Convogate routes each user utterance to the configured answering
strategy (triage agent, function-calling router, intent classification,
question answering, or an orchestration workflow), applies the
confidence policy to the backend result, and falls back to a grounded
LLM answer when nothing was accepted.`,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to orchestrator config file")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(strategiesCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadWithOrchestratorFile(configFile)
	}
	return config.Load()
}

func chatCmd() *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "chat [utterance]",
		Short: "Route one utterance through the orchestrator",
		Long: `Routes the utterance to the configured strategy's adapter chain,
applies the confidence policy, and prints the final answer. Use --json
to dump the full result record including per-adapter diagnostics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			orch, err := buildOrchestrator(cfg)
			if err != nil {
				return fmt.Errorf("failed to build orchestrator: %w", err)
			}

			result, err := orch.Handle(context.Background(), args[0])
			if err != nil {
				return err
			}

			if jsonFlag {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if result.FallbackTriggered {
				fmt.Fprintln(os.Stderr, "Fallback answered")
			} else {
				fmt.Fprintf(os.Stderr, "Routed to %s\n", result.RoutedTo)
			}
			fmt.Println(result.FinalAnswer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the full result record as JSON")

	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat endpoint over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			orch, err := buildOrchestrator(cfg)
			if err != nil {
				return fmt.Errorf("failed to build orchestrator: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Serving strategy %s on %s\n", orch.Strategy(), addr)
			return server.New(orch).Start(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

func strategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "Show available strategies and the configured thresholds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			oc := cfg.Orchestrator

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STRATEGY\tADAPTER CHAIN\tACTIVE")

			names := make([]string, 0, len(config.Strategies()))
			for _, s := range config.Strategies() {
				names = append(names, string(s))
			}
			sort.Strings(names)

			for _, name := range names {
				chain, err := router.SelectChain(config.Strategy(name))
				if err != nil {
					continue
				}
				chainDesc := "(fallback only)"
				if len(chain) > 0 {
					chainDesc = ""
					for i, k := range chain {
						if i > 0 {
							chainDesc += ", "
						}
						chainDesc += k.String()
					}
				}
				active := ""
				if name == oc.Strategy {
					active = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, chainDesc, active)
			}

			fmt.Fprintln(w)
			fmt.Fprintf(w, "clu threshold\t%.2f\n", oc.CLU.ConfidenceThreshold)
			fmt.Fprintf(w, "cqa threshold\t%.2f\n", oc.CQA.ConfidenceThreshold)
			fmt.Fprintf(w, "orchestration threshold\t%.2f\n", oc.Orchestration.ConfidenceThreshold)

			return w.Flush()
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the orchestrator configuration without calling backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Mock adapters stand in for the real backends so validation
			// stays offline.
			adapters := map[strategy.Kind]strategy.Adapter{}
			for _, kind := range []strategy.Kind{
				strategy.KindTriageAgent,
				strategy.KindFunctionCalling,
				strategy.KindCLU,
				strategy.KindCQA,
				strategy.KindOrchestration,
			} {
				adapters[kind] = strategy.NewMockAdapter(kind)
			}

			if _, err := orchestrator.New(cfg, adapters, fallback.NewStatic("ok")); err != nil {
				return err
			}
			fmt.Println("Orchestrator configuration is valid.")
			return nil
		},
	}
}

// buildOrchestrator wires the adapter chain and fallback the configured
// strategy needs, and nothing more.
func buildOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, error) {
	oc := cfg.Orchestrator

	selected, err := config.ParseStrategy(oc.Strategy)
	if err != nil {
		return nil, err
	}
	kinds, err := router.SelectChain(selected)
	if err != nil {
		return nil, err
	}

	adapters := make(map[strategy.Kind]strategy.Adapter, len(kinds))
	for _, kind := range kinds {
		a, err := buildAdapter(kind, cfg)
		if err != nil {
			return nil, err
		}
		adapters[kind] = a
	}

	fb, err := buildFallback(cfg)
	if err != nil {
		return nil, err
	}

	return orchestrator.New(cfg, adapters, fb)
}

func buildAdapter(kind strategy.Kind, cfg *config.Config) (strategy.Adapter, error) {
	oc := cfg.Orchestrator

	switch kind {
	case strategy.KindCLU:
		return strategy.NewCLUAdapter(backend.NewCLUClient(oc.CLU, cfg.LanguageAPIKey), oc.CLU), nil

	case strategy.KindCQA:
		return strategy.NewCQAAdapter(backend.NewCQAClient(oc.CQA, cfg.LanguageAPIKey), oc.CQA), nil

	case strategy.KindOrchestration:
		return strategy.NewOrchestrationAdapter(backend.NewOrchestrationClient(oc.Orchestration, cfg.LanguageAPIKey), oc.Orchestration), nil

	case strategy.KindTriageAgent:
		provider, err := llm.New(oc.Agent.Provider, cfg)
		if err != nil {
			return nil, err
		}
		return strategy.NewTriageAdapter(provider, oc.Agent.Model, oc.CLU, oc.CQA), nil

	case strategy.KindFunctionCalling:
		provider, err := llm.New(oc.Agent.Provider, cfg)
		if err != nil {
			return nil, err
		}
		clu := strategy.NewCLUAdapter(backend.NewCLUClient(oc.CLU, cfg.LanguageAPIKey), oc.CLU)
		cqa := strategy.NewCQAAdapter(backend.NewCQAClient(oc.CQA, cfg.LanguageAPIKey), oc.CQA)
		return strategy.NewFunctionCallingAdapter(provider, oc.Agent.Model, clu, cqa), nil

	default:
		return nil, &config.Error{Field: "strategy", Reason: fmt.Sprintf("no adapter for %s", kind)}
	}
}

func buildFallback(cfg *config.Config) (orchestrator.Fallback, error) {
	fc := cfg.Orchestrator.Fallback
	if fc.Provider == "" {
		return fallback.NewStatic(fc.Message), nil
	}

	provider, err := llm.New(fc.Provider, cfg)
	if err != nil {
		return nil, err
	}

	var opts []fallback.RAGOption
	if fc.KnowledgeDir != "" {
		opts = append(opts, fallback.WithRetriever(fallback.NewFilesystemRetriever(fc.KnowledgeDir)))
	}
	return fallback.NewRAGFallback(provider, fc.Model, opts...), nil
}
