// Package router maps the configured strategy to the ordered adapter chain
// that handles each turn.
package router

import (
	"github.com/zen-systems/convogate/pkg/config"
	"github.com/zen-systems/convogate/pkg/strategy"
)

// SelectChain resolves the adapter chain for a strategy. It is a pure
// function with no I/O; an unknown strategy is a configuration error and
// must be caught at construction time, never per call.
//
// The bypass strategy resolves to an empty chain: the fallback runs
// unconditionally.
func SelectChain(s config.Strategy) ([]strategy.Kind, error) {
	switch s {
	case config.StrategyTriageAgent:
		return []strategy.Kind{strategy.KindTriageAgent}, nil
	case config.StrategyFunctionCalling:
		return []strategy.Kind{strategy.KindFunctionCalling}, nil
	case config.StrategyCLU:
		return []strategy.Kind{strategy.KindCLU}, nil
	case config.StrategyCQA:
		return []strategy.Kind{strategy.KindCQA}, nil
	case config.StrategyOrchestration:
		return []strategy.Kind{strategy.KindOrchestration}, nil
	case config.StrategyBypass:
		return nil, nil
	default:
		return nil, &config.Error{Field: "strategy", Reason: "unknown value " + string(s)}
	}
}
