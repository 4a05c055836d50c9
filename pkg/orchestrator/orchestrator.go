package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zen-systems/convogate/pkg/config"
	"github.com/zen-systems/convogate/pkg/outcome"
	"github.com/zen-systems/convogate/pkg/router"
	"github.com/zen-systems/convogate/pkg/strategy"
)

// Fallback is the uniform answering path invoked when no adapter produced
// an accepted outcome.
type Fallback interface {
	Answer(ctx context.Context, utterance string) (string, error)
}

// Hook runs caller-supplied business logic after an intent-style outcome is
// accepted. The returned text, if any, is appended to the final answer.
// A hook failure never prevents a result from being returned.
type Hook interface {
	OnIntent(ctx context.Context, intent string, entities []outcome.Entity) (string, error)
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, intent string, entities []outcome.Entity) (string, error)

func (f HookFunc) OnIntent(ctx context.Context, intent string, entities []outcome.Entity) (string, error) {
	return f(ctx, intent, entities)
}

// Orchestrator drives the routing policy over the configured adapter chain
// and assembles the uniform result record. It holds no mutable state across
// calls, so concurrent Handle calls need no locking.
type Orchestrator struct {
	strategy config.Strategy
	chain    []strategy.Adapter
	fallback Fallback
	hook     Hook
	timeout  time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithHook sets the business-logic hook.
func WithHook(h Hook) Option {
	return func(o *Orchestrator) {
		o.hook = h
	}
}

// New validates the configuration, resolves the adapter chain, and builds
// the orchestrator. Every configuration problem surfaces here; Handle can
// assume a valid setup.
func New(cfg *config.Config, adapters map[strategy.Kind]strategy.Adapter, fallback Fallback, opts ...Option) (*Orchestrator, error) {
	if cfg == nil || cfg.Orchestrator == nil {
		return nil, &config.Error{Field: "orchestrator", Reason: "required"}
	}
	if err := cfg.Orchestrator.Validate(); err != nil {
		return nil, err
	}
	if fallback == nil {
		return nil, &config.Error{Field: "fallback", Reason: "handler required"}
	}

	selected, err := config.ParseStrategy(cfg.Orchestrator.Strategy)
	if err != nil {
		return nil, err
	}
	kinds, err := router.SelectChain(selected)
	if err != nil {
		return nil, err
	}

	chain := make([]strategy.Adapter, 0, len(kinds))
	for _, kind := range kinds {
		a, ok := adapters[kind]
		if !ok || a == nil {
			return nil, &config.Error{Field: "adapters", Reason: fmt.Sprintf("no adapter registered for %s", kind)}
		}
		chain = append(chain, a)
	}

	o := &Orchestrator{
		strategy: selected,
		chain:    chain,
		fallback: fallback,
		timeout:  time.Duration(cfg.Orchestrator.AdapterTimeoutMs) * time.Millisecond,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Strategy returns the configured strategy.
func (o *Orchestrator) Strategy() config.Strategy {
	return o.strategy
}

// Handle routes one utterance. First accepted outcome wins; every invoked
// adapter is recorded in diagnostics in call order regardless of outcome.
func (o *Orchestrator) Handle(ctx context.Context, utterance string) (*outcome.Result, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, &ValidationError{Reason: "utterance is empty"}
	}

	result := &outcome.Result{
		TraceID:  uuid.NewString(),
		RoutedTo: strategy.KindNone.String(),
	}

	var accepted *outcome.Outcome
	var acceptedKind strategy.Kind
	var transportErrs []error

	for _, a := range o.chain {
		out, err := o.invoke(ctx, a, utterance)
		if err != nil {
			if ctx.Err() != nil {
				// Caller cancellation aborts the turn outright.
				return nil, ctx.Err()
			}
			log.Printf("[orchestrator] %s adapter failed: %v (trace=%s)", a.Kind(), err, result.TraceID)
			transportErrs = append(transportErrs, err)
		}
		result.Diagnostics = append(result.Diagnostics, outcome.Diagnostic{
			Adapter: a.Kind().String(),
			Outcome: out,
		})
		if out.Accepted {
			accepted = out
			acceptedKind = a.Kind()
			break
		}
	}

	if accepted == nil {
		answer, err := o.fallback.Answer(ctx, utterance)
		if err != nil {
			return nil, &ExhaustedError{AdapterErrs: transportErrs, FallbackErr: err}
		}
		result.FallbackTriggered = true
		result.FinalAnswer = answer
		return result, nil
	}

	result.RoutedTo = acceptedKind.String()
	result.Intent = accepted.Intent
	result.Entities = accepted.Entities
	result.FinalAnswer = answerFor(accepted)

	if accepted.Intent != "" && o.hook != nil {
		extra, err := o.hook.OnIntent(ctx, accepted.Intent, accepted.Entities)
		if err != nil {
			log.Printf("[orchestrator] hook failed: %v (trace=%s)", err, result.TraceID)
		} else if extra != "" {
			result.FinalAnswer += extra
		}
	}

	return result, nil
}

// invoke runs one adapter under the per-adapter call limit. A timed-out
// call surfaces as a transport error, never as a fatal one. On failure the
// returned outcome carries the error marker and the measured latency, so
// diagnostics stay complete on failure paths too.
func (o *Orchestrator) invoke(ctx context.Context, a strategy.Adapter, utterance string) (*outcome.Outcome, error) {
	callCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := a.Invoke(callCtx, utterance)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("adapter timed out after %s: %w", o.timeout, err)
		}
		failed := outcome.Errored(err)
		failed.Elapsed = elapsed
		return failed, err
	}
	out.Elapsed = elapsed
	return out, nil
}

// answerFor picks the answer text carried by an accepted outcome. An
// intent-style outcome has no answer of its own until a hook or downstream
// agent supplies one.
func answerFor(out *outcome.Outcome) string {
	if out.Answer != "" {
		return out.Answer
	}
	return fmt.Sprintf("Recognized intent: %s.", out.Intent)
}
