// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/proposal-engine/internal/resilience"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 5 * time.Second
	defaultTimeout    = 60 * time.Second
)

// errNoProviders is returned when the invoker has nothing to call.
var errNoProviders = errors.New("no providers configured")

// AttemptObserver receives one result per provider attempt.
type AttemptObserver interface {
	ObserveAttempt(types.ProviderResult)
}

// Options tunes an Invoker. Zero values select the defaults.
type Options struct {
	// Priority is the order providers are tried in each pass. Names without
	// a registered adapter are skipped. Defaults to types.KnownProviders.
	Priority []types.ProviderName

	// MaxRetries is the number of passes over Priority (default 3).
	MaxRetries int

	// RetryDelay separates consecutive passes (default 5s). Negative means
	// no wait.
	RetryDelay time.Duration

	// Timeout bounds each call when the request sets none (default 60s).
	Timeout time.Duration

	// Models overrides the model sent to a provider.
	Models map[types.ProviderName]string

	Log      *zap.Logger
	Observer AttemptObserver
}

// Invoker generates text with the first provider that answers, retrying the
// whole priority list on failure. It is safe for concurrent use.
type Invoker struct {
	providers map[types.ProviderName]Provider
	order     []types.ProviderName
	policy    resilience.Policy
	timeout   time.Duration
	models    map[types.ProviderName]string
	log       *zap.Logger
	observer  AttemptObserver
}

// NewInvoker creates an Invoker over the given adapters.
func NewInvoker(providers []Provider, opts Options) *Invoker {
	byName := make(map[types.ProviderName]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	priority := opts.Priority
	if len(priority) == 0 {
		priority = types.KnownProviders
	}
	var order []types.ProviderName
	for _, name := range priority {
		if _, ok := byName[name]; ok {
			order = append(order, name)
		}
	}

	inv := &Invoker{
		providers: byName,
		order:     order,
		policy:    resilience.Policy{Attempts: opts.MaxRetries, Delay: opts.RetryDelay},
		timeout:   opts.Timeout,
		models:    opts.Models,
		log:       opts.Log,
		observer:  opts.Observer,
	}
	if inv.policy.Attempts <= 0 {
		inv.policy.Attempts = defaultMaxRetries
	}
	if inv.policy.Delay == 0 {
		inv.policy.Delay = defaultRetryDelay
	}
	if inv.timeout <= 0 {
		inv.timeout = defaultTimeout
	}
	if inv.log == nil {
		inv.log = zap.NewNop()
	}
	return inv
}

// Order returns the effective priority list.
func (inv *Invoker) Order() []types.ProviderName {
	return append([]types.ProviderName(nil), inv.order...)
}

// Generate returns the trimmed reply for req.
//
// With an explicit provider, that adapter alone is called once and its
// failure is returned as is. An unknown provider name is logged and treated
// as auto. In auto mode every provider is tried in priority order, up to
// MaxRetries passes; the first non-blank reply wins. When all passes fail
// the result is an *ExhaustedError.
func (inv *Invoker) Generate(ctx context.Context, req types.GenerationRequest) (string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = inv.timeout
	}

	name, known := types.ParseProviderName(string(req.Provider))
	if !known {
		inv.log.Warn("unknown provider, using fallback", zap.String("provider", string(req.Provider)))
		name = types.ProviderAuto
	}

	if name != types.ProviderAuto {
		p, ok := inv.providers[name]
		if !ok {
			return "", &ProviderError{Provider: name, Cause: errors.New("provider not configured")}
		}
		res := inv.attempt(ctx, p, req.Prompt, timeout)
		if res.Err != nil {
			return "", res.Err
		}
		if !res.Succeeded {
			return "", &ProviderError{Provider: name, Cause: ErrEmptyResponse}
		}
		return res.Text, nil
	}

	if len(inv.order) == 0 {
		return "", errNoProviders
	}

	var lastErr error
	pass := 0
	text, err := resilience.Do(ctx, inv.policy, func(ctx context.Context) (string, error) {
		pass++
		for _, name := range inv.order {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			res := inv.attempt(ctx, inv.providers[name], req.Prompt, timeout)
			if res.Succeeded {
				return res.Text, nil
			}
			lastErr = res.Err
			if lastErr == nil {
				lastErr = &ProviderError{Provider: name, Cause: ErrEmptyResponse}
			}
		}
		inv.log.Warn("fallback pass failed",
			zap.Int("pass", pass),
			zap.Int("max_passes", inv.policy.Attempts),
			zap.Error(lastErr))
		return "", lastErr
	})
	if err == nil {
		return text, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("generation interrupted: %w", ctxErr)
	}
	return "", &ExhaustedError{Passes: inv.policy.Attempts, LastErr: lastErr}
}

// attempt calls p once and classifies the reply.
func (inv *Invoker) attempt(ctx context.Context, p Provider, prompt string, timeout time.Duration) types.ProviderResult {
	name := p.Name()
	start := time.Now()
	text, err := p.Invoke(ctx, prompt, inv.models[name], timeout)
	res := types.ProviderResult{Provider: name, Err: err, Elapsed: time.Since(start)}

	if err == nil {
		res.Text = strings.TrimSpace(text)
		res.Succeeded = res.Text != ""
	}
	if inv.observer != nil {
		inv.observer.ObserveAttempt(res)
	}

	switch {
	case res.Succeeded:
		inv.log.Info("provider succeeded", zap.String("provider", string(name)), zap.Duration("elapsed", res.Elapsed))
	case err != nil:
		inv.log.Warn("provider failed", zap.String("provider", string(name)), zap.Error(err))
	default:
		inv.log.Warn("provider returned empty text", zap.String("provider", string(name)))
	}
	return res
}
