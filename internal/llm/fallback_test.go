// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/proposal-engine/pkg/types"
)

// fakeProvider replays scripted replies, one per call, repeating the last.
type fakeProvider struct {
	name    types.ProviderName
	replies []fakeReply

	mu     sync.Mutex
	calls  int
	models []string
}

type fakeReply struct {
	text string
	err  error
}

func (f *fakeProvider) Name() types.ProviderName { return f.name }

func (f *fakeProvider) Invoke(_ context.Context, _ string, model string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.replies[min(f.calls, len(f.replies)-1)]
	f.calls++
	f.models = append(f.models, model)
	if r.err != nil {
		return "", &ProviderError{Provider: f.name, Cause: r.err}
	}
	return r.text, nil
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func failing(name types.ProviderName) *fakeProvider {
	return &fakeProvider{name: name, replies: []fakeReply{{err: errors.New("boom")}}}
}

func answering(name types.ProviderName, text string) *fakeProvider {
	return &fakeProvider{name: name, replies: []fakeReply{{text: text}}}
}

type recordingObserver struct {
	mu      sync.Mutex
	results []types.ProviderResult
}

func (r *recordingObserver) ObserveAttempt(res types.ProviderResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func fastOptions(t *testing.T, priority ...types.ProviderName) Options {
	return Options{
		Priority:   priority,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		Log:        zaptest.NewLogger(t),
	}
}

func TestGenerate_FirstFailsSecondAnswers(t *testing.T) {
	defer goleak.VerifyNone(t)

	p1 := failing(types.ProviderGemini)
	p2 := answering(types.ProviderOpenAI, "X")
	inv := NewInvoker([]Provider{p1, p2}, fastOptions(t, types.ProviderGemini, types.ProviderOpenAI))

	got, err := inv.Generate(context.Background(), types.GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "X", got)
	assert.Equal(t, 1, p1.Calls())
	assert.Equal(t, 1, p2.Calls())
}

func TestGenerate_AllFailExhausts(t *testing.T) {
	defer goleak.VerifyNone(t)

	ps := []*fakeProvider{
		failing(types.ProviderGemini),
		failing(types.ProviderOpenAI),
		failing(types.ProviderClaude),
	}
	inv := NewInvoker([]Provider{ps[0], ps[1], ps[2]}, fastOptions(t))

	_, err := inv.Generate(context.Background(), types.GenerationRequest{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Passes)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, types.ProviderClaude, perr.Provider, "last provider in priority order")

	for _, p := range ps {
		assert.Equal(t, 3, p.Calls(), string(p.name))
	}
}

func TestGenerate_BlankReplyIsFailure(t *testing.T) {
	p1 := answering(types.ProviderGemini, "  \n\t ")
	p2 := answering(types.ProviderOpenAI, "  real answer \n")
	inv := NewInvoker([]Provider{p1, p2}, fastOptions(t))

	got, err := inv.Generate(context.Background(), types.GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "real answer", got)
	assert.Equal(t, 1, p1.Calls())
}

func TestGenerate_SecondPassSucceeds(t *testing.T) {
	p := &fakeProvider{name: types.ProviderQwen, replies: []fakeReply{
		{err: errors.New("rate limited")},
		{text: "later"},
	}}
	inv := NewInvoker([]Provider{p}, fastOptions(t))

	got, err := inv.Generate(context.Background(), types.GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "later", got)
	assert.Equal(t, 2, p.Calls())
}

func TestGenerate_PriorityOrder(t *testing.T) {
	claude := answering(types.ProviderClaude, "from claude")
	qwen := answering(types.ProviderQwen, "from qwen")
	opts := fastOptions(t, types.ProviderQwen, types.ProviderSiliconFlow, types.ProviderClaude)
	inv := NewInvoker([]Provider{claude, qwen}, opts)

	assert.Equal(t, []types.ProviderName{types.ProviderQwen, types.ProviderClaude}, inv.Order())

	got, err := inv.Generate(context.Background(), types.GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "from qwen", got)
	assert.Equal(t, 0, claude.Calls())
}

func TestGenerate_ExplicitProvider(t *testing.T) {
	defer goleak.VerifyNone(t)

	gemini := answering(types.ProviderGemini, "gemini text")
	claude := failing(types.ProviderClaude)
	inv := NewInvoker([]Provider{gemini, claude}, fastOptions(t))

	_, err := inv.Generate(context.Background(), types.GenerationRequest{Prompt: "p", Provider: types.ProviderClaude})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, types.ProviderClaude, perr.Provider)
	assert.False(t, errors.Is(err, ErrExhausted))
	assert.Equal(t, 1, claude.Calls(), "explicit provider is not retried")
	assert.Equal(t, 0, gemini.Calls(), "explicit provider does not fall back")
}

func TestGenerate_ExplicitProviderBlank(t *testing.T) {
	p := answering(types.ProviderOpenAI, " ")
	inv := NewInvoker([]Provider{p}, fastOptions(t))

	_, err := inv.Generate(context.Background(), types.GenerationRequest{Prompt: "p", Provider: types.ProviderOpenAI})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerate_UnknownProviderFallsBack(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	opts := fastOptions(t)
	opts.Log = zap.New(core)

	p := answering(types.ProviderGemini, "ok")
	inv := NewInvoker([]Provider{p}, opts)

	got, err := inv.Generate(context.Background(), types.GenerationRequest{Prompt: "p", Provider: "mistral"})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, logs.FilterMessage("unknown provider, using fallback").Len())
}

func TestGenerate_ContextCancelledBetweenPasses(t *testing.T) {
	p := failing(types.ProviderGemini)
	opts := fastOptions(t)
	opts.RetryDelay = time.Hour
	inv := NewInvoker([]Provider{p}, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := inv.Generate(ctx, types.GenerationRequest{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, ErrExhausted))
	assert.Equal(t, 1, p.Calls())
}

func TestGenerate_NoProviders(t *testing.T) {
	inv := NewInvoker(nil, fastOptions(t))
	_, err := inv.Generate(context.Background(), types.GenerationRequest{Prompt: "p"})
	assert.ErrorIs(t, err, errNoProviders)
}

func TestGenerate_ModelsAndObserver(t *testing.T) {
	obs := &recordingObserver{}
	opts := fastOptions(t)
	opts.Observer = obs
	opts.Models = map[types.ProviderName]string{types.ProviderOpenAI: "gpt-4o-mini"}

	p1 := failing(types.ProviderGemini)
	p2 := answering(types.ProviderOpenAI, "done")
	inv := NewInvoker([]Provider{p1, p2}, opts)

	_, err := inv.Generate(context.Background(), types.GenerationRequest{Prompt: "p"})
	require.NoError(t, err)

	assert.Equal(t, []string{"gpt-4o-mini"}, p2.models)
	assert.Equal(t, []string{""}, p1.models)

	require.Len(t, obs.results, 2)
	assert.Equal(t, "gemini:error", obs.results[0].String())
	assert.Equal(t, "openai:ok", obs.results[1].String())
}

func TestErrorTypes(t *testing.T) {
	cause := errors.New("connection reset")
	perr := &ProviderError{Provider: types.ProviderQwen, Cause: cause}
	assert.Equal(t, "qwen: connection reset", perr.Error())
	assert.ErrorIs(t, perr, cause)

	ex := &ExhaustedError{Passes: 3, LastErr: perr}
	assert.ErrorIs(t, ex, ErrExhausted)
	assert.ErrorIs(t, ex, cause)
	assert.Contains(t, ex.Error(), "after 3 passes")
}
