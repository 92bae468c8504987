package series

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagestudio/internal/gemini"
	"imagestudio/internal/prompt"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   []gemini.GenerateParams
	respond func(params gemini.GenerateParams) (*gemini.ImagePayload, error)
}

func (f *fakeGenerator) GenerateOne(ctx context.Context, params gemini.GenerateParams) (*gemini.ImagePayload, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.mu.Unlock()
	if f.respond != nil {
		return f.respond(params)
	}
	return &gemini.ImagePayload{ImageData: "aW1n", MimeType: "image/png"}, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestOrchestrator(gen Generator) *Orchestrator {
	o := NewOrchestrator(gen, nil)
	o.pacing = time.Millisecond
	return o
}

func sneakerRequest() Request {
	return Request{
		BasePrompt:       "red sneaker",
		Quantity:         3,
		ConsistencyLevel: prompt.ConsistencyStrict,
		Variations:       []string{"front view", "side view", "back view"},
	}
}

func TestGenerateFullSuccess(t *testing.T) {
	gen := &fakeGenerator{}
	o := newTestOrchestrator(gen)

	outcome, err := o.Generate(context.Background(), sneakerRequest())
	require.NoError(t, err)

	require.Len(t, outcome.Images, 3)
	assert.Empty(t, outcome.Errors)
	for i, want := range []string{"front view", "side view", "back view"} {
		assert.Equal(t, i, outcome.Images[i].Index)
		assert.Equal(t, want, outcome.Images[i].Variation)
	}
	assert.Equal(t, 3, outcome.Metadata.Successful)
	assert.Equal(t, 0, outcome.Metadata.Failed)
	assert.Equal(t, 3, outcome.Metadata.Quantity)
	assert.Equal(t, "red sneaker", outcome.Metadata.BasePrompt)
	assert.Equal(t, 3, gen.callCount())
}

func TestGeneratePartialFailure(t *testing.T) {
	gen := &fakeGenerator{
		respond: func(params gemini.GenerateParams) (*gemini.ImagePayload, error) {
			if strings.Contains(params.Prompt, "side view") {
				return nil, errors.New("rate limited")
			}
			return &gemini.ImagePayload{ImageData: "aW1n", MimeType: "image/png"}, nil
		},
	}
	o := newTestOrchestrator(gen)

	outcome, err := o.Generate(context.Background(), sneakerRequest())
	require.NoError(t, err)

	require.Len(t, outcome.Images, 2)
	assert.Equal(t, 0, outcome.Images[0].Index)
	assert.Equal(t, 2, outcome.Images[1].Index)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, ItemError{Index: 1, Variation: "side view", Message: "rate limited"}, outcome.Errors[0])
	assert.Equal(t, 2, outcome.Metadata.Successful)
	assert.Equal(t, 1, outcome.Metadata.Failed)
	assert.True(t, outcome.Partial())
}

func TestGenerateAllFailed(t *testing.T) {
	gen := &fakeGenerator{
		respond: func(gemini.GenerateParams) (*gemini.ImagePayload, error) {
			return nil, errors.New("overloaded")
		},
	}
	o := newTestOrchestrator(gen)

	_, err := o.Generate(context.Background(), sneakerRequest())
	var allFailed *AllFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.Len(t, allFailed.Errors, 3)
	for i, itemErr := range allFailed.Errors {
		assert.Equal(t, i, itemErr.Index)
		assert.Equal(t, "overloaded", itemErr.Message)
	}
}

func TestGenerateValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"no variations", func(r *Request) { r.Variations = nil }, ErrMissingVariations},
		{"quantity too low", func(r *Request) { r.Quantity = 1 }, ErrInvalidQuantity},
		{"quantity too high", func(r *Request) { r.Quantity = 11 }, ErrInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			o := newTestOrchestrator(gen)
			req := sneakerRequest()
			tc.mutate(&req)

			_, err := o.Generate(context.Background(), req)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Zero(t, gen.callCount(), "validation must reject before any vendor call")
		})
	}
}

func TestGenerateInvalidConsistencyLevel(t *testing.T) {
	gen := &fakeGenerator{}
	o := newTestOrchestrator(gen)
	req := sneakerRequest()
	req.ConsistencyLevel = "pedantic"

	_, err := o.Generate(context.Background(), req)
	require.ErrorIs(t, err, prompt.ErrInvalidConsistencyLevel)
	assert.Zero(t, gen.callCount())
}

func TestGenerateUsesOnlyFirstQuantityVariations(t *testing.T) {
	gen := &fakeGenerator{}
	o := newTestOrchestrator(gen)
	req := sneakerRequest()
	req.Quantity = 2
	req.Variations = []string{"a", "b", "c", "d", "e"}

	outcome, err := o.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.callCount())
	assert.Len(t, outcome.Images, 2)
	assert.Equal(t, 2, outcome.Metadata.Quantity)
}

func TestGenerateParallelStrategy(t *testing.T) {
	gen := &fakeGenerator{}
	o := newTestOrchestrator(gen)
	req := sneakerRequest()
	req.Strategy = StrategyParallel

	outcome, err := o.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, outcome.Images, 3)
	for i := range outcome.Images {
		assert.Equal(t, i, outcome.Images[i].Index, "parallel results must retain original indices")
	}
	// Text-to-image composition: no reference image language.
	assert.Contains(t, gen.calls[0].Prompt, "Apply ONLY this variation")
	assert.Equal(t, gemini.ModeGenerate, gen.calls[0].Mode)
}

func TestGenerateSequentialWithBaseImage(t *testing.T) {
	gen := &fakeGenerator{}
	o := newTestOrchestrator(gen)
	req := sneakerRequest()
	req.BaseImage = "cmVmZXJlbmNl"

	outcome, err := o.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, outcome.Images, 3)

	require.Equal(t, 3, gen.callCount())
	for i, want := range []string{"front view", "side view", "back view"} {
		assert.Contains(t, gen.calls[i].Prompt, "Apply this specific variation ONLY: "+want,
			"sequential dispatch must preserve request order")
		assert.Contains(t, gen.calls[i].Prompt, "reference image")
		assert.Equal(t, gemini.ModeEdit, gen.calls[i].Mode)
		assert.Equal(t, "cmVmZXJlbmNl", gen.calls[i].BaseImage)
	}
}

func TestGenerateCarriesConsistencyPromptThrough(t *testing.T) {
	gen := &fakeGenerator{}
	o := newTestOrchestrator(gen)
	req := sneakerRequest()
	req.ConsistencyLevel = ""
	req.ConsistencyPrompt = "KEEP THE SUBJECT IDENTICAL"

	outcome, err := o.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "KEEP THE SUBJECT IDENTICAL", outcome.Metadata.StylePrompt)
	assert.Contains(t, gen.calls[0].Prompt, "KEEP THE SUBJECT IDENTICAL")
}
