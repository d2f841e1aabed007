package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/packforge/internal/genai"
	"github.com/packforge/packforge/internal/template"
	"github.com/packforge/packforge/pkg/pack"
)

// fakeEngine returns scripted responses in call order and records every
// request it receives.
type fakeEngine struct {
	responses []string
	errs      []error
	requests  []genai.Request
	calls     int
}

func (f *fakeEngine) next() (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i >= len(f.responses) {
		return "", fmt.Errorf("unexpected call %d", i)
	}
	return f.responses[i], nil
}

func (f *fakeEngine) Generate(_ context.Context, req genai.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.next()
}

func (f *fakeEngine) GenerateStream(_ context.Context, req genai.Request) (*genai.Stream, error) {
	f.requests = append(f.requests, req)
	text, err := f.next()
	if err != nil {
		return nil, err
	}
	// Split the scripted response into two chunks to exercise draining.
	mid := len(text) / 2
	return genai.NewStaticStream(nil, text[:mid], text[mid:]), nil
}

func fence(content string) string {
	return "```\n" + content + "\n```\n"
}

// duoTemplate returns a two-asset template: profile (identity) then voice.
func duoTemplate(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := template.LoadDefault()
	require.NoError(t, err)
	return tmpl
}

func TestNew(t *testing.T) {
	tmpl := duoTemplate(t)
	p, err := New(&fakeEngine{}, tmpl)
	require.NoError(t, err)
	assert.Equal(t, pack.GenerationOrder{"profile", "appearance", "personality", "backstory", "voice"}, p.Order())
}

func TestRunFeedsEarlierAssetsAsContext(t *testing.T) {
	engine := &fakeEngine{responses: []string{
		fence("Name: Vex Marlowe\nAge: 31"),
		fence("lean and scarred"),
		fence("wary, dry humor"),
		fence("grew up dockside"),
		fence("clipped sentences"),
	}}

	p, err := New(engine, duoTemplate(t))
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "a smuggler turned botanist", "noir")
	require.NoError(t, err)

	require.Equal(t, 5, engine.calls)
	assert.Equal(t, []string{"profile", "appearance", "personality", "backstory", "voice"}, result.Assets.Names())

	// First request carries no context; each later one carries all earlier
	// assets, never later or sibling ones.
	assert.Empty(t, engine.requests[0].Context)
	require.Len(t, engine.requests[1].Context, 1)
	assert.Equal(t, "profile", engine.requests[1].Context[0].Label)
	assert.Equal(t, "Name: Vex Marlowe\nAge: 31", engine.requests[1].Context[0].Content)

	last := engine.requests[4].Context
	require.Len(t, last, 4)
	labels := []string{last[0].Label, last[1].Label, last[2].Label, last[3].Label}
	assert.Equal(t, []string{"profile", "appearance", "personality", "backstory"}, labels)

	// Every request carries the seed and mode.
	for _, req := range engine.requests {
		assert.Equal(t, "a smuggler turned botanist", req.Seed)
		assert.Equal(t, "noir", req.Mode)
	}
}

func TestRunExtractsIdentifierFromIdentityAsset(t *testing.T) {
	engine := &fakeEngine{responses: []string{
		fence("Name: Dr. Jane O'Connor\nRole: surgeon"),
		fence("a"), fence("b"), fence("c"), fence("d"),
	}}

	p, err := New(engine, duoTemplate(t))
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "seed", "")
	require.NoError(t, err)
	assert.True(t, result.IdentifierFound)
	assert.Equal(t, "dr_jane_o_connor", result.Identifier)
}

func TestRunWithoutNameLine(t *testing.T) {
	engine := &fakeEngine{responses: []string{
		fence("Alias: The Crow"),
		fence("a"), fence("b"), fence("c"), fence("d"),
	}}

	p, err := New(engine, duoTemplate(t))
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "seed", "")
	require.NoError(t, err)
	assert.False(t, result.IdentifierFound)
	assert.Empty(t, result.Identifier)
}

func TestRunAbortsOnParseError(t *testing.T) {
	engine := &fakeEngine{responses: []string{
		fence("Name: Vex"),
		"no fenced block at all",
	}}

	p, err := New(engine, duoTemplate(t))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "seed", "")
	require.Error(t, err)

	var parseErr *pack.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "appearance")

	// The job aborted at the second asset; no further requests were issued.
	assert.Equal(t, 2, engine.calls)
}

func TestRunAbortsOnGenerationError(t *testing.T) {
	genErr := &genai.GenerationError{Provider: "fake", Message: "boom"}
	engine := &fakeEngine{
		responses: []string{fence("Name: Vex"), ""},
		errs:      []error{nil, genErr},
	}

	p, err := New(engine, duoTemplate(t))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "seed", "")
	require.Error(t, err)

	var gotErr *genai.GenerationError
	assert.ErrorAs(t, err, &gotErr)
	assert.Equal(t, 2, engine.calls)
}

func TestRunStreamingDrainsChunksInOrder(t *testing.T) {
	engine := &fakeEngine{responses: []string{
		fence("Name: Vex"),
		fence("a"), fence("b"), fence("c"), fence("d"),
	}}

	p, err := New(engine, duoTemplate(t))
	require.NoError(t, err)

	var streamedAssets []string
	result, err := p.RunStreaming(context.Background(), "seed", "", func(asset, chunk string) {
		if len(streamedAssets) == 0 || streamedAssets[len(streamedAssets)-1] != asset {
			streamedAssets = append(streamedAssets, asset)
		}
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"profile", "appearance", "personality", "backstory", "voice"}, streamedAssets)
	content, ok := result.Assets.Get("profile")
	require.True(t, ok)
	assert.Equal(t, "Name: Vex", content)
}

func TestRunSingleShot(t *testing.T) {
	t.Run("splits one response into all assets", func(t *testing.T) {
		engine := &fakeEngine{responses: []string{
			fence("Adjustment Note: compressed the backstory") +
				fence("Name: Vex") + fence("app") + fence("pers") + fence("back") + fence("voice"),
		}}

		p, err := New(engine, duoTemplate(t))
		require.NoError(t, err)

		result, err := p.RunSingleShot(context.Background(), "seed", "")
		require.NoError(t, err)

		assert.Equal(t, 1, engine.calls)
		assert.Equal(t, []string{"profile", "appearance", "personality", "backstory", "voice"}, result.Assets.Names())
		assert.True(t, result.IdentifierFound)
		assert.Equal(t, "vex", result.Identifier)

		// The combined request names every asset's instructions.
		assert.Contains(t, engine.requests[0].Instructions, "Asset 1: profile")
		assert.Contains(t, engine.requests[0].Instructions, "Asset 5: voice")
	})

	t.Run("wrong block count is a parse error", func(t *testing.T) {
		engine := &fakeEngine{responses: []string{fence("only") + fence("two")}}

		p, err := New(engine, duoTemplate(t))
		require.NoError(t, err)

		_, err = p.RunSingleShot(context.Background(), "seed", "")
		var parseErr *pack.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, 5, parseErr.Expected)
		assert.Equal(t, 2, parseErr.Actual)
	})
}
