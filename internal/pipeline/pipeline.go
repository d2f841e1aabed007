// Package pipeline drives one seed through the resolved asset order: one
// generation request per asset with earlier assets fed back as context, or a
// single combined request split by the full-job output contract.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/packforge/packforge/internal/genai"
	"github.com/packforge/packforge/internal/template"
	"github.com/packforge/packforge/pkg/pack"
)

// Pipeline runs single character-pack jobs. A job is atomic: it fully
// succeeds or fails with no partial output escaping.
type Pipeline struct {
	engine genai.Engine
	tmpl   *template.Template
	order  pack.GenerationOrder
}

// New resolves the template's generation order up front so circular
// dependencies and missing configuration abort before any request is issued.
func New(engine genai.Engine, tmpl *template.Template) (*Pipeline, error) {
	order, err := tmpl.ActiveOrder()
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, &template.ConfigurationError{Template: tmpl.Name, Reason: "no required assets to generate"}
	}
	return &Pipeline{engine: engine, tmpl: tmpl, order: order}, nil
}

// Order returns the active generation order.
func (p *Pipeline) Order() pack.GenerationOrder {
	return p.order
}

// Result is the outcome of one successful job.
type Result struct {
	Seed            string
	Assets          *pack.AssetResults
	Identifier      string // derived character name, normalized
	IdentifierFound bool   // false means the caller must substitute a fallback
}

// ChunkFunc receives streamed text as it arrives, tagged by asset name.
type ChunkFunc func(asset, chunk string)

// Run generates each asset in order with one request per asset.
func (p *Pipeline) Run(ctx context.Context, seed, mode string) (*Result, error) {
	return p.run(ctx, seed, mode, nil)
}

// RunStreaming behaves like Run but uses the streaming capability and
// forwards chunks to onChunk as they arrive. Streams are always fully
// drained before the next asset starts.
func (p *Pipeline) RunStreaming(ctx context.Context, seed, mode string, onChunk ChunkFunc) (*Result, error) {
	return p.run(ctx, seed, mode, onChunk)
}

func (p *Pipeline) run(ctx context.Context, seed, mode string, onChunk ChunkFunc) (*Result, error) {
	result := &Result{Seed: seed, Assets: pack.NewAssetResults()}

	for _, name := range p.order {
		instructions, err := p.tmpl.Instructions(name)
		if err != nil {
			return nil, err
		}

		req := genai.Request{
			Instructions: instructions,
			Seed:         seed,
			Mode:         mode,
			Context:      contextBlocks(result.Assets),
		}

		raw, err := p.generate(ctx, req, name, onChunk)
		if err != nil {
			return nil, err
		}

		content, err := pack.ParseSingle(raw)
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", name, err)
		}
		if err := result.Assets.Set(name, content); err != nil {
			return nil, err
		}

		p.extractIdentifier(result, name, content)
	}

	return result, nil
}

// RunSingleShot issues one combined request covering the whole asset set and
// splits the response positionally. Used by parallel batches to minimize
// round-trips under concurrency.
func (p *Pipeline) RunSingleShot(ctx context.Context, seed, mode string) (*Result, error) {
	instructions, err := p.combinedInstructions()
	if err != nil {
		return nil, err
	}

	raw, err := p.engine.Generate(ctx, genai.Request{
		Instructions: instructions,
		Seed:         seed,
		Mode:         mode,
	})
	if err != nil {
		return nil, err
	}

	assets, err := pack.ParseJob(raw, p.order)
	if err != nil {
		return nil, err
	}

	result := &Result{Seed: seed, Assets: pack.NewAssetResults()}
	for _, name := range p.order {
		if err := result.Assets.Set(name, assets[name]); err != nil {
			return nil, err
		}
		p.extractIdentifier(result, name, assets[name])
	}
	return result, nil
}

func (p *Pipeline) generate(ctx context.Context, req genai.Request, asset string, onChunk ChunkFunc) (string, error) {
	if onChunk == nil {
		return p.engine.Generate(ctx, req)
	}

	stream, err := p.engine.GenerateStream(ctx, req)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for chunk := range stream.Chunks() {
		sb.WriteString(chunk)
		onChunk(asset, chunk)
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// extractIdentifier caches the derived character name the first time the
// identity asset is produced.
func (p *Pipeline) extractIdentifier(result *Result, asset, content string) {
	if result.IdentifierFound || asset != p.tmpl.IdentityAsset {
		return
	}
	if id, ok := pack.ExtractIdentifier(content, p.tmpl.NameKey()); ok {
		result.Identifier = id
		result.IdentifierFound = true
	}
}

// contextBlocks serializes every previously produced asset, in generation
// order, as labeled context for the next request.
func contextBlocks(results *pack.AssetResults) []genai.ContextBlock {
	names := results.Names()
	blocks := make([]genai.ContextBlock, 0, len(names))
	for _, name := range names {
		content, _ := results.Get(name)
		blocks = append(blocks, genai.ContextBlock{Label: name, Content: content})
	}
	return blocks
}

// combinedInstructions concatenates every asset's blueprint under a header
// that restates the whole-job output contract.
func (p *Pipeline) combinedInstructions() (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate all %d assets below for the requested character, in order.\n", len(p.order))
	sb.WriteString("Respond with exactly one fenced code block per asset, in the same order.\n")
	sb.WriteString("You may put a single extra fenced block starting with \"Adjustment Note:\" before the first asset.")

	for i, name := range p.order {
		instructions, err := p.tmpl.Instructions(name)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "\n\n## Asset %d: %s\n\n%s", i+1, name, instructions)
	}
	return sb.String(), nil
}
