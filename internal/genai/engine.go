// Package genai abstracts the external text-generation service behind a
// small Engine capability: one-shot generation and finite chunk streaming.
// Concrete providers are selected by a factory at construction time; nothing
// downstream branches on provider names.
package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ContextBlock is one previously generated asset fed back as labeled context.
type ContextBlock struct {
	Label   string
	Content string
}

// Request describes one text-generation call: static blueprint instructions,
// the seed, an optional mode flag, and earlier assets as context.
type Request struct {
	Instructions string
	Seed         string
	Mode         string
	Context      []ContextBlock
}

// Engine is the text-generation capability consumed by the pipeline.
// Streams returned by GenerateStream are finite and not restartable; callers
// must drain them fully or abandon the whole job.
type Engine interface {
	Generate(ctx context.Context, req Request) (string, error)
	GenerateStream(ctx context.Context, req Request) (*Stream, error)
}

// GenerationError is an opaque failure surfaced by the generation service.
// No retry classification happens at this layer.
type GenerationError struct {
	Provider string
	Message  string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s generation failed: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %s", e.Provider, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Stream delivers generated text chunks in order. The channel closes when
// the stream ends; Err reports the terminal error, if any, once the channel
// is closed.
type Stream struct {
	chunks chan string
	err    error
}

func newStream() *Stream {
	return &Stream{chunks: make(chan string, 16)}
}

// Chunks returns the channel of text chunks.
func (s *Stream) Chunks() <-chan string {
	return s.chunks
}

// Err returns the terminal stream error. Only valid after Chunks closes.
func (s *Stream) Err() error {
	return s.err
}

// NewStaticStream returns a pre-filled stream that yields the given chunks
// then terminates with err. Useful for fake engines in tests.
func NewStaticStream(err error, chunks ...string) *Stream {
	s := &Stream{chunks: make(chan string, len(chunks))}
	for _, c := range chunks {
		s.chunks <- c
	}
	s.err = err
	close(s.chunks)
	return s
}

// Drain consumes the remaining chunks and returns the concatenated text.
func (s *Stream) Drain() (string, error) {
	var sb strings.Builder
	for chunk := range s.Chunks() {
		sb.WriteString(chunk)
	}
	if err := s.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

const defaultTimeout = 120 * time.Second

// Config selects and configures a concrete generation engine.
type Config struct {
	Provider   string // "gemini" or "openai"
	Model      string
	APIKey     string
	BaseURL    string // override for tests and proxies
	HTTPClient *http.Client
}

// New builds the engine for cfg.Provider. This is the only place provider
// names are interpreted.
func New(cfg Config) (Engine, error) {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	switch cfg.Provider {
	case "gemini":
		return newGeminiEngine(cfg)
	case "openai":
		return newOpenAIEngine(cfg)
	default:
		return nil, fmt.Errorf("unknown generation provider %q (valid: gemini, openai)", cfg.Provider)
	}
}

// BuildPrompt flattens a Request into the single prompt string sent to the
// provider. Context blocks are labeled so the model can reference earlier
// assets without confusing them with the new one.
func BuildPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(req.Instructions))

	sb.WriteString("\n\nSeed request:\n")
	sb.WriteString(strings.TrimSpace(req.Seed))

	if req.Mode != "" {
		fmt.Fprintf(&sb, "\n\nGeneration mode: %s", req.Mode)
	}

	if len(req.Context) > 0 {
		sb.WriteString("\n\nPreviously generated assets:")
		for _, block := range req.Context {
			fmt.Fprintf(&sb, "\n\n--- %s ---\n%s", block.Label, block.Content)
		}
	}

	return sb.String()
}
