package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "gemini-1.5-flash"
	geminiProviderName   = "gemini"
)

type geminiEngine struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func newGeminiEngine(cfg Config) (*geminiEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = geminiDefaultModel
	}
	return &geminiEngine{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  cfg.HTTPClient,
	}, nil
}

func (g *geminiEngine) Generate(ctx context.Context, req Request) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	resp, err := g.post(ctx, endpoint, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &GenerationError{Provider: geminiProviderName, Message: "invalid response body", Err: err}
	}

	text := geminiText(out)
	if text == "" {
		return "", &GenerationError{Provider: geminiProviderName, Message: "response contained no candidates"}
	}
	return text, nil
}

func (g *geminiEngine) GenerateStream(ctx context.Context, req Request) (*Stream, error) {
	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", g.baseURL, url.PathEscape(g.model))
	resp, err := g.post(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}

	stream := newStream()
	go func() {
		defer close(stream.chunks)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			payload, ok := strings.CutPrefix(scanner.Text(), "data: ")
			if !ok {
				continue
			}

			var event geminiResponse
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				stream.err = &GenerationError{Provider: geminiProviderName, Message: "invalid stream event", Err: err}
				return
			}

			if text := geminiText(event); text != "" {
				select {
				case stream.chunks <- text:
				case <-ctx.Done():
					stream.err = ctx.Err()
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			stream.err = &GenerationError{Provider: geminiProviderName, Message: "stream read failed", Err: err}
		}
	}()

	return stream, nil
}

func (g *geminiEngine) post(ctx context.Context, endpoint string, req Request) (*http.Response, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: BuildPrompt(req)}},
		}},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, &GenerationError{Provider: geminiProviderName, Message: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, &GenerationError{Provider: geminiProviderName, Message: "failed to build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, &GenerationError{Provider: geminiProviderName, Message: "request failed", Err: err}
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &GenerationError{
			Provider: geminiProviderName,
			Message:  fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	return resp, nil
}

func geminiText(resp geminiResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

var _ Engine = (*geminiEngine)(nil)
