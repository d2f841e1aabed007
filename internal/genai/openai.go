package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultModel   = "gpt-4o-mini"
	openAIProviderName   = "openai"
)

type openAIEngine struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
	Stream   bool            `json:"stream,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openAIStreamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func newOpenAIEngine(cfg Config) (*openAIEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openAIDefaultModel
	}
	return &openAIEngine{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  cfg.HTTPClient,
	}, nil
}

func (o *openAIEngine) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := o.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &GenerationError{Provider: openAIProviderName, Message: "invalid response body", Err: err}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", &GenerationError{Provider: openAIProviderName, Message: "response contained no choices"}
	}
	return out.Choices[0].Message.Content, nil
}

func (o *openAIEngine) GenerateStream(ctx context.Context, req Request) (*Stream, error) {
	resp, err := o.post(ctx, req, true)
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
			if strings.TrimSpace(payload) == "[DONE]" {
				return
			}

			var event openAIStreamEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				stream.err = &GenerationError{Provider: openAIProviderName, Message: "invalid stream event", Err: err}
				return
			}

			for _, choice := range event.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				select {
				case stream.chunks <- choice.Delta.Content:
				case <-ctx.Done():
					stream.err = ctx.Err()
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			stream.err = &GenerationError{Provider: openAIProviderName, Message: "stream read failed", Err: err}
		}
	}()

	return stream, nil
}

func (o *openAIEngine) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	payload := openAIChatRequest{
		Model:    o.model,
		Messages: []openAIMessage{{Role: "user", Content: BuildPrompt(req)}},
		Stream:   stream,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, &GenerationError{Provider: openAIProviderName, Message: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", &buf)
	if err != nil {
		return nil, &GenerationError{Provider: openAIProviderName, Message: "failed to build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, &GenerationError{Provider: openAIProviderName, Message: "request failed", Err: err}
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &GenerationError{
			Provider: openAIProviderName,
			Message:  fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	return resp, nil
}

var _ Engine = (*openAIEngine)(nil)
