package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouter speaks the OpenAI-compatible chat completion protocol: the
// image travels as a base64 data URL inside the message content and the
// key in an Authorization header. The model name is an open-ended
// string; OpenRouter routes it.
type openRouter struct {
	apiKey string
	model  string
	url    string
	client *http.Client
	logger *zap.Logger
}

func newOpenRouter(cfg Config) (*openRouter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openrouter model is required (e.g. google/gemini-2.5-flash-lite)")
	}
	return &openRouter{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		url:    openRouterURL,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: cfg.Logger,
	}, nil
}

func (o *openRouter) Name() string { return "openrouter" }

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *openRouter) Describe(ctx context.Context, png []byte) (string, error) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	request := chatRequest{
		Model: o.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContent{
				{Type: "text", Text: Prompt},
				{Type: "image_url", ImageURL: &chatImageURL{URL: dataURL}},
			},
		}},
		Temperature: 0.1,
		MaxTokens:   4000,
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", &Error{Kind: KindMalformed, Provider: o.Name(), Message: "cannot marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: KindMalformed, Provider: o.Name(), Message: "cannot build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("X-Title", "snag")

	o.logger.Debug("sending openrouter request", zap.String("model", o.model), zap.Int("payload_bytes", len(payload)))

	resp, err := o.client.Do(req)
	if err != nil {
		return "", wrapTransport(o.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapTransport(o.Name(), err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", &Error{Kind: KindAuth, Provider: o.Name(), Message: apiMessage(body, resp.StatusCode)}
	case http.StatusTooManyRequests:
		return "", &Error{Kind: KindRateLimited, Provider: o.Name(), Message: apiMessage(body, resp.StatusCode)}
	default:
		return "", &Error{Kind: KindMalformed, Provider: o.Name(), Message: apiMessage(body, resp.StatusCode)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Kind: KindMalformed, Provider: o.Name(), Message: "unparseable response body", Err: err}
	}
	if parsed.Error != nil {
		return "", &Error{Kind: KindMalformed, Provider: o.Name(), Message: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &Error{Kind: KindMalformed, Provider: o.Name(), Message: "response contains no choices"}
	}
	return parsed.Choices[0].Message.Content, nil
}
