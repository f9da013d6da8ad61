package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// ollama talks to a local Ollama server. No API key; the server address
// comes from OLLAMA_HOST or defaults to localhost.
type ollama struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

func newOllama(cfg Config) (*ollama, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is required (e.g. llama3.2-vision)")
	}
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("cannot configure ollama client: %w", err)
	}
	return &ollama{client: client, model: cfg.Model, logger: cfg.Logger}, nil
}

func (o *ollama) Name() string { return "ollama" }

func (o *ollama) Describe(ctx context.Context, png []byte) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
	}

	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{{
			Role:    "user",
			Content: Prompt,
			Images:  []api.ImageData{api.ImageData(png)},
		}},
		Stream: &stream,
	}

	o.logger.Debug("sending ollama request", zap.String("model", o.model))

	var text strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &Error{Kind: KindTimeout, Provider: o.Name(), Err: err}
		}
		return "", &Error{Kind: KindMalformed, Provider: o.Name(), Message: "chat request failed", Err: err}
	}
	if text.Len() == 0 {
		return "", &Error{Kind: KindMalformed, Provider: o.Name(), Message: "empty response from model"}
	}
	return text.String(), nil
}
