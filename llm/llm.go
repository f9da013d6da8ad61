// Package llm sends a captured image to a vision model and returns the
// generated description. Four interchangeable backends hide their wire
// protocols behind the Provider interface; retry on transient failures
// is layered uniformly on top.
package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Prompt is the fixed instruction sent with every image.
const Prompt = `Analyze this image and provide a comprehensive description in clean markdown format.

If the image contains:
- **Text**: Transcribe it accurately, preserving formatting where possible
- **Code**: Format it as a code block with appropriate language syntax highlighting
- **Diagrams/Charts**: Describe the structure, relationships, and data shown
- **UI elements**: Describe the interface, controls, and their arrangement
- **Images/Graphics**: Describe what is depicted

Output clean markdown that can be directly pasted into a document or LLM conversation.
Be thorough but concise. Focus on accurately capturing the content.`

// Provider turns a PNG image into descriptive text. Implementations
// block for at most their configured timeout per attempt.
type Provider interface {
	// Describe returns markdown text for the image, or an *Error.
	Describe(ctx context.Context, png []byte) (string, error)
	// Name identifies the backend for logs and notifications.
	Name() string
}

// Config selects and parameterizes a backend.
type Config struct {
	// Provider is one of gemini, openrouter, zai, ollama.
	Provider string
	// Model is the model identifier. Ignored by the zai backend,
	// which runs a fixed model.
	Model string
	// APIKey is the provider credential. Unused by ollama.
	APIKey string
	// Logger receives attempt-level diagnostics. Keys are never logged.
	Logger *zap.Logger
}

// New builds the configured backend wrapped in the shared retry policy.
func New(cfg Config) (Provider, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	var backend Provider
	switch cfg.Provider {
	case "gemini":
		p, err := newGemini(cfg)
		if err != nil {
			return nil, err
		}
		backend = p
	case "openrouter":
		p, err := newOpenRouter(cfg)
		if err != nil {
			return nil, err
		}
		backend = p
	case "zai":
		backend = newZAI(cfg)
	case "ollama":
		p, err := newOllama(cfg)
		if err != nil {
			return nil, err
		}
		backend = p
	default:
		return nil, fmt.Errorf("unknown provider %q (available: gemini, openrouter, zai, ollama)", cfg.Provider)
	}
	return withRetry(backend, cfg.Logger), nil
}
