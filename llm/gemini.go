package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// geminiModel describes one known Gemini model. The API generation
// decides the payload field casing: 2.5-era models take snake_case
// inline_data/mime_type, 3.x-era models take camelCase
// inlineData/mimeType. New models must be added here, not special-cased
// in the request builder.
type geminiModel struct {
	endpoint  string
	camelCase bool
}

var geminiModels = map[string]geminiModel{
	"gemini-2.5-flash": {
		endpoint: "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent",
	},
	"gemini-3-flash-preview": {
		endpoint:  "https://generativelanguage.googleapis.com/v1alpha/models/gemini-3-flash-preview:generateContent",
		camelCase: true,
	},
}

// GeminiModels lists the known model names for the setup wizard.
func GeminiModels() []string {
	names := make([]string, 0, len(geminiModels))
	for name := range geminiModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type gemini struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func newGemini(cfg Config) (*gemini, error) {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	entry, ok := geminiModels[model]
	if !ok {
		return nil, fmt.Errorf("unknown gemini model %q (available: %s)", model, strings.Join(GeminiModels(), ", "))
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	return &gemini{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: entry.endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   cfg.Logger,
	}, nil
}

func (g *gemini) Name() string { return "gemini" }

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *gemini) Describe(ctx context.Context, png []byte) (string, error) {
	payload, err := json.Marshal(g.buildPayload(png))
	if err != nil {
		return "", &Error{Kind: KindMalformed, Provider: g.Name(), Message: "cannot marshal request", Err: err}
	}

	// The key travels as a query parameter; never log the URL.
	url := g.endpoint + "?key=" + g.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: KindMalformed, Provider: g.Name(), Message: "cannot build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	g.logger.Debug("sending gemini request", zap.String("model", g.model), zap.Int("payload_bytes", len(payload)))

	resp, err := g.client.Do(req)
	if err != nil {
		return "", wrapTransport(g.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapTransport(g.Name(), err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to parsing
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", &Error{Kind: KindAuth, Provider: g.Name(), Message: apiMessage(body, resp.StatusCode)}
	case http.StatusTooManyRequests:
		return "", &Error{Kind: KindRateLimited, Provider: g.Name(), Message: apiMessage(body, resp.StatusCode)}
	default:
		return "", &Error{Kind: KindMalformed, Provider: g.Name(), Message: apiMessage(body, resp.StatusCode)}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Kind: KindMalformed, Provider: g.Name(), Message: "unparseable response body", Err: err}
	}
	if parsed.Error != nil {
		return "", &Error{Kind: KindMalformed, Provider: g.Name(), Message: parsed.Error.Message}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &Error{Kind: KindMalformed, Provider: g.Name(), Message: "response contains no candidates"}
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// buildPayload assembles the generateContent body with the field casing
// the model's API generation expects.
func (g *gemini) buildPayload(png []byte) map[string]any {
	data := base64.StdEncoding.EncodeToString(png)
	var imagePart map[string]any
	if geminiModels[g.model].camelCase {
		imagePart = map[string]any{
			"inlineData": map[string]string{"mimeType": "image/png", "data": data},
		}
	} else {
		imagePart = map[string]any{
			"inline_data": map[string]string{"mime_type": "image/png", "data": data},
		}
	}
	return map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": Prompt}, imagePart}},
		},
	}
}

// apiMessage extracts a human-readable error message from an API error
// body, falling back to the HTTP status.
func apiMessage(body []byte, status int) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Sprintf("API error (%d): %s", status, envelope.Error.Message)
	}
	return fmt.Sprintf("API returned status %d", status)
}
