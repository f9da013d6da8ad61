package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"snag/mcp"
)

// ZAIModel is the fixed model the Z.AI helper runs. The backend is not
// model-selectable; requesting a different model is silently ignored.
const ZAIModel = "glm-4.6v"

var zaiCommand = []string{"npx", "-y", "@z_ai/mcp-server"}

// zai reaches the GLM vision model through a locally installed MCP
// helper: one subprocess per invocation, one tool call per subprocess.
type zai struct {
	apiKey  string
	command []string
	timeout time.Duration
	logger  *zap.Logger

	// dial is swapped in tests for a fake helper session.
	dial func() (zaiSession, error)
}

// zaiSession is the slice of mcp.Client the backend uses.
type zaiSession interface {
	CallTool(name string, arguments map[string]any) (string, error)
	Close() error
}

func newZAI(cfg Config) *zai {
	z := &zai{
		apiKey:  cfg.APIKey,
		command: zaiCommand,
		timeout: 60 * time.Second,
		logger:  cfg.Logger,
	}
	z.dial = func() (zaiSession, error) {
		return mcp.Dial(z.command, map[string]string{
			"Z_AI_API_KEY": z.apiKey,
			"Z_AI_MODE":    "ZAI",
		}, z.timeout)
	}
	return z
}

func (z *zai) Name() string { return "zai" }

func (z *zai) Describe(ctx context.Context, png []byte) (string, error) {
	if z.apiKey == "" {
		return "", &Error{Kind: KindAuth, Provider: z.Name(), Message: "Z_AI_API_KEY is not configured"}
	}

	session, err := z.dial()
	if err != nil {
		return "", z.classify(err)
	}
	defer session.Close()

	z.logger.Debug("calling zai helper", zap.String("model", ZAIModel))

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	text, err := session.CallTool("image_analysis", map[string]any{
		"image_url": dataURL,
		"prompt":    Prompt,
	})
	if err != nil {
		return "", z.classify(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: KindMalformed, Provider: z.Name(), Message: "helper returned no text"}
	}
	return text, nil
}

// classify maps helper failures onto the shared taxonomy. A slow helper
// is a timeout (retryable); everything else is a crash (not retried).
func (z *zai) classify(err error) *Error {
	if errors.Is(err, mcp.ErrTimeout) {
		return &Error{Kind: KindTimeout, Provider: z.Name(), Err: err}
	}
	return &Error{Kind: KindHelperCrash, Provider: z.Name(), Err: err}
}
