package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOpenRouter(t *testing.T, handler http.HandlerFunc) *openRouter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	o, err := newOpenRouter(Config{Provider: "openrouter", Model: "google/gemini-2.5-flash-lite", APIKey: "or-key", Logger: zap.NewNop()})
	require.NoError(t, err)
	o.url = server.URL
	return o
}

func TestOpenRouterRequestShape(t *testing.T) {
	o := testOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.Contains(t, string(body), `"model":"google/gemini-2.5-flash-lite"`)
		require.Contains(t, string(body), "data:image/png;base64,", "image must travel as a data URL")
		io.WriteString(w, `{"choices":[{"message":{"content":"a markdown description"}}]}`)
	})

	text, err := o.Describe(context.Background(), []byte("fakepng"))
	require.NoError(t, err)
	require.Equal(t, "a markdown description", text)
}

func TestOpenRouterAcceptsArbitraryModelNames(t *testing.T) {
	// Unlike gemini there is no model table; any non-empty string goes.
	_, err := newOpenRouter(Config{Model: "anthropic/claude-sonnet-4", APIKey: "k", Logger: zap.NewNop()})
	require.NoError(t, err)

	_, err = newOpenRouter(Config{APIKey: "k", Logger: zap.NewNop()})
	require.Error(t, err, "empty model must be rejected")
}

func TestOpenRouterErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`, KindAuth},
		{"rate limited", http.StatusTooManyRequests, `{}`, KindRateLimited},
		{"bad gateway", http.StatusBadGateway, ``, KindMalformed},
		{"no choices", http.StatusOK, `{"choices":[]}`, KindMalformed},
		{"embedded error", http.StatusOK, `{"error":{"message":"provider exploded"}}`, KindMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := o.Describe(context.Background(), []byte("png"))
			require.Error(t, err)
			var pe *Error
			require.True(t, errors.As(err, &pe))
			require.Equal(t, tt.want, pe.Kind)
		})
	}
}

func TestOpenRouterErrorMessageSurfaced(t *testing.T) {
	o := testOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"key revoked"}}`)
	})

	_, err := o.Describe(context.Background(), []byte("png"))
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "key revoked"), "API message should reach the user: %v", err)
}
