package llm

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini", Config{Provider: "gemini", Model: "gemini-2.5-flash", APIKey: "k"}, false},
		{"openrouter", Config{Provider: "openrouter", Model: "some/model", APIKey: "k"}, false},
		{"zai", Config{Provider: "zai", APIKey: "k"}, false},
		{"unknown", Config{Provider: "carrier-pigeon"}, true},
		{"gemini without key", Config{Provider: "gemini", Model: "gemini-2.5-flash"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Logger = zap.NewNop()
			p, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected configuration error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if p.Name() != tt.cfg.Provider {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.cfg.Provider)
			}
		})
	}
}

type fakeSession struct {
	text string
	err  error
}

func (f *fakeSession) CallTool(name string, args map[string]any) (string, error) {
	return f.text, f.err
}
func (f *fakeSession) Close() error { return nil }

func TestZAIDescribe(t *testing.T) {
	z := newZAI(Config{Provider: "zai", APIKey: "k", Logger: zap.NewNop()})
	z.dial = func() (zaiSession, error) {
		return &fakeSession{text: "a description"}, nil
	}

	text, err := z.Describe(context.Background(), []byte("png"))
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if text != "a description" {
		t.Errorf("text = %q", text)
	}
}

func TestZAIMissingKey(t *testing.T) {
	z := newZAI(Config{Provider: "zai", Logger: zap.NewNop()})

	_, err := z.Describe(context.Background(), []byte("png"))
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != KindAuth {
		t.Fatalf("want KindAuth, got %v", err)
	}
}

func TestZAIHelperCrashNotRetryable(t *testing.T) {
	z := newZAI(Config{Provider: "zai", APIKey: "k", Logger: zap.NewNop()})
	z.dial = func() (zaiSession, error) {
		return nil, errors.New("npx: command not found")
	}

	_, err := z.Describe(context.Background(), []byte("png"))
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != KindHelperCrash {
		t.Fatalf("want KindHelperCrash, got %v", err)
	}
	if Retryable(err) {
		t.Error("helper crash must not be retried")
	}
}

func TestRetryableClassification(t *testing.T) {
	if Retryable(errors.New("plain error")) {
		t.Error("plain errors are not retryable")
	}
	if !Retryable(&Error{Kind: KindRateLimited}) || !Retryable(&Error{Kind: KindTimeout}) {
		t.Error("rate limit and timeout are retryable")
	}
	for _, k := range []Kind{KindAuth, KindMalformed, KindHelperCrash} {
		if Retryable(&Error{Kind: k}) {
			t.Errorf("kind %v must not be retryable", k)
		}
	}
}
