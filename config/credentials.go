package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const credentialsFileName = ".env"

// keyNames maps provider name to the environment variable carrying its
// API key. The ollama backend talks to a local server and needs none.
var keyNames = map[string]string{
	"gemini":     "GEMINI_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"zai":        "Z_AI_API_KEY",
}

// Credentials holds the per-provider secrets resolved at startup. Values
// are never logged.
type Credentials struct {
	keys map[string]string
}

// KeyFor returns the environment variable name holding the API key for
// a provider, or "" when the provider needs no key.
func KeyFor(provider string) string {
	if name, ok := keyNames[provider]; ok {
		return name
	}
	if provider == "ollama" {
		return ""
	}
	return strings.ToUpper(provider) + "_API_KEY"
}

// CredentialsPath returns the location of the credential file under dir.
func CredentialsPath(dir string) string {
	return filepath.Join(dir, credentialsFileName)
}

// credentialLocations lists the credential files checked in order;
// the first file defining a key wins.
func credentialLocations(dir string) []string {
	paths := []string{CredentialsPath(dir)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".snag.env"))
	}
	paths = append(paths, credentialsFileName)
	return paths
}

// LoadCredentials resolves API keys from the credential files, earliest
// location winning. File values override an inherited environment
// variable of the same name; the environment is only a fallback.
func LoadCredentials(dir string) Credentials {
	keys := map[string]string{}
	for _, path := range credentialLocations(dir) {
		values, err := godotenv.Read(path)
		if err != nil {
			continue
		}
		for name, value := range values {
			if _, seen := keys[name]; !seen && value != "" {
				keys[name] = value
			}
		}
	}
	return Credentials{keys: keys}
}

// Key returns the API key configured for a provider, or "".
func (c Credentials) Key(provider string) string {
	name := KeyFor(provider)
	if name == "" {
		return ""
	}
	if v, ok := c.keys[name]; ok {
		return v
	}
	return os.Getenv(name)
}

// HasKey reports whether a usable key exists for the provider. Providers
// that need no key always report true.
func (c Credentials) HasKey(provider string) bool {
	return KeyFor(provider) == "" || c.Key(provider) != ""
}

// WriteCredential stores one API key in the credential file under dir,
// preserving the other entries.
func WriteCredential(dir, name, value string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	path := CredentialsPath(dir)
	values, err := godotenv.Read(path)
	if err != nil {
		values = map[string]string{}
	}
	values[name] = value
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("cannot write credentials: %w", err)
	}
	return os.Chmod(path, 0o600)
}

// EnsureConfig creates the config directory and a placeholder credential
// file on first run so setup has something to point the user at.
func EnsureConfig(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	path := CredentialsPath(dir)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	placeholder := strings.Join([]string{
		"# API keys for snag",
		"# Google Gemini: https://aistudio.google.com/apikey",
		`GEMINI_API_KEY=""`,
		"# OpenRouter: https://openrouter.ai/keys",
		`OPENROUTER_API_KEY=""`,
		"# Z.AI (GLM-4.6V): https://open.bigmodel.cn/",
		`Z_AI_API_KEY=""`,
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(placeholder), 0o600); err != nil {
		return fmt.Errorf("cannot write credential placeholder: %w", err)
	}
	return nil
}
