package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultProvider is used when the settings file names none.
	DefaultProvider = "gemini"
	// DefaultModel is used when the settings file names none.
	DefaultModel = "gemini-2.5-flash"

	settingsFileName = "config.toml"
	appDirName       = "snag"
)

// Settings holds the per-user defaults read from config.toml. It is
// loaded once per invocation and never mutated during a run.
type Settings struct {
	Provider string
	Model    string
}

// Dir returns the per-user configuration directory, creating nothing.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// SettingsPath returns the location of the settings file under dir.
func SettingsPath(dir string) string {
	return filepath.Join(dir, settingsFileName)
}

// LoadSettings reads config.toml from dir. A missing or unreadable file
// yields the built-in defaults rather than an error: the tool must work
// on first run before setup has ever been executed.
func LoadSettings(dir string) Settings {
	settings := Settings{Provider: DefaultProvider, Model: DefaultModel}

	raw, err := loadRaw(SettingsPath(dir))
	if err != nil {
		return settings
	}
	defaults, ok := raw["defaults"].(map[string]any)
	if !ok {
		return settings
	}
	if provider, ok := defaults["provider"].(string); ok && provider != "" {
		settings.Provider = provider
	}
	if model, ok := defaults["model"].(string); ok && model != "" {
		settings.Model = model
	}
	return settings
}

// SetDefaultProvider rewrites config.toml with the new default provider,
// preserving every other key in the file.
func SetDefaultProvider(dir, provider string) error {
	return updateDefaults(dir, "provider", provider)
}

// SetDefaultModel rewrites config.toml with the new default model,
// preserving every other key in the file.
func SetDefaultModel(dir, model string) error {
	return updateDefaults(dir, "model", model)
}

func updateDefaults(dir, key, value string) error {
	path := SettingsPath(dir)

	raw, err := loadRaw(path)
	if err != nil {
		raw = map[string]any{}
	}
	defaults, ok := raw["defaults"].(map[string]any)
	if !ok {
		defaults = map[string]any{}
		raw["defaults"] = defaults
	}
	defaults[key] = value

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return fmt.Errorf("cannot encode settings: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cannot write settings: %w", err)
	}
	return nil
}

func loadRaw(path string) (map[string]any, error) {
	raw := map[string]any{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
