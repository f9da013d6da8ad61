package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	settings := LoadSettings(t.TempDir())
	require.Equal(t, DefaultProvider, settings.Provider)
	require.Equal(t, DefaultModel, settings.Model)
}

func TestLoadSettingsFromFile(t *testing.T) {
	dir := t.TempDir()
	content := "[defaults]\nprovider = \"openrouter\"\nmodel = \"google/gemini-2.5-flash-lite\"\n"
	require.NoError(t, os.WriteFile(SettingsPath(dir), []byte(content), 0o644))

	settings := LoadSettings(dir)
	require.Equal(t, "openrouter", settings.Provider)
	require.Equal(t, "google/gemini-2.5-flash-lite", settings.Model)
}

func TestSetDefaultsPreservesForeignKeys(t *testing.T) {
	dir := t.TempDir()
	content := `title = "my settings"

[defaults]
provider = "gemini"
model = "gemini-2.5-flash"
prompt_style = "verbose"

[overlay]
darken = 40
`
	require.NoError(t, os.WriteFile(SettingsPath(dir), []byte(content), 0o644))

	require.NoError(t, SetDefaultProvider(dir, "zai"))
	require.NoError(t, SetDefaultModel(dir, "glm-4.6v"))

	raw := map[string]any{}
	_, err := toml.DecodeFile(SettingsPath(dir), &raw)
	require.NoError(t, err)

	require.Equal(t, "my settings", raw["title"])

	defaults, ok := raw["defaults"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "zai", defaults["provider"])
	require.Equal(t, "glm-4.6v", defaults["model"])
	require.Equal(t, "verbose", defaults["prompt_style"], "unrelated key inside defaults must survive")

	overlaySection, ok := raw["overlay"].(map[string]any)
	require.True(t, ok, "unrelated table must survive")
	require.EqualValues(t, 40, overlaySection["darken"])
}

func TestSetDefaultProviderCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	require.NoError(t, SetDefaultProvider(dir, "openrouter"))
	require.Equal(t, "openrouter", LoadSettings(dir).Provider)
}

func TestKeyFor(t *testing.T) {
	require.Equal(t, "GEMINI_API_KEY", KeyFor("gemini"))
	require.Equal(t, "OPENROUTER_API_KEY", KeyFor("openrouter"))
	require.Equal(t, "Z_AI_API_KEY", KeyFor("zai"))
	require.Equal(t, "", KeyFor("ollama"))
	require.Equal(t, "OTHER_API_KEY", KeyFor("other"))
}

func TestCredentialFileOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GEMINI_API_KEY", "from-environment")
	require.NoError(t, WriteCredential(dir, "GEMINI_API_KEY", "from-file"))

	creds := LoadCredentials(dir)
	require.Equal(t, "from-file", creds.Key("gemini"))
}

func TestCredentialEnvironmentUsedWhenFileSilent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENROUTER_API_KEY", "env-key")

	creds := LoadCredentials(dir)
	require.Equal(t, "env-key", creds.Key("openrouter"))
	require.True(t, creds.HasKey("openrouter"))
	require.False(t, creds.HasKey("gemini"))
	require.True(t, creds.HasKey("ollama"), "ollama needs no key")
}

func TestWriteCredentialPreservesOtherEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCredential(dir, "GEMINI_API_KEY", "aaa"))
	require.NoError(t, WriteCredential(dir, "Z_AI_API_KEY", "bbb"))

	creds := LoadCredentials(dir)
	require.Equal(t, "aaa", creds.Key("gemini"))
	require.Equal(t, "bbb", creds.Key("zai"))
}

func TestEnsureConfigPlaceholder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	require.NoError(t, EnsureConfig(dir))

	data, err := os.ReadFile(CredentialsPath(dir))
	require.NoError(t, err)
	require.Contains(t, string(data), "GEMINI_API_KEY")

	// Second call must not clobber an existing file.
	require.NoError(t, WriteCredential(dir, "GEMINI_API_KEY", "real-key"))
	require.NoError(t, EnsureConfig(dir))
	require.Equal(t, "real-key", LoadCredentials(dir).Key("gemini"))
}
