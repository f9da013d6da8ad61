package setup

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snag/config"
)

func runWizard(t *testing.T, dir, input string) string {
	t.Helper()
	var out strings.Builder
	require.NoError(t, Run(strings.NewReader(input), &out, dir))
	return out.String()
}

func TestQuitImmediately(t *testing.T) {
	dir := t.TempDir()
	out := runWizard(t, dir, "4\n")
	assert.Contains(t, out, "Defaults: provider=gemini model=gemini-2.5-flash")
	assert.Contains(t, out, "Done.")
}

func TestSetAPIKey(t *testing.T) {
	dir := t.TempDir()
	// Menu 1 (set key), provider 1 (gemini), then quit.
	out := runWizard(t, dir, "1\n1\nAIzaTestKey12345\n4\n")
	assert.Contains(t, out, "Saved key for gemini.")

	creds := config.LoadCredentials(dir)
	assert.Equal(t, "AIzaTestKey12345", creds.Key("gemini"))
	// Later status display must redact, never echo, the stored key.
	assert.NotContains(t, strings.SplitN(out, "Saved key", 2)[1], "AIzaTestKey12345")
}

func TestSetDefaultProviderAlignsModel(t *testing.T) {
	dir := t.TempDir()
	// Menu 2 (default provider), option 3 (zai), then quit.
	out := runWizard(t, dir, "2\n3\n4\n")
	assert.Contains(t, out, "Default provider is now zai.")

	settings := config.LoadSettings(dir)
	assert.Equal(t, "zai", settings.Provider)
	assert.Equal(t, "glm-4.6v", settings.Model)
}

func TestSetGeminiModelFromMenu(t *testing.T) {
	dir := t.TempDir()
	// Menu 3 (default model) on the gemini default, pick entry 1, quit.
	out := runWizard(t, dir, "3\n1\n4\n")
	assert.Contains(t, out, "Default model is now")

	settings := config.LoadSettings(dir)
	assert.Contains(t, settings.Model, "gemini")
}

func TestEOFActsAsQuit(t *testing.T) {
	dir := t.TempDir()
	out := runWizard(t, dir, "")
	assert.Contains(t, out, "Done.")
}

func TestWizardCreatesConfigDir(t *testing.T) {
	dir := t.TempDir() + "/nested/snag"
	runWizard(t, dir, "4\n")
	_, err := os.Stat(config.CredentialsPath(dir))
	assert.NoError(t, err)
}
