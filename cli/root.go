// Package cli defines the command tree.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"snag"
	"snag/app"
	"snag/capture"
	"snag/clipboard"
	"snag/config"
	"snag/llm"
	"snag/logging"
	"snag/notification"
	"snag/setup"
	"snag/update"
)

// ErrRunFailed marks a pipeline failure already reported to the user;
// main maps it to a non-zero exit without printing it again.
var ErrRunFailed = errors.New("run failed")

// New builds the root command.
func New() *cobra.Command {
	var (
		providerFlag string
		modelFlag    string
		verbose      bool
	)

	root := &cobra.Command{
		Use:   "snag",
		Short: "Capture a screen region and copy its text via a vision model",
		Long: "snag lets you draw a rectangle on screen, sends the capture to a\n" +
			"vision model and puts the recognised text on the clipboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, providerFlag, modelFlag, verbose)
		},
	}
	root.Flags().StringVarP(&providerFlag, "provider", "p", "", "provider to use (gemini, openrouter, zai, ollama)")
	root.Flags().StringVarP(&modelFlag, "model", "m", "", "model to use")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging, with a file log next to the config")

	root.AddCommand(newSetupCmd(), newUpdateCmd(&verbose), newChangelogCmd(), newVersionCmd())
	return root
}

func run(cmd *cobra.Command, providerFlag, modelFlag string, verbose bool) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	logger := logging.New(verbose, dir)
	defer logger.Sync()

	settings := config.LoadSettings(dir)
	creds := config.LoadCredentials(dir)

	provider, model := resolve(settings, providerFlag, modelFlag)
	logger.Debug("resolved configuration",
		zap.String("provider", provider), zap.String("model", model))

	if !creds.HasKey(provider) {
		fmt.Fprintf(cmd.ErrOrStderr(),
			"No API key configured for %s (set %s or run `snag setup`).\n",
			provider, config.KeyFor(provider))
		return ErrRunFailed
	}

	backend, err := llm.New(llm.Config{
		Provider: provider,
		Model:    model,
		APIKey:   creds.Key(provider),
		Logger:   logger,
	})
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return ErrRunFailed
	}

	clip, err := clipboard.New()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return ErrRunFailed
	}

	result := app.Run(cmd.Context(), app.Options{
		Provider:  backend,
		Clipboard: clip,
		Notifier:  notification.New(logger),
		Logger:    logger,
	})
	switch result.State {
	case app.StateDone, app.StateCancelled:
		return nil
	default:
		if errors.Is(result.Err, capture.ErrMissingTool) ||
			errors.Is(result.Err, capture.ErrUnsupportedPlatform) {
			fmt.Fprintln(cmd.ErrOrStderr(), result.Err)
		}
		return ErrRunFailed
	}
}

// resolve applies flag-over-config precedence and pins the model for
// backends that do not take one.
func resolve(settings config.Settings, providerFlag, modelFlag string) (string, string) {
	provider := settings.Provider
	if providerFlag != "" {
		provider = providerFlag
	}
	model := settings.Model
	if modelFlag != "" {
		model = modelFlag
	}
	if provider == "zai" {
		model = llm.ZAIModel
	}
	return provider, model
}

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive configuration wizard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			return setup.Run(cmd.InOrStdin(), cmd.OutOrStdout(), dir)
		},
	}
}

func newUpdateCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update snag to the latest release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			logger := logging.New(*verbose, dir)
			defer logger.Sync()
			return update.Run(cmd.OutOrStdout(), logger)
		},
	}
}

func newChangelogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "changelog",
		Short: "Show the changelog",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), snag.Changelog)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "snag %s\n", snag.Version)
		},
	}
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := New().Execute(); err != nil {
		if !errors.Is(err, ErrRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
