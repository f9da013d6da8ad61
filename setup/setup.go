// Package setup implements the interactive configuration wizard.
package setup

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"snag/config"
	"snag/llm"
	"snag/logging"
)

const logo = `
  ___ _ __   __ _  __ _
 / __| '_ \ / _` + "`" + ` |/ _` + "`" + ` |
 \__ \ | | | (_| | (_| |
 |___/_| |_|\__,_|\__, |
                  |___/
`

// providers lists the configurable backends in menu order.
var providers = []string{"gemini", "openrouter", "zai", "ollama"}

type wizard struct {
	in  *bufio.Scanner
	out io.Writer
	dir string
}

// Run drives the wizard until the user quits. All state lands in the
// settings and credential files under dir.
func Run(in io.Reader, out io.Writer, dir string) error {
	if err := config.EnsureConfig(dir); err != nil {
		return err
	}
	w := &wizard{in: bufio.NewScanner(in), out: out, dir: dir}
	fmt.Fprint(out, logo)

	for {
		w.printStatus()
		fmt.Fprint(out, "\n"+
			"  1) Set API key\n"+
			"  2) Set default provider\n"+
			"  3) Set default model\n"+
			"  4) Quit\n\n")
		switch w.ask("Choice: ") {
		case "1":
			if err := w.setKey(); err != nil {
				return err
			}
		case "2":
			if err := w.setProvider(); err != nil {
				return err
			}
		case "3":
			if err := w.setModel(); err != nil {
				return err
			}
		case "4", "q", "":
			fmt.Fprintln(out, "Done.")
			return nil
		default:
			fmt.Fprintln(out, "Unknown choice.")
		}
	}
}

func (w *wizard) printStatus() {
	settings := config.LoadSettings(w.dir)
	creds := config.LoadCredentials(w.dir)

	fmt.Fprintf(w.out, "\nDefaults: provider=%s model=%s\n", settings.Provider, settings.Model)
	fmt.Fprintln(w.out, "API keys:")
	for _, p := range providers {
		name := config.KeyFor(p)
		if name == "" {
			fmt.Fprintf(w.out, "  %-11s not needed\n", p)
			continue
		}
		if key := creds.Key(p); key != "" {
			fmt.Fprintf(w.out, "  %-11s %s\n", p, logging.RedactKey(key))
		} else {
			fmt.Fprintf(w.out, "  %-11s not set\n", p)
		}
	}
}

func (w *wizard) setKey() error {
	provider, ok := w.pick("Provider", providersNeedingKeys())
	if !ok {
		return nil
	}
	key := w.ask("API key (empty to abort): ")
	if key == "" {
		return nil
	}
	if err := config.WriteCredential(w.dir, config.KeyFor(provider), key); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Saved key for %s.\n", provider)
	return nil
}

func (w *wizard) setProvider() error {
	provider, ok := w.pick("Default provider", providers)
	if !ok {
		return nil
	}
	if err := config.SetDefaultProvider(w.dir, provider); err != nil {
		return err
	}
	// Keep the model consistent with the new provider.
	switch provider {
	case "gemini":
		if err := config.SetDefaultModel(w.dir, config.DefaultModel); err != nil {
			return err
		}
	case "zai":
		if err := config.SetDefaultModel(w.dir, llm.ZAIModel); err != nil {
			return err
		}
	}
	fmt.Fprintf(w.out, "Default provider is now %s.\n", provider)
	return nil
}

func (w *wizard) setModel() error {
	settings := config.LoadSettings(w.dir)
	var model string
	switch settings.Provider {
	case "gemini":
		m, ok := w.pick("Model", llm.GeminiModels())
		if !ok {
			return nil
		}
		model = m
	case "zai":
		fmt.Fprintf(w.out, "The zai backend always uses %s.\n", llm.ZAIModel)
		return nil
	default:
		model = w.ask("Model name (empty to abort): ")
		if model == "" {
			return nil
		}
	}
	if err := config.SetDefaultModel(w.dir, model); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Default model is now %s.\n", model)
	return nil
}

// pick shows a numbered menu and returns the chosen entry.
func (w *wizard) pick(label string, options []string) (string, bool) {
	fmt.Fprintf(w.out, "%s:\n", label)
	for i, opt := range options {
		fmt.Fprintf(w.out, "  %d) %s\n", i+1, opt)
	}
	answer := w.ask("Choice (empty to abort): ")
	if answer == "" {
		return "", false
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		fmt.Fprintln(w.out, "Unknown choice.")
		return "", false
	}
	return options[n-1], true
}

func (w *wizard) ask(prompt string) string {
	fmt.Fprint(w.out, prompt)
	if !w.in.Scan() {
		return ""
	}
	return strings.TrimSpace(w.in.Text())
}

func providersNeedingKeys() []string {
	var out []string
	for _, p := range providers {
		if config.KeyFor(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
