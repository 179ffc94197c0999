// Package setupui implements the interactive credential wizard behind
// 'patchbay setup'. Terminals get a bubbletea connector picker followed
// by masked credential inputs; pipes and CI fall back to plain line
// prompts. The wizard only collects values, writing the config file is
// the caller's job.
package setupui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/patchbaylabs/patchbay/internal/config"
	"github.com/patchbaylabs/patchbay/internal/connectors"
)

// Result carries what the user entered. Credentials holds only the keys
// the user typed a value for; callers merge it over the existing config,
// so leaving a field empty keeps whatever was configured before.
type Result struct {
	Connector   string
	Credentials map[string]string
	Canceled    bool
}

// Run drives the wizard over the shipped connector catalog, choosing
// the TUI or the plain prompts based on the attached terminal.
func Run(cfg *config.Config) (Result, error) {
	if isTTY(os.Stdin) && isTTY(os.Stdout) {
		return RunTUI(cfg, connectors.Catalog())
	}
	return RunPlain(cfg, connectors.Catalog(), os.Stdin, os.Stdout)
}

// RunTUI runs the bubbletea wizard on the current terminal.
func RunTUI(cfg *config.Config, catalog []connectors.Factory) (Result, error) {
	p := tea.NewProgram(NewModel(cfg, catalog))

	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("running setup wizard: %w", err)
	}

	m, ok := final.(*Model)
	if !ok {
		return Result{}, fmt.Errorf("unexpected wizard model type %T", final)
	}
	return m.Result(), nil
}

// isTTY checks if f is attached to a terminal.
func isTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
