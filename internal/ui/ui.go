// Package ui decides when CLI listings get lipgloss styling and renders
// the column tables behind 'patchbay connectors' and 'patchbay tools'.
//
// Styling is cosmetic only: every view has a plain rendering with identical
// content, so piping output or setting NO_COLOR never loses information.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsTTY checks if w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

// ShouldStyle reports whether listings written to w get color. Pipes, CI,
// and NO_COLOR all render plain.
func ShouldStyle(w io.Writer) bool {
	return IsTTY(w) && !DetectNoColor() && !DetectCI()
}

// StylesFor returns the styles appropriate for output written to w.
func StylesFor(w io.Writer) Styles {
	return GetStyles(!ShouldStyle(w))
}
