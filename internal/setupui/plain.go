package setupui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/patchbaylabs/patchbay/internal/config"
	"github.com/patchbaylabs/patchbay/internal/connectors"
)

// RunPlain walks the same picker and credential prompts over plain
// line-based input, for pipes and CI. Nothing is masked here since the
// input is not an interactive terminal.
func RunPlain(cfg *config.Config, catalog []connectors.Factory, in io.Reader, out io.Writer) (Result, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	scanner := bufio.NewScanner(in)

	_, _ = fmt.Fprintln(out, "patchbay setup")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Connectors:")
	for i, f := range catalog {
		marker := ""
		if cfg.Connectors[f.Name].Enabled {
			marker = " [enabled]"
		}
		_, _ = fmt.Fprintf(out, "  %d. %s - %s%s\n", i+1, f.Name, f.Description, marker)
	}
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprint(out, "Connector (number or name): ")
	line, ok := readLine(scanner)
	if !ok || strings.TrimSpace(line) == "" {
		return Result{Canceled: true}, nil
	}

	f, err := pickFactory(catalog, strings.TrimSpace(line))
	if err != nil {
		return Result{}, err
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "Configure %s:\n", f.Name)

	creds := make(map[string]string)
	for _, spec := range f.Credentials() {
		configured := cfg.Credential(f.Name, spec.Key, spec.EnvVar) != ""

		hint := ""
		switch {
		case configured:
			hint = " (configured, leave empty to keep)"
		case spec.Required:
			hint = " (required)"
		}
		_, _ = fmt.Fprintf(out, "  %s - %s%s: ", spec.Key, spec.Description, hint)

		line, ok := readLine(scanner)
		if !ok {
			return Result{Canceled: true}, nil
		}

		v := strings.TrimSpace(line)
		if v == "" {
			if spec.Required && !configured {
				return Result{}, fmt.Errorf("credential %s is required for %s", spec.Key, f.Name)
			}
			continue
		}
		creds[spec.Key] = v
	}

	return Result{Connector: f.Name, Credentials: creds}, nil
}

// pickFactory resolves a 1-based index or a connector name against the
// catalog.
func pickFactory(catalog []connectors.Factory, choice string) (connectors.Factory, error) {
	if n, err := strconv.Atoi(choice); err == nil {
		if n < 1 || n > len(catalog) {
			return connectors.Factory{}, fmt.Errorf("connector number %d out of range 1-%d", n, len(catalog))
		}
		return catalog[n-1], nil
	}

	for _, f := range catalog {
		if f.Name == choice {
			return f, nil
		}
	}
	return connectors.Factory{}, fmt.Errorf("unknown connector %q", choice)
}

func readLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return scanner.Text(), true
}
