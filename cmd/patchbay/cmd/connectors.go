package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patchbaylabs/patchbay/internal/config"
	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/connectors"
	"github.com/patchbaylabs/patchbay/internal/logging"
	"github.com/patchbaylabs/patchbay/internal/ui"
)

func newConnectorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connectors",
		Short: "List the connector catalog",
		Long: `List every connector patchbay ships, with its enabled state, credential
status, and tool count.

Tool counts come from the same registration code path the server uses, so
they are only known for connectors whose credentials resolve.`,
		Example: `  # List the catalog
  patchbay connectors

  # Inspect one connector's credentials and tools
  patchbay connectors describe github`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConnectorsList(cmd)
		},
	}

	cmd.AddCommand(newConnectorsDescribeCmd())

	return cmd
}

func newConnectorsDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <name>",
		Short: "Show one connector's credentials and tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnectorsDescribe(cmd, args[0])
		},
	}
}

func runConnectorsList(cmd *cobra.Command) error {
	cfg := loadConfigOrDefaults()
	w := cmd.OutOrStdout()
	styles := ui.StylesFor(w)

	tbl := ui.NewTable("NAME", "DESCRIPTION", "ENABLED", "CREDENTIALS", "TOOLS")
	for _, f := range connectors.Catalog() {
		enabled := cfg.Connectors[f.Name].Enabled
		missing := missingCredentials(cfg, f)

		toolsText := "-"
		if len(missing) == 0 {
			if tools, err := collectConnectorTools(cfg, f); err == nil {
				toolsText = strconv.Itoa(len(tools))
			}
		}

		tbl.AddRow(
			ui.Styled(f.Name, styles.Name),
			ui.Plain(f.Description),
			enabledCell(styles, enabled),
			credentialCell(styles, enabled, missing),
			ui.Plain(toolsText),
		)
	}
	tbl.Render(w, styles)

	return nil
}

func runConnectorsDescribe(cmd *cobra.Command, name string) error {
	f, ok := connectors.Find(name)
	if !ok {
		return fmt.Errorf("unknown connector %q (known: %s)",
			name, strings.Join(connectors.Names(), ", "))
	}

	cfg := loadConfigOrDefaults()
	w := cmd.OutOrStdout()
	styles := ui.StylesFor(w)

	fmt.Fprintf(w, "%s - %s\n", styles.Name.Render(f.Name), f.Description)
	enabled := "no"
	if cfg.Connectors[f.Name].Enabled {
		enabled = "yes"
	}
	fmt.Fprintf(w, "Enabled: %s\n", enabled)
	fmt.Fprintln(w)

	specs := f.Credentials()
	creds := connectors.ResolveCredentials(cfg, f.Name, specs)

	fmt.Fprintln(w, styles.Header.Render("Credentials:"))
	if len(specs) == 0 {
		fmt.Fprintln(w, "  (none required)")
	}
	for _, spec := range specs {
		status := "unset"
		style := styles.Muted
		switch {
		case strings.TrimSpace(creds[spec.Key]) != "":
			status = "set"
			style = styles.OK
		case spec.Required:
			style = styles.Fail
		}

		annotations := []string{}
		if spec.Required {
			annotations = append(annotations, "required")
		}
		if spec.EnvVar != "" {
			annotations = append(annotations, "env "+spec.EnvVar)
		}
		fmt.Fprintf(w, "  %s: %s (%s)\n", spec.Key, style.Render(status), strings.Join(annotations, ", "))
		if spec.Description != "" {
			fmt.Fprintf(w, "      %s\n", styles.Muted.Render(spec.Description))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, styles.Header.Render("Tools:"))
	tools, err := collectConnectorTools(cfg, f)
	if err != nil {
		fmt.Fprintln(w, "  unavailable until credentials are configured (run 'patchbay setup')")
		return nil
	}
	tbl := ui.NewTable("  NAME", "DESCRIPTION")
	for _, t := range tools {
		tbl.AddRow(ui.Plain("  "+t.Name), ui.Plain(t.Description))
	}
	tbl.Render(w, styles)

	return nil
}

// loadConfigOrDefaults loads config for listings. A broken config degrades
// to defaults because listings must always render; doctor reports the load
// error properly.
func loadConfigOrDefaults() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.NewConfig()
	}
	return cfg
}

// missingCredentials returns the required credential keys that resolve
// empty from config and environment.
func missingCredentials(cfg *config.Config, f connectors.Factory) []string {
	creds := connectors.ResolveCredentials(cfg, f.Name, f.Credentials())
	var missing []string
	for _, spec := range f.Credentials() {
		if spec.Required && strings.TrimSpace(creds[spec.Key]) == "" {
			missing = append(missing, spec.Key)
		}
	}
	return missing
}

// collectConnectorTools builds the connector with its resolved credentials
// and reports the tools it would register.
func collectConnectorTools(cfg *config.Config, f connectors.Factory) ([]connector.ToolInfo, error) {
	settings := connector.Settings{
		Credentials: connectors.ResolveCredentials(cfg, f.Name, f.Credentials()),
		Logger:      logging.Nop(),
	}
	c, err := f.New(settings, cfg)
	if err != nil {
		return nil, err
	}
	return connector.CollectTools(c)
}

func enabledCell(styles ui.Styles, enabled bool) ui.Cell {
	if enabled {
		return ui.Styled("yes", styles.OK)
	}
	return ui.Styled("no", styles.Muted)
}

func credentialCell(styles ui.Styles, enabled bool, missing []string) ui.Cell {
	if len(missing) == 0 {
		return ui.Styled("ok", styles.OK)
	}
	text := "missing: " + strings.Join(missing, ", ")
	if enabled {
		// Enabled without credentials fails at serve time, flag it hard
		return ui.Styled(text, styles.Fail)
	}
	return ui.Styled(text, styles.Muted)
}
