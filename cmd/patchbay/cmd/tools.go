package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patchbaylabs/patchbay/internal/connectors"
	"github.com/patchbaylabs/patchbay/internal/output"
	"github.com/patchbaylabs/patchbay/internal/ui"
)

func newToolsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the enabled connectors expose",
		Long: `List every tool the enabled connectors would register with an MCP host.

The list is built from the same registration code path 'patchbay serve'
uses, so it reflects exactly what a host will see. Connectors that are
enabled but missing credentials are reported and skipped.`,
		Example: `  # List tools of all enabled connectors
  patchbay tools

  # Machine-readable listing
  patchbay tools --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTools(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runTools(cmd *cobra.Command, jsonOutput bool) error {
	cfg := loadConfigOrDefaults()
	w := cmd.OutOrStdout()
	styles := ui.StylesFor(w)
	out := output.New(w)

	type toolRow struct {
		Connector   string `json:"connector"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	rows := []toolRow{}
	var skipped []string
	enabledCount := 0
	for _, f := range connectors.Catalog() {
		if !cfg.Connectors[f.Name].Enabled {
			continue
		}
		enabledCount++

		tools, err := collectConnectorTools(cfg, f)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		for _, t := range tools {
			rows = append(rows, toolRow{Connector: f.Name, Name: t.Name, Description: t.Description})
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if enabledCount == 0 {
		out.Warning("No connectors enabled")
		out.Status("", "Run 'patchbay setup' to configure one.")
		return nil
	}

	if len(rows) > 0 {
		tbl := ui.NewTable("CONNECTOR", "TOOL", "DESCRIPTION")
		for _, r := range rows {
			tbl.AddRow(
				ui.Styled(r.Connector, styles.Name),
				ui.Plain(r.Name),
				ui.Plain(r.Description),
			)
		}
		tbl.Render(w, styles)
	}

	for _, s := range skipped {
		out.Warningf("skipped %s", s)
	}

	return nil
}
