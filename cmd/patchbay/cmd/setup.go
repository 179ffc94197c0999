package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patchbaylabs/patchbay/internal/config"
	"github.com/patchbaylabs/patchbay/internal/output"
	"github.com/patchbaylabs/patchbay/internal/setupui"
)

func newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure connector credentials interactively",
		Long: `Configure a connector through the interactive credential wizard.

The wizard lists the connector catalog, prompts for the selected
connector's credentials (secrets are masked), and writes the result to the
config file with the connector enabled. Values already configured are kept
when the prompt is left empty.

On a terminal the wizard is a full-screen picker; when stdin or stdout is
a pipe it falls back to plain line prompts.`,
		Example: `  # Run the wizard
  patchbay setup

  # Afterwards, verify the credentials work
  patchbay doctor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd)
		},
	}

	return cmd
}

func runSetup(cmd *cobra.Command) error {
	out := output.New(cmd.OutOrStdout())

	// A missing or broken config is no reason to refuse setup; the wizard
	// starts from defaults and writes a fresh file.
	cfg, err := config.Load(configPath)
	if err != nil {
		out.Warningf("Could not load existing config: %v", err)
		out.Status("", "Starting from defaults")
		cfg = config.NewConfig()
	}

	res, err := setupui.Run(cfg)
	if err != nil {
		return err
	}
	if res.Canceled {
		out.Status("", "Setup canceled, nothing written.")
		return nil
	}

	applySetupResult(cfg, res)

	path := configPath
	if path == "" {
		path = config.GetUserConfigPath()
	}

	// Keep the previous file recoverable; it may hold other connectors'
	// credentials.
	if path == config.GetUserConfigPath() {
		if _, err := config.BackupUserConfig(); err != nil {
			return fmt.Errorf("failed to back up config: %w", err)
		}
	}
	if err := cfg.WriteYAML(path); err != nil {
		return err
	}

	out.Successf("Configured %s", res.Connector)
	out.Statusf("", "Config: %s", path)
	out.Status("", "Run 'patchbay doctor' to verify the credentials work.")

	return nil
}

// applySetupResult merges the wizard's credentials into cfg and enables
// the connector. Keys the wizard left out keep their configured values.
func applySetupResult(cfg *config.Config, res setupui.Result) {
	if cfg.Connectors == nil {
		cfg.Connectors = map[string]config.ConnectorConfig{}
	}

	cc := cfg.Connectors[res.Connector]
	if cc.Credentials == nil {
		cc.Credentials = map[string]string{}
	}
	for key, v := range res.Credentials {
		cc.Credentials[key] = v
	}
	cc.Enabled = true
	cfg.Connectors[res.Connector] = cc
}
