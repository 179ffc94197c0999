package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/patchbaylabs/patchbay/configs"
	"github.com/patchbaylabs/patchbay/internal/config"
	"github.com/patchbaylabs/patchbay/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		Long: `Manage the patchbay configuration file.

The configuration selects the server transport, tunes search ranking, and
enables connectors with their credentials.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. Config file (~/.config/patchbay/config.yaml, or --config)
  3. Environment variables (PATCHBAY_*, plus per-connector credential vars)`,
		Example: `  # Create a config file from the commented template
  patchbay config init

  # Show the effective configuration (merged from all sources)
  patchbay config show

  # Print the config file path
  patchbay config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file from the template",
		Long: `Create the configuration file from the commented template.

The file is created at ~/.config/patchbay/config.yaml (or
$XDG_CONFIG_HOME/patchbay/config.yaml if XDG_CONFIG_HOME is set). Every
connector appears in the template as a commented block; uncomment one and
fill in its credentials, or run 'patchbay setup' instead.`,
		Example: `  # Create the config file
  patchbay config init

  # Replace an existing file (a backup is kept)
  patchbay config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace the existing configuration (keeps a backup)")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration after merging defaults, the config
file, and environment variables.

Credential values are redacted; only whether each key is set is shown.
Use 'patchbay doctor' to verify that credentials actually work.`,
		Example: `  # Show the merged configuration
  patchbay config show

  # Show as JSON
  patchbay config show --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Long:  `Print the path of the configuration file patchbay reads.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath
			if path == "" {
				path = config.GetUserConfigPath()
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	cfgPath := config.GetUserConfigPath()
	cfgDir := config.GetUserConfigDir()

	if config.UserConfigExists() {
		if !force {
			out.Warning("Configuration already exists")
			out.Statusf("", "Location: %s", cfgPath)
			out.Status("", "Use --force to replace it with a fresh template (a backup is kept)")
			return nil
		}

		backupPath, err := config.BackupUserConfig()
		if err != nil {
			return fmt.Errorf("failed to back up config: %w", err)
		}
		if err := os.WriteFile(cfgPath, []byte(configs.ConfigTemplate), 0o600); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		out.Success("Replaced configuration with a fresh template")
		out.Statusf("", "Location: %s", cfgPath)
		out.Statusf("", "Backup:   %s", backupPath)
		return nil
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", cfgDir, err)
	}
	if err := os.WriteFile(cfgPath, []byte(configs.ConfigTemplate), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created configuration")
	out.Statusf("", "Location: %s", cfgPath)
	out.Newline()
	out.Status("", "Next steps:")
	out.Status("", "  1. Run 'patchbay setup' to configure a connector")
	out.Status("", "  2. Run 'patchbay doctor' to verify credentials")
	out.Status("", "  3. Add patchbay to your MCP host's server list")

	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	redacted := redactCredentials(cfg)

	if jsonOutput {
		data, err := json.MarshalIndent(redacted, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	data, err := yaml.Marshal(redacted)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// redactCredentials deep-copies cfg with every credential value replaced
// by a set/unset marker. Show output ends up in terminals, scrollback,
// and pasted issues; tokens stay out of all of them.
func redactCredentials(cfg *config.Config) *config.Config {
	redacted := *cfg
	redacted.Connectors = make(map[string]config.ConnectorConfig, len(cfg.Connectors))

	for name, cc := range cfg.Connectors {
		copied := cc
		copied.Credentials = make(map[string]string, len(cc.Credentials))
		for key, v := range cc.Credentials {
			if v != "" {
				copied.Credentials[key] = "[set]"
			} else {
				copied.Credentials[key] = ""
			}
		}
		redacted.Connectors[name] = copied
	}

	return &redacted
}
