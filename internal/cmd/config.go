package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View mudra configuration",
	Long: `View mudra configuration.

Without arguments, displays the effective configuration after defaults, the
config file and MUDRA_* environment variables are merged.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if used := v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	all := v.AllSettings()
	if !v.IsSet("scene.objects") {
		names := make([]string, len(settings.Scene.Objects))
		for i, obj := range settings.Scene.Objects {
			names[i] = obj.Name
		}
		fmt.Fprintf(out, "# Scene objects: demo scene %v\n", names)
	}

	data, err := yaml.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintf(out, "Active config: %s\n", v.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not found)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", config.ConfigFile())
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_DISPATCHER_QUERY_RADIUS)\n", config.EnvPrefix, config.EnvPrefix)
	return nil
}
