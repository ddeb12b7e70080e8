package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/gitdump/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage git-dump-commit configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return fail(cmd, err)
		}

		if _, err := os.Stat(path); err == nil {
			cmd.PrintErrf("Config file already exists at %s\n", path)
			return nil
		}

		if err := config.Save(config.Default()); err != nil {
			return fail(cmd, fmt.Errorf("writing config: %w", err))
		}

		cmd.Printf("Config file created at %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: "Set a configuration value in the config file.\n\nKeys: " +
		"outputDir, unreleasedDir, noMerges, nestPrereleases, filenameMaxLength, format, logFormat",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile()
		if err != nil {
			return fail(cmd, err)
		}
		if cfg == (config.Config{}) {
			// No config file yet, start from defaults
			cfg = config.Default()
		}

		if err := config.SetField(&cfg, args[0], args[1]); err != nil {
			return usageError(err)
		}
		if err := cfg.Validate(); err != nil {
			return usageError(err)
		}

		if err := config.Save(cfg); err != nil {
			return fail(cmd, fmt.Errorf("saving config: %w", err))
		}

		cmd.Printf("Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides(cmd))
		if err != nil {
			return usageError(err)
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fail(cmd, err)
		}

		cmd.Println(string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}
