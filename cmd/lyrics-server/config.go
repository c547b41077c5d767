package main

import (
	"bytes"
	"fmt"

	"lyrics-search/internal/config"
	"lyrics-search/pkg/fileutil"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPath()
		if len(args) == 1 {
			path = args[0]
		}

		if fileutil.Exists(path) && !forceInit {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}

		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config.Default().ToToml()); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		if err := fileutil.WriteFileOverwrite(path, buf.Bytes(), 0o600); err != nil {
			return err
		}

		cmd.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
