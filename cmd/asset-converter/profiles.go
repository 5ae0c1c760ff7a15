// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/asset-converter/pkg/types"
)

const defaultConfigFile = "asset-converter.yaml"

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the configured conversion profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		formatProfiles(cmd.OutOrStdout(), cfg.Profiles)
		return nil
	},
}

var profilesInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the built-in profiles",
	Long: `Init writes the built-in profiles and runner defaults to a YAML config
file (default ./asset-converter.yaml) as a starting point for customization.
An existing file is left alone unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if err := writeDefaultConfig(path, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func formatProfiles(w io.Writer, profiles map[string]types.Profile) {
	fmt.Fprintf(w, "%-8s  %-14s  %-16s  %-12s  %-6s  %s\n",
		"Name", "Source", "Destination", "Extensions", "Target", "Merge")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, name := range profileNames(profiles) {
		p := profiles[name]
		fmt.Fprintf(w, "%-8s  %-14s  %-16s  %-12s  %-6s  %t\n",
			name, p.SourceRoot, p.DestRoot, strings.Join(p.SourceExtensions, ","), p.TargetExtension, p.MergeLayers)
	}
}

// writeDefaultConfig marshals the built-in configuration to path.
func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists; use --force to overwrite", path)
		}
	}

	data, err := yaml.Marshal(types.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func init() {
	profilesInitCmd.Flags().Bool("force", false, "overwrite an existing config file")

	profilesCmd.AddCommand(profilesInitCmd)
	rootCmd.AddCommand(profilesCmd)
}
