// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the asset-converter CLI, which turns
// the game's source images into the formats the engine loads.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the asset-converter CLI.
var rootCmd = &cobra.Command{
	Use:   "asset-converter",
	Short: "Batch-convert source images into build assets through GIMP",
	Long: `asset-converter walks a source image tree, loads each recognized file in
GIMP, merges its visible layers, and saves it into a mirrored destination tree
in another format (PNG or XPM).

Conversions are described by profiles. The built-in profiles are "xpm"
(images/ -> compiled-images/, .png and .xcf to .xpm) and "png"
(src/images/ -> Images/, .png re-saved with build settings). Profiles can be
changed or added in the config file.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./asset-converter.yaml or ~/.config/asset-converter/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("asset-converter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "asset-converter"))
		}
	}

	bindEnv(viper.GetViper())
	setConfigDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "warning: could not read config %s: %v\n", cfgFile, err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
