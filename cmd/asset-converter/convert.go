// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/asset-converter/internal/convert"
	"github.com/pdiddy/asset-converter/internal/gimp"
	"github.com/pdiddy/asset-converter/internal/ledger"
	"github.com/pdiddy/asset-converter/internal/runner"
)

var convertCmd = &cobra.Command{
	Use:   "convert [profiles...]",
	Short: "Convert source images into build assets",
	Long: `Convert walks each selected profile's source root and, for every file
with a recognized extension, loads it in GIMP, merges visible layers (when the
profile asks for it), and saves it at the mirrored path under the destination
root with the target extension. Missing destination directories are created.

The first failing image stops the run. With --incremental, files whose source
has not changed since the last recorded conversion are skipped.`,
	RunE: runConvert,
}

func init() {
	addProfileFlags(convertCmd)
	convertCmd.Flags().Bool("dry-run", false, "print the conversions without running GIMP")
	convertCmd.Flags().Bool("incremental", false, "skip files unchanged since the last recorded conversion")
	convertCmd.Flags().Bool("record", false, "record runs and conversions in the ledger")
	convertCmd.Flags().String("ledger-path", "", "ledger database (default from config, .asset-converter/ledger.db)")
	convertCmd.Flags().String("runner", "", "how to start GIMP: auto, native, docker, or podman")
	convertCmd.Flags().String("gimp-binary", "", "GIMP executable for the native runner")
	convertCmd.Flags().String("image", "", "container image for the docker and podman runners")

	rootCmd.AddCommand(convertCmd)
}

// detectRunner picks how GIMP is started. Tests replace it.
var detectRunner = runner.Detect

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	profiles, err := profilesFromFlags(cmd, args, cfg)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	incremental, _ := cmd.Flags().GetBool("incremental")
	record, _ := cmd.Flags().GetBool("record")

	var host convert.Host
	if !dryRun {
		r, err := detectRunner(runnerConfigFromFlags(cmd, cfg.Runner))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Using %s runner\n", r.Name())
		host = gimp.NewHost(r)
	}

	var store *ledger.Store
	if (record || incremental) && !dryRun {
		path, _ := cmd.Flags().GetString("ledger-path")
		if path == "" {
			path = cfg.Ledger.Path
		}
		store, err = ledger.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	ctx := cmd.Context()
	for _, p := range profiles {
		opts := convert.Options{DryRun: dryRun, Incremental: incremental}
		if store != nil {
			opts.Tracker = store.Tracker(p.Name)
		}

		var runID string
		if store != nil {
			if runID, err = store.BeginRun(ctx, p); err != nil {
				return err
			}
		}

		summary, runErr := convert.ConvertTree(ctx, host, p, opts, cmd.OutOrStdout())

		if store != nil {
			// An interrupted run is still recorded as failed.
			if err := store.FinishRun(context.WithoutCancel(ctx), runID, summary, runErr); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: recording run %s: %v\n", runID, err)
			}
		}
		if runErr != nil {
			return fmt.Errorf("profile %s: %w", p.Name, runErr)
		}
	}
	return nil
}

// compile-time check that the GIMP host satisfies the converter contract.
var _ convert.Host = (*gimp.Host)(nil)

// compile-time check that ledger trackers plug into incremental runs.
var _ convert.Tracker = (*ledger.Tracker)(nil)
