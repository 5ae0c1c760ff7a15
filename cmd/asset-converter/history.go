// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/asset-converter/internal/ledger"
	"github.com/pdiddy/asset-converter/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded conversion runs",
	Long: `History lists runs recorded in the ledger by convert --record or
convert --incremental, newest first.`,
	RunE: runHistory,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded conversions as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, ok, err := openLedger(cmd)
		if err != nil || !ok {
			return err
		}
		defer store.Close()

		profile, _ := cmd.Flags().GetString("profile")
		return store.ExportYAML(cmd.Context(), cmd.OutOrStdout(), profile)
	},
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, ok, err := openLedger(cmd)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistoryOutput(cmd.OutOrStdout(), runs, jsonOutput)
}

// openLedger opens the configured ledger. ok is false when no ledger file
// exists yet.
func openLedger(cmd *cobra.Command) (*ledger.Store, bool, error) {
	path, _ := cmd.Flags().GetString("ledger-path")
	if path == "" {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return nil, false, err
		}
		path = cfg.Ledger.Path
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "no ledger at %s\n", path)
		return nil, false, nil
	}

	store, err := ledger.Open(path)
	if err != nil {
		return nil, false, err
	}
	return store, true, nil
}

func formatHistoryOutput(w io.Writer, runs []types.RunRecord, jsonOutput bool) error {
	if jsonOutput {
		if runs == nil {
			runs = []types.RunRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %-8s  %-20s  %-9s  %9s  %9s  %9s\n",
		"Run", "Profile", "Started", "Status", "Converted", "Unchanged", "Unmatched")
	fmt.Fprintln(w, strings.Repeat("-", 86))

	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(w, "%-8s  %-8s  %-20s  %-9s  %9d  %9d  %9d\n",
			id, r.Profile, r.StartedAt.Local().Format(time.DateTime), r.Status,
			r.Summary.Converted, r.Summary.Unchanged, r.Summary.Unmatched)
		if r.Error != "" {
			fmt.Fprintf(w, "          error: %s\n", r.Error)
		}
	}

	fmt.Fprintf(w, "\n%d run(s)\n", len(runs))
	return nil
}

func init() {
	historyCmd.PersistentFlags().String("ledger-path", "", "ledger database (default from config, .asset-converter/ledger.db)")

	historyCmd.Flags().Int("limit", 20, "maximum number of runs to show (0 = all)")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	historyExportCmd.Flags().String("profile", "", "export only this profile's conversions")

	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
