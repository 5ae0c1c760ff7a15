// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/asset-converter/internal/convert"
	"github.com/pdiddy/asset-converter/pkg/types"
)

var planCmd = &cobra.Command{
	Use:   "plan [profiles...]",
	Short: "List the conversions a run would perform",
	Long: `Plan walks each selected profile's source root and prints the source and
destination path of every conversion job, without starting GIMP or creating
any directory.`,
	RunE: runPlan,
}

func init() {
	addProfileFlags(planCmd)
	planCmd.Flags().Bool("json", false, "output jobs as JSON")

	rootCmd.AddCommand(planCmd)
}

// profilePlan is one profile's jobs as printed by plan --json.
type profilePlan struct {
	Profile   string                `json:"profile"`
	Jobs      []types.ConversionJob `json:"jobs"`
	Unmatched int                   `json:"unmatched"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	profiles, err := profilesFromFlags(cmd, args, cfg)
	if err != nil {
		return err
	}

	plans := make([]profilePlan, 0, len(profiles))
	for _, p := range profiles {
		m, err := convert.NewMapper(p)
		if err != nil {
			return err
		}
		jobs, unmatched, err := convert.Plan(m)
		if err != nil {
			return fmt.Errorf("profile %s: %w", p.Name, err)
		}
		if jobs == nil {
			jobs = []types.ConversionJob{}
		}
		plans = append(plans, profilePlan{Profile: p.Name, Jobs: jobs, Unmatched: unmatched})
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatPlanOutput(cmd.OutOrStdout(), plans, jsonOutput)
}

func formatPlanOutput(w io.Writer, plans []profilePlan, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plans)
	}

	for i, p := range plans {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%s]\n", p.Profile)
		for _, j := range p.Jobs {
			fmt.Fprintf(w, "  %s -> %s\n", j.SourcePath, j.DestinationPath)
		}
		fmt.Fprintf(w, "%d job(s), %d unmatched file(s)\n", len(p.Jobs), p.Unmatched)
	}
	return nil
}
