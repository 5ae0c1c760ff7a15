// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/asset-converter/pkg/types"
)

// bindEnv makes every config key settable as ASSET_CONVERTER_<KEY>, with
// dots in nested keys written as underscores (ASSET_CONVERTER_RUNNER_MODE).
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("ASSET_CONVERTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("runner.mode", string(types.RunnerAuto))
	v.SetDefault("runner.binary", types.DefaultGIMPBinary)
	v.SetDefault("runner.image", types.DefaultGIMPImage)
	v.SetDefault("ledger.path", types.DefaultLedgerPath)
}

// loadConfig builds the effective configuration: built-in profiles, then
// profiles from the config file replacing or adding by name.
func loadConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.Config{
		Runner: types.RunnerConfig{
			Mode:   types.RunnerMode(v.GetString("runner.mode")),
			Binary: v.GetString("runner.binary"),
			Image:  v.GetString("runner.image"),
		},
		Ledger:   types.LedgerConfig{Path: v.GetString("ledger.path")},
		Profiles: types.DefaultProfiles(),
	}

	if v.IsSet("profiles") {
		var custom map[string]types.Profile
		if err := v.UnmarshalKey("profiles", &custom); err != nil {
			return types.Config{}, fmt.Errorf("parsing profiles: %w", err)
		}
		for name, p := range custom {
			p.Name = name
			cfg.Profiles[name] = p
		}
	}

	return cfg, nil
}

// profileNames returns the configured profile names in sorted order.
func profileNames(profiles map[string]types.Profile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// selectProfiles resolves profile names given on the command line. With
// all set every profile is returned in name order.
func selectProfiles(profiles map[string]types.Profile, names []string, all bool) ([]types.Profile, error) {
	if all {
		names = profileNames(profiles)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("name a profile (%s), or use --all or --choose",
			strings.Join(profileNames(profiles), ", "))
	}

	seen := make(map[string]bool, len(names))
	selected := make([]types.Profile, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		p, ok := profiles[key]
		if !ok {
			return nil, fmt.Errorf("unknown profile %q: available profiles are %s",
				name, strings.Join(profileNames(profiles), ", "))
		}
		seen[key] = true
		selected = append(selected, p)
	}
	return selected, nil
}

// applyRootOverrides replaces the roots of a single selected profile with
// --source and --dest.
func applyRootOverrides(cmd *cobra.Command, profiles []types.Profile) error {
	source, _ := cmd.Flags().GetString("source")
	dest, _ := cmd.Flags().GetString("dest")
	if source == "" && dest == "" {
		return nil
	}
	if len(profiles) != 1 {
		return fmt.Errorf("--source and --dest need exactly one profile, got %d", len(profiles))
	}
	if source != "" {
		profiles[0].SourceRoot = source
	}
	if dest != "" {
		profiles[0].DestRoot = dest
	}
	return nil
}

// runnerConfigFromFlags lets --runner, --gimp-binary, and --image override
// the configured runner.
func runnerConfigFromFlags(cmd *cobra.Command, cfg types.RunnerConfig) types.RunnerConfig {
	if mode, _ := cmd.Flags().GetString("runner"); mode != "" {
		cfg.Mode = types.RunnerMode(mode)
	}
	if bin, _ := cmd.Flags().GetString("gimp-binary"); bin != "" {
		cfg.Binary = bin
	}
	if image, _ := cmd.Flags().GetString("image"); image != "" {
		cfg.Image = image
	}
	return cfg
}

// addProfileFlags registers the profile selection flags shared by convert
// and plan.
func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("all", false, "use every configured profile")
	cmd.Flags().Bool("choose", false, "pick profiles interactively")
	cmd.Flags().String("source", "", "override the source root (single profile only)")
	cmd.Flags().String("dest", "", "override the destination root (single profile only)")
}

// profilesFromFlags resolves the profiles a command should work on.
func profilesFromFlags(cmd *cobra.Command, args []string, cfg types.Config) ([]types.Profile, error) {
	all, _ := cmd.Flags().GetBool("all")
	choose, _ := cmd.Flags().GetBool("choose")

	names := args
	if choose && len(names) == 0 && !all {
		picked, err := chooseProfiles(cfg.Profiles)
		if err != nil {
			return nil, err
		}
		if len(picked) == 0 {
			return nil, fmt.Errorf("no profiles selected")
		}
		names = picked
	}

	profiles, err := selectProfiles(cfg.Profiles, names, all)
	if err != nil {
		return nil, err
	}
	if err := applyRootOverrides(cmd, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
