// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/pdiddy/asset-converter/pkg/types"
)

// chooseProfiles shows a multi-select of the configured profiles and
// returns the picked names.
func chooseProfiles(profiles map[string]types.Profile) ([]string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, fmt.Errorf("inspect stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 {
		return nil, fmt.Errorf("interactive selection requires a terminal; name the profiles instead")
	}

	names := profileNames(profiles)
	options := make([]huh.Option[string], 0, len(names))
	for _, name := range names {
		options = append(options, huh.NewOption(profileLabel(profiles[name]), name))
	}

	var picked []string
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select conversions to run").
				Description("Use x/space to toggle, enter to start.").
				Options(options...).
				Value(&picked),
		),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("run interactive profile selector: %w", err)
	}
	return picked, nil
}

// profileLabel renders a profile as "xpm: images -> compiled-images (.png, .xcf -> .xpm)".
func profileLabel(p types.Profile) string {
	return fmt.Sprintf("%s: %s -> %s (%s -> %s)",
		p.Name, p.SourceRoot, p.DestRoot, strings.Join(p.SourceExtensions, ", "), p.TargetExtension)
}
