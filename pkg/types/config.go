// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FormatOptions carries format-specific save options (compression level,
// interlacing, alpha threshold). The converter passes them to the host
// untouched; only the host backend interprets them.
type FormatOptions map[string]any

// Profile is one named conversion configuration: which files to pick up,
// where to write them, and how to save them.
type Profile struct {
	// Name identifies the profile on the command line (e.g. "xpm").
	Name string `json:"name" yaml:"-" mapstructure:"-"`

	// SourceRoot is the directory tree holding the original assets.
	SourceRoot string `json:"source_root" yaml:"source_root" mapstructure:"source_root"`

	// DestRoot is the directory tree receiving converted assets.
	DestRoot string `json:"dest_root" yaml:"dest_root" mapstructure:"dest_root"`

	// SourceExtensions lists the recognized source extensions, matched
	// case-insensitively (e.g. [".png", ".xcf"]).
	SourceExtensions []string `json:"source_extensions" yaml:"source_extensions" mapstructure:"source_extensions"`

	// TargetExtension is the extension of produced files (e.g. ".xpm").
	TargetExtension string `json:"target_extension" yaml:"target_extension" mapstructure:"target_extension"`

	// MergeLayers flattens visible layers before saving.
	MergeLayers bool `json:"merge_layers" yaml:"merge_layers" mapstructure:"merge_layers"`

	// Options is handed to the host save call as-is.
	Options FormatOptions `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
}

// RunnerMode selects how the host application binary is started.
type RunnerMode string

const (
	RunnerAuto   RunnerMode = "auto"
	RunnerNative RunnerMode = "native"
	RunnerDocker RunnerMode = "docker"
	RunnerPodman RunnerMode = "podman"
)

// RunnerConfig holds settings for starting the host application.
type RunnerConfig struct {
	// Mode is auto, native, docker, or podman (default auto).
	Mode RunnerMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Binary is the host executable for native mode (default "gimp").
	Binary string `json:"binary" yaml:"binary" mapstructure:"binary"`

	// Image is the container image for docker and podman modes.
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// LedgerConfig holds settings for the optional conversion ledger.
type LedgerConfig struct {
	// Path is the SQLite database file. Empty disables the ledger unless
	// incremental mode asks for it.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config is the on-disk configuration file layout.
type Config struct {
	Runner   RunnerConfig       `json:"runner" yaml:"runner" mapstructure:"runner"`
	Ledger   LedgerConfig       `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
	Profiles map[string]Profile `json:"profiles" yaml:"profiles" mapstructure:"profiles"`
}

const (
	DefaultGIMPBinary = "gimp"
	DefaultGIMPImage  = "gimp:latest"
	DefaultLedgerPath = ".asset-converter/ledger.db"
)

// DefaultProfiles returns the two conversions the asset build has always
// run: XCF/PNG sources to XPM, and PNG sources re-saved as optimized PNG.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		"xpm": {
			Name:             "xpm",
			SourceRoot:       "images",
			DestRoot:         "compiled-images",
			SourceExtensions: []string{".png", ".xcf"},
			TargetExtension:  ".xpm",
			MergeLayers:      true,
			Options: FormatOptions{
				// XPM has no partial transparency, only a transparent color.
				"alpha_threshold": 127,
			},
		},
		"png": {
			Name:             "png",
			SourceRoot:       "src/images",
			DestRoot:         "Images",
			SourceExtensions: []string{".png"},
			TargetExtension:  ".png",
			MergeLayers:      true,
			Options: FormatOptions{
				"interlace":   true,
				"compression": 9,
				"bkgd":        false,
				"gama":        false,
				"offs":        false,
				"phys":        false,
				"time":        true,
				"comment":     true,
				"svtrans":     true,
			},
		},
	}
}

// DefaultConfig returns a Config populated with the built-in profiles and
// runner defaults.
func DefaultConfig() Config {
	return Config{
		Runner: RunnerConfig{
			Mode:   RunnerAuto,
			Binary: DefaultGIMPBinary,
			Image:  DefaultGIMPImage,
		},
		Ledger:   LedgerConfig{Path: DefaultLedgerPath},
		Profiles: DefaultProfiles(),
	}
}
