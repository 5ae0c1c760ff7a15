// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gimp

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/pdiddy/asset-converter/pkg/types"
)

// pngChunks are the file-png-save2 flags following the compression level,
// in argument order, with the GIMP exporter defaults.
var pngChunks = []struct {
	key string
	def bool
}{
	{"bkgd", true},
	{"gama", false},
	{"offs", false},
	{"phys", true},
	{"time", true},
	{"comment", true},
	{"svtrans", true},
}

const (
	defaultPNGCompression = 9
	defaultAlphaThreshold = 127
)

// program returns the Script-Fu program that loads src, optionally merges
// visible layers, saves to dst, and deletes the image again.
func program(src, dst string, merge bool, opts types.FormatOptions) (string, error) {
	save, err := saveCall(dst, opts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "(let* ((image (car (gimp-file-load RUN-NONINTERACTIVE %s %s))))", quote(src), quote(src))
	if merge {
		b.WriteString(" (gimp-image-merge-visible-layers image CLIP-TO-IMAGE)")
	}
	b.WriteString(" (let* ((drawable (car (gimp-image-get-active-drawable image))))")
	fmt.Fprintf(&b, " %s)", save)
	b.WriteString(" (gimp-image-delete image))")
	return b.String(), nil
}

// saveCall picks the export procedure from the destination extension.
func saveCall(dst string, opts types.FormatOptions) (string, error) {
	q := quote(dst)
	switch strings.ToLower(filepath.Ext(dst)) {
	case ".png":
		interlace, err := boolOption(opts, "interlace", false)
		if err != nil {
			return "", err
		}
		level, err := intOption(opts, "compression", defaultPNGCompression, 0, 9)
		if err != nil {
			return "", err
		}
		args := []string{flag(interlace), fmt.Sprint(level)}
		for _, d := range pngChunks {
			v, err := boolOption(opts, d.key, d.def)
			if err != nil {
				return "", err
			}
			args = append(args, flag(v))
		}
		return fmt.Sprintf("(file-png-save2 RUN-NONINTERACTIVE image drawable %s %s %s)", q, q, strings.Join(args, " ")), nil
	case ".xpm":
		threshold, err := intOption(opts, "alpha_threshold", defaultAlphaThreshold, 0, 255)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(file-xpm-save RUN-NONINTERACTIVE image drawable %s %s %d)", q, q, threshold), nil
	default:
		return fmt.Sprintf("(gimp-file-save RUN-NONINTERACTIVE image drawable %s %s)", q, q), nil
	}
}

func boolOption(opts types.FormatOptions, key string, def bool) (bool, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(x) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
	case int:
		if x == 0 || x == 1 {
			return x == 1, nil
		}
	}
	return false, fmt.Errorf("option %s: want a boolean, got %v", key, v)
}

func intOption(opts types.FormatOptions, key string, def, lo, hi int) (int, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}

	outside := fmt.Errorf("option %s: %v is outside %d-%d", key, v, lo, hi)
	switch x := v.(type) {
	case int:
		if x < lo || x > hi {
			return 0, outside
		}
		return x, nil
	case int64:
		if x < int64(lo) || x > int64(hi) {
			return 0, outside
		}
		return int(x), nil
	case uint64:
		if (lo > 0 && x < uint64(lo)) || x > uint64(hi) {
			return 0, outside
		}
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("option %s: want an integer, got %v", key, v)
		}
		// Compare as float64 first; converting an out-of-range float to
		// int is implementation-defined.
		if x < float64(lo) || x > float64(hi) {
			return 0, outside
		}
		return int(x), nil
	}
	return 0, fmt.Errorf("option %s: want an integer, got %v", key, v)
}

func flag(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// quote renders s as a Script-Fu string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
